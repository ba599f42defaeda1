package employee

import (
	"context"
	"time"
)

// Repository は在籍社員の永続化の抽象です。単一行の操作のみを提供します。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	// UpdateLeaveBalance は現在の残日数が expected と一致する場合のみ next に更新します。
	// 一致しない場合は ErrBalanceConflict を返します。
	UpdateLeaveBalance(ctx context.Context, id string, expected, next int, updatedAt time.Time) (*Employee, error)
	Delete(ctx context.Context, id string) error
}

// ArchiveRepository は退職済み社員アーカイブの永続化の抽象です。
type ArchiveRepository interface {
	Create(ctx context.Context, archived *ArchivedEmployee) (*ArchivedEmployee, error)
	FindByID(ctx context.Context, id string) (*ArchivedEmployee, error)
	FindByResignationID(ctx context.Context, resignationID string) (*ArchivedEmployee, error)
	Delete(ctx context.Context, id string) error
}
