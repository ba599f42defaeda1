package leave

import (
	"context"
	"time"
)

// StatusChange は条件付き状態更新の内容です。
type StatusChange struct {
	From       Status
	To         Status
	ReviewedBy string
	At         time.Time
}

// Repository は休暇申請永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, request *Request) (*Request, error)
	FindByID(ctx context.Context, id string) (*Request, error)
	// UpdateStatus は現在の状態が change.From の場合のみ更新し、一致しなければ ErrStatusConflict を返します。
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*Request, error)
}
