package resignation

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

// Repository は退職申請永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, resignation *Resignation) (*Resignation, error)
	FindByID(ctx context.Context, id string) (*Resignation, error)
	// UpdateStatus は現在の状態が change.From の場合のみ change.To に更新します。
	// 一致しない場合は ErrStatusConflict を返します。
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*Resignation, error)
}
