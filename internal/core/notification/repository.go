package notification

//go:generate go tool mockgen -destination=./mock_repository_test.go -package=notification github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification Repository,RecipientResolver

import (
	"context"
	"time"
)

// Repository は通知の追記専用ストアです。
type Repository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	ListByRecipient(ctx context.Context, filter ListFilter) ([]*Notification, error)
	MarkRead(ctx context.Context, id string, readAt time.Time) error
}

// ListFilter は受信者ごとの一覧取得条件です。
type ListFilter struct {
	RecipientID string
	UnreadOnly  bool
	Limit       int
}

// RecipientResolver はロールに基づく受信者 ID を解決します。
type RecipientResolver interface {
	Managers(ctx context.Context) ([]string, error)
	Admins(ctx context.Context) ([]string, error)
}
