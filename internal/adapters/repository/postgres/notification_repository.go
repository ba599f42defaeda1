package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	pgdb "github.com/ogurasousui/hr-lifecycle-engine/internal/platform/db/postgres"
)

const (
	notificationColumns = `id, recipient_id, type, title, message, payload, is_read, read_at, created_at, updated_at`

	defaultNotificationListLimit = 50
	maxNotificationListLimit     = 200
)

// NotificationRepository は PostgreSQL を利用した通知ストアです。
type NotificationRepository struct {
	pool pgdb.Queryer
}

// NewNotificationRepository は NotificationRepository を生成します。
func NewNotificationRepository(pool pgdb.Queryer) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create は通知を 1 件追加します。
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	payload := n.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO notifications (`+notificationColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+notificationColumns,
		n.ID,
		n.RecipientID,
		string(n.Type),
		n.Title,
		n.Message,
		payload,
		n.Read,
		nullableTime(n.ReadAt),
		n.CreatedAt,
		n.UpdatedAt,
	)

	created, err := scanNotification(row)
	if err != nil {
		return nil, translateNotificationPgError(err)
	}
	return created, nil
}

// ListByRecipient は受信者宛ての通知を新しい順に返します。
func (r *NotificationRepository) ListByRecipient(ctx context.Context, filter notification.ListFilter) ([]*notification.Notification, error) {
	if filter.RecipientID == "" {
		return nil, notification.ErrInvalidRecipient
	}
	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = defaultNotificationListLimit
	case limit > maxNotificationListLimit:
		limit = maxNotificationListLimit
	}

	rows, err := r.pool.Query(ctx, `
        SELECT `+notificationColumns+`
          FROM notifications
         WHERE recipient_id = $1 AND (NOT $2 OR NOT is_read)
         ORDER BY created_at DESC, id DESC
         LIMIT $3
    `, filter.RecipientID, filter.UnreadOnly, limit)
	if err != nil {
		return nil, translateNotificationPgError(err)
	}
	defer rows.Close()

	list := make([]*notification.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, translateNotificationPgError(err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, translateNotificationPgError(err)
	}
	return list, nil
}

// MarkRead は通知を既読にします。既読済みの場合は read_at を変更しません。
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, readAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE notifications
           SET is_read = TRUE,
               read_at = COALESCE(read_at, $2),
               updated_at = $2
         WHERE id = $1
    `, id, readAt)
	if err != nil {
		return translateNotificationPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n      notification.Notification
		typ    string
		readAt sql.NullTime
	)
	if err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&typ,
		&n.Title,
		&n.Message,
		&n.Payload,
		&n.Read,
		&readAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}

	n.Type = notification.Type(typ)
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return &n, nil
}

func translateNotificationPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notification.ErrNotificationNotFound
	}
	return err
}

// RecipientResolver は employees.is_manager と administrators テーブルから受信者を解決します。
type RecipientResolver struct {
	pool pgdb.Queryer
}

// NewRecipientResolver は RecipientResolver を生成します。
func NewRecipientResolver(pool pgdb.Queryer) *RecipientResolver {
	return &RecipientResolver{pool: pool}
}

// Managers は在籍中の管理職の社員 ID を返します。
func (r *RecipientResolver) Managers(ctx context.Context) ([]string, error) {
	return r.collectIDs(ctx, `SELECT id FROM employees WHERE is_manager ORDER BY id`)
}

// Admins は管理者 ID を返します。
func (r *RecipientResolver) Admins(ctx context.Context) ([]string, error) {
	return r.collectIDs(ctx, `SELECT id FROM administrators ORDER BY id`)
}

func (r *RecipientResolver) collectIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
