package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/leave"
	pgdb "github.com/ogurasousui/hr-lifecycle-engine/internal/platform/db/postgres"
)

const leaveColumns = `id, employee_id, leave_type, start_date, end_date, days, reason, status,
               reviewed_by, reviewed_at, created_at, updated_at`

// LeaveRepository は PostgreSQL を利用した休暇申請永続化の実装です。
type LeaveRepository struct {
	pool pgdb.Queryer
}

// NewLeaveRepository は LeaveRepository を生成します。
func NewLeaveRepository(pool pgdb.Queryer) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

// Create は休暇申請を登録します。
func (r *LeaveRepository) Create(ctx context.Context, req *leave.Request) (*leave.Request, error) {
	var days any
	if req.Days != nil {
		days = *req.Days
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO leave_requests (`+leaveColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING `+leaveColumns,
		req.ID,
		req.EmployeeID,
		string(req.Type),
		dateOnly(req.StartDate),
		dateOnly(req.EndDate),
		days,
		req.Reason,
		string(req.Status),
		nullableString(req.ReviewedBy),
		nullableTime(req.ReviewedAt),
		req.CreatedAt,
		req.UpdatedAt,
	)

	created, err := scanLeave(row)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	return created, nil
}

// FindByID は ID で休暇申請を取得します。
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*leave.Request, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+leaveColumns+`
          FROM leave_requests
         WHERE id = $1
    `, id)

	found, err := scanLeave(row)
	if err != nil {
		return nil, translateLeavePgError(err)
	}
	return found, nil
}

// UpdateStatus は現在の状態が change.From の場合のみ状態を更新します。
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id string, change leave.StatusChange) (*leave.Request, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE leave_requests
           SET status = $3,
               reviewed_by = $4,
               reviewed_at = $5,
               updated_at = $5
         WHERE id = $1 AND status = $2
        RETURNING `+leaveColumns,
		id,
		string(change.From),
		string(change.To),
		nullableString(change.ReviewedBy),
		change.At,
	)

	updated, err := scanLeave(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, leave.ErrLeaveRequestNotFound) {
		return nil, translateLeavePgError(err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leave_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, translateLeavePgError(err)
	}
	if exists {
		return nil, leave.ErrStatusConflict
	}
	return nil, leave.ErrLeaveRequestNotFound
}

func scanLeave(row pgx.Row) (*leave.Request, error) {
	var (
		req        leave.Request
		leaveType  string
		status     string
		days       sql.NullInt32
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
	)
	if err := row.Scan(
		&req.ID,
		&req.EmployeeID,
		&leaveType,
		&req.StartDate,
		&req.EndDate,
		&days,
		&req.Reason,
		&status,
		&reviewedBy,
		&reviewedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, leave.ErrLeaveRequestNotFound
		}
		return nil, err
	}

	req.Type = leave.Type(leaveType)
	req.Status = leave.Status(status)
	req.StartDate = dateOnly(req.StartDate)
	req.EndDate = dateOnly(req.EndDate)
	if days.Valid {
		d := int(days.Int32)
		req.Days = &d
	}
	if reviewedBy.Valid {
		req.ReviewedBy = reviewedBy.String
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		req.ReviewedAt = &t
	}
	return &req, nil
}

func translateLeavePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.ErrLeaveRequestNotFound
	}
	if code, constraint, ok := pgErrorCode(err); ok && code == checkViolationCode && constraint == "leave_requests_dates_check" {
		return leave.ErrInvalidDateRange
	}
	return err
}
