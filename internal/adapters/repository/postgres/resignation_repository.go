package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/resignation"
	pgdb "github.com/ogurasousui/hr-lifecycle-engine/internal/platform/db/postgres"
)

const resignationColumns = `id, employee_id, resignation_date, last_working_date, reason, status,
               reviewed_by, reviewed_at, created_at, updated_at`

// ResignationRepository は PostgreSQL を利用した退職申請永続化の実装です。
type ResignationRepository struct {
	pool pgdb.Queryer
}

// NewResignationRepository は ResignationRepository を生成します。
func NewResignationRepository(pool pgdb.Queryer) *ResignationRepository {
	return &ResignationRepository{pool: pool}
}

// Create は退職申請を登録します。
func (r *ResignationRepository) Create(ctx context.Context, res *resignation.Resignation) (*resignation.Resignation, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO resignations (`+resignationColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+resignationColumns,
		res.ID,
		res.EmployeeID,
		dateOnly(res.ResignationDate),
		dateOnly(res.LastWorkingDate),
		res.Reason,
		string(res.Status),
		nullableString(res.ReviewedBy),
		nullableTime(res.ReviewedAt),
		res.CreatedAt,
		res.UpdatedAt,
	)

	created, err := scanResignation(row)
	if err != nil {
		return nil, translateResignationPgError(err)
	}
	return created, nil
}

// FindByID は ID で退職申請を取得します。
func (r *ResignationRepository) FindByID(ctx context.Context, id string) (*resignation.Resignation, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+resignationColumns+`
          FROM resignations
         WHERE id = $1
    `, id)

	found, err := scanResignation(row)
	if err != nil {
		return nil, translateResignationPgError(err)
	}
	return found, nil
}

// UpdateStatus は現在の状態が change.From の場合のみ状態を更新します。
// ReviewedBy が空の場合は審査情報を消去します。
func (r *ResignationRepository) UpdateStatus(ctx context.Context, id string, change resignation.StatusChange) (*resignation.Resignation, error) {
	var reviewedAt any
	if change.ReviewedBy != "" {
		reviewedAt = change.At
	}

	row := r.pool.QueryRow(ctx, `
        UPDATE resignations
           SET status = $3,
               reviewed_by = $4,
               reviewed_at = $5,
               updated_at = $6
         WHERE id = $1 AND status = $2
        RETURNING `+resignationColumns,
		id,
		string(change.From),
		string(change.To),
		nullableString(change.ReviewedBy),
		reviewedAt,
		change.At,
	)

	updated, err := scanResignation(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, resignation.ErrResignationNotFound) {
		return nil, translateResignationPgError(err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM resignations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, translateResignationPgError(err)
	}
	if exists {
		return nil, resignation.ErrStatusConflict
	}
	return nil, resignation.ErrResignationNotFound
}

func scanResignation(row pgx.Row) (*resignation.Resignation, error) {
	var (
		res        resignation.Resignation
		status     string
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
	)
	if err := row.Scan(
		&res.ID,
		&res.EmployeeID,
		&res.ResignationDate,
		&res.LastWorkingDate,
		&res.Reason,
		&status,
		&reviewedBy,
		&reviewedAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resignation.ErrResignationNotFound
		}
		return nil, err
	}

	res.Status = resignation.Status(status)
	res.ResignationDate = dateOnly(res.ResignationDate)
	res.LastWorkingDate = dateOnly(res.LastWorkingDate)
	if reviewedBy.Valid {
		res.ReviewedBy = reviewedBy.String
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		res.ReviewedAt = &t
	}
	return &res, nil
}

func translateResignationPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return resignation.ErrResignationNotFound
	}
	if code, _, ok := pgErrorCode(err); ok && code == checkViolationCode {
		return resignation.ErrInvalidStatus
	}
	return err
}
