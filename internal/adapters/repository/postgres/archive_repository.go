package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	pgdb "github.com/ogurasousui/hr-lifecycle-engine/internal/platform/db/postgres"
)

const archiveColumns = `id, employee_id, snapshot, resignation_id, resignation_date, last_working_date,
               resignation_reason, notes, archived_by, archived_at`

// snapshotDocument は archived_employees.snapshot に保存する JSON 文書です。
type snapshotDocument struct {
	ID           string    `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Department   string    `json:"department,omitempty"`
	Position     string    `json:"position,omitempty"`
	BaseSalary   int64     `json:"base_salary"`
	Allowance    int64     `json:"allowance"`
	LeaveBalance int       `json:"leave_balance"`
	LoginEnabled bool      `json:"login_enabled"`
	IsManager    bool      `json:"is_manager"`
	JoinDate     string    `json:"join_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newSnapshotDocument(e employee.Employee) snapshotDocument {
	return snapshotDocument{
		ID:           e.ID,
		EmployeeCode: e.EmployeeCode,
		Name:         e.Name,
		Email:        e.Email,
		Phone:        e.Phone,
		Department:   e.Department,
		Position:     e.Position,
		BaseSalary:   e.BaseSalary,
		Allowance:    e.Allowance,
		LeaveBalance: e.LeaveBalance,
		LoginEnabled: e.LoginEnabled,
		IsManager:    e.IsManager,
		JoinDate:     e.JoinDate.Format(time.DateOnly),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (d snapshotDocument) employee() (employee.Employee, error) {
	var join time.Time
	if d.JoinDate != "" {
		parsed, err := time.Parse(time.DateOnly, d.JoinDate)
		if err != nil {
			return employee.Employee{}, err
		}
		join = parsed
	}
	return employee.Employee{
		ID:           d.ID,
		EmployeeCode: d.EmployeeCode,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Department:   d.Department,
		Position:     d.Position,
		BaseSalary:   d.BaseSalary,
		Allowance:    d.Allowance,
		LeaveBalance: d.LeaveBalance,
		LoginEnabled: d.LoginEnabled,
		IsManager:    d.IsManager,
		JoinDate:     join,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// ArchiveRepository は PostgreSQL を利用した退職アーカイブ永続化の実装です。
type ArchiveRepository struct {
	pool pgdb.Queryer
}

// NewArchiveRepository は ArchiveRepository を生成します。
func NewArchiveRepository(pool pgdb.Queryer) *ArchiveRepository {
	return &ArchiveRepository{pool: pool}
}

// Create はアーカイブ行を追加します。
func (r *ArchiveRepository) Create(ctx context.Context, a *employee.ArchivedEmployee) (*employee.ArchivedEmployee, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO archived_employees (`+archiveColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+archiveColumns,
		a.ID,
		a.EmployeeID,
		newSnapshotDocument(a.Snapshot),
		a.ResignationID,
		dateOnly(a.ResignationDate),
		dateOnly(a.LastWorkingDate),
		a.ResignationReason,
		a.Notes,
		a.ArchivedBy,
		a.ArchivedAt,
	)

	created, err := scanArchive(row)
	if err != nil {
		return nil, translateArchivePgError(err)
	}
	return created, nil
}

// FindByID は ID でアーカイブ行を取得します。
func (r *ArchiveRepository) FindByID(ctx context.Context, id string) (*employee.ArchivedEmployee, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+archiveColumns+`
          FROM archived_employees
         WHERE id = $1
    `, id)

	found, err := scanArchive(row)
	if err != nil {
		return nil, translateArchivePgError(err)
	}
	return found, nil
}

// FindByResignationID は退職申請 ID でアーカイブ行を取得します。
func (r *ArchiveRepository) FindByResignationID(ctx context.Context, resignationID string) (*employee.ArchivedEmployee, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+archiveColumns+`
          FROM archived_employees
         WHERE resignation_id = $1
    `, resignationID)

	found, err := scanArchive(row)
	if err != nil {
		return nil, translateArchivePgError(err)
	}
	return found, nil
}

// Delete はアーカイブ行を削除します。
func (r *ArchiveRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM archived_employees WHERE id = $1`, id)
	if err != nil {
		return translateArchivePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrArchivedEmployeeNotFound
	}
	return nil
}

func scanArchive(row pgx.Row) (*employee.ArchivedEmployee, error) {
	var (
		a   employee.ArchivedEmployee
		doc snapshotDocument
	)
	if err := row.Scan(
		&a.ID,
		&a.EmployeeID,
		&doc,
		&a.ResignationID,
		&a.ResignationDate,
		&a.LastWorkingDate,
		&a.ResignationReason,
		&a.Notes,
		&a.ArchivedBy,
		&a.ArchivedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrArchivedEmployeeNotFound
		}
		return nil, err
	}

	snapshot, err := doc.employee()
	if err != nil {
		return nil, err
	}
	a.Snapshot = snapshot
	a.ResignationDate = dateOnly(a.ResignationDate)
	a.LastWorkingDate = dateOnly(a.LastWorkingDate)
	return &a, nil
}

func translateArchivePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrArchivedEmployeeNotFound
	}
	if code, _, ok := pgErrorCode(err); ok && code == uniqueViolationCode {
		return employee.ErrArchiveAlreadyExists
	}
	return err
}
