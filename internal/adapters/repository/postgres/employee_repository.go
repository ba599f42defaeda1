package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	pgdb "github.com/ogurasousui/hr-lifecycle-engine/internal/platform/db/postgres"
)

const employeeColumns = `id, employee_code, name, email, phone, department, position, base_salary, allowance,
               leave_balance, login_enabled, is_manager, join_date, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した在籍社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を登録します。ID は呼び出し側が指定します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO employees (`+employeeColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING `+employeeColumns,
		e.ID,
		e.EmployeeCode,
		e.Name,
		e.Email,
		e.Phone,
		e.Department,
		e.Position,
		e.BaseSalary,
		e.Allowance,
		e.LeaveBalance,
		e.LoginEnabled,
		e.IsManager,
		dateOnly(e.JoinDate),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// UpdateLeaveBalance は残日数が expected の場合のみ next に更新します。
func (r *EmployeeRepository) UpdateLeaveBalance(ctx context.Context, id string, expected, next int, updatedAt time.Time) (*employee.Employee, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE employees
           SET leave_balance = $3,
               updated_at = $4
         WHERE id = $1 AND leave_balance = $2
        RETURNING `+employeeColumns,
		id, expected, next, updatedAt,
	)

	updated, err := scanEmployee(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		return nil, translateEmployeePgError(err)
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, employee.ErrBalanceConflict
	}
	return nil, employee.ErrEmployeeNotFound
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, translateEmployeePgError(err)
	}
	return exists, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var e employee.Employee
	if err := row.Scan(
		&e.ID,
		&e.EmployeeCode,
		&e.Name,
		&e.Email,
		&e.Phone,
		&e.Department,
		&e.Position,
		&e.BaseSalary,
		&e.Allowance,
		&e.LeaveBalance,
		&e.LoginEnabled,
		&e.IsManager,
		&e.JoinDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	e.JoinDate = dateOnly(e.JoinDate)
	return &e, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	if code, constraint, ok := pgErrorCode(err); ok {
		switch code {
		case uniqueViolationCode:
			if constraint == "employees_employee_code_key" {
				return employee.ErrEmployeeCodeAlreadyExists
			}
			return employee.ErrEmployeeAlreadyExists
		case checkViolationCode:
			return employee.ErrInvalidLeaveBalance
		}
	}

	return err
}
