package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
)

type stubRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

var employeeRowColumns = []string{
	"id", "employee_code", "name", "email", "phone", "department", "position", "base_salary", "allowance",
	"leave_balance", "login_enabled", "is_manager", "join_date", "created_at", "updated_at",
}

func TestScanEmployee_NormalizesJoinDate(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()
	joined := time.Date(2021, 4, 1, 0, 0, 0, 0, time.FixedZone("JST", 9*60*60))

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 15 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "e-001"
		*(dest[2].(*string)) = "Taro Yamada"
		*(dest[3].(*string)) = "taro@example.com"
		*(dest[7].(*int64)) = 300000
		*(dest[9].(*int)) = 12
		*(dest[10].(*bool)) = true
		*(dest[12].(*time.Time)) = joined
		*(dest[13].(*time.Time)) = createdAt
		*(dest[14].(*time.Time)) = createdAt
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}
	if emp.ID != "emp-1" || emp.BaseSalary != 300000 || emp.LeaveBalance != 12 || !emp.LoginEnabled {
		t.Fatalf("unexpected employee %+v", emp)
	}
	if !emp.JoinDate.Equal(time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected join date normalized to UTC day, got %v", emp.JoinDate)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanEmployee(row); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	codeErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_employee_code_key"}
	if !errors.Is(translateEmployeePgError(codeErr), employee.ErrEmployeeCodeAlreadyExists) {
		t.Fatalf("expected code unique violation to map to ErrEmployeeCodeAlreadyExists")
	}

	pkErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_pkey"}
	if !errors.Is(translateEmployeePgError(pkErr), employee.ErrEmployeeAlreadyExists) {
		t.Fatalf("expected primary key violation to map to ErrEmployeeAlreadyExists")
	}

	checkErr := &pgconn.PgError{Code: checkViolationCode}
	if !errors.Is(translateEmployeePgError(checkErr), employee.ErrInvalidLeaveBalance) {
		t.Fatalf("expected check violation to map to ErrInvalidLeaveBalance")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeRepository_UpdateLeaveBalance(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	joined := time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		updatedRows *pgxmock.Rows
		exists      *bool
		wantErr     error
		wantBalance int
	}{
		{
			name: "success",
			updatedRows: pgxmock.NewRows(employeeRowColumns).
				AddRow("emp-1", "e-001", "Taro", "taro@example.com", "", "eng", "dev", int64(300000), int64(0), 7, true, false, joined, now, now),
			wantBalance: 7,
		},
		{
			name:        "balance moved",
			updatedRows: pgxmock.NewRows(employeeRowColumns),
			exists:      ptr(true),
			wantErr:     employee.ErrBalanceConflict,
		},
		{
			name:        "employee missing",
			updatedRows: pgxmock.NewRows(employeeRowColumns),
			exists:      ptr(false),
			wantErr:     employee.ErrEmployeeNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock pool: %v", err)
			}
			defer mock.Close()

			mock.ExpectQuery(regexp.QuoteMeta(`UPDATE employees`)).
				WithArgs("emp-1", 10, 7, now).
				WillReturnRows(tt.updatedRows)
			if tt.exists != nil {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`)).
					WithArgs("emp-1").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(*tt.exists))
			}

			repo := NewEmployeeRepository(mock)
			updated, err := repo.UpdateLeaveBalance(context.Background(), "emp-1", 10, 7, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("UpdateLeaveBalance returned error: %v", err)
				}
				if updated.LeaveBalance != tt.wantBalance {
					t.Fatalf("expected balance %d, got %d", tt.wantBalance, updated.LeaveBalance)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestEmployeeRepository_Delete_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM employees WHERE id = $1`)).
		WithArgs("emp-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewEmployeeRepository(mock)
	if err := repo.Delete(context.Background(), "emp-1"); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
