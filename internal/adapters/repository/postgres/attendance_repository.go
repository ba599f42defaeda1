package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/attendance"
	pgdb "github.com/ogurasousui/hr-lifecycle-engine/internal/platform/db/postgres"
)

const (
	attendanceColumns = `id, employee_id, work_date, clock_in, clock_out, status, notes, created_at, updated_at`

	attendanceEmployeeDayConstraint = "attendance_records_employee_day_key"
)

// AttendanceRepository は PostgreSQL を利用した勤怠記録永続化の実装です。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create は勤怠記録を追加します。(employee_id, work_date) の一意制約が二重出勤を防ぎます。
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO attendance_records (`+attendanceColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+attendanceColumns,
		rec.ID,
		rec.EmployeeID,
		dateOnly(rec.WorkDate),
		rec.ClockIn,
		nullableTime(rec.ClockOut),
		string(rec.Status),
		rec.Notes,
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	created, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return created, nil
}

// FindByEmployeeAndDate は社員と勤務日で勤怠記録を取得します。
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*attendance.Record, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendance_records
         WHERE employee_id = $1 AND work_date = $2
    `, employeeID, dateOnly(workDate))

	found, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return found, nil
}

// CloseSession は退勤が未記録の場合のみ退勤時刻とメモを書き込みます。
func (r *AttendanceRepository) CloseSession(ctx context.Context, id string, clockOut time.Time, notes string) (*attendance.Record, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE attendance_records
           SET clock_out = $2,
               notes = $3,
               updated_at = $2
         WHERE id = $1 AND clock_out IS NULL
        RETURNING `+attendanceColumns,
		id, clockOut, notes,
	)

	closed, err := scanAttendance(row)
	if err == nil {
		return closed, nil
	}
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		return nil, translateAttendancePgError(err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attendance_records WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, translateAttendancePgError(err)
	}
	if exists {
		return nil, attendance.ErrNoOpenSession
	}
	return nil, attendance.ErrRecordNotFound
}

func scanAttendance(row pgx.Row) (*attendance.Record, error) {
	var (
		rec      attendance.Record
		clockOut sql.NullTime
		status   string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.WorkDate,
		&rec.ClockIn,
		&clockOut,
		&status,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}

	rec.WorkDate = dateOnly(rec.WorkDate)
	rec.Status = attendance.Status(status)
	if clockOut.Valid {
		t := clockOut.Time
		rec.ClockOut = &t
	}
	return &rec, nil
}

func translateAttendancePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.ErrRecordNotFound
	}
	if code, constraint, ok := pgErrorCode(err); ok && code == uniqueViolationCode && constraint == attendanceEmployeeDayConstraint {
		return attendance.ErrAlreadyClockedIn
	}
	return err
}
