package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/attendance"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/saga"
)

// ClockIn は今日の勤怠記録を開きます。1 日に開ける記録は 1 件だけです。
func (s *Service) ClockIn(ctx context.Context, in ClockInInput) (*attendance.Record, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		now     = s.clock.Now()
		today   = s.today(now)
		created *attendance.Record
	)

	run := saga.New("attendance_clock_in", s.logger).
		WithGuard(func(ctx context.Context) (saga.Decision, error) {
			if _, err := s.repos.Employees.FindByID(ctx, in.EmployeeID); err != nil {
				return saga.Proceed, err
			}
			existing, err := s.repos.Attendance.FindByEmployeeAndDate(ctx, in.EmployeeID, today)
			switch {
			case err == nil:
				return saga.Proceed, fmt.Errorf("%w: record %s", attendance.ErrAlreadyClockedIn, existing.ID)
			case errors.Is(err, attendance.ErrRecordNotFound):
				return saga.Proceed, nil
			default:
				return saga.Proceed, err
			}
		}).
		Step("open_attendance_session", func(ctx context.Context) error {
			record, err := s.repos.Attendance.Create(ctx, &attendance.Record{
				ID:         s.newID(),
				EmployeeID: in.EmployeeID,
				WorkDate:   today,
				ClockIn:    now,
				Status:     attendance.StatusPresent,
				Notes:      attendance.AppendNote(in.Notes, locationNote("clock-in", in.Location)),
				CreatedAt:  now,
				UpdatedAt:  now,
			})
			if err != nil {
				return err
			}
			created = record
			return nil
		}, nil)

	if _, err := run.Run(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// ClockOut は今日開いている勤怠記録を閉じます。
func (s *Service) ClockOut(ctx context.Context, in ClockOutInput) (*attendance.Record, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		now    = s.clock.Now()
		today  = s.today(now)
		open   *attendance.Record
		closed *attendance.Record
	)

	run := saga.New("attendance_clock_out", s.logger).
		WithGuard(func(ctx context.Context) (saga.Decision, error) {
			record, err := s.repos.Attendance.FindByEmployeeAndDate(ctx, in.EmployeeID, today)
			switch {
			case errors.Is(err, attendance.ErrRecordNotFound):
				return saga.Proceed, fmt.Errorf("%w: no record for %s", attendance.ErrNoOpenSession, today.Format(dateLayout))
			case err != nil:
				return saga.Proceed, err
			case !record.IsOpen():
				return saga.Proceed, fmt.Errorf("%w: record %s already closed", attendance.ErrNoOpenSession, record.ID)
			}
			open = record
			return saga.Proceed, nil
		}).
		Step("close_attendance_session", func(ctx context.Context) error {
			notes := attendance.AppendNote(open.Notes, locationNote("clock-out", in.Location))
			record, err := s.repos.Attendance.CloseSession(ctx, open.ID, now, notes)
			if err != nil {
				return err
			}
			closed = record
			return nil
		}, nil)

	if _, err := run.Run(ctx); err != nil {
		return nil, err
	}
	return closed, nil
}

func locationNote(label string, loc *attendance.Location) string {
	if loc == nil {
		return ""
	}
	note := fmt.Sprintf("%s location: %.6f,%.6f", label, loc.Latitude, loc.Longitude)
	if loc.Label != "" {
		note += " (" + loc.Label + ")"
	}
	return note
}
