package lifecycle

import (
	"context"
	"fmt"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/leave"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/saga"
)

// ApproveLeave は休暇申請を承認し、日数分を休暇残日数から差し引きます。
// 残日数は 0 を下回りません。承認済みの申請は二重に差し引きません。
func (s *Service) ApproveLeave(ctx context.Context, in ApproveLeaveInput) (*LeaveApprovalResult, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		now     = s.clock.Now()
		request *leave.Request
		subject *employee.Employee
		next    int
		result  = &LeaveApprovalResult{}
	)

	run := saga.New("leave_approval", s.logger).
		WithGuard(func(ctx context.Context) (saga.Decision, error) {
			found, err := s.repos.Leaves.FindByID(ctx, in.LeaveRequestID)
			if err != nil {
				return saga.Proceed, err
			}

			switch found.Status {
			case leave.StatusApproved:
				result.Request = found
				result.AlreadyApproved = true
				emp, err := s.repos.Employees.FindByID(ctx, found.EmployeeID)
				if err != nil {
					s.logger.Warn().Err(err).
						Str("leave_request_id", found.ID).
						Str("employee_id", found.EmployeeID).
						Msg("approved leave request: remaining balance unavailable")
				} else {
					result.RemainingBalance = emp.LeaveBalance
				}
				return saga.AlreadyApplied, nil
			case leave.StatusPending:
			default:
				return saga.Proceed, fmt.Errorf("%w: leave request %s is %s", ErrInvalidTransition, found.ID, found.Status)
			}

			emp, err := s.repos.Employees.FindByID(ctx, found.EmployeeID)
			if err != nil {
				return saga.Proceed, err
			}
			request = found
			subject = emp
			result.DaysDeducted = deduction(found.EffectiveDays(), emp.LeaveBalance)
			next = emp.LeaveBalance - result.DaysDeducted
			return saga.Proceed, nil
		}).
		Step("deduct_leave_balance", func(ctx context.Context) error {
			updated, err := s.repos.Employees.UpdateLeaveBalance(ctx, subject.ID, subject.LeaveBalance, next, now)
			if err != nil {
				return err
			}
			result.RemainingBalance = updated.LeaveBalance
			return nil
		}, func(ctx context.Context) error {
			_, err := s.repos.Employees.UpdateLeaveBalance(ctx, subject.ID, next, subject.LeaveBalance, s.clock.Now())
			return err
		}).
		// 状態の確定は最後に行う。競合に負けた承認は自分の差し引きを戻して終わる。
		Step("approve_leave_request", func(ctx context.Context) error {
			updated, err := s.repos.Leaves.UpdateStatus(ctx, request.ID, leave.StatusChange{
				From:       leave.StatusPending,
				To:         leave.StatusApproved,
				ReviewedBy: in.ActorID,
				At:         now,
			})
			if err != nil {
				return err
			}
			result.Request = updated
			return nil
		}, nil)

	outcome, err := run.Run(ctx)
	if err != nil {
		return nil, err
	}
	if outcome.ShortCircuited {
		return result, nil
	}

	s.notifier.Publish(ctx, notification.Event{
		Type:  notification.TypeLeaveApproved,
		Title: "Leave approved",
		Message: fmt.Sprintf("Your %s leave from %s to %s was approved. Remaining balance: %d day(s).",
			request.Type, request.StartDate.Format(dateLayout), request.EndDate.Format(dateLayout), result.RemainingBalance),
		Payload: map[string]any{
			"leave_request_id":  request.ID,
			"days_deducted":     result.DaysDeducted,
			"remaining_balance": result.RemainingBalance,
			"approved_by":       in.ActorID,
		},
		Audience: notification.Audience{Subject: subject.ID},
	})

	return result, nil
}

// RejectLeave は保留中の休暇申請を却下します。休暇残日数は変わりません。
func (s *Service) RejectLeave(ctx context.Context, in RejectLeaveInput) (*leave.Request, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		now     = s.clock.Now()
		request *leave.Request
	)

	run := saga.New("leave_rejection", s.logger).
		WithGuard(func(ctx context.Context) (saga.Decision, error) {
			found, err := s.repos.Leaves.FindByID(ctx, in.LeaveRequestID)
			if err != nil {
				return saga.Proceed, err
			}
			request = found
			switch found.Status {
			case leave.StatusRejected:
				return saga.AlreadyApplied, nil
			case leave.StatusPending:
				return saga.Proceed, nil
			default:
				return saga.Proceed, fmt.Errorf("%w: leave request %s is %s", ErrInvalidTransition, found.ID, found.Status)
			}
		}).
		Step("reject_leave_request", func(ctx context.Context) error {
			updated, err := s.repos.Leaves.UpdateStatus(ctx, request.ID, leave.StatusChange{
				From:       leave.StatusPending,
				To:         leave.StatusRejected,
				ReviewedBy: in.ActorID,
				At:         now,
			})
			if err != nil {
				return err
			}
			request = updated
			return nil
		}, nil)

	outcome, err := run.Run(ctx)
	if err != nil {
		return nil, err
	}
	if outcome.ShortCircuited {
		return request, nil
	}

	s.notifier.Publish(ctx, notification.Event{
		Type:    notification.TypeLeaveRejected,
		Title:   "Leave rejected",
		Message: rejectionMessage(fmt.Sprintf("Your %s leave request", request.Type), in.Reason),
		Payload: map[string]any{
			"leave_request_id": request.ID,
			"rejected_by":      in.ActorID,
			"reason":           in.Reason,
		},
		Audience: notification.Audience{Subject: request.EmployeeID},
	})

	return request, nil
}

func deduction(days, balance int) int {
	if balance <= 0 || days <= 0 {
		return 0
	}
	return min(days, balance)
}
