package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/resignation"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/saga"
)

// ApproveResignation は退職申請を承認し、社員をアーカイブへ移して在籍一覧から外します。
// 承認済みの申請に対しては何も変更せず、保存済みの状態を返します。
func (s *Service) ApproveResignation(ctx context.Context, in ApproveResignationInput) (*ResignationApprovalResult, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		now       = s.clock.Now()
		archiveID = s.newID()
		current   *resignation.Resignation
		subject   *employee.Employee
		result    = &ResignationApprovalResult{}
	)

	run := saga.New("resignation_approval", s.logger).
		WithGuard(func(ctx context.Context) (saga.Decision, error) {
			found, err := s.repos.Resignations.FindByID(ctx, in.ResignationID)
			if err != nil {
				return saga.Proceed, err
			}

			switch {
			case found.Status.IsSettled():
				archived, err := s.repos.Archives.FindByResignationID(ctx, found.ID)
				if err != nil && !errors.Is(err, employee.ErrArchivedEmployeeNotFound) {
					return saga.Proceed, err
				}
				if archived == nil {
					s.logger.Warn().Str("resignation_id", found.ID).Msg("approved resignation has no archive row")
				}
				result.Resignation = found
				result.ArchivedEmployee = archived
				result.AlreadyApproved = true
				return saga.AlreadyApplied, nil
			case found.Status != resignation.StatusPending:
				return saga.Proceed, fmt.Errorf("%w: resignation %s is %s", ErrInvalidTransition, found.ID, found.Status)
			}

			emp, err := s.resignationSubject(ctx, found, in.Employee)
			if err != nil {
				return saga.Proceed, err
			}
			current = found
			subject = emp
			return saga.Proceed, nil
		}).
		Step("approve_resignation", func(ctx context.Context) error {
			updated, err := s.repos.Resignations.UpdateStatus(ctx, current.ID, resignation.StatusChange{
				From:       resignation.StatusPending,
				To:         resignation.StatusApproved,
				ReviewedBy: in.ActorID,
				At:         now,
			})
			if err != nil {
				return err
			}
			result.Resignation = updated
			return nil
		}, func(ctx context.Context) error {
			_, err := s.repos.Resignations.UpdateStatus(ctx, current.ID, resignation.StatusChange{
				From: resignation.StatusApproved,
				To:   resignation.StatusPending,
				At:   s.clock.Now(),
			})
			return err
		}).
		Step("archive_employee", func(ctx context.Context) error {
			archived := employee.Archive(archiveID, subject, employee.Departure{
				ResignationID:   current.ID,
				ResignationDate: current.ResignationDate,
				LastWorkingDate: current.LastWorkingDate,
				Reason:          current.Reason,
				Notes:           in.Notes,
				ArchivedBy:      in.ActorID,
			}, now)
			created, err := s.repos.Archives.Create(ctx, archived)
			if err != nil {
				return err
			}
			result.ArchivedEmployee = created
			return nil
		}, func(ctx context.Context) error {
			return s.repos.Archives.Delete(ctx, archiveID)
		}).
		Step("remove_active_employee", func(ctx context.Context) error {
			return s.repos.Employees.Delete(ctx, subject.ID)
		}, nil)

	outcome, err := run.Run(ctx)
	if err != nil {
		return nil, err
	}
	if outcome.ShortCircuited {
		return result, nil
	}

	s.notifier.Publish(ctx, notification.Event{
		Type:    notification.TypeResignationApproved,
		Title:   "Resignation approved",
		Message: fmt.Sprintf("%s (%s) has been archived. Last working day: %s.", subject.Name, subject.EmployeeCode, current.LastWorkingDate.Format(dateLayout)),
		Payload: map[string]any{
			"resignation_id":       current.ID,
			"employee_id":          subject.ID,
			"archived_employee_id": archiveID,
			"last_working_date":    current.LastWorkingDate.Format(dateLayout),
			"approved_by":          in.ActorID,
		},
		Audience: notification.Audience{Managers: true, Admins: true, ExcludeActor: in.ActorID},
	})

	return result, nil
}

// RejectResignation は保留中の退職申請を却下します。却下済みの申請に対しては何もしません。
func (s *Service) RejectResignation(ctx context.Context, in RejectResignationInput) (*resignation.Resignation, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		now     = s.clock.Now()
		current *resignation.Resignation
	)

	run := saga.New("resignation_rejection", s.logger).
		WithGuard(func(ctx context.Context) (saga.Decision, error) {
			found, err := s.repos.Resignations.FindByID(ctx, in.ResignationID)
			if err != nil {
				return saga.Proceed, err
			}
			current = found
			switch found.Status {
			case resignation.StatusRejected:
				return saga.AlreadyApplied, nil
			case resignation.StatusPending:
				return saga.Proceed, nil
			default:
				return saga.Proceed, fmt.Errorf("%w: resignation %s is %s", ErrInvalidTransition, found.ID, found.Status)
			}
		}).
		Step("reject_resignation", func(ctx context.Context) error {
			updated, err := s.repos.Resignations.UpdateStatus(ctx, current.ID, resignation.StatusChange{
				From:       resignation.StatusPending,
				To:         resignation.StatusRejected,
				ReviewedBy: in.ActorID,
				At:         now,
			})
			if err != nil {
				return err
			}
			current = updated
			return nil
		}, nil)

	outcome, err := run.Run(ctx)
	if err != nil {
		return nil, err
	}
	if outcome.ShortCircuited {
		return current, nil
	}

	s.notifier.Publish(ctx, notification.Event{
		Type:    notification.TypeResignationRejected,
		Title:   "Resignation rejected",
		Message: rejectionMessage("Your resignation request", in.Reason),
		Payload: map[string]any{
			"resignation_id": current.ID,
			"rejected_by":    in.ActorID,
			"reason":         in.Reason,
		},
		Audience: notification.Audience{Subject: current.EmployeeID},
	})

	return current, nil
}

func (s *Service) resignationSubject(ctx context.Context, r *resignation.Resignation, provided *employee.Employee) (*employee.Employee, error) {
	if provided == nil {
		return s.repos.Employees.FindByID(ctx, r.EmployeeID)
	}
	if provided.ID != r.EmployeeID {
		return nil, fmt.Errorf("%w: resignation %s belongs to %s, got %s", ErrEmployeeMismatch, r.ID, r.EmployeeID, provided.ID)
	}
	return provided.Clone(), nil
}
