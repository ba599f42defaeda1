package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/saga"
)

// ReinstateEmployee はアーカイブ済み社員を在籍に戻します。
// 休暇残日数は 0、ログインは無効の状態で、元の社員 ID のまま再登録されます。
func (s *Service) ReinstateEmployee(ctx context.Context, in ReinstateEmployeeInput) (*employee.Employee, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		now        = s.clock.Now()
		archived   *employee.ArchivedEmployee
		reinstated *employee.Employee
	)

	run := saga.New("employee_reinstatement", s.logger).
		WithGuard(func(ctx context.Context) (saga.Decision, error) {
			found, err := s.repos.Archives.FindByID(ctx, in.ArchivedEmployeeID)
			if err != nil {
				return saga.Proceed, err
			}
			_, err = s.repos.Employees.FindByID(ctx, found.EmployeeID)
			switch {
			case err == nil:
				return saga.Proceed, fmt.Errorf("%w: %s", ErrAlreadyActive, found.EmployeeID)
			case !errors.Is(err, employee.ErrEmployeeNotFound):
				return saga.Proceed, err
			}
			archived = found
			return saga.Proceed, nil
		}).
		Step("insert_active_employee", func(ctx context.Context) error {
			created, err := s.repos.Employees.Create(ctx, employee.Rehire(archived, s.today(now), now))
			if err != nil {
				return err
			}
			reinstated = created
			return nil
		}, func(ctx context.Context) error {
			return s.repos.Employees.Delete(ctx, archived.EmployeeID)
		}).
		Step("delete_archive", func(ctx context.Context) error {
			return s.repos.Archives.Delete(ctx, archived.ID)
		}, nil)

	if _, err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notification.Event{
		Type:    notification.TypeEmployeeReinstated,
		Title:   "Employee reinstated",
		Message: fmt.Sprintf("%s (%s) has been reinstated. Login stays disabled until re-enabled.", reinstated.Name, reinstated.EmployeeCode),
		Payload: map[string]any{
			"employee_id":          reinstated.ID,
			"archived_employee_id": archived.ID,
			"reinstated_by":        in.ActorID,
		},
		Audience: notification.Audience{Managers: true, Admins: true, ExcludeActor: in.ActorID},
	})

	return reinstated, nil
}

// PurgeArchivedEmployee はアーカイブ行を完全に削除します。元に戻すことはできません。
func (s *Service) PurgeArchivedEmployee(ctx context.Context, in PurgeArchivedEmployeeInput) error {
	if err := validate(&in); err != nil {
		return err
	}

	var archived *employee.ArchivedEmployee
	run := saga.New("archive_purge", s.logger).
		WithGuard(func(ctx context.Context) (saga.Decision, error) {
			found, err := s.repos.Archives.FindByID(ctx, in.ArchivedEmployeeID)
			if err != nil {
				return saga.Proceed, err
			}
			archived = found
			return saga.Proceed, nil
		}).
		Step("delete_archive", func(ctx context.Context) error {
			return s.repos.Archives.Delete(ctx, archived.ID)
		}, nil)

	if _, err := run.Run(ctx); err != nil {
		return err
	}

	s.logger.Info().
		Str("archived_employee_id", archived.ID).
		Str("employee_id", archived.EmployeeID).
		Str("actor_id", in.ActorID).
		Msg("archived employee purged")
	return nil
}
