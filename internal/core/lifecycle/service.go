// Package lifecycle は退職承認・再雇用・休暇承認・勤怠打刻の遷移を saga として実行します。
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/attendance"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/employee"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/leave"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/resignation"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Notifier は確定した遷移の通知を配信します。失敗を呼び出し元に返してはいけません。
type Notifier interface {
	Publish(ctx context.Context, ev notification.Event)
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, notification.Event) {}

// Repositories は saga が操作するエンティティストアの集合です。
type Repositories struct {
	Employees    employee.Repository
	Archives     employee.ArchiveRepository
	Resignations resignation.Repository
	Leaves       leave.Repository
	Attendance   attendance.Repository
}

// Options は Service の任意設定です。
type Options struct {
	Clock    Clock
	Notifier Notifier
	Logger   *zerolog.Logger
	// Location は勤怠の「今日」を決めるタイムゾーンです。nil の場合は UTC を使います。
	Location *time.Location
	// NewID は新規行の ID を採番します。nil の場合は UUID を使います。
	NewID func() string
}

// Service は社員ライフサイクル遷移のユースケースをまとめます。
type Service struct {
	repos    Repositories
	clock    Clock
	notifier Notifier
	logger   zerolog.Logger
	loc      *time.Location
	newID    func() string
}

// UseCase は遷移エンジンの公開インターフェースです。
type UseCase interface {
	ApproveResignation(ctx context.Context, in ApproveResignationInput) (*ResignationApprovalResult, error)
	RejectResignation(ctx context.Context, in RejectResignationInput) (*resignation.Resignation, error)
	ReinstateEmployee(ctx context.Context, in ReinstateEmployeeInput) (*employee.Employee, error)
	PurgeArchivedEmployee(ctx context.Context, in PurgeArchivedEmployeeInput) error
	ApproveLeave(ctx context.Context, in ApproveLeaveInput) (*LeaveApprovalResult, error)
	RejectLeave(ctx context.Context, in RejectLeaveInput) (*leave.Request, error)
	ClockIn(ctx context.Context, in ClockInInput) (*attendance.Record, error)
	ClockOut(ctx context.Context, in ClockOutInput) (*attendance.Record, error)
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。
func NewService(repos Repositories, opts Options) *Service {
	s := &Service{
		repos:    repos,
		clock:    opts.Clock,
		notifier: opts.Notifier,
		loc:      opts.Location,
		newID:    opts.NewID,
		logger:   zerolog.Nop(),
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "lifecycle").Logger()
	}
	return s
}

// today は設定タイムゾーンでの今日の日付を返します。
func (s *Service) today(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

const dateLayout = "2006-01-02"

func rejectionMessage(subject, reason string) string {
	if reason == "" {
		return subject + " was rejected."
	}
	return subject + " was rejected: " + reason
}
