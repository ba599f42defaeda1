// Package app はリポジトリ・通知・ユースケース・gRPC ハンドラを組み立てます。
package app

import (
	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/adapters/grpc/handler"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/lifecycle"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/core/notification"
	"github.com/ogurasousui/hr-lifecycle-engine/internal/platform/config"
	pgdb "github.com/ogurasousui/hr-lifecycle-engine/internal/platform/db/postgres"
)

// App は起動時に組み立てる依存関係の集合です。
type App struct {
	Lifecycle     *lifecycle.Service
	Notifications *postgres.NotificationRepository
	FanOut        *notification.FanOut
	Handler       *handler.LifecycleGrpcHandler
}

// New は DB 接続と設定から App を組み立てます。
func New(db pgdb.Queryer, cfg *config.Config, logger zerolog.Logger) *App {
	notifications := postgres.NewNotificationRepository(db)
	fanOut := notification.NewFanOut(
		notifications,
		postgres.NewRecipientResolver(db),
		logger.With().Str("component", "notification").Logger(),
		notification.Options{
			Async:       cfg.Notification.Async,
			Concurrency: cfg.Notification.Concurrency,
			Timeout:     cfg.Notification.Timeout,
		},
	)

	svc := lifecycle.NewService(lifecycle.Repositories{
		Employees:    postgres.NewEmployeeRepository(db),
		Archives:     postgres.NewArchiveRepository(db),
		Resignations: postgres.NewResignationRepository(db),
		Leaves:       postgres.NewLeaveRepository(db),
		Attendance:   postgres.NewAttendanceRepository(db),
	}, lifecycle.Options{
		Notifier: fanOut,
		Logger:   &logger,
		Location: cfg.Attendance.Location,
	})

	return &App{
		Lifecycle:     svc,
		Notifications: notifications,
		FanOut:        fanOut,
		Handler:       handler.NewLifecycleGrpcHandler(svc, notifications),
	}
}

// Close は非同期配信中の通知を待ちます。
func (a *App) Close() {
	a.FanOut.Wait()
}
