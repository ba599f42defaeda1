package saga

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

type compensation struct {
	step string
	fn   func(ctx context.Context) error
}

// CompensationLog は完了した手順の取り消し処理を実行順に記録します。
type CompensationLog struct {
	entries []compensation
	logger  zerolog.Logger
}

// NewCompensationLog は空の CompensationLog を生成します。
func NewCompensationLog(logger zerolog.Logger) *CompensationLog {
	return &CompensationLog{logger: logger}
}

// Push は手順の補償を記録します。fn が nil の場合は何もしません。
func (l *CompensationLog) Push(step string, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	l.entries = append(l.entries, compensation{step: step, fn: fn})
}

// Len は未実行の補償数を返します。
func (l *CompensationLog) Len() int {
	return len(l.entries)
}

// Drain は記録した補償を後ろから順に全て実行し、ログを空にします。
// 途中の補償が失敗しても残りは実行し、失敗はまとめて返します。
func (l *CompensationLog) Drain(ctx context.Context) error {
	var result *multierror.Error
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if err := entry.fn(ctx); err != nil {
			l.logger.Error().Err(err).Str("step", entry.step).Msg("saga: compensation failed")
			result = multierror.Append(result, fmt.Errorf("compensate %s: %w", entry.step, err))
			continue
		}
		l.logger.Debug().Str("step", entry.step).Msg("saga: compensated")
	}
	l.entries = nil
	return result.ErrorOrNil()
}
