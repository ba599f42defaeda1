// Package saga は複数行トランザクションを持たないストアの上で、
// 複数エンティティにまたがる遷移を補償付きの手順列として実行します。
package saga

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Decision はガードの判定結果です。
type Decision int

const (
	// Proceed は手順の実行を続けます。
	Proceed Decision = iota
	// AlreadyApplied は効果が適用済みであることを示し、saga は何もせず成功します。
	AlreadyApplied
)

// Guard は最初の変更手順の直前に評価される前提条件チェックです。
// エラーを返した場合は一切の変更を行わずにそのエラーを返します。
type Guard func(ctx context.Context) (Decision, error)

// Step は saga の 1 手順です。Compensate が nil の手順は取り消しできません。
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Outcome は saga 実行の結果です。
type Outcome struct {
	RunID          string
	ShortCircuited bool
	Completed      []string
}

// Saga は順序付きの手順と補償を保持します。
type Saga struct {
	name   string
	guard  Guard
	steps  []Step
	logger zerolog.Logger
}

// New は Saga を生成します。
func New(name string, logger zerolog.Logger) *Saga {
	return &Saga{name: name, logger: logger}
}

// Name は saga の名前を返します。
func (s *Saga) Name() string {
	return s.name
}

// WithGuard はガードを設定します。
func (s *Saga) WithGuard(guard Guard) *Saga {
	s.guard = guard
	return s
}

// Step は手順を末尾に追加します。
func (s *Saga) Step(name string, execute, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Execute: execute, Compensate: compensate})
	return s
}

// Len は登録済みの手順数を返します。
func (s *Saga) Len() int {
	return len(s.steps)
}

// Run はガードを評価し、手順を順に実行します。
// 手順が失敗すると完了済み手順の補償を逆順に実行し、元のエラーを *Error に包んで返します。
// 最初の手順を開始した後は呼び出し元のキャンセルを無視し、成功か補償完了まで走り切ります。
func (s *Saga) Run(ctx context.Context) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString()}
	logger := s.logger.With().Str("saga", s.name).Str("run_id", out.RunID).Logger()

	for _, step := range s.steps {
		if step.Execute == nil {
			return out, fmt.Errorf("saga %s: step %q has no action", s.name, step.Name)
		}
	}

	if s.guard != nil {
		decision, err := s.guard(ctx)
		if err != nil {
			logger.Debug().Err(err).Msg("saga: precondition rejected")
			return out, err
		}
		if decision == AlreadyApplied {
			out.ShortCircuited = true
			logger.Info().Msg("saga: already applied, skipping")
			return out, nil
		}
	}

	runCtx := context.WithoutCancel(ctx)
	compensations := NewCompensationLog(logger)

	for _, step := range s.steps {
		if err := step.Execute(runCtx); err != nil {
			logger.Warn().Err(err).Str("step", step.Name).Int("compensations", compensations.Len()).Msg("saga: step failed, compensating")
			compErr := compensations.Drain(runCtx)
			return out, &Error{Saga: s.name, Step: step.Name, Cause: err, CompensationErr: compErr}
		}

		out.Completed = append(out.Completed, step.Name)
		compensations.Push(step.Name, step.Compensate)
	}

	logger.Info().Strs("steps", out.Completed).Msg("saga: completed")
	return out, nil
}
