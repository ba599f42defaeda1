package saga

import (
	"errors"
	"fmt"
)

var (
	// ErrCompensated は失敗した saga の完了済み手順が全て取り消されたことを示します。
	ErrCompensated = errors.New("saga: rolled back")
	// ErrManualIntervention は補償が失敗し、ストアが不整合な可能性があることを示します。
	ErrManualIntervention = errors.New("saga: manual intervention required")
)

// Error は手順の失敗を表します。Cause が常に呼び出し元に見える主エラーです。
type Error struct {
	Saga            string
	Step            string
	Cause           error
	CompensationErr error
}

func (e *Error) Error() string {
	if e.CompensationErr != nil {
		return fmt.Sprintf("saga %s: step %s: %v (manual intervention required: %v)", e.Saga, e.Step, e.Cause, e.CompensationErr)
	}
	return fmt.Sprintf("saga %s: step %s: %v", e.Saga, e.Step, e.Cause)
}

// Unwrap は主エラーと結果種別の番兵エラーを返します。
func (e *Error) Unwrap() []error {
	kind := ErrCompensated
	if e.CompensationErr != nil {
		kind = ErrManualIntervention
	}
	return []error{e.Cause, kind}
}

// RequiresManualIntervention は補償失敗があったかどうかを返します。
func (e *Error) RequiresManualIntervention() bool {
	return e.CompensationErr != nil
}
