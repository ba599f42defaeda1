package attendance

import (
	"context"
	"time"
)

// Repository は勤怠記録永続化の抽象です。
type Repository interface {
	// Create は記録を追加します。同じ社員・日付の記録が既にあれば ErrAlreadyClockedIn を返します。
	Create(ctx context.Context, record *Record) (*Record, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*Record, error)
	// CloseSession は退勤が未記録の場合のみ退勤時刻とメモを更新し、そうでなければ ErrNoOpenSession を返します。
	CloseSession(ctx context.Context, id string, clockOut time.Time, notes string) (*Record, error)
}
