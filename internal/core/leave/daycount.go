package leave

import "time"

const day = 24 * time.Hour

// DayCount は両端を含む暦日数を返します。引数の順序には依存しません。
func DayCount(start, end time.Time) int {
	s := calendarDate(start)
	e := calendarDate(end)
	if e.Before(s) {
		s, e = e, s
	}
	return int(e.Sub(s)/day) + 1
}

// calendarDate は時刻のタイムゾーン上の日付を UTC の 0 時として返します。夏時間の影響を避けるためです。
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
