package models

import "time"

// RateLimitStatus результат проверки дневного лимита генераций.
type RateLimitStatus struct {
	Allowed      bool
	Remaining    int
	CurrentCount int
	Limit        int
	ResetAt      time.Time
}

// DayKey форматирует UTC-дату счетчика.
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// NextUTCMidnight возвращает начало следующих UTC-суток.
func NextUTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
