package utils

import "time"

func FromUTCToTimezone(utcTime time.Time, timezone string) time.Time {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return utcTime
	}
	return utcTime.In(loc)
}

// FormatDate renders t in timezone. The zero time renders as "".
func FormatDate(t time.Time, timezone, layout string) string {
	if t.IsZero() {
		return ""
	}
	return FromUTCToTimezone(t, timezone).Format(layout)
}
