package models

import "time"

// DayLayout is the calendar-day key used for "surfaced today" bookkeeping
const DayLayout = "2006-01-02"

// BarsForLookback estimates how many bars of the given interval cover
// lookback trading days, with a small buffer for holidays.
func BarsForLookback(interval string, lookback int) int {
	if lookback < 1 {
		lookback = 1
	}

	barsPerDay := 1.0
	switch interval {
	case "1h":
		barsPerDay = 7
	case "4h":
		barsPerDay = 2
	case "1day":
		barsPerDay = 1
	case "1week":
		barsPerDay = 1.0 / 5
	case "1month":
		barsPerDay = 1.0 / 21
	}

	n := int(float64(lookback)*barsPerDay*1.1) + 1
	if n < 1 {
		n = 1
	}
	return n
}

// DayKey formats t as a calendar day in UTC
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DaysBetween returns whole days elapsed from start to end
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
