package billing

import "time"

// ParseFrequency maps a stored frequency value to a Frequency. Unknown or
// empty values fall back to monthly; ok reports whether the input was
// recognized so callers can log the fallback.
func ParseFrequency(s string) (f Frequency, ok bool) {
	switch Frequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyBiannual, FrequencyYearly:
		return Frequency(s), true
	default:
		return FrequencyMonthly, false
	}
}

// months returns the calendar-month span of a frequency, or 0 for the
// fixed-offset frequencies (daily, weekly).
func (f Frequency) months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyBiannual:
		return 6
	case FrequencyYearly:
		return 12
	default:
		return 0
	}
}

// addMonthsClamped adds n calendar months to a date, clamping the day to the
// last valid day of the target month instead of letting it roll over (e.g.
// Jan 31 + 1 month = Feb 28, not Mar 3). Go's AddDate rolls over, so the
// month is computed from the 1st and the day clamped afterwards.
func addMonthsClamped(t time.Time, n int) time.Time {
	t = dateOnly(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// PeriodEnd returns the inclusive last day of the period beginning at start,
// i.e. the day immediately before the next period's start. Monthly and
// longer frequencies use calendar-aware arithmetic; daily and weekly use
// fixed offsets. An unrecognized frequency is treated as monthly.
func PeriodEnd(start time.Time, f Frequency) time.Time {
	start = dateOnly(start)
	switch f {
	case FrequencyDaily:
		// Degenerate one-day period.
		return start
	case FrequencyWeekly:
		return start.AddDate(0, 0, 6)
	default:
		m := f.months()
		if m == 0 {
			m = 1
		}
		return addMonthsClamped(start, m).AddDate(0, 0, -1)
	}
}

// NextPeriodStart returns the first day of the period following the one that
// begins at start.
func NextPeriodStart(start time.Time, f Frequency) time.Time {
	return PeriodEnd(start, f).AddDate(0, 0, 1)
}
