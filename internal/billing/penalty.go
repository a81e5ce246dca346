package billing

import "math"

// Default late-fee policy knobs. Both are configurable; these mirror the
// values agencies most commonly run with.
const (
	DefaultPenaltyFlatPerMonth = 5000.0
	DefaultPenaltyCapPercent   = 0.10
)

// FlatMonthlyPenalty returns a PenaltyPolicy that charges a flat amount per
// started month overdue, capped at a percentage of the period amount. Day 1
// overdue already counts as the first month.
func FlatMonthlyPenalty(flatPerMonth, capPercent float64) PenaltyPolicy {
	return func(periodAmount float64, daysLate int) float64 {
		if daysLate <= 0 {
			return 0
		}
		months := (daysLate + 29) / 30
		raw := float64(months) * flatPerMonth
		cap := math.Round(periodAmount * capPercent)
		if cap < 0 {
			cap = 0
		}
		if raw > cap {
			return cap
		}
		return raw
	}
}

// PercentagePenalty returns a PenaltyPolicy that charges a percentage of the
// period amount per day overdue, rounded to a whole currency unit.
func PercentagePenalty(dailyPercent float64) PenaltyPolicy {
	return func(periodAmount float64, daysLate int) float64 {
		if daysLate <= 0 {
			return 0
		}
		return math.Round(periodAmount * dailyPercent * float64(daysLate))
	}
}
