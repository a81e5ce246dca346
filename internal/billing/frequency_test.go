package billing

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ============================================================================
// TEST: Period end per frequency
// ============================================================================

func TestPeriodEnd_AllFrequencies(t *testing.T) {
	start := date(2024, time.January, 15)

	testCases := []struct {
		name     string
		freq     Frequency
		expected time.Time
	}{
		{"daily", FrequencyDaily, date(2024, time.January, 15)},
		{"weekly", FrequencyWeekly, date(2024, time.January, 21)},
		{"monthly", FrequencyMonthly, date(2024, time.February, 14)},
		{"quarterly", FrequencyQuarterly, date(2024, time.April, 14)},
		{"biannual", FrequencyBiannual, date(2024, time.July, 14)},
		{"yearly", FrequencyYearly, date(2025, time.January, 14)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := PeriodEnd(start, tc.freq)
			if !got.Equal(tc.expected) {
				t.Errorf("PeriodEnd(%s, %s) = %s, want %s",
					start.Format("2006-01-02"), tc.freq, got.Format("2006-01-02"), tc.expected.Format("2006-01-02"))
			}
		})
	}
}

func TestPeriodEnd_UnknownFrequencyDefaultsToMonthly(t *testing.T) {
	start := date(2024, time.March, 1)
	got := PeriodEnd(start, Frequency("fortnightly"))
	want := date(2024, time.March, 31)
	if !got.Equal(want) {
		t.Errorf("unknown frequency: got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

// ============================================================================
// TEST: Month-end overflow clamps instead of rolling over
// ============================================================================

func TestPeriodEnd_MonthEndClamping(t *testing.T) {
	testCases := []struct {
		name     string
		start    time.Time
		freq     Frequency
		expected time.Time
	}{
		// Jan 31 + 1 month clamps to Feb 29 (2024 is a leap year), end = Feb 28.
		{"jan 31 monthly leap year", date(2024, time.January, 31), FrequencyMonthly, date(2024, time.February, 28)},
		{"jan 31 monthly non-leap", date(2023, time.January, 31), FrequencyMonthly, date(2023, time.February, 27)},
		{"jan 30 monthly", date(2023, time.January, 30), FrequencyMonthly, date(2023, time.February, 27)},
		{"oct 31 monthly", date(2024, time.October, 31), FrequencyMonthly, date(2024, time.November, 29)},
		{"nov 30 quarterly", date(2023, time.November, 30), FrequencyQuarterly, date(2024, time.February, 28)},
		// Feb 29 + 1 year clamps to Feb 28 of the non-leap year.
		{"feb 29 yearly", date(2024, time.February, 29), FrequencyYearly, date(2025, time.February, 27)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := PeriodEnd(tc.start, tc.freq)
			if !got.Equal(tc.expected) {
				t.Errorf("PeriodEnd(%s, %s) = %s, want %s",
					tc.start.Format("2006-01-02"), tc.freq, got.Format("2006-01-02"), tc.expected.Format("2006-01-02"))
			}
		})
	}
}

// ============================================================================
// TEST: Consecutive periods never overlap and never leave a gap
// ============================================================================

func TestNextPeriodStart_ContiguousForAllFrequencies(t *testing.T) {
	frequencies := []Frequency{
		FrequencyDaily, FrequencyWeekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyBiannual, FrequencyYearly,
	}
	starts := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 15),
		date(2024, time.January, 31),
		date(2024, time.February, 29),
		date(2023, time.December, 31),
	}

	for _, f := range frequencies {
		for _, s := range starts {
			start := s
			for i := 0; i < 24; i++ {
				end := PeriodEnd(start, f)
				next := NextPeriodStart(start, f)
				if !next.Equal(end.AddDate(0, 0, 1)) {
					t.Fatalf("%s from %s: next start %s is not end %s + 1 day",
						f, start.Format("2006-01-02"), next.Format("2006-01-02"), end.Format("2006-01-02"))
				}
				if !end.After(start) && f != FrequencyDaily {
					t.Fatalf("%s from %s: end %s not after start",
						f, start.Format("2006-01-02"), end.Format("2006-01-02"))
				}
				start = next
			}
		}
	}
}

func TestParseFrequency(t *testing.T) {
	if f, ok := ParseFrequency("quarterly"); !ok || f != FrequencyQuarterly {
		t.Errorf("ParseFrequency(quarterly) = %s, %v", f, ok)
	}
	if f, ok := ParseFrequency("bogus"); ok || f != FrequencyMonthly {
		t.Errorf("ParseFrequency(bogus) = %s, %v; want monthly fallback", f, ok)
	}
	if f, ok := ParseFrequency(""); ok || f != FrequencyMonthly {
		t.Errorf("ParseFrequency(\"\") = %s, %v; want monthly fallback", f, ok)
	}
}
