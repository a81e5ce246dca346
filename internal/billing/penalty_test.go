package billing

import "testing"

// ============================================================================
// TEST: Shipped penalty policies
// ============================================================================

func TestFlatMonthlyPenalty(t *testing.T) {
	policy := FlatMonthlyPenalty(5000, 0.10)

	testCases := []struct {
		name     string
		amount   float64
		daysLate int
		expected float64
	}{
		{"not late", 100000, 0, 0},
		{"first day counts as first month", 100000, 1, 5000},
		{"last day of first month", 100000, 30, 5000},
		{"second month", 100000, 31, 10000},
		{"capped at 10 percent", 100000, 365, 10000},
		{"small period amount caps early", 30000, 45, 3000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy(tc.amount, tc.daysLate)
			if !floatEquals(got, tc.expected, 0.001) {
				t.Errorf("policy(%.0f, %d) = %.0f, want %.0f", tc.amount, tc.daysLate, got, tc.expected)
			}
		})
	}
}

func TestPercentagePenalty(t *testing.T) {
	policy := PercentagePenalty(0.001) // 0.1% per day

	if got := policy(100000, 6); !floatEquals(got, 600, 0.001) {
		t.Errorf("policy(100000, 6) = %.0f, want 600", got)
	}
	if got := policy(100000, 0); got != 0 {
		t.Errorf("policy(100000, 0) = %.0f, want 0", got)
	}
}
