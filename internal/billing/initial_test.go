package billing

import (
	"testing"
	"time"
)

// ============================================================================
// TEST: Initial obligations resolution
// ============================================================================

func upfrontLease(rent, deposit float64) LeaseTerms {
	return LeaseTerms{
		ID:            "lease-1",
		StartDate:     date(2024, time.January, 15),
		RentAmount:    rent,
		DepositAmount: deposit,
		Frequency:     FrequencyMonthly,
		DurationType:  DurationMonthToMonth,
		PaymentTiming: TimingUpfront,
	}
}

func TestResolve_DefaultRate(t *testing.T) {
	r := NewObligationResolver(0)
	lease := upfrontLease(100000, 200000)

	got := r.Resolve(lease)
	if !floatEquals(got.Deposit, 200000, 0.001) {
		t.Errorf("deposit = %.0f, want 200000", got.Deposit)
	}
	if !floatEquals(got.AgencyFees, 50000, 0.001) {
		t.Errorf("agencyFees = %.0f, want 50000 (50%% of one rent period)", got.AgencyFees)
	}
}

// A lease with no deposit falls back to one rent period's amount.
func TestResolve_DepositFallsBackToRent(t *testing.T) {
	r := NewObligationResolver(0.5)
	lease := upfrontLease(150000, 0)

	got := r.Resolve(lease)
	if !floatEquals(got.Deposit, 150000, 0.001) {
		t.Errorf("deposit = %.0f, want 150000 (fallback to rent)", got.Deposit)
	}
	if !floatEquals(got.AgencyFees, 75000, 0.001) {
		t.Errorf("agencyFees = %.0f, want 75000", got.AgencyFees)
	}
}

// Upfront payment timing bundles one rent period into the initial batch;
// end-of-period timing does not.
func TestResolve_FirstRentBundling(t *testing.T) {
	r := NewObligationResolver(0.5)

	upfront := upfrontLease(100000, 100000)
	got := r.Resolve(upfront)
	if !got.BundleFirstRent {
		t.Error("upfront lease should bundle first rent")
	}
	if !floatEquals(got.FirstRent, 100000, 0.001) {
		t.Errorf("firstRent = %.0f, want 100000", got.FirstRent)
	}
	if !floatEquals(got.Total, 250000, 0.001) {
		t.Errorf("total = %.0f, want 250000", got.Total)
	}

	deferred := upfront
	deferred.PaymentTiming = TimingEndOfPeriod
	got = r.Resolve(deferred)
	if got.BundleFirstRent {
		t.Error("end_of_period lease should not bundle first rent")
	}
	if got.FirstRent != 0 {
		t.Errorf("firstRent = %.0f, want 0", got.FirstRent)
	}
	if !floatEquals(got.Total, 150000, 0.001) {
		t.Errorf("total = %.0f, want 150000", got.Total)
	}
}

func TestResolve_AgencyFeeRounding(t *testing.T) {
	r := NewObligationResolver(0.33)
	got := r.Resolve(upfrontLease(99999, 99999))
	// 99999 * 0.33 = 32999.67, rounded to the nearest unit.
	if !floatEquals(got.AgencyFees, 33000, 0.001) {
		t.Errorf("agencyFees = %.2f, want 33000", got.AgencyFees)
	}
}

// ============================================================================
// TEST: Lease terms validation
// ============================================================================

func TestValidateLeaseTerms(t *testing.T) {
	end := date(2024, time.December, 31)
	badEnd := date(2023, time.December, 31)

	testCases := []struct {
		name    string
		mutate  func(*LeaseTerms)
		wantErr bool
	}{
		{"valid month to month", func(l *LeaseTerms) {}, false},
		{"valid fixed with end", func(l *LeaseTerms) {
			l.DurationType = DurationFixed
			l.EndDate = &end
		}, false},
		{"zero rent", func(l *LeaseTerms) { l.RentAmount = 0 }, true},
		{"negative rent", func(l *LeaseTerms) { l.RentAmount = -5 }, true},
		{"negative deposit", func(l *LeaseTerms) { l.DepositAmount = -1 }, true},
		{"fixed without end date", func(l *LeaseTerms) { l.DurationType = DurationFixed }, true},
		{"fixed end before start", func(l *LeaseTerms) {
			l.DurationType = DurationFixed
			l.EndDate = &badEnd
		}, true},
		{"open ended with end date", func(l *LeaseTerms) { l.EndDate = &end }, true},
		{"unknown duration type", func(l *LeaseTerms) { l.DurationType = "forever" }, true},
		{"unknown payment timing", func(l *LeaseTerms) { l.PaymentTiming = "whenever" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lease := upfrontLease(100000, 100000)
			tc.mutate(&lease)
			err := ValidateLeaseTerms(lease)
			if tc.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
