package billing

import (
	"errors"
	"testing"
	"time"
)

// ============================================================================
// TEST: Period generation from an anchor date
// ============================================================================

// Monthly lease anchored 2024-01-15: first period 01-15..02-14, second
// 02-15..03-14, and so on.
func TestGeneratePeriods_MonthlyFromMidMonth(t *testing.T) {
	anchor := date(2024, time.January, 15)
	asOf := date(2024, time.March, 20)

	periods, err := GeneratePeriods(anchor, FrequencyMonthly, 100000, asOf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(periods) != 2 {
		t.Fatalf("expected 2 elapsed periods, got %d", len(periods))
	}

	first := periods[0]
	if !first.Start.Equal(date(2024, time.January, 15)) || !first.End.Equal(date(2024, time.February, 14)) {
		t.Errorf("first period = %s..%s, want 2024-01-15..2024-02-14",
			first.Start.Format("2006-01-02"), first.End.Format("2006-01-02"))
	}

	second := periods[1]
	if !second.Start.Equal(date(2024, time.February, 15)) || !second.End.Equal(date(2024, time.March, 14)) {
		t.Errorf("second period = %s..%s, want 2024-02-15..2024-03-14",
			second.Start.Format("2006-01-02"), second.End.Format("2006-01-02"))
	}

	for i, p := range periods {
		if p.Amount != 100000 {
			t.Errorf("period %d amount = %.0f, want 100000", i, p.Amount)
		}
	}
}

func TestGeneratePeriods_ContiguousAndOrdered(t *testing.T) {
	anchor := date(2023, time.May, 31)
	asOf := date(2024, time.June, 3)

	periods, err := GeneratePeriods(anchor, FrequencyMonthly, 50000, asOf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) == 0 {
		t.Fatal("expected periods")
	}

	for i := 1; i < len(periods); i++ {
		gap := periods[i].Start.Sub(periods[i-1].End)
		if gap != 24*time.Hour {
			t.Errorf("period %d starts %s after previous end, want exactly 1 day", i, gap)
		}
		if !periods[i].Start.After(periods[i-1].Start) {
			t.Errorf("period %d not ordered after period %d", i, i-1)
		}
	}

	// Every generated period is fully elapsed.
	last := periods[len(periods)-1]
	if !last.End.Before(asOf) {
		t.Errorf("last period end %s is not strictly before asOf", last.End.Format("2006-01-02"))
	}
}

func TestGeneratePeriods_CurrentIntervalExcluded(t *testing.T) {
	anchor := date(2024, time.January, 1)

	// asOf on the last day of the first period: the interval is not fully
	// elapsed, so nothing is generated.
	periods, err := GeneratePeriods(anchor, FrequencyMonthly, 80000, date(2024, time.January, 31), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 0 {
		t.Errorf("expected no elapsed periods on the period's last day, got %d", len(periods))
	}

	// One day later the period has elapsed.
	periods, err = GeneratePeriods(anchor, FrequencyMonthly, 80000, date(2024, time.February, 1), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 1 {
		t.Errorf("expected 1 elapsed period, got %d", len(periods))
	}
}

func TestGeneratePeriods_StopsAtLeaseEnd(t *testing.T) {
	anchor := date(2023, time.January, 1)
	leaseEnd := date(2023, time.June, 30)
	asOf := date(2024, time.January, 10)

	periods, err := GeneratePeriods(anchor, FrequencyMonthly, 70000, asOf, &leaseEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 6 {
		t.Fatalf("expected 6 periods through lease end, got %d", len(periods))
	}
	last := periods[len(periods)-1]
	if !last.End.Equal(date(2023, time.June, 30)) {
		t.Errorf("last period end = %s, want 2023-06-30", last.End.Format("2006-01-02"))
	}
}

func TestGeneratePeriods_MissingAnchor(t *testing.T) {
	_, err := GeneratePeriods(time.Time{}, FrequencyMonthly, 100000, date(2024, time.March, 1), nil)
	if !errors.Is(err, ErrMissingAnchorDate) {
		t.Errorf("expected ErrMissingAnchorDate, got %v", err)
	}
}

// Calling the generator twice with identical inputs yields an identical
// ordered sequence.
func TestGeneratePeriods_Idempotent(t *testing.T) {
	anchor := date(2024, time.January, 15)
	asOf := date(2024, time.August, 2)

	a, err := GeneratePeriods(anchor, FrequencyWeekly, 25000, asOf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GeneratePeriods(anchor, FrequencyWeekly, 25000, asOf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Start.Equal(b[i].Start) || !a[i].End.Equal(b[i].End) || a[i].Amount != b[i].Amount {
			t.Errorf("period %d differs between runs", i)
		}
	}
}

// ============================================================================
// TEST: Current period
// ============================================================================

func TestCurrentPeriod(t *testing.T) {
	anchor := date(2024, time.January, 15)

	p, err := CurrentPeriod(anchor, FrequencyMonthly, 100000, date(2024, time.March, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected a current period")
	}
	if !p.Start.Equal(date(2024, time.March, 15)) || !p.End.Equal(date(2024, time.April, 14)) {
		t.Errorf("current period = %s..%s, want 2024-03-15..2024-04-14",
			p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}
	if !p.Current {
		t.Error("current period not flagged as current")
	}
}

func TestCurrentPeriod_BeforeAnchor(t *testing.T) {
	anchor := date(2024, time.June, 1)
	p, err := CurrentPeriod(anchor, FrequencyMonthly, 100000, date(2024, time.May, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected no current period before the anchor, got %s..%s",
			p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}
}

func TestCurrentPeriod_MissingAnchor(t *testing.T) {
	_, err := CurrentPeriod(time.Time{}, FrequencyMonthly, 100000, date(2024, time.March, 1))
	if !errors.Is(err, ErrMissingAnchorDate) {
		t.Errorf("expected ErrMissingAnchorDate, got %v", err)
	}
}

// ============================================================================
// TEST: Anchor resolution
// ============================================================================

func TestResolveAnchor(t *testing.T) {
	first := date(2024, time.February, 1)
	payments := []PaymentRecord{
		{ID: "p1", Kind: PaymentAgencyFees, State: PaymentStatePaid},
		{ID: "p2", Kind: PaymentDeposit, State: PaymentStatePaid, FirstRentStart: &first},
	}

	anchor, err := ResolveAnchor(payments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !anchor.Equal(first) {
		t.Errorf("anchor = %s, want %s", anchor.Format("2006-01-02"), first.Format("2006-01-02"))
	}
}

func TestResolveAnchor_NoDepositRecord(t *testing.T) {
	payments := []PaymentRecord{
		{ID: "p1", Kind: PaymentRent, State: PaymentStatePaid},
	}
	_, err := ResolveAnchor(payments)
	if !errors.Is(err, ErrMissingAnchorDate) {
		t.Errorf("expected ErrMissingAnchorDate, got %v", err)
	}
}
