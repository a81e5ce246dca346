package billing

import "time"

// maxGeneratedPeriods bounds a single generation pass. A daily lease left
// unbilled for ten years produces ~3650 periods; anything past this limit
// indicates a corrupted anchor rather than a real schedule.
const maxGeneratedPeriods = 5000

// GeneratePeriods walks the frequency calendar from anchor and returns every
// fully elapsed billing period strictly before asOf, oldest first. The
// interval containing asOf is not included; callers obtain it from
// CurrentPeriod so it is never misclassified as late. If leaseEnd is set,
// generation stops at the last period starting on or before it.
//
// Produced periods are contiguous and non-overlapping, and every amount
// equals rentAmount: partial-period proration is not supported.
func GeneratePeriods(anchor time.Time, f Frequency, rentAmount float64, asOf time.Time, leaseEnd *time.Time) ([]Period, error) {
	if anchor.IsZero() {
		return nil, ErrMissingAnchorDate
	}

	start := dateOnly(anchor)
	today := dateOnly(asOf)

	var periods []Period
	for len(periods) < maxGeneratedPeriods {
		if leaseEnd != nil && start.After(dateOnly(*leaseEnd)) {
			break
		}
		end := PeriodEnd(start, f)
		if !end.Before(today) {
			// This interval contains asOf (or is in the future); it is the
			// current period, not a past one.
			break
		}
		periods = append(periods, Period{
			Start:  start,
			End:    end,
			Amount: rentAmount,
			Status: PeriodPending,
		})
		start = end.AddDate(0, 0, 1)
	}
	return periods, nil
}

// CurrentPeriod returns the in-progress billing period containing asOf, or
// nil when asOf precedes the anchor. The current period is distinguished
// from past periods so it is never counted as late.
func CurrentPeriod(anchor time.Time, f Frequency, rentAmount float64, asOf time.Time) (*Period, error) {
	if anchor.IsZero() {
		return nil, ErrMissingAnchorDate
	}

	start := dateOnly(anchor)
	today := dateOnly(asOf)
	if today.Before(start) {
		return nil, nil
	}

	for i := 0; i < maxGeneratedPeriods; i++ {
		end := PeriodEnd(start, f)
		if !today.After(end) {
			return &Period{
				Start:   start,
				End:     end,
				Amount:  rentAmount,
				Status:  PeriodPending,
				Current: true,
			}, nil
		}
		start = end.AddDate(0, 0, 1)
	}
	return nil, ErrMissingAnchorDate
}

// ResolveAnchor returns the immutable first-rent date recorded on the
// lease's deposit payment. The lease's own start_date is deliberately not
// consulted: once initial obligations are recorded the deposit payment is
// the sole anchor source, and before that no periods should exist at all.
func ResolveAnchor(payments []PaymentRecord) (time.Time, error) {
	for _, p := range payments {
		if p.Kind == PaymentDeposit && p.FirstRentStart != nil && !p.FirstRentStart.IsZero() {
			return dateOnly(*p.FirstRentStart), nil
		}
	}
	return time.Time{}, ErrMissingAnchorDate
}
