package billing

import "time"

// DefaultDueSoonDays is the trailing window before a period's end date
// during which it is reported as due_soon.
const DefaultDueSoonDays = 3

// PenaltyPolicy computes the late fee for a period of the given amount that
// is daysLate days overdue. The formula is policy, not engine logic, so it
// is injected.
type PenaltyPolicy func(periodAmount float64, daysLate int) float64

// NoPenalty is a PenaltyPolicy that never charges a fee.
func NoPenalty(float64, int) float64 { return 0 }

// Classifier assigns lifecycle statuses to billing periods. Classification
// is a pure function of (period, payments, today): re-evaluating at a later
// today only ever moves a status forward (pending, due_soon, late), except
// for paid, which is final and overrides everything once a matching payment
// exists.
type Classifier struct {
	dueSoonDays int
	penalty     PenaltyPolicy
}

// NewClassifier creates a classifier. A non-positive dueSoonDays falls back
// to DefaultDueSoonDays; a nil policy falls back to NoPenalty.
func NewClassifier(dueSoonDays int, penalty PenaltyPolicy) *Classifier {
	if dueSoonDays <= 0 {
		dueSoonDays = DefaultDueSoonDays
	}
	if penalty == nil {
		penalty = NoPenalty
	}
	return &Classifier{dueSoonDays: dueSoonDays, penalty: penalty}
}

// Classify evaluates one period against the payment ledger as of today.
func (c *Classifier) Classify(p Period, payments []PaymentRecord, today time.Time) Classification {
	if paid := matchingPaidPayment(p, payments); paid != nil {
		id := paid.ID
		return Classification{Status: PeriodPaid, PaymentID: &id}
	}

	day := dateOnly(today)
	if day.After(dateOnly(p.End)) {
		daysLate := daysBetween(p.End, day)
		return Classification{
			Status:   PeriodLate,
			DaysLate: daysLate,
			Penalty:  c.penalty(p.Amount, daysLate),
		}
	}
	if daysBetween(day, p.End) <= c.dueSoonDays {
		return Classification{Status: PeriodDueSoon}
	}
	return Classification{Status: PeriodPending}
}

// ClassifyAll applies Classify to each period in place and returns the slice.
func (c *Classifier) ClassifyAll(periods []Period, payments []PaymentRecord, today time.Time) []Period {
	for i := range periods {
		cl := c.Classify(periods[i], payments, today)
		periods[i].Status = cl.Status
		periods[i].IsPaid = cl.Status == PeriodPaid
		periods[i].PaymentID = cl.PaymentID
		periods[i].DaysLate = cl.DaysLate
		periods[i].Penalty = cl.Penalty
	}
	return periods
}

// matchingPaidPayment returns the paid rent payment whose recorded period
// boundaries match the given period, if any.
func matchingPaidPayment(p Period, payments []PaymentRecord) *PaymentRecord {
	for i := range payments {
		rec := &payments[i]
		if rec.Kind != PaymentRent || rec.State != PaymentStatePaid {
			continue
		}
		if rec.PeriodStart == nil || rec.PeriodEnd == nil {
			continue
		}
		if sameDay(*rec.PeriodStart, p.Start) && sameDay(*rec.PeriodEnd, p.End) {
			return rec
		}
	}
	return nil
}
