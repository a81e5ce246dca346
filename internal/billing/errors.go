package billing

import (
	"errors"
	"fmt"
)

// ErrMissingAnchorDate is returned when period generation is attempted
// without a resolved first-rent date. Billing correctness depends on the
// anchor, so generation fails rather than silently defaulting.
var ErrMissingAnchorDate = errors.New("billing: missing anchor date for period generation")

// ErrDuplicatePeriodPayment is returned when a second payment is recorded
// for a period that already has one.
var ErrDuplicatePeriodPayment = errors.New("billing: period already has a recorded payment")

// ErrBillingLocked is returned when a recurring-billing operation is
// attempted before the lease's initial obligations have been settled.
var ErrBillingLocked = errors.New("billing: initial obligations not settled")

// TermsError reports invalid lease terms. It is raised at the lease-creation
// boundary, not at billing time.
type TermsError struct {
	Field  string
	Reason string
}

func (e TermsError) Error() string {
	return fmt.Sprintf("invalid lease terms: %s %s", e.Field, e.Reason)
}

// ValidateLeaseTerms checks the invariants a lease must satisfy before it
// can be created or activated.
func ValidateLeaseTerms(l LeaseTerms) error {
	if l.RentAmount <= 0 {
		return TermsError{Field: "rent_amount", Reason: "must be positive"}
	}
	if l.DepositAmount < 0 {
		return TermsError{Field: "deposit_amount", Reason: "must not be negative"}
	}
	if l.StartDate.IsZero() {
		return TermsError{Field: "start_date", Reason: "is required"}
	}
	switch l.DurationType {
	case DurationFixed:
		if l.EndDate == nil {
			return TermsError{Field: "end_date", Reason: "is required for fixed-duration leases"}
		}
		if dateOnly(*l.EndDate).Before(dateOnly(l.StartDate)) {
			return TermsError{Field: "end_date", Reason: "must not precede start_date"}
		}
	case DurationMonthToMonth, DurationYearly:
		if l.EndDate != nil {
			return TermsError{Field: "end_date", Reason: "must be unset for open-ended leases"}
		}
	default:
		return TermsError{Field: "duration_type", Reason: fmt.Sprintf("unknown value %q", l.DurationType)}
	}
	switch l.PaymentTiming {
	case TimingUpfront, TimingEndOfPeriod:
	default:
		return TermsError{Field: "payment_type", Reason: fmt.Sprintf("unknown value %q", l.PaymentTiming)}
	}
	return nil
}
