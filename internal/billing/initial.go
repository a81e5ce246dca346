package billing

import "math"

// DefaultAgencyFeeRate is the agency's one-time fee as a fraction of one
// rent period's amount.
const DefaultAgencyFeeRate = 0.5

// ObligationResolver computes the one-time amounts due at lease activation
// and decides whether the first rent period is bundled into the upfront
// batch or billed through the normal recurring cycle.
type ObligationResolver struct {
	agencyFeeRate float64
}

// NewObligationResolver creates a resolver. A non-positive rate falls back
// to DefaultAgencyFeeRate.
func NewObligationResolver(agencyFeeRate float64) *ObligationResolver {
	if agencyFeeRate <= 0 {
		agencyFeeRate = DefaultAgencyFeeRate
	}
	return &ObligationResolver{agencyFeeRate: agencyFeeRate}
}

// Resolve computes the initial obligations for a lease. The deposit falls
// back to one rent period's amount when the lease does not set one; that is
// a documented fallback, not an error.
func (r *ObligationResolver) Resolve(lease LeaseTerms) InitialObligations {
	deposit := lease.DepositAmount
	if deposit <= 0 {
		deposit = lease.RentAmount
	}

	obligations := InitialObligations{
		Deposit:         deposit,
		AgencyFees:      math.Round(lease.RentAmount * r.agencyFeeRate),
		BundleFirstRent: lease.PaymentTiming == TimingUpfront,
	}
	if obligations.BundleFirstRent {
		obligations.FirstRent = lease.RentAmount
	}
	obligations.Total = obligations.Deposit + obligations.AgencyFees + obligations.FirstRent
	return obligations
}
