// Package billing implements the lease payment scheduling and status engine:
// period generation from a lease's terms, payment status classification over
// time, late penalties, initial obligations, and per-lease payment summaries.
// All functions here are pure and safe for concurrent use; persistence and
// transport live in other packages.
package billing

import "time"

// Frequency represents how often rent is billed for a lease.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyBiannual  Frequency = "biannual"
	FrequencyYearly    Frequency = "yearly"
)

// DurationType represents the contractual duration model of a lease.
type DurationType string

const (
	DurationFixed        DurationType = "fixed"
	DurationMonthToMonth DurationType = "month_to_month"
	DurationYearly       DurationType = "yearly"
)

// PaymentTiming indicates whether rent for a period is due at its start or its end.
type PaymentTiming string

const (
	TimingUpfront     PaymentTiming = "upfront"
	TimingEndOfPeriod PaymentTiming = "end_of_period"
)

// LeaseStatus represents the lifecycle state of a lease.
type LeaseStatus string

const (
	LeasePending    LeaseStatus = "pending"
	LeaseActive     LeaseStatus = "active"
	LeaseExpired    LeaseStatus = "expired"
	LeaseTerminated LeaseStatus = "terminated"
)

// PeriodStatus represents the lifecycle status of a billing period.
type PeriodStatus string

const (
	PeriodPending PeriodStatus = "pending"
	PeriodDueSoon PeriodStatus = "due_soon"
	PeriodLate    PeriodStatus = "late"
	PeriodPaid    PeriodStatus = "paid"
)

// PaymentKind represents what a ledger entry pays for.
type PaymentKind string

const (
	PaymentDeposit    PaymentKind = "deposit"
	PaymentAgencyFees PaymentKind = "agency_fees"
	PaymentCommission PaymentKind = "commission"
	PaymentRent       PaymentKind = "rent"
)

// PaymentState represents the settlement state of a ledger entry.
type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStatePaid    PaymentState = "paid"
	PaymentStateLate    PaymentState = "late"
)

// LeaseTerms is the plain-data view of a lease the engine operates on.
type LeaseTerms struct {
	ID            string        `json:"id"`
	TenantID      string        `json:"tenant_id"`
	UnitID        string        `json:"unit_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       *time.Time    `json:"end_date,omitempty"`
	RentAmount    float64       `json:"rent_amount"`
	DepositAmount float64       `json:"deposit_amount"`
	Frequency     Frequency     `json:"payment_frequency"`
	DurationType  DurationType  `json:"duration_type"`
	PaymentTiming PaymentTiming `json:"payment_type"`
	Status        LeaseStatus   `json:"status"`

	// Gates that unlock recurring billing once the initial obligations
	// (deposit + agency fees) have been recorded.
	InitialFeesPaid          bool `json:"initial_fees_paid"`
	InitialPaymentsCompleted bool `json:"initial_payments_completed"`
}

// PaymentRecord is the plain-data view of a payment ledger entry.
type PaymentRecord struct {
	ID          string       `json:"id"`
	LeaseID     string       `json:"lease_id"`
	Amount      float64      `json:"amount"`
	Kind        PaymentKind  `json:"payment_type"`
	Method      string       `json:"payment_method"`
	State       PaymentState `json:"status"`
	DueDate     time.Time    `json:"due_date"`
	PaidDate    *time.Time   `json:"payment_date,omitempty"`
	PeriodStart *time.Time   `json:"payment_period_start,omitempty"`
	PeriodEnd   *time.Time   `json:"payment_period_end,omitempty"`

	// FirstRentStart is recorded once, on the deposit payment, and anchors
	// all period generation for the lease from then on.
	FirstRentStart *time.Time `json:"first_rent_start_date,omitempty"`
}

// Period is a derived billing window. Periods are a view recomputed from
// lease terms and payment records on every read; they are never stored as
// authoritative state.
type Period struct {
	Start     time.Time    `json:"start_date"`
	End       time.Time    `json:"end_date"`
	Amount    float64      `json:"amount"`
	Status    PeriodStatus `json:"status"`
	IsPaid    bool         `json:"is_paid"`
	PaymentID *string      `json:"payment_id,omitempty"`
	Current   bool         `json:"current"`
	DaysLate  int          `json:"days_late,omitempty"`
	Penalty   float64      `json:"penalty,omitempty"`
}

// Classification is the result of evaluating a period against the payment
// ledger at a point in time.
type Classification struct {
	Status    PeriodStatus
	DaysLate  int
	Penalty   float64
	PaymentID *string
}

// PaymentSummary aggregates a lease's generated periods and recorded
// payments into the four figures the back office reports on.
type PaymentSummary struct {
	TotalReceived float64 `json:"total_received"`
	PendingAmount float64 `json:"pending_amount"`
	LateAmount    float64 `json:"late_amount"`
	NextPayment   *Period `json:"next_payment,omitempty"`
}

// InitialObligations describes the one-time amounts due at lease activation.
type InitialObligations struct {
	Deposit         float64 `json:"deposit"`
	AgencyFees      float64 `json:"agency_fees"`
	FirstRent       float64 `json:"first_rent"`
	BundleFirstRent bool    `json:"bundle_first_rent"`
	Total           float64 `json:"total"`
}

// DateOnly truncates a timestamp to its UTC calendar day. All billing
// dates are whole days.
func DateOnly(t time.Time) time.Time {
	return dateOnly(t)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole days from a to b.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// sameDay reports whether two timestamps fall on the same UTC calendar day.
func sameDay(a, b time.Time) bool {
	return dateOnly(a).Equal(dateOnly(b))
}
