package database

import (
	"time"

	"property-backoffice/internal/billing"
)

// UnitStatus constants
const (
	UnitAvailable = "available"
	UnitOccupied  = "occupied"
	UnitInactive  = "inactive"
)

// Tenant represents a tenant in the database
type Tenant struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unit represents an apartment unit in the database
type Unit struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Address   *string   `json:"address,omitempty"`
	City      *string   `json:"city,omitempty"`
	Bedrooms  *int      `json:"bedrooms,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lease represents a tenancy agreement in the database
type Lease struct {
	ID                       string     `json:"id"`
	TenantID                 string     `json:"tenant_id"`
	UnitID                   string     `json:"unit_id"`
	StartDate                time.Time  `json:"start_date"`
	EndDate                  *time.Time `json:"end_date,omitempty"`
	RentAmount               float64    `json:"rent_amount"`
	DepositAmount            float64    `json:"deposit_amount"`
	PaymentFrequency         string     `json:"payment_frequency"`
	DurationType             string     `json:"duration_type"`
	PaymentType              string     `json:"payment_type"`
	Status                   string     `json:"status"`
	InitialFeesPaid          bool       `json:"initial_fees_paid"`
	InitialPaymentsCompleted bool       `json:"initial_payments_completed"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// Terms converts a lease row to the engine's plain-data view. Frequency
// parsing falls back to monthly for unrecognized values; callers that care
// about the fallback use billing.ParseFrequency directly and log it.
func (l *Lease) Terms() billing.LeaseTerms {
	freq, _ := billing.ParseFrequency(l.PaymentFrequency)
	return billing.LeaseTerms{
		ID:                       l.ID,
		TenantID:                 l.TenantID,
		UnitID:                   l.UnitID,
		StartDate:                l.StartDate,
		EndDate:                  l.EndDate,
		RentAmount:               l.RentAmount,
		DepositAmount:            l.DepositAmount,
		Frequency:                freq,
		DurationType:             billing.DurationType(l.DurationType),
		PaymentTiming:            billing.PaymentTiming(l.PaymentType),
		Status:                   billing.LeaseStatus(l.Status),
		InitialFeesPaid:          l.InitialFeesPaid,
		InitialPaymentsCompleted: l.InitialPaymentsCompleted,
	}
}

// Payment represents a payment ledger entry in the database
type Payment struct {
	ID                 string     `json:"id"`
	LeaseID            string     `json:"lease_id"`
	Amount             float64    `json:"amount"`
	PaymentType        string     `json:"payment_type"`
	PaymentMethod      *string    `json:"payment_method,omitempty"`
	Status             string     `json:"status"`
	DueDate            time.Time  `json:"due_date"`
	PaymentDate        *time.Time `json:"payment_date,omitempty"`
	PaymentPeriodStart *time.Time `json:"payment_period_start,omitempty"`
	PaymentPeriodEnd   *time.Time `json:"payment_period_end,omitempty"`
	FirstRentStartDate *time.Time `json:"first_rent_start_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Record converts a payment row to the engine's plain-data view.
func (p *Payment) Record() billing.PaymentRecord {
	method := ""
	if p.PaymentMethod != nil {
		method = *p.PaymentMethod
	}
	return billing.PaymentRecord{
		ID:             p.ID,
		LeaseID:        p.LeaseID,
		Amount:         p.Amount,
		Kind:           billing.PaymentKind(p.PaymentType),
		Method:         method,
		State:          billing.PaymentState(p.Status),
		DueDate:        p.DueDate,
		PaidDate:       p.PaymentDate,
		PeriodStart:    p.PaymentPeriodStart,
		PeriodEnd:      p.PaymentPeriodEnd,
		FirstRentStart: p.FirstRentStartDate,
	}
}

// Records converts a slice of payment rows to engine records.
func Records(payments []Payment) []billing.PaymentRecord {
	records := make([]billing.PaymentRecord, len(payments))
	for i := range payments {
		records[i] = payments[i].Record()
	}
	return records
}

// LatePenalty represents a late-payment penalty in the database
type LatePenalty struct {
	ID          string     `json:"id"`
	LeaseID     string     `json:"lease_id"`
	PaymentID   *string    `json:"payment_id,omitempty"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	Amount      float64    `json:"amount"`
	DaysLate    int        `json:"days_late"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// User represents an agency staff account
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize
	Name         string     `json:"name"`
	IsAdmin      bool       `json:"is_admin"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
