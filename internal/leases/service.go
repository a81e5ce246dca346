// Package leases coordinates lease lifecycle, payment recording and the
// derived schedule/summary views served to the back office.
package leases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property-backoffice/internal/billing"
	"property-backoffice/internal/database"
	"property-backoffice/internal/events"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnitOccupied is returned when a lease is created against a unit that
// already has an active tenancy.
var ErrUnitOccupied = errors.New("leases: unit is already occupied")

// ErrInvalidPeriod is returned when a rent payment's period bounds are
// missing, inverted, or do not line up with the lease's frequency calendar.
var ErrInvalidPeriod = errors.New("leases: invalid billing period")

// Store is the persistence surface the service needs. *database.Repository
// satisfies it; tests use an in-memory fake.
type Store interface {
	CreateLease(ctx context.Context, lease *database.Lease) error
	GetLease(ctx context.Context, id string) (*database.Lease, error)
	ListLeases(ctx context.Context, status, tenantID string, limit, offset int) ([]database.Lease, error)
	ListActiveLeases(ctx context.Context) ([]database.Lease, error)
	UpdateLeaseStatus(ctx context.Context, id, status string) error

	GetUnit(ctx context.Context, id string) (*database.Unit, error)
	UpdateUnitStatus(ctx context.Context, id, status string) error
	GetTenant(ctx context.Context, id string) (*database.Tenant, error)

	GetPaymentsByLease(ctx context.Context, leaseID string) ([]database.Payment, error)
	CreateInitialPayments(ctx context.Context, leaseID string, firstRentStart time.Time, payments []*database.Payment) error
	CreateRentPayment(ctx context.Context, payment *database.Payment) error

	UpsertLatePenalty(ctx context.Context, penalty *database.LatePenalty) error
	ListPenaltiesByLease(ctx context.Context, leaseID string) ([]database.LatePenalty, error)
}

// SummaryCache is the cache surface the service needs; nil-safe wrapper
// methods below let the service run without Redis.
type SummaryCache interface {
	GetSummary(ctx context.Context, leaseID string) (*billing.PaymentSummary, error)
	PutSummary(ctx context.Context, leaseID string, summary *billing.PaymentSummary)
	Invalidate(ctx context.Context, leaseID string)
}

// Config holds the billing policy knobs.
type Config struct {
	AgencyFeeRate       float64
	DueSoonDays         int
	PenaltyFlatPerMonth float64
	PenaltyCapPercent   float64
}

// DefaultConfig returns the standard billing policy.
func DefaultConfig() Config {
	return Config{
		AgencyFeeRate:       billing.DefaultAgencyFeeRate,
		DueSoonDays:         billing.DefaultDueSoonDays,
		PenaltyFlatPerMonth: billing.DefaultPenaltyFlatPerMonth,
		PenaltyCapPercent:   billing.DefaultPenaltyCapPercent,
	}
}

// Service implements lease operations on top of the billing engine.
type Service struct {
	store      Store
	cache      SummaryCache
	bus        *events.EventBus
	resolver   *billing.ObligationResolver
	classifier *billing.Classifier
	logger     zerolog.Logger

	// now is injectable for deterministic tests
	now func() time.Time
}

// NewService creates a lease service. cache and bus may be nil.
func NewService(store Store, cache SummaryCache, bus *events.EventBus, cfg Config, logger zerolog.Logger) *Service {
	penalty := billing.FlatMonthlyPenalty(cfg.PenaltyFlatPerMonth, cfg.PenaltyCapPercent)
	return &Service{
		store:      store,
		cache:      cache,
		bus:        bus,
		resolver:   billing.NewObligationResolver(cfg.AgencyFeeRate),
		classifier: billing.NewClassifier(cfg.DueSoonDays, penalty),
		logger:     logger.With().Str("component", "LeaseService").Logger(),
		now:        time.Now,
	}
}

// Schedule is the per-lease view assembled for the back office: every past
// period classified, the current period, and the aggregate summary.
type Schedule struct {
	LeaseID       string                 `json:"lease_id"`
	Periods       []billing.Period       `json:"periods"`
	CurrentPeriod *billing.Period        `json:"current_period,omitempty"`
	Summary       billing.PaymentSummary `json:"summary"`
	Locked        bool                   `json:"locked"`
	Warning       string                 `json:"warning,omitempty"`
}

// CreateLease validates terms, persists the lease as pending and marks the
// unit occupied.
func (s *Service) CreateLease(ctx context.Context, lease *database.Lease) error {
	lease.Status = string(billing.LeasePending)
	if lease.ID == "" {
		lease.ID = uuid.New().String()
	}

	freq, ok := billing.ParseFrequency(lease.PaymentFrequency)
	if !ok {
		s.logger.Warn().
			Str("lease_id", lease.ID).
			Str("payment_frequency", lease.PaymentFrequency).
			Msg("Unrecognized payment frequency, defaulting to monthly")
	}
	lease.PaymentFrequency = string(freq)

	if err := billing.ValidateLeaseTerms(lease.Terms()); err != nil {
		return err
	}

	if _, err := s.store.GetTenant(ctx, lease.TenantID); err != nil {
		return fmt.Errorf("tenant lookup failed: %w", err)
	}

	unit, err := s.store.GetUnit(ctx, lease.UnitID)
	if err != nil {
		return fmt.Errorf("unit lookup failed: %w", err)
	}
	if unit.Status == database.UnitOccupied {
		return fmt.Errorf("unit %s: %w", unit.ID, ErrUnitOccupied)
	}

	if err := s.store.CreateLease(ctx, lease); err != nil {
		return err
	}

	if err := s.store.UpdateUnitStatus(ctx, lease.UnitID, database.UnitOccupied); err != nil {
		s.logger.Warn().Err(err).Str("unit_id", lease.UnitID).Msg("Failed to mark unit occupied")
	}

	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type: events.EventLeaseCreated,
			Data: map[string]interface{}{"lease_id": lease.ID, "tenant_id": lease.TenantID},
		})
	}

	s.logger.Info().
		Str("lease_id", lease.ID).
		Str("tenant_id", lease.TenantID).
		Float64("rent_amount", lease.RentAmount).
		Msg("Lease created")

	return nil
}

// InitialObligations previews the one-time amounts due to activate a lease.
func (s *Service) InitialObligations(ctx context.Context, leaseID string) (*billing.InitialObligations, error) {
	lease, err := s.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	obligations := s.resolver.Resolve(lease.Terms())
	return &obligations, nil
}

// ActivateInput carries the activation request: when rent starts and how
// the initial obligations were paid.
type ActivateInput struct {
	FirstRentStart time.Time
	PaymentMethod  string
	PaidAt         time.Time
}

// Activate records the initial obligation payments (deposit, agency fees,
// and the first rent when the lease bills upfront) in one transaction and
// flips the lease to active. Repeat calls return
// billing.ErrDuplicatePeriodPayment.
func (s *Service) Activate(ctx context.Context, leaseID string, in ActivateInput) (*billing.InitialObligations, error) {
	lease, err := s.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	if in.FirstRentStart.IsZero() {
		return nil, billing.ErrMissingAnchorDate
	}
	if in.PaidAt.IsZero() {
		in.PaidAt = s.now()
	}

	obligations := s.resolver.Resolve(lease.Terms())

	paidAt := in.PaidAt
	method := in.PaymentMethod
	rows := []*database.Payment{
		buildPaidPayment(leaseID, billing.PaymentDeposit, obligations.Deposit, method, paidAt),
		buildPaidPayment(leaseID, billing.PaymentAgencyFees, obligations.AgencyFees, method, paidAt),
	}

	if obligations.BundleFirstRent {
		first := buildPaidPayment(leaseID, billing.PaymentRent, obligations.FirstRent, method, paidAt)
		start := billing.DateOnly(in.FirstRentStart)
		end := billing.PeriodEnd(start, lease.Terms().Frequency)
		first.PaymentPeriodStart = &start
		first.PaymentPeriodEnd = &end
		rows = append(rows, first)
	}

	if err := s.store.CreateInitialPayments(ctx, leaseID, billing.DateOnly(in.FirstRentStart), rows); err != nil {
		return nil, err
	}

	s.invalidate(ctx, leaseID)

	if s.bus != nil {
		s.bus.PublishLeaseActivated(leaseID, obligations.Total, in.FirstRentStart)
	}

	s.logger.Info().
		Str("lease_id", leaseID).
		Float64("total", obligations.Total).
		Time("first_rent_start", in.FirstRentStart).
		Msg("Lease activated")

	return &obligations, nil
}

// Schedule computes the full derived schedule for a lease as of now.
func (s *Service) Schedule(ctx context.Context, leaseID string) (*Schedule, error) {
	lease, err := s.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	// Billing is locked until the initial obligations are settled.
	if !lease.InitialPaymentsCompleted {
		return &Schedule{LeaseID: leaseID, Locked: true}, nil
	}

	payments, err := s.store.GetPaymentsByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	records := database.Records(payments)

	anchor, err := billing.ResolveAnchor(records)
	if err != nil {
		// A lease flagged complete without an anchored deposit is a data
		// inconsistency: degrade to an empty schedule and surface it.
		s.logger.Warn().Str("lease_id", leaseID).Msg("Activated lease has no anchor date")
		return &Schedule{
			LeaseID: leaseID,
			Warning: "no first rent start date recorded; schedule unavailable",
		}, nil
	}

	asOf := s.now()
	terms := lease.Terms()

	periods, err := billing.GeneratePeriods(anchor, terms.Frequency, terms.RentAmount, asOf, terms.EndDate)
	if err != nil {
		return nil, err
	}
	periods = s.classifier.ClassifyAll(periods, records, asOf)

	current, err := billing.CurrentPeriod(anchor, terms.Frequency, terms.RentAmount, asOf)
	if err != nil {
		return nil, err
	}
	if current != nil && (terms.EndDate == nil || !current.Start.After(billing.DateOnly(*terms.EndDate))) {
		classified := s.classifier.ClassifyAll([]billing.Period{*current}, records, asOf)
		classified[0].Current = true
		current = &classified[0]
	} else {
		current = nil
	}

	all := periods
	if current != nil {
		all = append(append([]billing.Period{}, periods...), *current)
	}
	summary := billing.Summarize(all, records)

	sched := &Schedule{
		LeaseID:       leaseID,
		Periods:       periods,
		CurrentPeriod: current,
		Summary:       summary,
	}

	if s.cache != nil {
		s.cache.PutSummary(ctx, leaseID, &summary)
	}

	return sched, nil
}

// RecordRentPaymentInput carries a rent payment for one period.
type RecordRentPaymentInput struct {
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Amount        float64
	PaymentMethod string
	PaidAt        time.Time
}

// RecordRentPayment records a paid rent entry for a period. Returns
// billing.ErrBillingLocked before activation and
// billing.ErrDuplicatePeriodPayment when the period is already settled.
func (s *Service) RecordRentPayment(ctx context.Context, leaseID string, in RecordRentPaymentInput) (*database.Payment, error) {
	lease, err := s.store.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	if !lease.InitialPaymentsCompleted {
		return nil, billing.ErrBillingLocked
	}

	if in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("period bounds are required: %w", ErrInvalidPeriod)
	}
	if in.PeriodEnd.Before(in.PeriodStart) {
		return nil, fmt.Errorf("period end precedes period start: %w", ErrInvalidPeriod)
	}

	// The period must line up with the lease's calendar: its end must be
	// what the frequency derives from its start.
	terms := lease.Terms()
	start := billing.DateOnly(in.PeriodStart)
	end := billing.DateOnly(in.PeriodEnd)
	if want := billing.PeriodEnd(start, terms.Frequency); !want.Equal(end) {
		return nil, fmt.Errorf("period %s..%s does not match %s frequency: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), terms.Frequency, ErrInvalidPeriod)
	}

	if in.Amount <= 0 {
		in.Amount = terms.RentAmount
	}
	if in.PaidAt.IsZero() {
		in.PaidAt = s.now()
	}

	payment := buildPaidPayment(leaseID, billing.PaymentRent, in.Amount, in.PaymentMethod, in.PaidAt)
	payment.DueDate = start
	payment.PaymentPeriodStart = &start
	payment.PaymentPeriodEnd = &end

	if err := s.store.CreateRentPayment(ctx, payment); err != nil {
		return nil, err
	}

	s.invalidate(ctx, leaseID)

	if s.bus != nil {
		s.bus.PublishPaymentRecorded(leaseID, payment.ID, payment.PaymentType, payment.Amount)
	}

	s.logger.Info().
		Str("lease_id", leaseID).
		Str("payment_id", payment.ID).
		Float64("amount", payment.Amount).
		Msg("Rent payment recorded")

	return payment, nil
}

// Summary returns the cached payment summary for a lease, recomputing the
// schedule on a miss.
func (s *Service) Summary(ctx context.Context, leaseID string) (*billing.PaymentSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSummary(ctx, leaseID); err == nil {
			return cached, nil
		}
	}

	sched, err := s.Schedule(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return &sched.Summary, nil
}

// Payments returns the raw payment ledger for a lease.
func (s *Service) Payments(ctx context.Context, leaseID string) ([]database.Payment, error) {
	if _, err := s.store.GetLease(ctx, leaseID); err != nil {
		return nil, err
	}
	return s.store.GetPaymentsByLease(ctx, leaseID)
}

// Penalties returns the recorded late penalties for a lease.
func (s *Service) Penalties(ctx context.Context, leaseID string) ([]database.LatePenalty, error) {
	if _, err := s.store.GetLease(ctx, leaseID); err != nil {
		return nil, err
	}
	return s.store.ListPenaltiesByLease(ctx, leaseID)
}

// Terminate ends a lease early and frees its unit.
func (s *Service) Terminate(ctx context.Context, leaseID string) error {
	lease, err := s.store.GetLease(ctx, leaseID)
	if err != nil {
		return err
	}
	if lease.Status == string(billing.LeaseTerminated) {
		return nil
	}

	if err := s.store.UpdateLeaseStatus(ctx, leaseID, string(billing.LeaseTerminated)); err != nil {
		return err
	}
	if err := s.store.UpdateUnitStatus(ctx, lease.UnitID, database.UnitAvailable); err != nil {
		s.logger.Warn().Err(err).Str("unit_id", lease.UnitID).Msg("Failed to free unit")
	}

	s.invalidate(ctx, leaseID)

	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type: events.EventLeaseTerminated,
			Data: map[string]interface{}{"lease_id": leaseID},
		})
	}

	return nil
}

// RefreshLease reclassifies one lease's periods, persists penalties for
// late periods, expires fixed leases past their end date and publishes
// due-soon/late events. Used by the background refresher.
func (s *Service) RefreshLease(ctx context.Context, lease *database.Lease) error {
	sched, err := s.Schedule(ctx, lease.ID)
	if err != nil {
		return err
	}
	if sched.Locked || sched.Warning != "" {
		return nil
	}

	periods := sched.Periods
	if sched.CurrentPeriod != nil {
		periods = append(append([]billing.Period{}, periods...), *sched.CurrentPeriod)
	}

	for _, p := range periods {
		switch p.Status {
		case billing.PeriodLate:
			penalty := &database.LatePenalty{
				ID:          uuid.New().String(),
				LeaseID:     lease.ID,
				PeriodStart: p.Start,
				PeriodEnd:   p.End,
				Amount:      p.Penalty,
				DaysLate:    p.DaysLate,
				Status:      "pending",
			}
			if err := s.store.UpsertLatePenalty(ctx, penalty); err != nil {
				s.logger.Error().Err(err).Str("lease_id", lease.ID).Msg("Failed to upsert penalty")
			} else if s.bus != nil && p.Penalty > 0 {
				s.bus.Publish(events.Event{
					Type: events.EventPenaltyApplied,
					Data: map[string]interface{}{
						"lease_id":     lease.ID,
						"period_start": p.Start.Format("2006-01-02"),
						"amount":       p.Penalty,
						"days_late":    p.DaysLate,
					},
				})
			}
			if s.bus != nil {
				s.bus.PublishPeriodLate(lease.ID, p.Start, p.End, p.Amount, p.Penalty, p.DaysLate)
			}
		case billing.PeriodDueSoon:
			if s.bus != nil {
				s.bus.PublishPeriodDueSoon(lease.ID, p.Start, p.End, p.Amount)
			}
		}
	}

	// Expire fixed leases whose term has ended.
	terms := lease.Terms()
	if terms.DurationType == billing.DurationFixed && terms.EndDate != nil &&
		s.now().After(billing.DateOnly(*terms.EndDate).AddDate(0, 0, 1)) &&
		lease.Status == string(billing.LeaseActive) {
		if err := s.store.UpdateLeaseStatus(ctx, lease.ID, string(billing.LeaseExpired)); err != nil {
			return err
		}
		if err := s.store.UpdateUnitStatus(ctx, lease.UnitID, database.UnitAvailable); err != nil {
			s.logger.Warn().Err(err).Str("unit_id", lease.UnitID).Msg("Failed to free unit")
		}
		if s.bus != nil {
			s.bus.PublishLeaseExpired(lease.ID, *terms.EndDate)
		}
		s.logger.Info().Str("lease_id", lease.ID).Msg("Lease expired")
	}

	return nil
}

// RefreshAll refreshes every active lease. Per-lease failures are logged
// and do not stop the sweep.
func (s *Service) RefreshAll(ctx context.Context) error {
	active, err := s.store.ListActiveLeases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active leases: %w", err)
	}

	var failed int
	for i := range active {
		if err := s.RefreshLease(ctx, &active[i]); err != nil {
			failed++
			s.logger.Error().Err(err).Str("lease_id", active[i].ID).Msg("Lease refresh failed")
		}
	}

	if failed > 0 {
		if s.bus != nil {
			s.bus.PublishError("refresher", fmt.Sprintf("%d of %d lease refreshes failed", failed, len(active)))
		}
		return fmt.Errorf("%d of %d lease refreshes failed", failed, len(active))
	}
	return nil
}

// IsNotFound reports whether err is the store's not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

// invalidate drops cached views after a write and announces that the
// lease's summary has changed.
func (s *Service) invalidate(ctx context.Context, leaseID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, leaseID)
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type: events.EventSummaryUpdated,
			Data: map[string]interface{}{"lease_id": leaseID},
		})
	}
}

func buildPaidPayment(leaseID string, kind billing.PaymentKind, amount float64, method string, paidAt time.Time) *database.Payment {
	p := &database.Payment{
		ID:          uuid.New().String(),
		LeaseID:     leaseID,
		Amount:      amount,
		PaymentType: string(kind),
		Status:      string(billing.PaymentStatePaid),
		DueDate:     billing.DateOnly(paidAt),
		PaymentDate: &paidAt,
	}
	if method != "" {
		p.PaymentMethod = &method
	}
	return p
}
