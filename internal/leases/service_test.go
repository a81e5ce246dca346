package leases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"property-backoffice/internal/billing"
	"property-backoffice/internal/database"

	"github.com/rs/zerolog"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func floatEquals(a, b float64) bool {
	const epsilon = 1e-9
	diff := a - b
	return diff < epsilon && diff > -epsilon
}

// ============================================================================
// FAKE STORE
// ============================================================================

type fakeStore struct {
	leases    map[string]*database.Lease
	units     map[string]*database.Unit
	tenants   map[string]*database.Tenant
	payments  map[string][]database.Payment
	penalties map[string][]database.LatePenalty
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leases:    make(map[string]*database.Lease),
		units:     make(map[string]*database.Unit),
		tenants:   make(map[string]*database.Tenant),
		payments:  make(map[string][]database.Payment),
		penalties: make(map[string][]database.LatePenalty),
	}
}

func (f *fakeStore) CreateLease(ctx context.Context, lease *database.Lease) error {
	cp := *lease
	f.leases[lease.ID] = &cp
	return nil
}

func (f *fakeStore) GetLease(ctx context.Context, id string) (*database.Lease, error) {
	lease, ok := f.leases[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *lease
	return &cp, nil
}

func (f *fakeStore) ListLeases(ctx context.Context, status, tenantID string, limit, offset int) ([]database.Lease, error) {
	var out []database.Lease
	for _, l := range f.leases {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeStore) ListActiveLeases(ctx context.Context) ([]database.Lease, error) {
	var out []database.Lease
	for _, l := range f.leases {
		if l.Status == "active" {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateLeaseStatus(ctx context.Context, id, status string) error {
	lease, ok := f.leases[id]
	if !ok {
		return database.ErrNotFound
	}
	lease.Status = status
	return nil
}

func (f *fakeStore) GetUnit(ctx context.Context, id string) (*database.Unit, error) {
	unit, ok := f.units[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *unit
	return &cp, nil
}

func (f *fakeStore) UpdateUnitStatus(ctx context.Context, id, status string) error {
	unit, ok := f.units[id]
	if !ok {
		return database.ErrNotFound
	}
	unit.Status = status
	return nil
}

func (f *fakeStore) GetTenant(ctx context.Context, id string) (*database.Tenant, error) {
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *tenant
	return &cp, nil
}

func (f *fakeStore) GetPaymentsByLease(ctx context.Context, leaseID string) ([]database.Payment, error) {
	return append([]database.Payment{}, f.payments[leaseID]...), nil
}

func (f *fakeStore) CreateInitialPayments(ctx context.Context, leaseID string, firstRentStart time.Time, payments []*database.Payment) error {
	for _, existing := range f.payments[leaseID] {
		if existing.PaymentType == "deposit" {
			return billing.ErrDuplicatePeriodPayment
		}
	}
	for _, p := range payments {
		cp := *p
		if cp.PaymentType == "deposit" {
			start := firstRentStart
			cp.FirstRentStartDate = &start
		}
		f.payments[leaseID] = append(f.payments[leaseID], cp)
	}
	lease, ok := f.leases[leaseID]
	if !ok {
		return database.ErrNotFound
	}
	lease.InitialFeesPaid = true
	lease.InitialPaymentsCompleted = true
	lease.Status = "active"
	return nil
}

func (f *fakeStore) CreateRentPayment(ctx context.Context, payment *database.Payment) error {
	for _, existing := range f.payments[payment.LeaseID] {
		if existing.PaymentType == "rent" &&
			existing.PaymentPeriodStart != nil && payment.PaymentPeriodStart != nil &&
			existing.PaymentPeriodStart.Equal(*payment.PaymentPeriodStart) {
			return billing.ErrDuplicatePeriodPayment
		}
	}
	f.payments[payment.LeaseID] = append(f.payments[payment.LeaseID], *payment)
	return nil
}

func (f *fakeStore) UpsertLatePenalty(ctx context.Context, penalty *database.LatePenalty) error {
	for i, existing := range f.penalties[penalty.LeaseID] {
		if existing.PeriodStart.Equal(penalty.PeriodStart) {
			f.penalties[penalty.LeaseID][i] = *penalty
			return nil
		}
	}
	f.penalties[penalty.LeaseID] = append(f.penalties[penalty.LeaseID], *penalty)
	return nil
}

func (f *fakeStore) ListPenaltiesByLease(ctx context.Context, leaseID string) ([]database.LatePenalty, error) {
	return append([]database.LatePenalty{}, f.penalties[leaseID]...), nil
}

// fakeCache records invalidations
type fakeCache struct {
	summaries     map[string]*billing.PaymentSummary
	invalidations []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{summaries: make(map[string]*billing.PaymentSummary)}
}

func (f *fakeCache) GetSummary(ctx context.Context, leaseID string) (*billing.PaymentSummary, error) {
	if s, ok := f.summaries[leaseID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("miss")
}

func (f *fakeCache) PutSummary(ctx context.Context, leaseID string, summary *billing.PaymentSummary) {
	f.summaries[leaseID] = summary
}

func (f *fakeCache) Invalidate(ctx context.Context, leaseID string) {
	f.invalidations = append(f.invalidations, leaseID)
	delete(f.summaries, leaseID)
}

// ============================================================================
// TEST SETUP
// ============================================================================

func newTestService(t *testing.T, asOf time.Time) (*Service, *fakeStore, *fakeCache) {
	t.Helper()
	store := newFakeStore()
	cache := newFakeCache()
	svc := NewService(store, cache, nil, DefaultConfig(), zerolog.Nop())
	svc.now = func() time.Time { return asOf }

	store.tenants["t1"] = &database.Tenant{ID: "t1", FullName: "Awa Diop"}
	store.units["u1"] = &database.Unit{ID: "u1", Label: "Apt 3B", Status: database.UnitAvailable}

	return svc, store, cache
}

func seedLease(store *fakeStore, id string, rent float64, freq string) *database.Lease {
	lease := &database.Lease{
		ID:               id,
		TenantID:         "t1",
		UnitID:           "u1",
		StartDate:        date(2024, 1, 1),
		RentAmount:       rent,
		DepositAmount:    rent,
		PaymentFrequency: freq,
		DurationType:     "month_to_month",
		PaymentType:      "upfront",
		Status:           "pending",
	}
	store.leases[id] = lease
	return lease
}

// ============================================================================
// TEST: CreateLease
// ============================================================================

func TestCreateLease_MarksUnitOccupied(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 1, 10))

	lease := &database.Lease{
		TenantID:         "t1",
		UnitID:           "u1",
		StartDate:        date(2024, 1, 1),
		RentAmount:       150000,
		DepositAmount:    150000,
		PaymentFrequency: "monthly",
		DurationType:     "month_to_month",
		PaymentType:      "upfront",
	}
	if err := svc.CreateLease(context.Background(), lease); err != nil {
		t.Fatalf("CreateLease failed: %v", err)
	}

	if lease.ID == "" {
		t.Error("expected generated lease ID")
	}
	if _, ok := store.leases[lease.ID]; !ok {
		t.Errorf("stored lease not found under generated ID %s", lease.ID)
	}
	if lease.Status != "pending" {
		t.Errorf("expected pending status, got %s", lease.Status)
	}
	if store.units["u1"].Status != database.UnitOccupied {
		t.Errorf("expected unit occupied, got %s", store.units["u1"].Status)
	}
}

func TestCreateLease_RejectsOccupiedUnit(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 1, 10))
	store.units["u1"].Status = database.UnitOccupied

	lease := &database.Lease{
		TenantID:         "t1",
		UnitID:           "u1",
		StartDate:        date(2024, 1, 1),
		RentAmount:       150000,
		PaymentFrequency: "monthly",
		DurationType:     "month_to_month",
		PaymentType:      "upfront",
	}
	if err := svc.CreateLease(context.Background(), lease); !errors.Is(err, ErrUnitOccupied) {
		t.Errorf("expected ErrUnitOccupied, got %v", err)
	}
}

func TestCreateLease_RejectsInvalidTerms(t *testing.T) {
	svc, _, _ := newTestService(t, date(2024, 1, 10))

	lease := &database.Lease{
		TenantID:         "t1",
		UnitID:           "u1",
		StartDate:        date(2024, 1, 1),
		RentAmount:       0, // invalid
		PaymentFrequency: "monthly",
		DurationType:     "month_to_month",
		PaymentType:      "upfront",
	}
	err := svc.CreateLease(context.Background(), lease)
	var terr billing.TermsError
	if !errors.As(err, &terr) {
		t.Errorf("expected TermsError, got %v", err)
	}
}

func TestCreateLease_UnknownFrequencyDefaultsToMonthlyAndWarns(t *testing.T) {
	store := newFakeStore()
	var logBuf bytes.Buffer
	svc := NewService(store, nil, nil, DefaultConfig(), zerolog.New(&logBuf))
	svc.now = func() time.Time { return date(2024, 1, 10) }

	store.tenants["t1"] = &database.Tenant{ID: "t1", FullName: "Awa Diop"}
	store.units["u1"] = &database.Unit{ID: "u1", Label: "Apt 3B", Status: database.UnitAvailable}

	lease := &database.Lease{
		TenantID:         "t1",
		UnitID:           "u1",
		StartDate:        date(2024, 1, 1),
		RentAmount:       150000,
		DepositAmount:    150000,
		PaymentFrequency: "fortnightly",
		DurationType:     "month_to_month",
		PaymentType:      "upfront",
	}
	if err := svc.CreateLease(context.Background(), lease); err != nil {
		t.Fatalf("CreateLease failed: %v", err)
	}

	if lease.PaymentFrequency != string(billing.FrequencyMonthly) {
		t.Errorf("expected frequency normalized to monthly, got %s", lease.PaymentFrequency)
	}
	if !strings.Contains(logBuf.String(), "fortnightly") {
		t.Error("expected a warning naming the unrecognized frequency")
	}
}

// ============================================================================
// TEST: Activation and initial obligations
// ============================================================================

func TestActivate_RecordsInitialPayments(t *testing.T) {
	svc, store, cache := newTestService(t, date(2024, 1, 10))
	seedLease(store, "l1", 150000, "monthly")

	obligations, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 15),
		PaymentMethod:  "cash",
		PaidAt:         date(2024, 1, 10),
	})
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	// deposit 150000 + agency fees 75000 + bundled first rent 150000
	if !floatEquals(obligations.Total, 375000) {
		t.Errorf("expected total 375000, got %.2f", obligations.Total)
	}

	payments := store.payments["l1"]
	if len(payments) != 3 {
		t.Fatalf("expected 3 initial payments, got %d", len(payments))
	}

	var deposit *database.Payment
	for i := range payments {
		if payments[i].PaymentType == "deposit" {
			deposit = &payments[i]
		}
	}
	if deposit == nil {
		t.Fatal("no deposit payment recorded")
	}
	if deposit.FirstRentStartDate == nil || !deposit.FirstRentStartDate.Equal(date(2024, 1, 15)) {
		t.Errorf("anchor not recorded on deposit: %v", deposit.FirstRentStartDate)
	}

	if !store.leases["l1"].InitialPaymentsCompleted {
		t.Error("expected initial payments completed gate to flip")
	}
	if store.leases["l1"].Status != "active" {
		t.Errorf("expected active lease, got %s", store.leases["l1"].Status)
	}
	if len(cache.invalidations) == 0 {
		t.Error("expected cache invalidation on activation")
	}
}

func TestActivate_EndOfPeriodSkipsFirstRent(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 1, 10))
	lease := seedLease(store, "l1", 150000, "monthly")
	lease.PaymentType = "end_of_period"

	obligations, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 15),
	})
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	if obligations.BundleFirstRent {
		t.Error("end_of_period lease should not bundle first rent")
	}
	if len(store.payments["l1"]) != 2 {
		t.Errorf("expected 2 initial payments, got %d", len(store.payments["l1"]))
	}
	if !floatEquals(obligations.Total, 225000) {
		t.Errorf("expected total 225000, got %.2f", obligations.Total)
	}
}

func TestActivate_SecondCallRejected(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 1, 10))
	seedLease(store, "l1", 150000, "monthly")

	if _, err := svc.Activate(context.Background(), "l1", ActivateInput{FirstRentStart: date(2024, 1, 15)}); err != nil {
		t.Fatalf("first Activate failed: %v", err)
	}

	_, err := svc.Activate(context.Background(), "l1", ActivateInput{FirstRentStart: date(2024, 1, 15)})
	if !errors.Is(err, billing.ErrDuplicatePeriodPayment) {
		t.Errorf("expected ErrDuplicatePeriodPayment, got %v", err)
	}
}

func TestActivate_RequiresFirstRentStart(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 1, 10))
	seedLease(store, "l1", 150000, "monthly")

	_, err := svc.Activate(context.Background(), "l1", ActivateInput{})
	if !errors.Is(err, billing.ErrMissingAnchorDate) {
		t.Errorf("expected ErrMissingAnchorDate, got %v", err)
	}
}

// ============================================================================
// TEST: Schedule
// ============================================================================

func TestSchedule_LockedBeforeActivation(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 3, 20))
	seedLease(store, "l1", 150000, "monthly")

	sched, err := svc.Schedule(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if !sched.Locked {
		t.Error("expected locked schedule before activation")
	}
	if len(sched.Periods) != 0 {
		t.Errorf("locked schedule should have no periods, got %d", len(sched.Periods))
	}
}

func TestSchedule_GeneratesClassifiedPeriods(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 3, 20))
	seedLease(store, "l1", 150000, "monthly")

	if _, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 15),
		PaidAt:         date(2024, 1, 10),
	}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	sched, err := svc.Schedule(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	// As of 2024-03-20: past periods Jan 15 - Feb 14 and Feb 15 - Mar 14,
	// current period Mar 15 - Apr 14.
	if len(sched.Periods) != 2 {
		t.Fatalf("expected 2 past periods, got %d", len(sched.Periods))
	}
	if sched.CurrentPeriod == nil {
		t.Fatal("expected a current period")
	}
	if !sched.CurrentPeriod.Start.Equal(date(2024, 3, 15)) {
		t.Errorf("current period start = %v, want 2024-03-15", sched.CurrentPeriod.Start)
	}
	if !sched.CurrentPeriod.Current {
		t.Error("current period should be flagged current")
	}

	// First period is covered by the bundled first rent, second is unpaid
	// and late.
	if sched.Periods[0].Status != billing.PeriodPaid {
		t.Errorf("first period status = %s, want paid", sched.Periods[0].Status)
	}
	if sched.Periods[1].Status != billing.PeriodLate {
		t.Errorf("second period status = %s, want late", sched.Periods[1].Status)
	}
	if sched.Periods[1].DaysLate != 6 {
		t.Errorf("second period days late = %d, want 6", sched.Periods[1].DaysLate)
	}
}

func TestSchedule_MissingAnchorDegrades(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 3, 20))
	lease := seedLease(store, "l1", 150000, "monthly")
	// Simulate legacy data: gates flipped but no anchored deposit row.
	lease.InitialPaymentsCompleted = true
	lease.Status = "active"

	sched, err := svc.Schedule(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if sched.Warning == "" {
		t.Error("expected warning for missing anchor")
	}
	if len(sched.Periods) != 0 || sched.CurrentPeriod != nil {
		t.Error("expected empty schedule when anchor is missing")
	}
}

// ============================================================================
// TEST: Rent payment recording
// ============================================================================

func TestRecordRentPayment_LockedBeforeActivation(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 2, 20))
	seedLease(store, "l1", 150000, "monthly")

	_, err := svc.RecordRentPayment(context.Background(), "l1", RecordRentPaymentInput{
		PeriodStart: date(2024, 2, 15),
		PeriodEnd:   date(2024, 3, 14),
	})
	if !errors.Is(err, billing.ErrBillingLocked) {
		t.Errorf("expected ErrBillingLocked, got %v", err)
	}
}

func TestRecordRentPayment_SettlesPeriod(t *testing.T) {
	svc, store, cache := newTestService(t, date(2024, 3, 20))
	seedLease(store, "l1", 150000, "monthly")
	if _, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 15),
	}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	cache.invalidations = nil

	payment, err := svc.RecordRentPayment(context.Background(), "l1", RecordRentPaymentInput{
		PeriodStart:   date(2024, 2, 15),
		PeriodEnd:     date(2024, 3, 14),
		PaymentMethod: "transfer",
		PaidAt:        date(2024, 3, 20),
	})
	if err != nil {
		t.Fatalf("RecordRentPayment failed: %v", err)
	}
	if !floatEquals(payment.Amount, 150000) {
		t.Errorf("amount defaulted to %.2f, want rent 150000", payment.Amount)
	}
	if len(cache.invalidations) != 1 {
		t.Errorf("expected 1 cache invalidation, got %d", len(cache.invalidations))
	}

	sched, err := svc.Schedule(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if sched.Periods[1].Status != billing.PeriodPaid {
		t.Errorf("settled period status = %s, want paid", sched.Periods[1].Status)
	}
}

func TestRecordRentPayment_DuplicateRejected(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 3, 20))
	seedLease(store, "l1", 150000, "monthly")
	if _, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 15),
	}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	in := RecordRentPaymentInput{
		PeriodStart: date(2024, 2, 15),
		PeriodEnd:   date(2024, 3, 14),
	}
	if _, err := svc.RecordRentPayment(context.Background(), "l1", in); err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	_, err := svc.RecordRentPayment(context.Background(), "l1", in)
	if !errors.Is(err, billing.ErrDuplicatePeriodPayment) {
		t.Errorf("expected ErrDuplicatePeriodPayment, got %v", err)
	}
}

func TestRecordRentPayment_MisalignedPeriodRejected(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 3, 20))
	seedLease(store, "l1", 150000, "monthly")
	if _, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 15),
	}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	_, err := svc.RecordRentPayment(context.Background(), "l1", RecordRentPaymentInput{
		PeriodStart: date(2024, 2, 15),
		PeriodEnd:   date(2024, 3, 20), // not what monthly derives
	})
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

// ============================================================================
// TEST: Summary read-through
// ============================================================================

func TestSummary_UsesCache(t *testing.T) {
	svc, store, cache := newTestService(t, date(2024, 3, 20))
	seedLease(store, "l1", 150000, "monthly")
	cache.summaries["l1"] = &billing.PaymentSummary{TotalReceived: 999}

	summary, err := svc.Summary(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !floatEquals(summary.TotalReceived, 999) {
		t.Errorf("expected cached summary, got %.2f", summary.TotalReceived)
	}
}

func TestSummary_RecomputesOnMiss(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 3, 20))
	seedLease(store, "l1", 150000, "monthly")
	if _, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 15),
	}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	summary, err := svc.Summary(context.Background(), "l1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	// deposit + agency fees + bundled first rent were all recorded paid
	if !floatEquals(summary.TotalReceived, 375000) {
		t.Errorf("total received = %.2f, want 375000", summary.TotalReceived)
	}
}

// ============================================================================
// TEST: Refresh sweep
// ============================================================================

func TestRefreshLease_PersistsPenaltiesForLatePeriods(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 3, 20))
	seedLease(store, "l1", 150000, "monthly")
	if _, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 15),
	}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	if err := svc.RefreshLease(context.Background(), store.leases["l1"]); err != nil {
		t.Fatalf("RefreshLease failed: %v", err)
	}

	penalties := store.penalties["l1"]
	if len(penalties) != 1 {
		t.Fatalf("expected 1 penalty for the late Feb period, got %d", len(penalties))
	}
	if !penalties[0].PeriodStart.Equal(date(2024, 2, 15)) {
		t.Errorf("penalty period start = %v, want 2024-02-15", penalties[0].PeriodStart)
	}
	if penalties[0].DaysLate != 6 {
		t.Errorf("penalty days late = %d, want 6", penalties[0].DaysLate)
	}
	// 6 days late = 1 started month at 5000, under the 10% cap
	if !floatEquals(penalties[0].Amount, 5000) {
		t.Errorf("penalty amount = %.2f, want 5000", penalties[0].Amount)
	}

	// Re-running must not duplicate the penalty.
	if err := svc.RefreshLease(context.Background(), store.leases["l1"]); err != nil {
		t.Fatalf("second RefreshLease failed: %v", err)
	}
	if len(store.penalties["l1"]) != 1 {
		t.Errorf("refresh is not idempotent: %d penalties", len(store.penalties["l1"]))
	}
}

func TestRefreshLease_ExpiresFixedLeasePastEnd(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 7, 10))
	lease := seedLease(store, "l1", 100000, "monthly")
	end := date(2024, 6, 30)
	lease.DurationType = "fixed"
	lease.EndDate = &end
	lease.StartDate = date(2024, 1, 1)

	if _, err := svc.Activate(context.Background(), "l1", ActivateInput{
		FirstRentStart: date(2024, 1, 1),
	}); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	if err := svc.RefreshLease(context.Background(), store.leases["l1"]); err != nil {
		t.Fatalf("RefreshLease failed: %v", err)
	}

	if store.leases["l1"].Status != "expired" {
		t.Errorf("lease status = %s, want expired", store.leases["l1"].Status)
	}
	if store.units["u1"].Status != database.UnitAvailable {
		t.Errorf("unit status = %s, want available", store.units["u1"].Status)
	}
}

// ============================================================================
// TEST: Terminate
// ============================================================================

func TestTerminate_FreesUnit(t *testing.T) {
	svc, store, _ := newTestService(t, date(2024, 3, 20))
	lease := seedLease(store, "l1", 150000, "monthly")
	lease.Status = "active"
	store.units["u1"].Status = database.UnitOccupied

	if err := svc.Terminate(context.Background(), "l1"); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	if store.leases["l1"].Status != "terminated" {
		t.Errorf("lease status = %s, want terminated", store.leases["l1"].Status)
	}
	if store.units["u1"].Status != database.UnitAvailable {
		t.Errorf("unit status = %s, want available", store.units["u1"].Status)
	}
}
