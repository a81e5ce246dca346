package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"property-backoffice/internal/billing"
)

const paymentColumns = `id, lease_id, amount, payment_type, payment_method, status,
	due_date, payment_date, payment_period_start, payment_period_end, first_rent_start_date,
	created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.LeaseID, &p.Amount, &p.PaymentType, &p.PaymentMethod, &p.Status,
		&p.DueDate, &p.PaymentDate, &p.PaymentPeriodStart, &p.PaymentPeriodEnd, &p.FirstRentStartDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetPaymentsByLease retrieves the full payment ledger for a lease, oldest
// first.
func (r *Repository) GetPaymentsByLease(ctx context.Context, leaseID string) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE lease_id = $1 ORDER BY due_date, created_at`
	rows, err := r.db.Pool.Query(ctx, query, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// GetPayment retrieves a payment by id
func (r *Repository) GetPayment(ctx context.Context, id string) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.Pool.QueryRow(ctx, query, id))
	if err == ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// CreateInitialPayments records the initial-obligation batch (deposit,
// agency fees, optionally the bundled first rent) and flips the lease gates,
// all in one transaction. The first-rent anchor date is written on the
// deposit payment and never updated afterwards. The payment rows and the
// gate flags commit or roll back as a unit.
func (r *Repository) CreateInitialPayments(ctx context.Context, leaseID string, firstRentStart time.Time, payments []*Payment) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Check-then-insert: a lease gets exactly one initial batch.
	var existing int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments WHERE lease_id = $1 AND payment_type = 'deposit'`,
		leaseID,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check existing deposit: %w", err)
	}
	if existing > 0 {
		return billing.ErrDuplicatePeriodPayment
	}

	insert := `
		INSERT INTO payments (id, lease_id, amount, payment_type, payment_method, status,
			due_date, payment_date, payment_period_start, payment_period_end, first_rent_start_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	for _, p := range payments {
		var anchor *time.Time
		if p.PaymentType == string(billing.PaymentDeposit) {
			anchor = &firstRentStart
		}
		err = tx.QueryRow(ctx, insert,
			p.ID, leaseID, p.Amount, p.PaymentType, p.PaymentMethod, p.Status,
			p.DueDate, p.PaymentDate, p.PaymentPeriodStart, p.PaymentPeriodEnd, anchor,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return billing.ErrDuplicatePeriodPayment
			}
			return fmt.Errorf("failed to insert %s payment: %w", p.PaymentType, err)
		}
		p.LeaseID = leaseID
		if anchor != nil {
			p.FirstRentStartDate = anchor
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE leases
		SET initial_fees_paid = TRUE,
			initial_payments_completed = TRUE,
			status = 'active',
			updated_at = NOW()
		WHERE id = $1
	`, leaseID)
	if err != nil {
		return fmt.Errorf("failed to unlock recurring billing: %w", err)
	}

	return tx.Commit(ctx)
}

// CreateRentPayment records a rent payment for one billing period. At most
// one payment may exist per (lease, period_start, period_end) tuple; a
// concurrent or repeated attempt gets billing.ErrDuplicatePeriodPayment.
// The check-then-insert runs inside a transaction and the partial unique
// index backs it up against races.
func (r *Repository) CreateRentPayment(ctx context.Context, payment *Payment) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM payments
		WHERE lease_id = $1 AND payment_type = 'rent'
		  AND payment_period_start = $2 AND payment_period_end = $3
	`, payment.LeaseID, payment.PaymentPeriodStart, payment.PaymentPeriodEnd).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check existing period payment: %w", err)
	}
	if existing > 0 {
		return billing.ErrDuplicatePeriodPayment
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO payments (id, lease_id, amount, payment_type, payment_method, status,
			due_date, payment_date, payment_period_start, payment_period_end)
		VALUES ($1, $2, $3, 'rent', $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`,
		payment.ID, payment.LeaseID, payment.Amount, payment.PaymentMethod, payment.Status,
		payment.DueDate, payment.PaymentDate, payment.PaymentPeriodStart, payment.PaymentPeriodEnd,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return billing.ErrDuplicatePeriodPayment
		}
		return fmt.Errorf("failed to insert rent payment: %w", err)
	}
	payment.PaymentType = string(billing.PaymentRent)

	return tx.Commit(ctx)
}
