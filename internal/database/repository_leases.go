package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const leaseColumns = `id, tenant_id, unit_id, start_date, end_date, rent_amount, deposit_amount,
	payment_frequency, duration_type, payment_type, status,
	initial_fees_paid, initial_payments_completed, created_at, updated_at`

func scanLease(row pgx.Row) (*Lease, error) {
	var l Lease
	err := row.Scan(
		&l.ID, &l.TenantID, &l.UnitID, &l.StartDate, &l.EndDate,
		&l.RentAmount, &l.DepositAmount,
		&l.PaymentFrequency, &l.DurationType, &l.PaymentType, &l.Status,
		&l.InitialFeesPaid, &l.InitialPaymentsCompleted, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLease inserts a new lease in pending state
func (r *Repository) CreateLease(ctx context.Context, lease *Lease) error {
	query := `
		INSERT INTO leases (id, tenant_id, unit_id, start_date, end_date, rent_amount, deposit_amount,
			payment_frequency, duration_type, payment_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		lease.ID, lease.TenantID, lease.UnitID, lease.StartDate, lease.EndDate,
		lease.RentAmount, lease.DepositAmount,
		lease.PaymentFrequency, lease.DurationType, lease.PaymentType, lease.Status,
	).Scan(&lease.CreatedAt, &lease.UpdatedAt)
}

// GetLease retrieves a lease by id
func (r *Repository) GetLease(ctx context.Context, id string) (*Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE id = $1`
	lease, err := scanLease(r.db.Pool.QueryRow(ctx, query, id))
	if err == ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	return lease, nil
}

// ListLeases retrieves leases, optionally filtered by status or tenant
func (r *Repository) ListLeases(ctx context.Context, status, tenantID string, limit, offset int) ([]Lease, error) {
	query := `
		SELECT ` + leaseColumns + `
		FROM leases
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR tenant_id::text = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Pool.Query(ctx, query, status, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leases []Lease
	for rows.Next() {
		lease, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, *lease)
	}
	return leases, rows.Err()
}

// ListActiveLeases retrieves every active lease. Used by the status
// refresher, which re-classifies all of them on each pass.
func (r *Repository) ListActiveLeases(ctx context.Context) ([]Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE status = 'active' ORDER BY created_at`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leases []Lease
	for rows.Next() {
		lease, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, *lease)
	}
	return leases, rows.Err()
}

// UpdateLeaseStatus updates a lease's lifecycle status
func (r *Repository) UpdateLeaseStatus(ctx context.Context, id, status string) error {
	query := `UPDATE leases SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
