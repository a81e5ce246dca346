package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertLatePenalty records or refreshes the penalty for an overdue period.
// The (lease, period) tuple is unique; a later pass with a larger days_late
// updates the row in place so the penalty tracks elapsed time.
func (r *Repository) UpsertLatePenalty(ctx context.Context, penalty *LatePenalty) error {
	query := `
		INSERT INTO late_penalties (id, lease_id, payment_id, period_start, period_end, amount, days_late, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		ON CONFLICT (lease_id, period_start, period_end) DO UPDATE
		SET amount = EXCLUDED.amount,
			days_late = EXCLUDED.days_late,
			updated_at = NOW()
		WHERE late_penalties.status = 'pending'
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		penalty.ID, penalty.LeaseID, penalty.PaymentID, penalty.PeriodStart, penalty.PeriodEnd,
		penalty.Amount, penalty.DaysLate,
	).Scan(&penalty.ID, &penalty.Status, &penalty.CreatedAt, &penalty.UpdatedAt)
	if err == pgx.ErrNoRows {
		// The conflict row is already paid; nothing to refresh.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to upsert late penalty: %w", err)
	}
	return nil
}

// ListPenaltiesByLease retrieves the penalties recorded for a lease
func (r *Repository) ListPenaltiesByLease(ctx context.Context, leaseID string) ([]LatePenalty, error) {
	query := `
		SELECT id, lease_id, payment_id, period_start, period_end, amount, days_late, status, created_at, updated_at
		FROM late_penalties
		WHERE lease_id = $1
		ORDER BY period_start
	`
	rows, err := r.db.Pool.Query(ctx, query, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var penalties []LatePenalty
	for rows.Next() {
		var p LatePenalty
		err := rows.Scan(&p.ID, &p.LeaseID, &p.PaymentID, &p.PeriodStart, &p.PeriodEnd,
			&p.Amount, &p.DaysLate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		penalties = append(penalties, p)
	}
	return penalties, rows.Err()
}

// MarkPenaltyPaid transitions a penalty to paid, linking the settling payment
func (r *Repository) MarkPenaltyPaid(ctx context.Context, id string, paymentID *string) error {
	query := `
		UPDATE late_penalties
		SET status = 'paid', payment_id = COALESCE($2, payment_id), updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, id, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
