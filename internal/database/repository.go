package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("database: not found")

// Repository provides data access methods
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck performs a database health check
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// GetDB returns the underlying DB instance
func (r *Repository) GetDB() *DB {
	return r.db
}

// ============================================================================
// USERS
// ============================================================================

// CreateUser inserts a new agency staff account
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, password_hash, name, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		user.Email, user.PasswordHash, user.Name, user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, name, is_admin, last_login_at, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u User
	err := r.db.Pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by id
func (r *Repository) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, password_hash, name, is_admin, last_login_at, created_at, updated_at
		FROM users WHERE id = $1
	`
	var u User
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &u, nil
}

// UpdateLastLogin records the user's last login time
func (r *Repository) UpdateLastLogin(ctx context.Context, userID string) error {
	query := `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.Pool.Exec(ctx, query, userID)
	return err
}

// UpdateUserPassword replaces a user's password hash
func (r *Repository) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================================
// TENANTS
// ============================================================================

// CreateTenant inserts a new tenant
func (r *Repository) CreateTenant(ctx context.Context, tenant *Tenant) error {
	query := `
		INSERT INTO tenants (full_name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		tenant.FullName, tenant.Email, tenant.Phone,
	).Scan(&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt)
}

// GetTenant retrieves a tenant by id
func (r *Repository) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	query := `
		SELECT id, full_name, email, phone, created_at, updated_at
		FROM tenants WHERE id = $1
	`
	var t Tenant
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.FullName, &t.Email, &t.Phone, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &t, nil
}

// ListTenants retrieves tenants, newest first
func (r *Repository) ListTenants(ctx context.Context, limit, offset int) ([]Tenant, error) {
	query := `
		SELECT id, full_name, email, phone, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.FullName, &t.Email, &t.Phone, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// ============================================================================
// UNITS
// ============================================================================

// CreateUnit inserts a new apartment unit
func (r *Repository) CreateUnit(ctx context.Context, unit *Unit) error {
	if unit.Status == "" {
		unit.Status = UnitAvailable
	}
	query := `
		INSERT INTO units (label, address, city, bedrooms, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		unit.Label, unit.Address, unit.City, unit.Bedrooms, unit.Status,
	).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
}

// GetUnit retrieves a unit by id
func (r *Repository) GetUnit(ctx context.Context, id string) (*Unit, error) {
	query := `
		SELECT id, label, address, city, bedrooms, status, created_at, updated_at
		FROM units WHERE id = $1
	`
	var u Unit
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Label, &u.Address, &u.City, &u.Bedrooms, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &u, nil
}

// ListUnits retrieves units, optionally filtered by status
func (r *Repository) ListUnits(ctx context.Context, status string, limit, offset int) ([]Unit, error) {
	query := `
		SELECT id, label, address, city, bedrooms, status, created_at, updated_at
		FROM units
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Label, &u.Address, &u.City, &u.Bedrooms, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// UpdateUnitStatus updates a unit's availability status
func (r *Repository) UpdateUnitStatus(ctx context.Context, id, status string) error {
	query := `UPDATE units SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
