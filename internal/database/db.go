package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDB creates a new database connection
func NewDB(cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log.Printf("Successfully connected to PostgreSQL database: %s", cfg.Database)

	return &DB{Pool: pool}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Println("Database connection closed")
	}
}

// HealthCheck performs a database health check
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	log.Println("Running database migrations...")

	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		// Agency staff accounts
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			last_login_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,

		// Tenants
		`CREATE TABLE IF NOT EXISTS tenants (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			full_name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(50),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Apartment units
		`CREATE TABLE IF NOT EXISTS units (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			label VARCHAR(100) NOT NULL,
			address VARCHAR(255),
			city VARCHAR(100),
			bedrooms INTEGER,
			status VARCHAR(20) NOT NULL DEFAULT 'available',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_units_status ON units(status)`,

		// Leases
		`CREATE TABLE IF NOT EXISTS leases (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			tenant_id UUID NOT NULL REFERENCES tenants(id),
			unit_id UUID NOT NULL REFERENCES units(id),
			start_date DATE NOT NULL,
			end_date DATE,
			rent_amount DECIMAL(14, 2) NOT NULL,
			deposit_amount DECIMAL(14, 2) NOT NULL DEFAULT 0,
			payment_frequency VARCHAR(20) NOT NULL DEFAULT 'monthly',
			duration_type VARCHAR(20) NOT NULL DEFAULT 'month_to_month',
			payment_type VARCHAR(20) NOT NULL DEFAULT 'upfront',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			initial_fees_paid BOOLEAN NOT NULL DEFAULT FALSE,
			initial_payments_completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leases_tenant ON leases(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_leases_unit ON leases(unit_id)`,
		`CREATE INDEX IF NOT EXISTS idx_leases_status ON leases(status)`,

		// Payment ledger. Rows are never deleted (audit trail).
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			lease_id UUID NOT NULL REFERENCES leases(id),
			amount DECIMAL(14, 2) NOT NULL,
			payment_type VARCHAR(20) NOT NULL,
			payment_method VARCHAR(50),
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			due_date DATE NOT NULL,
			payment_date DATE,
			payment_period_start DATE,
			payment_period_end DATE,
			first_rent_start_date DATE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_lease ON payments(lease_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)`,
		// At most one rent payment per (lease, period) tuple
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_unique_period
			ON payments(lease_id, payment_period_start, payment_period_end)
			WHERE payment_type = 'rent'`,
		// Exactly one deposit and one agency-fee payment per lease
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_unique_deposit
			ON payments(lease_id) WHERE payment_type = 'deposit'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_unique_agency_fees
			ON payments(lease_id) WHERE payment_type = 'agency_fees'`,

		// Late-payment penalties attached to overdue periods
		`CREATE TABLE IF NOT EXISTS late_penalties (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			lease_id UUID NOT NULL REFERENCES leases(id),
			payment_id UUID REFERENCES payments(id),
			period_start DATE NOT NULL,
			period_end DATE NOT NULL,
			amount DECIMAL(14, 2) NOT NULL,
			days_late INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_penalties_unique_period
			ON late_penalties(lease_id, period_start, period_end)`,
		`CREATE INDEX IF NOT EXISTS idx_penalties_status ON late_penalties(status)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
