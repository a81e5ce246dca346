package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"property-backoffice/internal/database"

	"golang.org/x/crypto/bcrypt"
)

const (
	// AdminBcryptCost is the bcrypt cost for the seeded admin password
	AdminBcryptCost = 12
)

// SeedAdminUser ensures an admin staff account exists with the configured
// credentials. It creates the account if missing, or resets the password
// when it no longer matches.
func SeedAdminUser(ctx context.Context, db *database.DB, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required for seeding")
	}

	repo := database.NewRepository(db)

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), AdminBcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if user == nil {
		log.Printf("Admin user not found. Creating admin user: %s", email)

		adminUser := &database.User{
			Email:        email,
			PasswordHash: string(hashedPassword),
			Name:         "Administrator",
			IsAdmin:      true,
		}

		if err := repo.CreateUser(ctx, adminUser); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Printf("Admin user created successfully with ID: %s", adminUser.ID)
		return nil
	}

	// User exists - reset password if it no longer verifies
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("Admin user exists but password needs updating: %s", email)

		if err := repo.UpdateUserPassword(ctx, user.ID, string(hashedPassword)); err != nil {
			return fmt.Errorf("failed to update admin password: %w", err)
		}

		log.Printf("Admin password updated successfully")
	}

	return nil
}
