package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default admin user if none exists. The admin will be
// prompted to set up 2FA on first login (totp_enabled = false).
// A small starter category tree is created so the console is not empty.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled; they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, "admin", "admin@shopadmin.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if err := seedCategories(db); err != nil {
		return err
	}
	if err := seedProfile(db); err != nil {
		return err
	}

	slog.Info("database seeded with default admin user",
		"username", "admin",
		"password", "admin",
	)

	return nil
}

// seedCategories creates a two-level starter tree: Drinks with Coffee and
// Tea beneath it, plus a Snacks root.
func seedCategories(db *sql.DB) error {
	var drinksID string
	err := db.QueryRow(`
		INSERT INTO category (name, slug, sort_order, level)
		VALUES ('Drinks', 'drinks', 0, 0)
		RETURNING id
	`).Scan(&drinksID)
	if err != nil {
		return fmt.Errorf("seed category drinks: %w", err)
	}

	children := []struct {
		name, slug string
		order      int
	}{
		{"Coffee", "coffee", 0},
		{"Tea", "tea", 1},
	}
	for _, c := range children {
		_, err := db.Exec(`
			INSERT INTO category (name, slug, parent_id, sort_order, level)
			VALUES ($1, $2, $3, $4, 1)
		`, c.name, c.slug, drinksID, c.order)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.slug, err)
		}
	}

	_, err = db.Exec(`
		INSERT INTO category (name, slug, sort_order, level)
		VALUES ('Snacks', 'snacks', 1, 0)
	`)
	if err != nil {
		return fmt.Errorf("seed category snacks: %w", err)
	}
	return nil
}

// seedProfile inserts the single business profile row.
func seedProfile(db *sql.DB) error {
	_, err := db.Exec(`
		INSERT INTO profile (company_name, email)
		VALUES ('My Shop', 'hello@shopadmin.local')
	`)
	if err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	return nil
}
