// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// ContactStore manages contact form messages.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore returns a new ContactStore.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

const contactColumns = `id, name, phone, address, message, status, created_at, updated_at`

// scanContact scans a row into a Contact struct.
func scanContact(scanner interface{ Scan(...any) error }) (*models.Contact, error) {
	var c models.Contact
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Phone, &c.Address, &c.Message, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns contact messages, newest first.
func (s *ContactStore) List() ([]models.Contact, error) {
	rows, err := s.db.Query(`SELECT ` + contactColumns + ` FROM contact ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var items []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a contact message by ID. Returns nil if not found.
func (s *ContactStore) FindByID(id uuid.UUID) (*models.Contact, error) {
	row := s.db.QueryRow(`SELECT `+contactColumns+` FROM contact WHERE id = $1`, id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	return c, nil
}

// Create stores a new contact message with status "new".
func (s *ContactStore) Create(c *models.Contact) (*models.Contact, error) {
	row := s.db.QueryRow(`
		INSERT INTO contact (name, phone, address, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+contactColumns,
		c.Name, c.Phone, c.Address, c.Message, models.ContactStatusNew,
	)
	result, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return result, nil
}

// SetStatus updates the handling state of a message. Returns nil if the
// id is unknown.
func (s *ContactStore) SetStatus(id uuid.UUID, status models.ContactStatus) (*models.Contact, error) {
	row := s.db.QueryRow(`
		UPDATE contact SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+contactColumns,
		status, id,
	)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set contact status: %w", err)
	}
	return c, nil
}

// Delete removes a contact message.
func (s *ContactStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM contact WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// CountByStatus returns how many messages are in the given state.
func (s *ContactStore) CountByStatus(status models.ContactStatus) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM contact WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}
