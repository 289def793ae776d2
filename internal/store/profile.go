// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"shopadmin/internal/models"
)

// ProfileStore manages the single business profile row.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore returns a new ProfileStore.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `id, company_name, phone, address, email, logo_media_id,
	is_active, created_at, updated_at`

// Get returns the business profile, or nil if none has been created yet.
func (s *ProfileStore) Get() (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(`SELECT ` + profileColumns + ` FROM profile LIMIT 1`).Scan(
		&p.ID, &p.CompanyName, &p.Phone, &p.Address, &p.Email, &p.LogoMediaID,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Upsert creates the profile row if absent, otherwise overwrites it.
func (s *ProfileStore) Upsert(p *models.Profile) (*models.Profile, error) {
	existing, err := s.Get()
	if err != nil {
		return nil, err
	}

	var row *sql.Row
	if existing == nil {
		row = s.db.QueryRow(`
			INSERT INTO profile (company_name, phone, address, email, logo_media_id, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+profileColumns,
			p.CompanyName, p.Phone, p.Address, p.Email, p.LogoMediaID, p.IsActive,
		)
	} else {
		row = s.db.QueryRow(`
			UPDATE profile SET
				company_name = $1, phone = $2, address = $3, email = $4,
				logo_media_id = $5, is_active = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING `+profileColumns,
			p.CompanyName, p.Phone, p.Address, p.Email, p.LogoMediaID, p.IsActive, existing.ID,
		)
	}

	var saved models.Profile
	err = row.Scan(
		&saved.ID, &saved.CompanyName, &saved.Phone, &saved.Address, &saved.Email,
		&saved.LogoMediaID, &saved.IsActive, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return &saved, nil
}
