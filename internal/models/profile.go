// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the single business profile shown on the storefront.
// Exactly one row exists; updates overwrite it in place.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	CompanyName string     `json:"company_name"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	Email       *string    `json:"email"`
	LogoMediaID *uuid.UUID `json:"logo_media_id"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
