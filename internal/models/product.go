// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product.
type Product struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Price            *string   `json:"price"` // numeric column, serialized as string
	ShortDescription *string   `json:"short_description"`
	Description      *string   `json:"description"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Virtual fields populated by store methods.
	Images          []ProductImage `json:"images,omitempty"`
	DescriptionHTML string         `json:"description_html,omitempty"`
}

// ProductImage links a product to an uploaded media file.
// Images are ordered by SortOrder within a product.
type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	MediaID   uuid.UUID `json:"media_id"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductCategory assigns a product to a category.
type ProductCategory struct {
	ProductID  uuid.UUID `json:"product_id"`
	CategoryID uuid.UUID `json:"category_id"`
}
