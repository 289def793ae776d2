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

// ProductStore manages products and their image links.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, slug, price, short_description, description,
	is_active, created_at, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Price, &p.ShortDescription, &p.Description,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all products ordered by creation date, newest first.
func (s *ProductStore) List() ([]models.Product, error) {
	rows, err := s.db.Query(`SELECT ` + productColumns + ` FROM product ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a product by ID with its images. Returns nil if not found.
func (s *ProductStore) FindByID(id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM product WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}

	images, err := s.Images(id)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

// Create inserts a new product and returns it.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	row := s.db.QueryRow(`
		INSERT INTO product (name, slug, price, short_description, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		p.Name, p.Slug, p.Price, p.ShortDescription, p.Description, p.IsActive,
	)
	result, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return result, nil
}

// Update modifies an existing product. Returns nil if the id is unknown.
func (s *ProductStore) Update(p *models.Product) (*models.Product, error) {
	row := s.db.QueryRow(`
		UPDATE product SET
			name = $1, slug = $2, price = $3, short_description = $4,
			description = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+productColumns,
		p.Name, p.Slug, p.Price, p.ShortDescription, p.Description, p.IsActive, p.ID,
	)
	updated, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// Delete removes a product. Image links go with it (ON DELETE CASCADE).
func (s *ProductStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM product WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Images returns the image links of a product, ordered by sort_order.
func (s *ProductStore) Images(productID uuid.UUID) ([]models.ProductImage, error) {
	rows, err := s.db.Query(`
		SELECT id, product_id, media_id, sort_order, created_at
		FROM product_image
		WHERE product_id = $1
		ORDER BY sort_order, created_at
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	var items []models.ProductImage
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.MediaID, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

// AddImage links an uploaded media item to a product.
func (s *ProductStore) AddImage(productID, mediaID uuid.UUID, sortOrder int) (*models.ProductImage, error) {
	var img models.ProductImage
	err := s.db.QueryRow(`
		INSERT INTO product_image (product_id, media_id, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id, product_id, media_id, sort_order, created_at
	`, productID, mediaID, sortOrder).Scan(
		&img.ID, &img.ProductID, &img.MediaID, &img.SortOrder, &img.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add product image: %w", err)
	}
	return &img, nil
}

// RemoveImage deletes a product image link by its own id.
func (s *ProductStore) RemoveImage(imageID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM product_image WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("remove product image: %w", err)
	}
	return nil
}

// SetCategories replaces a product's category assignments in one transaction.
func (s *ProductStore) SetCategories(productID uuid.UUID, categoryIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_category WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product categories: %w", err)
	}
	for _, cid := range categoryIDs {
		if _, err := tx.Exec(`
			INSERT INTO product_category (product_id, category_id) VALUES ($1, $2)
		`, productID, cid); err != nil {
			return fmt.Errorf("assign category %s: %w", cid, err)
		}
	}
	return tx.Commit()
}

// Categories returns the category ids assigned to a product.
func (s *ProductStore) Categories(productID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(`
		SELECT category_id FROM product_category WHERE product_id = $1
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product categories: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product category: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the total number of products.
func (s *ProductStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM product`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
