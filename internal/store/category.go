// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopadmin/internal/models"
	"shopadmin/internal/tree"
)

// Category write guard errors. Handlers map these to client errors rather
// than 500s.
var (
	// ErrCategoryCycle is returned when an update would make a category a
	// descendant of itself.
	ErrCategoryCycle = errors.New("category cannot be its own ancestor")

	// ErrCategoryHasChildren is returned by Delete when the category has
	// direct children and cascade was not requested.
	ErrCategoryHasChildren = errors.New("category has children; cascade required")

	// ErrParentNotFound is returned when a write names a parent category
	// that does not exist.
	ErrParentNotFound = errors.New("parent category not found")
)

// CategoryStore manages the hierarchical category table.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, media_id,
	sort_order, level, is_active, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.MediaID,
		&c.SortOrder, &c.Level, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the flat category list ordered by sort_order, then name.
// The tree endpoints and the parent picker all start from this list.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM category
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Tree returns the categories as a nested forest, siblings ordered by
// sort_order. The forest is rebuilt from the flat list on every call.
func (s *CategoryStore) Tree() ([]models.CategoryNode, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}
	forest := tree.Build(flat, tree.Options{SortBy: tree.BySortOrder})
	return nestNodes(forest), nil
}

// nestNodes converts tree nodes into the JSON-friendly nested shape.
func nestNodes(nodes []*tree.Node) []models.CategoryNode {
	out := make([]models.CategoryNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, models.CategoryNode{
			Category: n.Category,
			Children: nestNodes(n.Children),
		})
	}
	return out
}

// Roots returns the root categories ordered by sort_order.
func (s *CategoryStore) Roots() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM category
		WHERE parent_id IS NULL
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Children returns the direct children of a category, ordered by sort_order.
func (s *CategoryStore) Children(parentID uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+`
		FROM category
		WHERE parent_id = $1
		ORDER BY sort_order, name
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list category children: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM category WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM category WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Breadcrumb returns the root-to-category path for the given id.
func (s *CategoryStore) Breadcrumb(id uuid.UUID) ([]models.Breadcrumb, error) {
	rows, err := s.db.Query(`
		WITH RECURSIVE chain AS (
			SELECT id, name, slug, level, parent_id FROM category WHERE id = $1
			UNION ALL
			SELECT c.id, c.name, c.slug, c.level, c.parent_id
			FROM category c JOIN chain ON c.id = chain.parent_id
		)
		SELECT id, name, slug, level FROM chain ORDER BY level
	`, id)
	if err != nil {
		return nil, fmt.Errorf("category breadcrumb: %w", err)
	}
	defer rows.Close()

	var crumbs []models.Breadcrumb
	for rows.Next() {
		var b models.Breadcrumb
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Level); err != nil {
			return nil, fmt.Errorf("scan breadcrumb: %w", err)
		}
		crumbs = append(crumbs, b)
	}
	return crumbs, rows.Err()
}

// Search returns categories whose name or slug matches the query,
// case-insensitively.
func (s *CategoryStore) Search(query string) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+`
		FROM category
		WHERE name ILIKE '%' || $1 || '%' OR slug ILIKE '%' || $1 || '%'
		ORDER BY sort_order, name
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create inserts a new category. The level is computed from the parent
// chain server-side; the client never supplies it.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	level, err := s.levelFor(c.ParentID)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO category (name, slug, description, parent_id, media_id, sort_order, level, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.MediaID, c.SortOrder, level, c.IsActive,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. Reparenting is guarded: the new
// parent may not be the category itself or any of its descendants. When
// the parent changes, the level of the category and its whole subtree is
// recomputed in the same transaction.
func (s *CategoryStore) Update(c *models.Category) (*models.Category, error) {
	if c.ParentID != nil {
		if err := s.guardCycle(c.ID, *c.ParentID); err != nil {
			return nil, err
		}
	}

	level, err := s.levelFor(c.ParentID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		UPDATE category SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			media_id = $5, sort_order = $6, level = $7, is_active = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.MediaID,
		c.SortOrder, level, c.IsActive, c.ID,
	)
	updated, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	// Recompute descendant levels from the updated node downward.
	_, err = tx.Exec(`
		WITH RECURSIVE subtree AS (
			SELECT id, level FROM category WHERE id = $1
			UNION ALL
			SELECT c.id, subtree.level + 1
			FROM category c JOIN subtree ON c.parent_id = subtree.id
		)
		UPDATE category SET level = subtree.level
		FROM subtree
		WHERE category.id = subtree.id AND category.id <> $1
	`, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("recompute subtree levels: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit category update: %w", err)
	}
	return updated, nil
}

// guardCycle rejects a reparent that would place id underneath itself.
// The check runs against the current flat list, the same way the parent
// picker disables these targets in the form.
func (s *CategoryStore) guardCycle(id, newParentID uuid.UUID) error {
	if id == newParentID {
		return ErrCategoryCycle
	}
	flat, err := s.List()
	if err != nil {
		return err
	}
	forest := tree.Build(flat, tree.Options{})
	node := tree.Find(forest, id)
	if node == nil {
		return nil
	}
	for _, d := range tree.Descendants(node) {
		if d.Key == newParentID {
			return ErrCategoryCycle
		}
	}
	return nil
}

// levelFor computes the level a category gets under the given parent:
// 0 for roots, parent level + 1 otherwise.
func (s *CategoryStore) levelFor(parentID *uuid.UUID) (int, error) {
	if parentID == nil {
		return 0, nil
	}
	var parentLevel int
	err := s.db.QueryRow(`SELECT level FROM category WHERE id = $1`, *parentID).Scan(&parentLevel)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("parent category %s: %w", *parentID, ErrParentNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("look up parent level: %w", err)
	}
	return parentLevel + 1, nil
}

// DeleteImpact describes what a delete would affect. ChildCount counts
// direct children only: the warning reflects immediate impact even though
// a cascade removes grandchildren too.
type DeleteImpact struct {
	HasChildren bool `json:"has_children"`
	ChildCount  int  `json:"child_count"`
}

// Impact reports whether the category has children and how many.
func (s *CategoryStore) Impact(id uuid.UUID) (DeleteImpact, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM category WHERE parent_id = $1`, id).Scan(&count)
	if err != nil {
		return DeleteImpact{}, fmt.Errorf("category delete impact: %w", err)
	}
	return DeleteImpact{HasChildren: count > 0, ChildCount: count}, nil
}

// Delete removes a category. Without cascade, a category that still has
// children is left untouched and ErrCategoryHasChildren is returned so the
// caller can confirm. With cascade, the entire subtree is removed in one
// transaction; on any failure nothing is deleted.
func (s *CategoryStore) Delete(id uuid.UUID, cascade bool) error {
	impact, err := s.Impact(id)
	if err != nil {
		return err
	}
	if impact.HasChildren && !cascade {
		return ErrCategoryHasChildren
	}

	if !cascade {
		if _, err := s.db.Exec(`DELETE FROM category WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM category WHERE id = $1
			UNION ALL
			SELECT c.id FROM category c JOIN subtree ON c.parent_id = subtree.id
		)
		DELETE FROM category WHERE id IN (SELECT id FROM subtree)
	`, id)
	if err != nil {
		return fmt.Errorf("cascade delete category: %w", err)
	}

	return tx.Commit()
}

// ReorderItem represents a single item in a reorder request.
type ReorderItem struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    int        `json:"order"`
}

// Reorder updates sort_order and parent_id for multiple categories in one
// transaction. The batch is validated as a whole first: every moved node's
// ancestor chain is walked through the PROPOSED parent map, so two items
// that only form a cycle together (A under B, B under A) are caught before
// anything is written. Levels are recomputed from the roots down in the
// same transaction; on any failure nothing is mutated.
func (s *CategoryStore) Reorder(items []ReorderItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	parents, err := parentMap(tx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if _, ok := parents[item.ID]; ok {
			parents[item.ID] = item.ParentID
		}
	}
	for _, item := range items {
		if item.ParentID == nil {
			continue
		}
		if _, ok := parents[*item.ParentID]; !ok {
			return fmt.Errorf("reorder category %s: %w", item.ID, ErrParentNotFound)
		}
		// Walk the proposed ancestor chain. Revisiting any node means the
		// batch would close a cycle.
		seen := map[uuid.UUID]struct{}{item.ID: {}}
		for p := item.ParentID; p != nil; p = parents[*p] {
			if _, dup := seen[*p]; dup {
				return fmt.Errorf("reorder category %s: %w", item.ID, ErrCategoryCycle)
			}
			seen[*p] = struct{}{}
		}
	}

	stmt, err := tx.Prepare(`
		UPDATE category SET parent_id = $1, sort_order = $2, updated_at = $3
		WHERE id = $4`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		if _, err := stmt.Exec(item.ParentID, item.Order, now, item.ID); err != nil {
			return fmt.Errorf("reorder category %s: %w", item.ID, err)
		}
	}

	// Levels derive from the parent chain; rewrite every row whose depth
	// changed before the batch becomes visible.
	_, err = tx.Exec(`
		WITH RECURSIVE depths AS (
			SELECT id, 0 AS level FROM category WHERE parent_id IS NULL
			UNION ALL
			SELECT c.id, depths.level + 1
			FROM category c JOIN depths ON c.parent_id = depths.id
		)
		UPDATE category SET level = depths.level
		FROM depths
		WHERE category.id = depths.id AND category.level <> depths.level
	`)
	if err != nil {
		return fmt.Errorf("recompute levels: %w", err)
	}

	return tx.Commit()
}

// parentMap loads the id to parent_id mapping inside the transaction.
func parentMap(tx *sql.Tx) (map[uuid.UUID]*uuid.UUID, error) {
	rows, err := tx.Query(`SELECT id, parent_id FROM category`)
	if err != nil {
		return nil, fmt.Errorf("load parent map: %w", err)
	}
	defer rows.Close()

	parents := make(map[uuid.UUID]*uuid.UUID)
	for rows.Next() {
		var id uuid.UUID
		var parentID *uuid.UUID
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, fmt.Errorf("scan parent map: %w", err)
		}
		parents[id] = parentID
	}
	return parents, rows.Err()
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM category WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM category WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, err
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}
