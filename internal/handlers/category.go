// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"shopadmin/internal/cache"
	"shopadmin/internal/markdown"
	"shopadmin/internal/models"
	"shopadmin/internal/slug"
	"shopadmin/internal/store"
	"shopadmin/internal/tree"
)

// Category groups the category tree HTTP handlers.
type Category struct {
	categories *store.CategoryStore
	catalog    *cache.CatalogCache
}

// NewCategory creates a new Category handler group. catalog may be nil
// when Valkey is not configured; caching is then skipped.
func NewCategory(categories *store.CategoryStore, catalog *cache.CatalogCache) *Category {
	return &Category{categories: categories, catalog: catalog}
}

// categoryRequest is the JSON body for create and update.
type categoryRequest struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	MediaID     *uuid.UUID `json:"media_id"`
	SortOrder   *int       `json:"sort_order"`
	IsActive    *bool      `json:"is_active"`
}

// categoryView decorates a category with rendered description HTML.
type categoryView struct {
	models.Category
	DescriptionHTML string `json:"description_html,omitempty"`
}

func newCategoryView(c models.Category) categoryView {
	v := categoryView{Category: c}
	if c.Description != nil && *c.Description != "" {
		if html, err := markdown.ToHTML(*c.Description); err == nil {
			v.DescriptionHTML = html
		}
	}
	return v
}

// List returns the flat category list ordered by sort_order.
func (h *Category) List(w http.ResponseWriter, r *http.Request) {
	if h.catalog != nil {
		if payload, ok := h.catalog.Get(r.Context(), cache.CategoryListKey()); ok {
			writeData(w, http.StatusOK, json.RawMessage(payload))
			return
		}
	}

	items, err := h.categories.List()
	if err != nil {
		serverError(w, "category list failed", err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}

	if h.catalog != nil {
		if payload, err := json.Marshal(items); err == nil {
			h.catalog.Set(r.Context(), cache.CategoryListKey(), payload)
		}
	}
	writeData(w, http.StatusOK, items)
}

// Tree returns the nested category forest, siblings ordered by sort_order.
func (h *Category) Tree(w http.ResponseWriter, r *http.Request) {
	if h.catalog != nil {
		if payload, ok := h.catalog.Get(r.Context(), cache.CategoryTreeKey()); ok {
			writeData(w, http.StatusOK, json.RawMessage(payload))
			return
		}
	}

	nodes, err := h.categories.Tree()
	if err != nil {
		serverError(w, "category tree failed", err)
		return
	}
	if nodes == nil {
		nodes = []models.CategoryNode{}
	}

	if h.catalog != nil {
		if payload, err := json.Marshal(nodes); err == nil {
			h.catalog.Set(r.Context(), cache.CategoryTreeKey(), payload)
		}
	}
	writeData(w, http.StatusOK, nodes)
}

// Rows returns the flattened tree-table rows for the console. Only the
// children of expanded nodes are emitted; expansion state is passed by
// the client as ?expanded=id,id,... or ?expanded=all.
func (h *Category) Rows(w http.ResponseWriter, r *http.Request) {
	flat, err := h.categories.List()
	if err != nil {
		serverError(w, "category list failed", err)
		return
	}

	expansion := tree.NewExpansion()
	switch raw := r.URL.Query().Get("expanded"); raw {
	case "":
	case "all":
		expansion.ExpandAll(flat)
	default:
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid expanded id")
				return
			}
			expansion.Toggle(id)
		}
	}

	forest := tree.Build(flat, tree.Options{SortBy: tree.BySortOrder})
	rows := tree.VisibleRows(forest, expansion)
	if rows == nil {
		rows = []tree.Row{}
	}
	writeData(w, http.StatusOK, rows)
}

// Roots returns the root categories only.
func (h *Category) Roots(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.Roots()
	if err != nil {
		serverError(w, "category roots failed", err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeData(w, http.StatusOK, items)
}

// Get returns a single category with rendered description HTML.
func (h *Category) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	c, err := h.categories.FindByID(id)
	if err != nil {
		serverError(w, "category lookup failed", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeData(w, http.StatusOK, newCategoryView(*c))
}

// Children returns the direct children of a category.
func (h *Category) Children(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	items, err := h.categories.Children(id)
	if err != nil {
		serverError(w, "category children failed", err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeData(w, http.StatusOK, items)
}

// Breadcrumb returns the root-to-category path.
func (h *Category) Breadcrumb(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	crumbs, err := h.categories.Breadcrumb(id)
	if err != nil {
		serverError(w, "category breadcrumb failed", err)
		return
	}
	if len(crumbs) == 0 {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeData(w, http.StatusOK, crumbs)
}

// Search returns categories matching the q parameter by name or slug.
func (h *Category) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeData(w, http.StatusOK, []models.Category{})
		return
	}

	items, err := h.categories.Search(q)
	if err != nil {
		serverError(w, "category search failed", err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeData(w, http.StatusOK, items)
}

// ParentOptions returns the parent picker entries: every category in
// depth order, with the excluded node and its descendants disabled so a
// category can never be moved underneath itself.
func (h *Category) ParentOptions(w http.ResponseWriter, r *http.Request) {
	var excludeID *uuid.UUID
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid exclude id")
			return
		}
		excludeID = &id
	}

	flat, err := h.categories.List()
	if err != nil {
		serverError(w, "category list failed", err)
		return
	}

	opts := tree.ParentOptions(flat, excludeID)
	if opts == nil {
		opts = []tree.ParentOption{}
	}
	writeData(w, http.StatusOK, opts)
}

// DeleteImpact reports whether deleting the category requires a cascade
// confirmation and how many direct children would be affected.
func (h *Category) DeleteImpact(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	impact, err := h.categories.Impact(id)
	if err != nil {
		serverError(w, "category delete impact failed", err)
		return
	}
	writeData(w, http.StatusOK, impact)
}

// Create adds a new category. The slug is derived from the name when
// omitted; the sort order defaults to the end of the target sibling list.
func (h *Category) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}
	var desc string
	if req.Description != nil {
		desc = *req.Description
	}
	if msg := validateCategory(req.Name, req.Slug, desc); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if existing, err := h.categories.FindBySlug(req.Slug); err != nil {
		serverError(w, "slug lookup failed", err)
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "a category with this slug already exists")
		return
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		next, err := h.categories.NextSortOrder(req.ParentID)
		if err != nil {
			serverError(w, "next sort order failed", err)
			return
		}
		sortOrder = next
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := h.categories.Create(&models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		MediaID:     req.MediaID,
		SortOrder:   sortOrder,
		IsActive:    isActive,
	})
	if errors.Is(err, store.ErrParentNotFound) {
		writeError(w, http.StatusBadRequest, "parent category does not exist")
		return
	}
	if err != nil {
		serverError(w, "category create failed", err)
		return
	}

	h.invalidate(r)
	writeData(w, http.StatusCreated, newCategoryView(*created))
}

// Update modifies a category. Reparenting under the category itself or
// one of its descendants is rejected with 409.
func (h *Category) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	current, err := h.categories.FindByID(id)
	if err != nil {
		serverError(w, "category lookup failed", err)
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Slug == "" {
		req.Slug = current.Slug
	}
	var desc string
	if req.Description != nil {
		desc = *req.Description
	}
	if msg := validateCategory(req.Name, req.Slug, desc); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if req.Slug != current.Slug {
		if existing, err := h.categories.FindBySlug(req.Slug); err != nil {
			serverError(w, "slug lookup failed", err)
			return
		} else if existing != nil {
			writeError(w, http.StatusConflict, "a category with this slug already exists")
			return
		}
	}

	current.Name = strings.TrimSpace(req.Name)
	current.Slug = req.Slug
	current.Description = req.Description
	current.ParentID = req.ParentID
	current.MediaID = req.MediaID
	if req.SortOrder != nil {
		current.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	updated, err := h.categories.Update(current)
	if errors.Is(err, store.ErrCategoryCycle) {
		writeError(w, http.StatusConflict, "a category cannot be moved under itself or one of its descendants")
		return
	}
	if errors.Is(err, store.ErrParentNotFound) {
		writeError(w, http.StatusBadRequest, "parent category does not exist")
		return
	}
	if err != nil {
		serverError(w, "category update failed", err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	h.invalidate(r)
	writeData(w, http.StatusOK, newCategoryView(*updated))
}

// Delete removes a category. A category with children is only removed
// when ?cascade=true is passed; otherwise the request fails with 409 so
// the console can ask for confirmation.
func (h *Category) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	cascade := r.URL.Query().Get("cascade") == "true"

	err = h.categories.Delete(id, cascade)
	if errors.Is(err, store.ErrCategoryHasChildren) {
		writeError(w, http.StatusConflict, "category has children; pass cascade=true to delete the whole subtree")
		return
	}
	if err != nil {
		serverError(w, "category delete failed", err)
		return
	}

	h.invalidate(r)
	writeMessage(w, http.StatusOK, "category deleted")
}

// Reorder applies a batch of parent/sort-order changes from the console's
// drag-and-drop. The store validates the whole batch against the proposed
// parent map and recomputes levels in the same transaction, so a rejected
// batch leaves the tree untouched.
func (h *Category) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []store.ReorderItem `json:"items"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "no items to reorder")
		return
	}

	err := h.categories.Reorder(req.Items)
	if errors.Is(err, store.ErrCategoryCycle) {
		writeError(w, http.StatusConflict, "the requested moves would make a category its own ancestor")
		return
	}
	if errors.Is(err, store.ErrParentNotFound) {
		writeError(w, http.StatusBadRequest, "a target parent category does not exist")
		return
	}
	if err != nil {
		serverError(w, "category reorder failed", err)
		return
	}

	h.invalidate(r)
	writeMessage(w, http.StatusOK, "categories reordered")
}

// invalidate drops all cached catalog payloads after a write.
func (h *Category) invalidate(r *http.Request) {
	if h.catalog != nil {
		h.catalog.InvalidateAll(r.Context())
	}
}
