// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"shopadmin/internal/cache"
	"shopadmin/internal/markdown"
	"shopadmin/internal/models"
	"shopadmin/internal/slug"
	"shopadmin/internal/store"
)

// Product groups the product catalog HTTP handlers.
type Product struct {
	products *store.ProductStore
	catalog  *cache.CatalogCache
}

// NewProduct creates a new Product handler group.
func NewProduct(products *store.ProductStore, catalog *cache.CatalogCache) *Product {
	return &Product{products: products, catalog: catalog}
}

// productRequest is the JSON body for create and update.
type productRequest struct {
	Name             string      `json:"name"`
	Slug             string      `json:"slug"`
	Price            *string     `json:"price"`
	ShortDescription *string     `json:"short_description"`
	Description      *string     `json:"description"`
	IsActive         *bool       `json:"is_active"`
	CategoryIDs      []uuid.UUID `json:"category_ids"`
}

// renderDescription fills the product's DescriptionHTML from its markdown
// description. Render failures leave the field empty; the raw markdown is
// still in the payload.
func renderDescription(p *models.Product) {
	if p.Description != nil && *p.Description != "" {
		if html, err := markdown.ToHTML(*p.Description); err == nil {
			p.DescriptionHTML = html
		}
	}
}

// List returns all products, newest first.
func (h *Product) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.products.List()
	if err != nil {
		serverError(w, "product list failed", err)
		return
	}
	if items == nil {
		items = []models.Product{}
	}
	writeData(w, http.StatusOK, items)
}

// Get returns a single product with its images, category assignments and
// rendered description HTML.
func (h *Product) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.FindByID(id)
	if err != nil {
		serverError(w, "product lookup failed", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	renderDescription(p)

	categoryIDs, err := h.products.Categories(id)
	if err != nil {
		serverError(w, "product categories failed", err)
		return
	}
	if categoryIDs == nil {
		categoryIDs = []uuid.UUID{}
	}

	writeData(w, http.StatusOK, map[string]any{
		"product":      p,
		"category_ids": categoryIDs,
	})
}

// Create adds a new product. The slug is derived from the name when
// omitted; category assignments in the request are applied atomically.
func (h *Product) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}
	if msg := validateProduct(req.Name, req.Slug, deref(req.ShortDescription), deref(req.Description)); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := h.products.Create(&models.Product{
		Name:             strings.TrimSpace(req.Name),
		Slug:             req.Slug,
		Price:            req.Price,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		IsActive:         isActive,
	})
	if err != nil {
		serverError(w, "product create failed", err)
		return
	}

	if len(req.CategoryIDs) > 0 {
		if err := h.products.SetCategories(created.ID, req.CategoryIDs); err != nil {
			serverError(w, "product category assignment failed", err)
			return
		}
	}

	renderDescription(created)
	h.invalidate(r)
	writeData(w, http.StatusCreated, created)
}

// Update modifies a product. When category_ids is present the assignment
// set is replaced; a null field keeps the request explicit about clearing.
func (h *Product) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	current, err := h.products.FindByID(id)
	if err != nil {
		serverError(w, "product lookup failed", err)
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Slug == "" {
		req.Slug = current.Slug
	}
	if msg := validateProduct(req.Name, req.Slug, deref(req.ShortDescription), deref(req.Description)); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	current.Name = strings.TrimSpace(req.Name)
	current.Slug = req.Slug
	current.Price = req.Price
	current.ShortDescription = req.ShortDescription
	current.Description = req.Description
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	updated, err := h.products.Update(current)
	if err != nil {
		serverError(w, "product update failed", err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	if req.CategoryIDs != nil {
		if err := h.products.SetCategories(updated.ID, req.CategoryIDs); err != nil {
			serverError(w, "product category assignment failed", err)
			return
		}
	}

	renderDescription(updated)
	h.invalidate(r)
	writeData(w, http.StatusOK, updated)
}

// Delete removes a product together with its image links and category
// assignments.
func (h *Product) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.Delete(id); err != nil {
		serverError(w, "product delete failed", err)
		return
	}

	h.invalidate(r)
	writeMessage(w, http.StatusOK, "product deleted")
}

// AddImage links an uploaded media item to the product. The image lands
// at the end of the gallery unless sort_order is given.
func (h *Product) AddImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req struct {
		MediaID   uuid.UUID `json:"media_id"`
		SortOrder *int      `json:"sort_order"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MediaID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "media_id is required")
		return
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		existing, err := h.products.Images(id)
		if err != nil {
			serverError(w, "product images failed", err)
			return
		}
		sortOrder = len(existing)
	}

	img, err := h.products.AddImage(id, req.MediaID, sortOrder)
	if err != nil {
		serverError(w, "add product image failed", err)
		return
	}

	h.invalidate(r)
	writeData(w, http.StatusCreated, img)
}

// RemoveImage unlinks an image from the product. The media file itself
// stays in the library.
func (h *Product) RemoveImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := uuidParam(r, "imageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := h.products.RemoveImage(imageID); err != nil {
		serverError(w, "remove product image failed", err)
		return
	}

	h.invalidate(r)
	writeMessage(w, http.StatusOK, "product image removed")
}

// invalidate drops all cached catalog payloads after a write.
func (h *Product) invalidate(r *http.Request) {
	if h.catalog != nil {
		h.catalog.InvalidateAll(r.Context())
	}
}

// deref returns the string behind p, or "" for nil.
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
