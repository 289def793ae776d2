// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"shopadmin/internal/models"
	"shopadmin/internal/storage"
	"shopadmin/internal/store"
)

// Profile groups the business profile HTTP handlers. The profile is a
// singleton: Get returns the one row, Update creates or overwrites it.
type Profile struct {
	profiles *store.ProfileStore
	media    *store.MediaStore
	storage  *storage.Client
}

// NewProfile creates a new Profile handler group. storage may be nil when
// object storage is not configured; the logo URL is then omitted.
func NewProfile(profiles *store.ProfileStore, media *store.MediaStore, storage *storage.Client) *Profile {
	return &Profile{profiles: profiles, media: media, storage: storage}
}

// profileView is the profile plus the resolved public logo URL.
type profileView struct {
	models.Profile
	LogoURL string `json:"logo_url,omitempty"`
}

func (h *Profile) view(p models.Profile) profileView {
	v := profileView{Profile: p}
	if p.LogoMediaID == nil || h.storage == nil {
		return v
	}
	m, err := h.media.FindByID(*p.LogoMediaID)
	if err != nil || m == nil {
		return v
	}
	// The logo lives in the public bucket and is served directly.
	v.LogoURL = h.storage.FileURL(m.S3Key)
	return v
}

// Get returns the business profile. A shop without a profile yet gets an
// empty data payload rather than a 404 so the console can show the form.
func (h *Profile) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get()
	if err != nil {
		serverError(w, "profile lookup failed", err)
		return
	}
	if p == nil {
		writeData(w, http.StatusOK, nil)
		return
	}
	writeData(w, http.StatusOK, h.view(*p))
}

// Update creates or overwrites the business profile.
func (h *Profile) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyName string     `json:"company_name"`
		Phone       *string    `json:"phone"`
		Address     *string    `json:"address"`
		Email       *string    `json:"email"`
		LogoMediaID *uuid.UUID `json:"logo_media_id"`
		IsActive    *bool      `json:"is_active"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "Company name is required.")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	saved, err := h.profiles.Upsert(&models.Profile{
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Address:     req.Address,
		Email:       req.Email,
		LogoMediaID: req.LogoMediaID,
		IsActive:    isActive,
	})
	if err != nil {
		serverError(w, "profile save failed", err)
		return
	}
	writeData(w, http.StatusOK, h.view(*saved))
}
