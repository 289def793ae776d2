// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

// Contact groups the contact message HTTP handlers. Submit is the only
// unauthenticated endpoint; the rest sit behind the contacts permission.
type Contact struct {
	contacts *store.ContactStore
}

// NewContact creates a new Contact handler group.
func NewContact(contacts *store.ContactStore) *Contact {
	return &Contact{contacts: contacts}
}

// Submit accepts a contact form message from the storefront. New messages
// always start in the "new" state.
func (h *Contact) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string  `json:"name"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
		Message string  `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if msg := validateContact(req.Name, req.Message); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	name := strings.TrimSpace(req.Name)
	message := strings.TrimSpace(req.Message)
	created, err := h.contacts.Create(&models.Contact{
		Name:    &name,
		Phone:   req.Phone,
		Address: req.Address,
		Message: &message,
	})
	if err != nil {
		serverError(w, "contact create failed", err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

// List returns all contact messages, newest first, together with the
// unread count the console shows in the sidebar badge.
func (h *Contact) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.contacts.List()
	if err != nil {
		serverError(w, "contact list failed", err)
		return
	}
	if items == nil {
		items = []models.Contact{}
	}

	unread, err := h.contacts.CountByStatus(models.ContactStatusNew)
	if err != nil {
		serverError(w, "contact count failed", err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"contacts": items,
		"unread":   unread,
	})
}

// Get returns a single contact message.
func (h *Contact) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	c, err := h.contacts.FindByID(id)
	if err != nil {
		serverError(w, "contact lookup failed", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	writeData(w, http.StatusOK, c)
}

// SetStatus moves a message between new, read and archived.
func (h *Contact) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	var req struct {
		Status models.ContactStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Status {
	case models.ContactStatusNew, models.ContactStatusRead, models.ContactStatusArchived:
	default:
		writeError(w, http.StatusBadRequest, "status must be new, read or archived")
		return
	}

	updated, err := h.contacts.SetStatus(id, req.Status)
	if err != nil {
		serverError(w, "contact status update failed", err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	writeData(w, http.StatusOK, updated)
}

// Delete removes a contact message.
func (h *Contact) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := h.contacts.Delete(id); err != nil {
		serverError(w, "contact delete failed", err)
		return
	}
	writeMessage(w, http.StatusOK, "contact deleted")
}
