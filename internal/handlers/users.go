// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

// minPasswordLen is the minimum accepted password length for new accounts.
const minPasswordLen = 12

// Users groups the account management handlers. The whole group sits
// behind RequireAdmin in the router.
type Users struct {
	users *store.UserStore
}

// NewUsers creates a new Users handler group.
func NewUsers(users *store.UserStore) *Users {
	return &Users{users: users}
}

// List returns all accounts in creation order.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.users.List()
	if err != nil {
		serverError(w, "user list failed", err)
		return
	}

	views := make([]map[string]any, 0, len(items))
	for i := range items {
		views = append(views, userView(&items[i]))
	}
	writeData(w, http.StatusOK, views)
}

// Create adds an account. The new user must enroll in 2FA on first login.
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string      `json:"username"`
		Email       string      `json:"email"`
		Password    string      `json:"password"`
		DisplayName string      `json:"display_name"`
		Role        models.Role `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Username == "":
		writeError(w, http.StatusBadRequest, "Username is required.")
		return
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "A valid email is required.")
		return
	case len(req.Password) < minPasswordLen:
		writeError(w, http.StatusBadRequest, "Password must be at least 12 characters.")
		return
	}
	if !validRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Role must be admin, manager or staff.")
		return
	}

	if existing, err := h.users.FindByUsername(req.Username); err != nil {
		serverError(w, "user lookup failed", err)
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "username is already taken")
		return
	}
	if existing, err := h.users.FindByEmail(req.Email); err != nil {
		serverError(w, "user lookup failed", err)
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "email is already in use")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}

	created, err := h.users.Create(req.Username, req.Email, req.Password, displayName, req.Role)
	if err != nil {
		serverError(w, "user create failed", err)
		return
	}
	writeData(w, http.StatusCreated, userView(created))
}

// UpdateRole changes an account's role. Admins cannot demote themselves,
// so there is always at least one admin left.
func (h *Users) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !validRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Role must be admin, manager or staff.")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id && req.Role != models.RoleAdmin {
		writeError(w, http.StatusConflict, "you cannot remove your own admin role")
		return
	}

	updated, err := h.users.UpdateRole(id, req.Role)
	if err != nil {
		serverError(w, "role update failed", err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeData(w, http.StatusOK, userView(updated))
}

// ResetTOTP clears an account's 2FA enrollment. The user is forced to set
// up a new authenticator on their next login.
func (h *Users) ResetTOTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.users.FindByID(id)
	if err != nil {
		serverError(w, "user lookup failed", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.users.ResetTOTP(id); err != nil {
		serverError(w, "totp reset failed", err)
		return
	}
	writeMessage(w, http.StatusOK, "two-factor enrollment reset")
}

// Delete removes an account. Self-deletion is rejected.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id {
		writeError(w, http.StatusConflict, "you cannot delete your own account")
		return
	}

	if err := h.users.Delete(id); err != nil {
		serverError(w, "user delete failed", err)
		return
	}
	writeMessage(w, http.StatusOK, "user deleted")
}

// validRole reports whether the role is one of the known three.
func validRole(r models.Role) bool {
	switch r {
	case models.RoleAdmin, models.RoleManager, models.RoleStaff:
		return true
	}
	return false
}
