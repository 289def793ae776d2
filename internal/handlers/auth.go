package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/session"
	"shopadmin/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
	issuer    string
}

// NewAuth creates a new Auth handler group. issuer is the name shown in
// authenticator apps for TOTP enrollment.
func NewAuth(sessions *session.Store, userStore *store.UserStore, issuer string) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
		issuer:    issuer,
	}
}

// Login authenticates username/password and opens a session. The session
// starts with TwoFADone=false; the client must complete TOTP verification
// before the API gates open.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.userStore.FindByUsername(req.Username)
	if err != nil {
		serverError(w, "login lookup failed", err)
		return
	}

	// One message for both unknown user and bad password.
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	})
	if err != nil {
		serverError(w, "session create failed", err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"user":             userView(user),
		"needs_2fa_setup":  user.Needs2FASetup(),
		"needs_2fa_verify": !user.Needs2FASetup(),
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	writeMessage(w, http.StatusOK, "logged out")
}

// Me returns the authenticated user together with the capability set the
// console uses to hide controls.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		serverError(w, "user lookup failed", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"user":        userView(user),
		"permissions": models.PermissionsFor(user.Role),
		"two_fa_done": sess.TwoFADone,
	})
}

// TwoFASetup generates a TOTP secret for the session user and returns the
// provisioning QR code as base64 PNG plus the secret for manual entry.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.issuer,
		AccountName: sess.Username,
	})
	if err != nil {
		serverError(w, "totp generate failed", err)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		serverError(w, "save totp secret failed", err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		serverError(w, "qr code generation failed", err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"qr_code": base64.StdEncoding.EncodeToString(qrPNG),
		"secret":  key.Secret(),
	})
}

// TwoFAVerify validates the TOTP code and completes authentication. On
// first-time setup the secret becomes permanent here.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		serverError(w, "user lookup for 2fa failed", err)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		writeError(w, http.StatusConflict, "two-factor setup has not been started")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			serverError(w, "enable totp failed", err)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		serverError(w, "session update failed", err)
		return
	}

	slog.Info("2fa verified", "user", user.Username)
	writeMessage(w, http.StatusOK, "two-factor verification complete")
}

// userView is the serializable user shape returned by auth endpoints.
func userView(u *models.User) map[string]any {
	return map[string]any{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"display_name": u.DisplayName,
		"role":         u.Role,
		"totp_enabled": u.TOTPEnabled,
	}
}
