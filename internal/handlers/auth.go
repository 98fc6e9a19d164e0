package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"taskdeck/internal/middleware"
	"taskdeck/internal/models"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
	"taskdeck/internal/token"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "TaskDeck"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	tokens    *token.Manager
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(tokens *token.Manager, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		tokens:    tokens,
		sessions:  sessions,
		userStore: userStore,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login validates credentials, issues a JWT, and records the session in
// Valkey so the token can be revoked later. If the account has TOTP
// enabled, a valid code must accompany the credentials.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if user.Status != models.StatusActive {
		respondError(w, http.StatusForbidden, "Account is not active")
		return
	}

	if user.TOTPEnabled {
		if user.TOTPSecret == nil || !totp.Validate(req.Code, *user.TOTPSecret) {
			respondError(w, http.StatusUnauthorized, "Invalid two-factor code")
			return
		}
	}

	a.issueSession(w, r, user, http.StatusOK)
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone,omitempty"`
}

// Register creates a new user account with the user role and logs it in
// immediately, returning a token alongside the created user.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validateEmail(req.Email); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateDisplayName(req.DisplayName); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := a.userStore.Create(store.CreateUserParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        models.RoleUser,
		Phone:       req.Phone,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "Email is already registered")
			return
		}
		slog.Error("register failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	a.issueSession(w, r, user, http.StatusCreated)
}

// issueSession generates a token, stores the session record, updates the
// last-login timestamp, and writes the auth response.
func (a *Auth) issueSession(w http.ResponseWriter, r *http.Request, user *models.User, code int) {
	signed, jti, err := a.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		slog.Error("token generate failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	err = a.sessions.Create(r.Context(), jti, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		RoleName:    user.RoleName,
		IsAdmin:     user.IsAdmin,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := a.userStore.SetLastLogin(user.ID, time.Now()); err != nil {
		slog.Error("set last login failed", "error", err, "user_id", user.ID)
	}

	respondJSON(w, code, authResponse{Token: signed, User: user})
}

// Me returns the authenticated user's current record.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		slog.Error("me lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if user == nil {
		// Account deleted since the session was issued.
		respondError(w, http.StatusUnauthorized, "Account no longer exists")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Logout revokes the session record for the presented token. The JWT
// itself cannot be invalidated, but without its session record it no
// longer authenticates.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, err := a.tokens.Parse(middleware.BearerToken(r)); err == nil {
		if err := a.sessions.Destroy(r.Context(), claims.TokenID); err != nil {
			slog.Error("session destroy failed", "error", err)
		}
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type twoFASetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
	QRCode     string `json:"qr_code"` // base64-encoded PNG
}

// TwoFASetup generates a fresh TOTP secret for the authenticated user
// and returns it with a QR code for authenticator apps. The secret is
// stored but not enabled until TwoFAEnable verifies a code.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, twoFASetupResponse{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCode:     base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFACodeRequest struct {
	Code string `json:"code"`
}

// TwoFAEnable verifies a TOTP code against the pending secret and turns
// two-factor authentication on for the account.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req twoFACodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "Two-factor setup has not been started")
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "Invalid two-factor code")
		return
	}

	if err := a.userStore.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// TwoFADisable verifies a TOTP code and turns two-factor authentication
// off, clearing the stored secret.
func (a *Auth) TwoFADisable(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req twoFACodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if !user.TOTPEnabled || user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "Two-factor authentication is not enabled")
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "Invalid two-factor code")
		return
	}

	if err := a.userStore.DisableTOTP(user.ID); err != nil {
		slog.Error("disable totp failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
