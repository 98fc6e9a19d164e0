package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskdeck/internal/middleware"
	"taskdeck/internal/models"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
)

// Users groups the user management handlers. Most operations are
// admin-only; profile updates are allowed for the account owner too.
type Users struct {
	userStore *store.UserStore
	sessions  *session.Store
}

// NewUsers creates a new Users handler group.
func NewUsers(userStore *store.UserStore, sessions *session.Store) *Users {
	return &Users{userStore: userStore, sessions: sessions}
}

// List returns users filtered by role, status, and pagination parameters.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	users, err := h.userStore.List(store.UserFilter{
		Role:   models.Role(q.Get("role")),
		Status: models.Status(q.Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		slog.Error("user list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Search returns users whose email or display name matches the q parameter.
func (h *Users) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondJSON(w, http.StatusOK, []models.User{})
		return
	}

	users, err := h.userStore.List(store.UserFilter{Search: q})
	if err != nil {
		slog.Error("user search failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Stats returns aggregate user counts.
func (h *Users) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userStore.Stats()
	if err != nil {
		slog.Error("user stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Get returns a single user by id.
func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.userStore.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
	Phone       string      `json:"phone,omitempty"`
}

// Create inserts a new user account. Admin-only.
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
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
	if req.Role != models.RoleAdmin && req.Role != models.RoleUser {
		respondError(w, http.StatusBadRequest, "Role must be admin or user.")
		return
	}

	user, err := h.userStore.Create(store.CreateUserParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Phone:       req.Phone,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "Email is already registered")
			return
		}
		slog.Error("user create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	DisplayName string        `json:"display_name"`
	Phone       string        `json:"phone"`
	Address     string        `json:"address"`
	Bio         string        `json:"bio"`
	Password    string        `json:"password,omitempty"`
	Role        models.Role   `json:"role,omitempty"`
	Status      models.Status `json:"status,omitempty"`
}

// Update rewrites a user's profile. Admins may update anyone and change
// role and status; regular users may update only their own profile
// fields. Role mirrors are resynced from the canonical role on write.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	isSelf := sess.UserID == id
	if !isSelf && !sess.AdminAny() {
		respondError(w, http.StatusForbidden, "Admin access required")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateDisplayName(req.DisplayName); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateProfile(req.Phone, req.Address, req.Bio); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if (req.Role != "" || req.Status != "") && !sess.AdminAny() {
		respondError(w, http.StatusForbidden, "Admin access required to change role or status")
		return
	}

	user, err := h.userStore.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	user.DisplayName = req.DisplayName
	user.Phone = req.Phone
	user.Address = req.Address
	user.Bio = req.Bio
	if req.Role != "" {
		if req.Role != models.RoleAdmin && req.Role != models.RoleUser {
			respondError(w, http.StatusBadRequest, "Role must be admin or user.")
			return
		}
		user.Role = req.Role
	}
	if req.Status != "" {
		switch req.Status {
		case models.StatusActive, models.StatusInactive, models.StatusSuspended:
			user.Status = req.Status
		default:
			respondError(w, http.StatusBadRequest, "Status must be active, inactive, or suspended.")
			return
		}
	}

	updated, err := h.userStore.Update(user)
	if err != nil {
		slog.Error("user update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	if req.Password != "" {
		if msg := validatePassword(req.Password); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		if err := h.userStore.SetPassword(id, req.Password); err != nil {
			slog.Error("set password failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
	}

	// Suspending an account revokes its sessions immediately.
	if updated.Status == models.StatusSuspended {
		if err := h.sessions.DestroyAll(r.Context(), updated.ID); err != nil {
			slog.Error("session revocation failed", "error", err, "user_id", updated.ID)
		}
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete soft-deletes a user, or removes the row entirely when the
// hard=true query parameter is set. Admin-only. All of the user's
// sessions are revoked either way.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if sess.UserID == id {
		respondError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if r.URL.Query().Get("hard") == "true" {
		err = h.userStore.HardDelete(id)
	} else {
		err = h.userStore.SoftDelete(id)
	}
	if err != nil {
		slog.Error("user delete failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := h.sessions.DestroyAll(r.Context(), id); err != nil {
		slog.Error("session revocation failed", "error", err, "user_id", id)
	}

	respondJSON(w, http.StatusNoContent, nil)
}
