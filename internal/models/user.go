// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Status represents a user account's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// User represents an account with authentication, profile, and 2FA fields.
//
// Role is the canonical permission source. RoleName and IsAdmin mirror it
// and are maintained on every write; they exist because records imported
// from the legacy frontend carried all three and downstream consumers still
// read them.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize the hash
	DisplayName  string     `json:"display_name"`
	Role         Role       `json:"role"`
	RoleName     string     `json:"role_name"`
	IsAdmin      bool       `json:"is_admin"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	Status       Status     `json:"status"`
	TOTPSecret   *string    `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool       `json:"totp_enabled"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"` // Soft delete marker
}

// AdminAny reports whether any of the three admin signals is set.
//
// The legacy data model carries role, role_name, and is_admin side by side,
// and the signals can disagree on imported rows. Authorization is
// deliberately permissive (OR, not AND) to match the behavior the live
// frontend shipped with. Tightening this to a single canonical check is a
// pending product decision, not a code cleanup.
func (u *User) AdminAny() bool {
	return u.Role == RoleAdmin || u.RoleName == string(RoleAdmin) || u.IsAdmin
}

// SyncRoleMirrors updates the redundant role fields from the canonical Role.
// Every write path goes through this so the three signals only disagree for
// rows that predate the migration.
func (u *User) SyncRoleMirrors() {
	u.RoleName = string(u.Role)
	u.IsAdmin = u.Role == RoleAdmin
}

// Needs2FASetup returns true if the user has not completed 2FA enrollment.
// 2FA is optional; this only gates the verify step for users who enabled it.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}

// UserStats aggregates account counts for the admin dashboard.
type UserStats struct {
	Total     int            `json:"total"`
	Active    int            `json:"active"`
	Inactive  int            `json:"inactive"`
	Suspended int            `json:"suspended"`
	NewUsers  int            `json:"new_users"` // Accounts created in the last 30 days
	ByRole    map[string]int `json:"by_role"`
}
