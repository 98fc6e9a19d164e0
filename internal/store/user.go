// Package store provides database access methods for all TaskDeck
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskdeck/internal/models"
)

const userColumns = `id, email, password_hash, display_name, role, role_name, is_admin,
	phone, address, bio, status, totp_secret, totp_enabled, last_login_at,
	created_at, updated_at, deleted_at`

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.RoleName, &u.IsAdmin,
		&u.Phone, &u.Address, &u.Bio, &u.Status, &u.TOTPSecret, &u.TOTPEnabled, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail retrieves a non-deleted user by email. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`
		SELECT `+userColumns+`
		FROM users WHERE email = $1 AND deleted_at IS NULL
	`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a non-deleted user by UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`
		SELECT `+userColumns+`
		FROM users WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// UserFilter narrows List results. Zero values mean "no filter".
type UserFilter struct {
	Role   models.Role
	Status models.Status
	Search string // Matches email or display name, case-insensitive
	Limit  int
	Offset int
}

// List returns non-deleted users matching the filter, newest first.
func (s *UserStore) List(f UserFilter) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL`
	var args []any

	if f.Role != "" {
		args = append(args, f.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.TrimSpace(f.Search)+"%")
		query += fmt.Sprintf(" AND (email ILIKE $%d OR display_name ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Stats aggregates account counts for the admin dashboard.
func (s *UserStore) Stats() (*models.UserStats, error) {
	stats := &models.UserStats{ByRole: map[string]int{}}

	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE status = 'inactive'),
		       COUNT(*) FILTER (WHERE status = 'suspended'),
		       COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '30 days')
		FROM users WHERE deleted_at IS NULL
	`).Scan(&stats.Total, &stats.Active, &stats.Inactive, &stats.Suspended, &stats.NewUsers)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT role, COUNT(*) FROM users WHERE deleted_at IS NULL GROUP BY role
	`)
	if err != nil {
		return nil, fmt.Errorf("user stats by role: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		stats.ByRole[role] = n
	}
	return stats, rows.Err()
}

// CreateUserParams carries the fields accepted when creating an account.
type CreateUserParams struct {
	Email       string
	Password    string
	DisplayName string
	Role        models.Role
	Phone       string
}

// Create inserts a new user with a bcrypt-hashed password. The legacy
// role mirrors are written from the canonical role.
func (s *UserStore) Create(p CreateUserParams) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	mirror := models.User{Role: p.Role}
	mirror.SyncRoleMirrors()

	u, err := scanUser(s.db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, role_name, is_admin, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns+`
	`, p.Email, string(hash), p.DisplayName, p.Role, mirror.RoleName, mirror.IsAdmin, p.Phone))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Update writes the user's mutable columns back to the database and returns
// the stored representation. Callers load the row, change fields, and save;
// role mirrors are re-synced here so they cannot drift on write.
func (s *UserStore) Update(u *models.User) (*models.User, error) {
	u.SyncRoleMirrors()

	updated, err := scanUser(s.db.QueryRow(`
		UPDATE users
		SET email = $1, display_name = $2, role = $3, role_name = $4, is_admin = $5,
		    phone = $6, address = $7, bio = $8, status = $9, updated_at = NOW()
		WHERE id = $10 AND deleted_at IS NULL
		RETURNING `+userColumns+`
	`, u.Email, u.DisplayName, u.Role, u.RoleName, u.IsAdmin,
		u.Phone, u.Address, u.Bio, u.Status, u.ID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// SetPassword replaces the user's password hash.
func (s *UserStore) SetPassword(id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), id)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// SetLastLogin stamps the user's last successful login time.
func (s *UserStore) SetLastLogin(id uuid.UUID, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE users SET last_login_at = $1 WHERE id = $2
	`, at, id)
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

// SoftDelete marks a user deleted without removing the row. Their tasks,
// tickets, and work logs remain attributed.
func (s *UserStore) SoftDelete(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET deleted_at = NOW(), status = 'inactive', updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	return nil
}

// HardDelete removes the row entirely; dependent rows cascade.
func (s *UserStore) HardDelete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("hard delete user: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
func (s *UserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, userID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for a user (after successful code verification).
func (s *UserStore) EnableTOTP(userID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// DisableTOTP clears the TOTP secret and disables 2FA for a user.
func (s *UserStore) DisableTOTP(userID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = NULL, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("disable totp: %w", err)
	}
	return nil
}
