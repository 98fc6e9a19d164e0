package client

import "time"

// User is the client-side view of an account. The role, role_name, and
// is_admin fields are redundant signals kept in sync by the server; the
// guard layer reads all three.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	RoleName    string     `json:"role_name"`
	IsAdmin     bool       `json:"is_admin"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Status      string     `json:"status"`
	TOTPEnabled bool       `json:"totp_enabled"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Task mirrors the server task representation.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Assignee    string    `json:"assignee"`
	Priority    string    `json:"priority"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserRef is the compact user embedded in tickets and work logs.
type UserRef struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// TaskRef is the compact task embedded in tickets and work logs.
type TaskRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority,omitempty"`
}

// Ticket mirrors the server ticket representation.
type Ticket struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Task        TaskRef    `json:"task"`
	RequestedBy UserRef    `json:"requested_by"`
	ApprovedBy  *UserRef   `json:"approved_by,omitempty"`
	Assignees   []UserRef  `json:"assignees,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

// WorkLog mirrors the server work log representation.
type WorkLog struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	HoursWorked float64   `json:"hours_worked"`
	Description string    `json:"description,omitempty"`
	Task        TaskRef   `json:"task"`
	User        UserRef   `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskStats mirrors the server task aggregates.
type TaskStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	Overdue    int            `json:"overdue"`
}

// UserStats mirrors the server user aggregates.
type UserStats struct {
	Total     int            `json:"total"`
	Active    int            `json:"active"`
	Inactive  int            `json:"inactive"`
	Suspended int            `json:"suspended"`
	NewUsers  int            `json:"new_users"`
	ByRole    map[string]int `json:"by_role"`
}

// AuthResult is the response to login and register.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// TaskRequest is the payload for creating or updating a task.
type TaskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Assignee    string    `json:"assignee"`
	Priority    string    `json:"priority"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
}

// TicketRequest is the payload for creating a ticket.
type TicketRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	TaskID      string   `json:"task_id"`
	AssigneeIDs []string `json:"assignee_ids,omitempty"`
}

// TicketUpdate is the payload for updating an undecided ticket.
type TicketUpdate struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	AssigneeIDs []string `json:"assignee_ids,omitempty"`
}

// WorkLogRequest is the payload for creating or updating a work log.
type WorkLogRequest struct {
	Date        time.Time `json:"date"`
	HoursWorked float64   `json:"hours_worked"`
	Description string    `json:"description"`
	TaskID      string    `json:"task_id,omitempty"`
}

// ProfileUpdate is the payload for updating a user profile. Role and
// status are honored only for admin callers.
type ProfileUpdate struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Bio         string `json:"bio"`
	Password    string `json:"password,omitempty"`
	Role        string `json:"role,omitempty"`
	Status      string `json:"status,omitempty"`
}

// CreateUserRequest is the payload for the admin user-creation endpoint.
type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Phone       string `json:"phone,omitempty"`
}

// TwoFASetup is the response to the 2FA setup endpoint.
type TwoFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
	QRCode     string `json:"qr_code"`
}
