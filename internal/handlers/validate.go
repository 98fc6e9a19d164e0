package handlers

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskdeck/internal/models"
)

// Validation limits for request fields.
const (
	maxEmailLen       = 254
	maxDisplayNameLen = 120
	maxTitleLen       = 300
	maxDescriptionLen = 10_000
	maxAssigneeLen    = 120
	maxPhoneLen       = 40
	maxAddressLen     = 500
	maxBioLen         = 2_000
	minPasswordLen    = 8
	maxHoursPerDay    = 24
)

// validateEmail checks an email address and returns the first error found.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long."
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return "Email address is not valid."
	}
	return ""
}

// validatePassword enforces the minimum password length.
func validatePassword(password string) string {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	return ""
}

// validateDisplayName checks a user's display name.
func validateDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Display name is required."
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		return "Display name is too long (max 120 characters)."
	}
	return ""
}

// validateProfile checks the optional profile fields.
func validateProfile(phone, address, bio string) string {
	if utf8.RuneCountInString(phone) > maxPhoneLen {
		return "Phone number is too long (max 40 characters)."
	}
	if utf8.RuneCountInString(address) > maxAddressLen {
		return "Address is too long (max 500 characters)."
	}
	if utf8.RuneCountInString(bio) > maxBioLen {
		return "Bio is too long (max 2,000 characters)."
	}
	return ""
}

// validateTask checks task inputs and returns the first error found.
func validateTask(title, description, assignee string, priority models.Priority, status models.TaskStatus) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 10,000 characters)."
	}
	if utf8.RuneCountInString(assignee) > maxAssigneeLen {
		return "Assignee is too long (max 120 characters)."
	}
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		return "Priority must be low, medium, or high."
	}
	switch status {
	case models.TaskPending, models.TaskInProgress, models.TaskDone:
	default:
		return "Status must be pending, in_progress, or done."
	}
	return ""
}

// validateTicket checks ticket inputs and returns the first error found.
func validateTicket(title, description string, priority models.TicketPriority) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 10,000 characters)."
	}
	switch priority {
	case models.TicketLow, models.TicketMedium, models.TicketHigh, models.TicketUrgent:
	default:
		return "Priority must be low, medium, high, or urgent."
	}
	return ""
}

// validateWorkLog checks work log inputs and returns the first error found.
func validateWorkLog(date time.Time, hours float64, description string) string {
	if date.IsZero() {
		return "Date is required."
	}
	if hours <= 0 || hours > maxHoursPerDay {
		return "Hours worked must be between 0 and 24."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 10,000 characters)."
	}
	return ""
}
