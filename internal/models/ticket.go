package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus tracks an approval request's lifecycle.
type TicketStatus string

const (
	TicketPending  TicketStatus = "pending"
	TicketInReview TicketStatus = "in_review"
	TicketApproved TicketStatus = "approved"
	TicketRejected TicketStatus = "rejected"
)

// TicketPriority extends task priorities with an urgent level.
type TicketPriority string

const (
	TicketLow    TicketPriority = "low"
	TicketMedium TicketPriority = "medium"
	TicketHigh   TicketPriority = "high"
	TicketUrgent TicketPriority = "urgent"
)

// UserRef is the compact user representation embedded in tickets and
// work logs, mirroring what list views need without a second lookup.
type UserRef struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
}

// TaskRef is the compact task representation embedded in tickets and
// work logs.
type TaskRef struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Priority Priority  `json:"priority,omitempty"`
}

// Ticket is an approval request raised against a task. Tickets move from
// pending (optionally through in_review) to approved or rejected; the
// decision and its timestamp are recorded on the ticket.
type Ticket struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	Task        TaskRef        `json:"task"`
	RequestedBy UserRef        `json:"requested_by"`
	ApprovedBy  *UserRef       `json:"approved_by,omitempty"`
	Assignees   []UserRef      `json:"assignees"`
	RequestedAt time.Time      `json:"requested_at"`
	ApprovedAt  *time.Time     `json:"approved_at,omitempty"` // Set on approve AND reject
}

// Decided reports whether the ticket has reached a terminal state.
func (t *Ticket) Decided() bool {
	return t.Status == TicketApproved || t.Status == TicketRejected
}
