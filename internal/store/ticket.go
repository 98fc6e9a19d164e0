package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/models"
)

// ticketSelect joins the embedded task and user references so list views
// need no second lookup.
const ticketSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority,
	       t.requested_at, t.approved_at,
	       tk.id, tk.title, tk.priority,
	       ru.id, ru.email, ru.display_name,
	       au.id, au.email, au.display_name
	FROM tickets t
	JOIN tasks tk ON tk.id = t.task_id
	JOIN users ru ON ru.id = t.requested_by
	LEFT JOIN users au ON au.id = t.approved_by`

// TicketStore handles all ticket-related database operations.
type TicketStore struct {
	db *sql.DB
}

// NewTicketStore creates a new TicketStore with the given database connection.
func NewTicketStore(db *sql.DB) *TicketStore {
	return &TicketStore{db: db}
}

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	var (
		approverID    sql.NullString
		approverEmail sql.NullString
		approverName  sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.RequestedAt, &t.ApprovedAt,
		&t.Task.ID, &t.Task.Title, &t.Task.Priority,
		&t.RequestedBy.ID, &t.RequestedBy.Email, &t.RequestedBy.DisplayName,
		&approverID, &approverEmail, &approverName,
	)
	if err != nil {
		return nil, err
	}

	if approverID.Valid {
		id, err := uuid.Parse(approverID.String)
		if err != nil {
			return nil, fmt.Errorf("parse approver id: %w", err)
		}
		t.ApprovedBy = &models.UserRef{
			ID:          id,
			Email:       approverEmail.String,
			DisplayName: approverName.String,
		}
	}
	return t, nil
}

// TicketFilter narrows List results. Zero values mean "no filter".
type TicketFilter struct {
	Status   models.TicketStatus
	Priority models.TicketPriority
}

// List returns tickets matching the filter, newest request first,
// with assignees populated.
func (s *TicketStore) List(f TicketFilter) ([]models.Ticket, error) {
	query := ticketSelect + ` WHERE TRUE`
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		query += fmt.Sprintf(" AND t.priority = $%d", len(args))
	}

	query += " ORDER BY t.requested_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadAssignees(tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// FindByID retrieves a ticket with assignees. Returns nil if not found.
func (s *TicketStore) FindByID(id uuid.UUID) (*models.Ticket, error) {
	t, err := scanTicket(s.db.QueryRow(ticketSelect+` WHERE t.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket by id: %w", err)
	}

	tickets := []models.Ticket{*t}
	if err := s.loadAssignees(tickets); err != nil {
		return nil, err
	}
	return &tickets[0], nil
}

// loadAssignees fills the Assignees slice of each ticket in one query.
func (s *TicketStore) loadAssignees(tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]*models.Ticket, len(tickets))
	ids := make([]string, 0, len(tickets))
	for i := range tickets {
		tickets[i].Assignees = []models.UserRef{}
		index[tickets[i].ID] = &tickets[i]
		ids = append(ids, tickets[i].ID.String())
	}

	rows, err := s.db.Query(`
		SELECT ta.ticket_id, u.id, u.email, u.display_name
		FROM ticket_assignees ta
		JOIN users u ON u.id = ta.user_id
		WHERE ta.ticket_id = ANY($1::uuid[])
		ORDER BY u.display_name
	`, ids)
	if err != nil {
		return fmt.Errorf("load ticket assignees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ticketID uuid.UUID
		var ref models.UserRef
		if err := rows.Scan(&ticketID, &ref.ID, &ref.Email, &ref.DisplayName); err != nil {
			return fmt.Errorf("scan assignee: %w", err)
		}
		if t, ok := index[ticketID]; ok {
			t.Assignees = append(t.Assignees, ref)
		}
	}
	return rows.Err()
}

// CreateTicketParams carries the fields accepted when raising a ticket.
type CreateTicketParams struct {
	Title       string
	Description string
	Priority    models.TicketPriority
	TaskID      uuid.UUID
	RequestedBy uuid.UUID
	AssigneeIDs []uuid.UUID
}

// Create inserts a ticket in pending state plus its assignee links, in a
// single transaction, and returns the stored representation.
func (s *TicketStore) Create(p CreateTicketParams) (*models.Ticket, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO tickets (title, description, priority, task_id, requested_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Title, p.Description, p.Priority, p.TaskID, p.RequestedBy).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	for _, userID := range p.AssigneeIDs {
		if _, err := tx.Exec(`
			INSERT INTO ticket_assignees (ticket_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, id, userID); err != nil {
			return nil, fmt.Errorf("create ticket assignee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return s.FindByID(id)
}

// UpdateTicketParams carries the mutable ticket fields.
type UpdateTicketParams struct {
	Title       string
	Description string
	Priority    models.TicketPriority
	Status      models.TicketStatus
	AssigneeIDs []uuid.UUID // Replaces the existing set when non-nil
}

// Update rewrites a ticket's editable fields. Returns nil if the ticket
// does not exist.
func (s *TicketStore) Update(id uuid.UUID, p UpdateTicketParams) (*models.Ticket, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE tickets SET title = $1, description = $2, priority = $3, status = $4
		WHERE id = $5
	`, p.Title, p.Description, p.Priority, p.Status, id)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}

	if p.AssigneeIDs != nil {
		if _, err := tx.Exec(`DELETE FROM ticket_assignees WHERE ticket_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear ticket assignees: %w", err)
		}
		for _, userID := range p.AssigneeIDs {
			if _, err := tx.Exec(`
				INSERT INTO ticket_assignees (ticket_id, user_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, id, userID); err != nil {
				return nil, fmt.Errorf("update ticket assignee: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return s.FindByID(id)
}

// Decide moves a pending or in-review ticket to approved or rejected,
// recording the decider and timestamp. Returns nil if the ticket does not
// exist or is already decided.
func (s *TicketStore) Decide(id uuid.UUID, approved bool, deciderID uuid.UUID, at time.Time) (*models.Ticket, error) {
	status := models.TicketRejected
	if approved {
		status = models.TicketApproved
	}

	res, err := s.db.Exec(`
		UPDATE tickets SET status = $1, approved_by = $2, approved_at = $3
		WHERE id = $4 AND status IN ('pending', 'in_review')
	`, status, deciderID, at, id)
	if err != nil {
		return nil, fmt.Errorf("decide ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByID(id)
}

// Delete removes a ticket by ID; assignee links cascade.
func (s *TicketStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}
