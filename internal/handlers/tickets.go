package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskdeck/internal/middleware"
	"taskdeck/internal/models"
	"taskdeck/internal/store"
)

// Tickets groups the approval ticket handlers.
type Tickets struct {
	ticketStore *store.TicketStore
}

// NewTickets creates a new Tickets handler group.
func NewTickets(ticketStore *store.TicketStore) *Tickets {
	return &Tickets{ticketStore: ticketStore}
}

// List returns tickets, optionally filtered by status and priority.
func (h *Tickets) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tickets, err := h.ticketStore.List(store.TicketFilter{
		Status:   models.TicketStatus(q.Get("status")),
		Priority: models.TicketPriority(q.Get("priority")),
	})
	if err != nil {
		slog.Error("ticket list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, tickets)
}

// Get returns a single ticket by id with assignees populated.
func (h *Tickets) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	ticket, err := h.ticketStore.FindByID(id)
	if err != nil {
		slog.Error("ticket lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if ticket == nil {
		respondError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

type createTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    models.TicketPriority `json:"priority"`
	TaskID      uuid.UUID             `json:"task_id"`
	AssigneeIDs []uuid.UUID           `json:"assignee_ids,omitempty"`
}

// Create opens a new ticket in pending state, requested by the
// authenticated user.
func (h *Tickets) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req createTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateTicket(req.Title, req.Description, req.Priority); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.TaskID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "Task id is required.")
		return
	}

	ticket, err := h.ticketStore.Create(store.CreateTicketParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		TaskID:      req.TaskID,
		RequestedBy: sess.UserID,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			respondError(w, http.StatusBadRequest, "Referenced task or user does not exist")
			return
		}
		slog.Error("ticket create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusCreated, ticket)
}

type updateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    models.TicketPriority `json:"priority"`
	Status      models.TicketStatus   `json:"status"`
	AssigneeIDs []uuid.UUID           `json:"assignee_ids,omitempty"`
}

// Update rewrites a ticket's editable fields. Approval and rejection go
// through the dedicated decision endpoints, so the status here is
// limited to the undecided states.
func (h *Tickets) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	var req updateTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateTicket(req.Title, req.Description, req.Priority); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Status != models.TicketPending && req.Status != models.TicketInReview {
		respondError(w, http.StatusBadRequest, "Status must be pending or in_review; use the decision endpoints to approve or reject.")
		return
	}

	ticket, err := h.ticketStore.Update(id, store.UpdateTicketParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			respondError(w, http.StatusBadRequest, "Referenced user does not exist")
			return
		}
		slog.Error("ticket update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if ticket == nil {
		respondError(w, http.StatusNotFound, "Ticket not found")
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// Approve marks a pending or in-review ticket approved. Admin-only.
func (h *Tickets) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject marks a pending or in-review ticket rejected. Admin-only.
func (h *Tickets) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Tickets) decide(w http.ResponseWriter, r *http.Request, approved bool) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	ticket, err := h.ticketStore.Decide(id, approved, sess.UserID, time.Now())
	if err != nil {
		slog.Error("ticket decision failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if ticket == nil {
		// Unknown id or the ticket was already decided.
		respondError(w, http.StatusConflict, "Ticket not found or already decided")
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// Delete removes a ticket and its assignee links.
func (h *Tickets) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	if err := h.ticketStore.Delete(id); err != nil {
		slog.Error("ticket delete failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
