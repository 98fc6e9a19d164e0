package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskdeck/internal/middleware"
	"taskdeck/internal/store"
)

// WorkLogs groups the work log handlers.
type WorkLogs struct {
	workLogStore *store.WorkLogStore
}

// NewWorkLogs creates a new WorkLogs handler group.
func NewWorkLogs(workLogStore *store.WorkLogStore) *WorkLogs {
	return &WorkLogs{workLogStore: workLogStore}
}

// List returns work logs filtered by the from, to, user, and task query
// parameters. Dates use the 2006-01-02 form.
func (h *WorkLogs) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.WorkLogFilter

	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		f.To = &t
	}
	if v := q.Get("user"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid user id")
			return
		}
		f.UserID = &id
	}
	if v := q.Get("task"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid task id")
			return
		}
		f.TaskID = &id
	}

	logs, err := h.workLogStore.List(f)
	if err != nil {
		slog.Error("work log list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// Get returns a single work log by id.
func (h *WorkLogs) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid work log id")
		return
	}

	log, err := h.workLogStore.FindByID(id)
	if err != nil {
		slog.Error("work log lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if log == nil {
		respondError(w, http.StatusNotFound, "Work log not found")
		return
	}
	respondJSON(w, http.StatusOK, log)
}

type workLogRequest struct {
	Date        time.Time `json:"date"`
	HoursWorked float64   `json:"hours_worked"`
	Description string    `json:"description"`
	TaskID      uuid.UUID `json:"task_id"`
}

// Create records hours worked by the authenticated user against a task.
func (h *WorkLogs) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req workLogRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateWorkLog(req.Date, req.HoursWorked, req.Description); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.TaskID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "Task id is required.")
		return
	}

	log, err := h.workLogStore.Create(store.CreateWorkLogParams{
		Date:        req.Date,
		HoursWorked: req.HoursWorked,
		Description: req.Description,
		TaskID:      req.TaskID,
		UserID:      sess.UserID,
	})
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			respondError(w, http.StatusBadRequest, "Referenced task does not exist")
			return
		}
		slog.Error("work log create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusCreated, log)
}

// Update rewrites a work log's date, hours, and description. Only the
// log's owner or an admin may change it.
func (h *WorkLogs) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid work log id")
		return
	}

	var req workLogRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateWorkLog(req.Date, req.HoursWorked, req.Description); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := h.workLogStore.FindByID(id)
	if err != nil {
		slog.Error("work log lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Work log not found")
		return
	}
	if existing.User.ID != sess.UserID && !sess.AdminAny() {
		respondError(w, http.StatusForbidden, "Cannot modify another user's work log")
		return
	}

	log, err := h.workLogStore.Update(id, req.Date, req.HoursWorked, req.Description)
	if err != nil {
		slog.Error("work log update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if log == nil {
		respondError(w, http.StatusNotFound, "Work log not found")
		return
	}
	respondJSON(w, http.StatusOK, log)
}

// Delete removes a work log. Only the log's owner or an admin may
// delete it.
func (h *WorkLogs) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid work log id")
		return
	}

	existing, err := h.workLogStore.FindByID(id)
	if err != nil {
		slog.Error("work log lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Work log not found")
		return
	}
	if existing.User.ID != sess.UserID && !sess.AdminAny() {
		respondError(w, http.StatusForbidden, "Cannot delete another user's work log")
		return
	}

	if err := h.workLogStore.Delete(id); err != nil {
		slog.Error("work log delete failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
