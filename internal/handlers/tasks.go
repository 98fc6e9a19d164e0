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

// Tasks groups the task CRUD handlers.
type Tasks struct {
	taskStore *store.TaskStore
}

// NewTasks creates a new Tasks handler group.
func NewTasks(taskStore *store.TaskStore) *Tasks {
	return &Tasks{taskStore: taskStore}
}

// List returns tasks, optionally filtered by status, priority, and
// assignee query parameters.
func (h *Tasks) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.taskStore.List(store.TaskFilter{
		Status:   models.TaskStatus(q.Get("status")),
		Priority: models.Priority(q.Get("priority")),
		Assignee: q.Get("assignee"),
	})
	if err != nil {
		slog.Error("task list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// Get returns a single task by id.
func (h *Tasks) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	task, err := h.taskStore.FindByID(id)
	if err != nil {
		slog.Error("task lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Search returns tasks whose title or assignee matches the q parameter.
func (h *Tasks) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondJSON(w, http.StatusOK, []models.Task{})
		return
	}

	tasks, err := h.taskStore.Search(q)
	if err != nil {
		slog.Error("task search failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// Stats returns aggregate task counts.
func (h *Tasks) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.taskStore.Stats(time.Now())
	if err != nil {
		slog.Error("task stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

type taskRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Assignee    string            `json:"assignee"`
	Priority    models.Priority   `json:"priority"`
	Deadline    time.Time         `json:"deadline"`
	Status      models.TaskStatus `json:"status"`
}

// Create inserts a new task owned by the authenticated user.
func (h *Tasks) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		req.Status = models.TaskPending
	}
	if msg := validateTask(req.Title, req.Description, req.Assignee, req.Priority, req.Status); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.taskStore.Create(&models.Task{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		Status:      req.Status,
		CreatedBy:   sess.UserID,
	})
	if err != nil {
		slog.Error("task create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// Update rewrites a task's editable fields.
func (h *Tasks) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateTask(req.Title, req.Description, req.Assignee, req.Priority, req.Status); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.taskStore.Update(&models.Task{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		Status:      req.Status,
	})
	if err != nil {
		slog.Error("task update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if task == nil {
		respondError(w, http.StatusNotFound, "Task not found")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Delete removes a task.
func (h *Tasks) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	if err := h.taskStore.Delete(id); err != nil {
		slog.Error("task delete failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
