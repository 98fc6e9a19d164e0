package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskdeck/internal/models"
)

func TestTaskCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "tasks@taskdeck.local", models.RoleUser)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks",
		strings.NewReader(`{"title":"Ship release","description":"Cut the 1.4 release","assignee":"Alice","priority":"high","deadline":"2026-09-15T00:00:00Z"}`))
	req = req.WithContext(ctxWithSession(req.Context(), sessionFor(user)))

	env.Tasks.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != models.TaskPending {
		t.Errorf("status = %q, new tasks default to pending", created.Status)
	}
	if created.CreatedBy != user.ID {
		t.Errorf("created_by = %s, want session user %s", created.CreatedBy, user.ID)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/tasks/"+created.ID.String(), nil)
	req = withChiURLParam(req, "id", created.ID.String())

	env.Tasks.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
}

func TestTaskCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "taskval@taskdeck.local", models.RoleUser)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"title":"","priority":"low"}`},
		{"bad priority", `{"title":"x","priority":"critical"}`},
		{"bad status", `{"title":"x","priority":"low","status":"archived"}`},
		{"unknown field", `{"title":"x","priority":"low","owner":"y"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(tt.body))
			req = req.WithContext(ctxWithSession(req.Context(), sessionFor(user)))

			env.Tasks.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestTaskUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "taskupd@taskdeck.local", models.RoleUser)
	task := env.createTask(t, "Initial title", user.ID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+task.ID.String(),
		strings.NewReader(`{"title":"Renamed","assignee":"Bob","priority":"low","deadline":"2026-10-01T00:00:00Z","status":"in_progress"}`))
	req = req.WithContext(ctxWithSession(req.Context(), sessionFor(user)))
	req = withChiURLParam(req, "id", task.ID.String())

	env.Tasks.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var updated models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Title != "Renamed" || updated.Status != models.TaskInProgress {
		t.Errorf("updated = %q/%q, want Renamed/in_progress", updated.Title, updated.Status)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/tasks/"+task.ID.String(), nil)
	req = withChiURLParam(req, "id", task.ID.String())

	env.Tasks.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	gone, err := env.TaskStore.FindByID(task.ID)
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if gone != nil {
		t.Error("task should be gone after delete")
	}
}

func TestTaskUpdateUnknownID(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "tasks404@taskdeck.local", models.RoleUser)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/00000000-0000-0000-0000-000000000001",
		strings.NewReader(`{"title":"x","priority":"low","status":"pending"}`))
	req = req.WithContext(ctxWithSession(req.Context(), sessionFor(user)))
	req = withChiURLParam(req, "id", "00000000-0000-0000-0000-000000000001")

	env.Tasks.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTaskSearchAndList(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "tasksearch@taskdeck.local", models.RoleUser)
	env.createTask(t, "Quarterly report", user.ID)
	env.createTask(t, "Deploy staging", user.ID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/search?q=quarterly", nil)

	env.Tasks.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", rec.Code)
	}

	var found []models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &found); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(found) != 1 || found[0].Title != "Quarterly report" {
		t.Errorf("search found %d tasks, want exactly the report", len(found))
	}

	// Empty query returns an empty list, not an error.
	rec = httptest.NewRecorder()
	env.Tasks.Search(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/search", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty query: status=%d body=%q, want 200 []", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	env.Tasks.List(rec, httptest.NewRequest(http.MethodGet, "/api/tasks?priority=medium", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}

	var listed []models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("list returned %d tasks, want 2", len(listed))
	}
}
