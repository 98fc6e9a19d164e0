package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskdeck/internal/models"
)

func TestWorkLogCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "logger@taskdeck.local", models.RoleUser)
	task := env.createTask(t, "Logged task", user.ID)

	body := fmt.Sprintf(`{"date":"2026-08-20T00:00:00Z","hours_worked":6.5,"description":"API work","task_id":%q}`, task.ID)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/worklogs", strings.NewReader(body))
	req = req.WithContext(ctxWithSession(req.Context(), sessionFor(user)))

	env.WorkLogs.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created models.WorkLog
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.HoursWorked != 6.5 {
		t.Errorf("hours = %v, want 6.5", created.HoursWorked)
	}
	if created.User.ID != user.ID || created.Task.ID != task.ID {
		t.Errorf("refs = user %s task %s, want %s/%s", created.User.ID, created.Task.ID, user.ID, task.ID)
	}

	t.Run("date range filter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.WorkLogs.List(rec, httptest.NewRequest(http.MethodGet, "/api/worklogs?from=2026-08-01&to=2026-08-31", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("list status = %d, want 200", rec.Code)
		}
		var logs []models.WorkLog
		if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(logs) != 1 {
			t.Errorf("list returned %d logs, want 1", len(logs))
		}
	})

	t.Run("range excluding the log", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.WorkLogs.List(rec, httptest.NewRequest(http.MethodGet, "/api/worklogs?from=2026-09-01", nil))

		var logs []models.WorkLog
		if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(logs) != 0 {
			t.Errorf("list returned %d logs, want 0", len(logs))
		}
	})

	t.Run("bad date format", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.WorkLogs.List(rec, httptest.NewRequest(http.MethodGet, "/api/worklogs?from=20-08-2026", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestWorkLogValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "logval@taskdeck.local", models.RoleUser)
	task := env.createTask(t, "Validation task", user.ID)

	tests := []struct {
		name string
		body string
	}{
		{"zero hours", fmt.Sprintf(`{"date":"2026-08-20T00:00:00Z","hours_worked":0,"task_id":%q}`, task.ID)},
		{"too many hours", fmt.Sprintf(`{"date":"2026-08-20T00:00:00Z","hours_worked":25,"task_id":%q}`, task.ID)},
		{"missing date", fmt.Sprintf(`{"hours_worked":4,"task_id":%q}`, task.ID)},
		{"missing task", `{"date":"2026-08-20T00:00:00Z","hours_worked":4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/worklogs", strings.NewReader(tt.body))
			req = req.WithContext(ctxWithSession(req.Context(), sessionFor(user)))

			env.WorkLogs.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestWorkLogOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "logowner@taskdeck.local", models.RoleUser)
	other := env.createUser(t, "logother@taskdeck.local", models.RoleUser)
	admin := env.createUser(t, "logadmin@taskdeck.local", models.RoleAdmin)
	task := env.createTask(t, "Owned task", owner.ID)

	body := fmt.Sprintf(`{"date":"2026-08-21T00:00:00Z","hours_worked":3,"description":"setup","task_id":%q}`, task.ID)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/worklogs", strings.NewReader(body))
	req = req.WithContext(ctxWithSession(req.Context(), sessionFor(owner)))
	env.WorkLogs.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	var created models.WorkLog
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	update := `{"date":"2026-08-21T00:00:00Z","hours_worked":5,"description":"more setup"}`

	t.Run("other user may not update", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/worklogs/"+created.ID.String(), strings.NewReader(update))
		req = req.WithContext(ctxWithSession(req.Context(), sessionFor(other)))
		req = withChiURLParam(req, "id", created.ID.String())

		env.WorkLogs.Update(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin may update", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/worklogs/"+created.ID.String(), strings.NewReader(update))
		req = req.WithContext(ctxWithSession(req.Context(), sessionFor(admin)))
		req = withChiURLParam(req, "id", created.ID.String())

		env.WorkLogs.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var updated models.WorkLog
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if updated.HoursWorked != 5 {
			t.Errorf("hours = %v, want 5", updated.HoursWorked)
		}
	})

	t.Run("owner may delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/worklogs/"+created.ID.String(), nil)
		req = req.WithContext(ctxWithSession(req.Context(), sessionFor(owner)))
		req = withChiURLParam(req, "id", created.ID.String())

		env.WorkLogs.Delete(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
	})
}
