package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/models"
)

const taskColumns = `id, title, description, assignee, priority, deadline, status,
	created_by, created_at, updated_at`

// TaskStore handles all task-related database operations.
type TaskStore struct {
	db *sql.DB
}

// NewTaskStore creates a new TaskStore with the given database connection.
func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Assignee, &t.Priority, &t.Deadline, &t.Status,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindByID retrieves a task by UUID. Returns nil if not found.
func (s *TaskStore) FindByID(id uuid.UUID) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRow(`
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	return t, nil
}

// TaskFilter narrows List results. Zero values mean "no filter".
type TaskFilter struct {
	Status   models.TaskStatus
	Priority models.Priority
	Assignee string
}

// List returns tasks matching the filter, newest first.
func (s *TaskStore) List(f TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE TRUE`
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if f.Assignee != "" {
		args = append(args, f.Assignee)
		query += fmt.Sprintf(" AND assignee = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// Search matches tasks whose title or assignee contains the query,
// case-insensitive, newest first.
func (s *TaskStore) Search(q string) ([]models.Task, error) {
	rows, err := s.db.Query(`
		SELECT `+taskColumns+` FROM tasks
		WHERE title ILIKE $1 OR assignee ILIKE $1
		ORDER BY created_at DESC
	`, "%"+strings.TrimSpace(q)+"%")
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Create inserts a new task and returns the stored representation.
func (s *TaskStore) Create(t *models.Task) (*models.Task, error) {
	created, err := scanTask(s.db.QueryRow(`
		INSERT INTO tasks (title, description, assignee, priority, deadline, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+taskColumns+`
	`, t.Title, t.Description, t.Assignee, t.Priority, t.Deadline, t.Status, t.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// Update writes the task's mutable columns back and returns the stored
// representation. Returns nil if the task no longer exists.
func (s *TaskStore) Update(t *models.Task) (*models.Task, error) {
	updated, err := scanTask(s.db.QueryRow(`
		UPDATE tasks
		SET title = $1, description = $2, assignee = $3, priority = $4,
		    deadline = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+taskColumns+`
	`, t.Title, t.Description, t.Assignee, t.Priority, t.Deadline, t.Status, t.ID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// Delete removes a task by ID. Tickets and work logs cascade.
func (s *TaskStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Stats aggregates task counts for the dashboard.
func (s *TaskStore) Stats(now time.Time) (*models.TaskStats, error) {
	stats := &models.TaskStats{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}

	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status != 'done' AND deadline < $1)
		FROM tasks
	`, now).Scan(&stats.Total, &stats.Overdue)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}

	rows, err := s.db.Query(`SELECT status, priority, COUNT(*) FROM tasks GROUP BY status, priority`)
	if err != nil {
		return nil, fmt.Errorf("task stats breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, priority string
		var n int
		if err := rows.Scan(&status, &priority, &n); err != nil {
			return nil, fmt.Errorf("scan task counts: %w", err)
		}
		stats.ByStatus[status] += n
		stats.ByPriority[priority] += n
	}
	return stats, rows.Err()
}
