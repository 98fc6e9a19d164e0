package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/models"
)

const workLogSelect = `
	SELECT w.id, w.date, w.hours_worked, w.description, w.created_at,
	       tk.id, tk.title, tk.priority,
	       u.id, u.email, u.display_name
	FROM work_logs w
	JOIN tasks tk ON tk.id = w.task_id
	JOIN users u ON u.id = w.user_id`

// WorkLogStore handles all work-log database operations.
type WorkLogStore struct {
	db *sql.DB
}

// NewWorkLogStore creates a new WorkLogStore with the given database connection.
func NewWorkLogStore(db *sql.DB) *WorkLogStore {
	return &WorkLogStore{db: db}
}

func scanWorkLog(row interface{ Scan(...any) error }) (*models.WorkLog, error) {
	w := &models.WorkLog{}
	err := row.Scan(
		&w.ID, &w.Date, &w.HoursWorked, &w.Description, &w.CreatedAt,
		&w.Task.ID, &w.Task.Title, &w.Task.Priority,
		&w.User.ID, &w.User.Email, &w.User.DisplayName,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// WorkLogFilter narrows List results. Nil pointers mean "no filter".
type WorkLogFilter struct {
	From   *time.Time
	To     *time.Time
	UserID *uuid.UUID
	TaskID *uuid.UUID
}

// List returns work logs matching the filter, most recent date first.
func (s *WorkLogStore) List(f WorkLogFilter) ([]models.WorkLog, error) {
	query := workLogSelect + ` WHERE TRUE`
	var args []any

	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND w.date >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND w.date <= $%d", len(args))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		query += fmt.Sprintf(" AND w.user_id = $%d", len(args))
	}
	if f.TaskID != nil {
		args = append(args, *f.TaskID)
		query += fmt.Sprintf(" AND w.task_id = $%d", len(args))
	}

	query += " ORDER BY w.date DESC, w.created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work logs: %w", err)
	}
	defer rows.Close()

	var logs []models.WorkLog
	for rows.Next() {
		w, err := scanWorkLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work log: %w", err)
		}
		logs = append(logs, *w)
	}
	return logs, rows.Err()
}

// FindByID retrieves a work log by UUID. Returns nil if not found.
func (s *WorkLogStore) FindByID(id uuid.UUID) (*models.WorkLog, error) {
	w, err := scanWorkLog(s.db.QueryRow(workLogSelect+` WHERE w.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find work log by id: %w", err)
	}
	return w, nil
}

// CreateWorkLogParams carries the fields accepted when logging work.
type CreateWorkLogParams struct {
	Date        time.Time
	HoursWorked float64
	Description string
	TaskID      uuid.UUID
	UserID      uuid.UUID
}

// Create inserts a work log and returns the stored representation.
func (s *WorkLogStore) Create(p CreateWorkLogParams) (*models.WorkLog, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO work_logs (date, hours_worked, description, task_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Date, p.HoursWorked, p.Description, p.TaskID, p.UserID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create work log: %w", err)
	}
	return s.FindByID(id)
}

// Update rewrites a work log's editable fields. Returns nil if it does
// not exist.
func (s *WorkLogStore) Update(id uuid.UUID, date time.Time, hours float64, description string) (*models.WorkLog, error) {
	res, err := s.db.Exec(`
		UPDATE work_logs SET date = $1, hours_worked = $2, description = $3
		WHERE id = $4
	`, date, hours, description, id)
	if err != nil {
		return nil, fmt.Errorf("update work log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByID(id)
}

// Delete removes a work log by ID.
func (s *WorkLogStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM work_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete work log: %w", err)
	}
	return nil
}
