package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: one admin,
// one regular user, and a handful of tasks. It is a no-op if any users
// already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}
	userHash, err := bcrypt.GenerateFromPassword([]byte("user"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, role_name, is_admin)
		VALUES ($1, $2, $3, 'admin', 'admin', TRUE)
		RETURNING id
	`, "admin@taskdeck.local", string(adminHash), "Admin").Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, role_name, is_admin)
		VALUES ($1, $2, $3, 'user', 'user', FALSE)
	`, "user@taskdeck.local", string(userHash), "Demo User")
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	deadline := time.Now().Add(7 * 24 * time.Hour)
	tasks := []struct {
		title, assignee, priority, status string
	}{
		{"Set up project workspace", "Demo User", "high", "in_progress"},
		{"Review onboarding checklist", "Demo User", "medium", "pending"},
		{"Archive last quarter's reports", "Admin", "low", "pending"},
	}
	for _, task := range tasks {
		_, err = db.Exec(`
			INSERT INTO tasks (title, assignee, priority, deadline, status, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, task.title, task.assignee, task.priority, deadline, task.status, adminID)
		if err != nil {
			return fmt.Errorf("seed insert task: %w", err)
		}
	}

	slog.Info("database seeded with default users",
		"admin", "admin@taskdeck.local",
		"user", "user@taskdeck.local",
	)

	return nil
}
