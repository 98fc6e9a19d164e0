// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"taskdeck/internal/database"
	"taskdeck/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "taskdeck")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "taskdeck")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database, runs migrations, and
// clears all rows so each test starts from a known state. If the database
// is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	if _, err := db.Exec(`TRUNCATE work_logs, ticket_assignees, tickets, tasks, users CASCADE`); err != nil {
		db.Close()
		t.Fatalf("failed to reset tables: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user and returns it.
func createTestUser(t *testing.T, db *sql.DB, email string, role models.Role) *models.User {
	t.Helper()

	u, err := NewUserStore(db).Create(CreateUserParams{
		Email:       email,
		Password:    "password123",
		DisplayName: "Test " + email,
		Role:        role,
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

// createTestTask inserts a task owned by the given user and returns it.
func createTestTask(t *testing.T, db *sql.DB, title string, owner uuid.UUID) *models.Task {
	t.Helper()

	task, err := NewTaskStore(db).Create(&models.Task{
		Title:     title,
		Assignee:  "Test Assignee",
		Priority:  models.PriorityMedium,
		Deadline:  time.Now().Add(48 * time.Hour),
		Status:    models.TaskPending,
		CreatedBy: owner,
	})
	if err != nil {
		t.Fatalf("create test task: %v", err)
	}
	return task
}
