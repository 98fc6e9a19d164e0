// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"taskdeck/internal/database"
	"taskdeck/internal/middleware"
	"taskdeck/internal/models"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
	"taskdeck/internal/token"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "taskdeck")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "taskdeck")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "user_sessions:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB           *sql.DB
	Valkey       *redis.Client
	Tokens       *token.Manager
	Sessions     *session.Store
	UserStore    *store.UserStore
	TaskStore    *store.TaskStore
	TicketStore  *store.TicketStore
	WorkLogStore *store.WorkLogStore
	Auth         *Auth
	Tasks        *Tasks
	Users        *Users
	Tickets      *Tickets
	WorkLogs     *WorkLogs
}

// newTestEnv creates a complete test environment with all handler
// dependencies, starting from truncated tables.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	for _, table := range []string{"work_logs", "ticket_assignees", "tickets", "tasks", "users"} {
		if _, err := db.Exec("TRUNCATE TABLE " + table + " CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}

	tokens := token.NewManager([]byte("handler-test-secret"), time.Hour)
	sessions := session.NewStore(vk, time.Hour)
	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	ticketStore := store.NewTicketStore(db)
	workLogStore := store.NewWorkLogStore(db)

	return &testEnv{
		DB:           db,
		Valkey:       vk,
		Tokens:       tokens,
		Sessions:     sessions,
		UserStore:    userStore,
		TaskStore:    taskStore,
		TicketStore:  ticketStore,
		WorkLogStore: workLogStore,
		Auth:         NewAuth(tokens, sessions, userStore),
		Tasks:        NewTasks(taskStore),
		Users:        NewUsers(userStore, sessions),
		Tickets:      NewTickets(ticketStore),
		WorkLogs:     NewWorkLogs(workLogStore),
	}
}

// createUser inserts a user with the given role and returns it.
func (e *testEnv) createUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()

	user, err := e.UserStore.Create(store.CreateUserParams{
		Email:       email,
		Password:    "password123",
		DisplayName: "Test User",
		Role:        role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// createTask inserts a task owned by the given user and returns it.
func (e *testEnv) createTask(t *testing.T, title string, owner uuid.UUID) *models.Task {
	t.Helper()

	task, err := e.TaskStore.Create(&models.Task{
		Title:     title,
		Assignee:  "Test Assignee",
		Priority:  models.PriorityMedium,
		Deadline:  time.Now().Add(48 * time.Hour),
		Status:    models.TaskPending,
		CreatedBy: owner,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// sessionFor builds session data matching a stored user.
func sessionFor(user *models.User) *session.Data {
	return &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		RoleName:    user.RoleName,
		IsAdmin:     user.IsAdmin,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
