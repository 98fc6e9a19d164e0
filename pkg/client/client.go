// Package client is a typed Go client for the TaskDeck API. It attaches
// the bearer token from a TokenStore on every request and clears the
// store when the server answers 401 or 403, so a revoked or expired
// session degrades to logged-out everywhere at once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the TaskDeck API client.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenStore
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUnauthorizedHook registers a callback invoked after a 401 or 403
// response has cleared the token store. Typical use: force a navigation
// to the login page.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a new API client reading its credential from tokens.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Auth ---

// Login exchanges credentials for a token and user. The caller decides
// whether to persist the token; see Session.Login for the usual flow.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res AuthResult
	if err := c.post(ctx, "/auth/login", body, &res); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &res, nil
}

// LoginWithCode is Login for accounts with two-factor authentication
// enabled.
func (c *Client) LoginWithCode(ctx context.Context, email, password, code string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password, "code": code}
	var res AuthResult
	if err := c.post(ctx, "/auth/login", body, &res); err != nil {
		return nil, fmt.Errorf("client.LoginWithCode: %w", err)
	}
	return &res, nil
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone,omitempty"`
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var res AuthResult
	if err := c.post(ctx, "/auth/register", req, &res); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &res, nil
}

// Logout revokes the current session server-side.
func (c *Client) Logout(ctx context.Context) error {
	tok, _ := c.tokens.Get()
	return c.LogoutToken(ctx, tok)
}

// LogoutToken revokes an explicitly named token. Session.Logout clears
// the token store before revoking, so the credential travels as an
// argument instead of being read back from the store.
func (c *Client) LogoutToken(ctx context.Context, token string) error {
	if err := c.doRequestToken(ctx, http.MethodPost, "/auth/logout", nil, nil, token); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// Me returns the authenticated user's current record.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &u, nil
}

// SetupTwoFA starts two-factor enrollment for the current user.
func (c *Client) SetupTwoFA(ctx context.Context) (*TwoFASetup, error) {
	var res TwoFASetup
	if err := c.get(ctx, "/auth/2fa/setup", &res); err != nil {
		return nil, fmt.Errorf("client.SetupTwoFA: %w", err)
	}
	return &res, nil
}

// EnableTwoFA confirms enrollment with a code from the authenticator.
func (c *Client) EnableTwoFA(ctx context.Context, code string) error {
	if err := c.post(ctx, "/auth/2fa/enable", map[string]string{"code": code}, nil); err != nil {
		return fmt.Errorf("client.EnableTwoFA: %w", err)
	}
	return nil
}

// DisableTwoFA turns two-factor authentication off.
func (c *Client) DisableTwoFA(ctx context.Context, code string) error {
	if err := c.post(ctx, "/auth/2fa/disable", map[string]string{"code": code}, nil); err != nil {
		return fmt.Errorf("client.DisableTwoFA: %w", err)
	}
	return nil
}

// --- Tasks ---

// TaskListOptions filter ListTasks.
type TaskListOptions struct {
	Status   string
	Priority string
	Assignee string
}

// ListTasks fetches tasks, newest first.
func (c *Client) ListTasks(ctx context.Context, opts TaskListOptions) ([]Task, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Priority != "" {
		params.Set("priority", opts.Priority)
	}
	if opts.Assignee != "" {
		params.Set("assignee", opts.Assignee)
	}

	var tasks []Task
	if err := c.get(ctx, "/api/tasks?"+params.Encode(), &tasks); err != nil {
		return nil, fmt.Errorf("client.ListTasks: %w", err)
	}
	return tasks, nil
}

// SearchTasks searches tasks by title or assignee.
func (c *Client) SearchTasks(ctx context.Context, query string) ([]Task, error) {
	params := url.Values{}
	params.Set("q", query)

	var tasks []Task
	if err := c.get(ctx, "/api/tasks/search?"+params.Encode(), &tasks); err != nil {
		return nil, fmt.Errorf("client.SearchTasks: %w", err)
	}
	return tasks, nil
}

// GetTask fetches a single task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.get(ctx, "/api/tasks/"+url.PathEscape(id), &task); err != nil {
		return nil, fmt.Errorf("client.GetTask: %w", err)
	}
	return &task, nil
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (*Task, error) {
	var created Task
	if err := c.post(ctx, "/api/tasks", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateTask: %w", err)
	}
	return &created, nil
}

// UpdateTask rewrites a task's editable fields.
func (c *Client) UpdateTask(ctx context.Context, id string, req TaskRequest) (*Task, error) {
	var updated Task
	if err := c.doRequest(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), req, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateTask: %w", err)
	}
	return &updated, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteTask: %w", err)
	}
	return nil
}

// GetTaskStats returns aggregate task counts.
func (c *Client) GetTaskStats(ctx context.Context) (*TaskStats, error) {
	var stats TaskStats
	if err := c.get(ctx, "/api/tasks/stats", &stats); err != nil {
		return nil, fmt.Errorf("client.GetTaskStats: %w", err)
	}
	return &stats, nil
}

// --- Users ---

// UserListOptions filter ListUsers.
type UserListOptions struct {
	Role   string
	Status string
	Limit  int
	Offset int
}

// ListUsers fetches users. Admin-only.
func (c *Client) ListUsers(ctx context.Context, opts UserListOptions) ([]User, error) {
	params := url.Values{}
	if opts.Role != "" {
		params.Set("role", opts.Role)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var users []User
	if err := c.get(ctx, "/api/users?"+params.Encode(), &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return users, nil
}

// SearchUsers searches users by email or display name. Admin-only.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	params := url.Values{}
	params.Set("q", query)

	var users []User
	if err := c.get(ctx, "/api/users/search?"+params.Encode(), &users); err != nil {
		return nil, fmt.Errorf("client.SearchUsers: %w", err)
	}
	return users, nil
}

// GetUser fetches a single user by ID. Admin-only.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.get(ctx, "/api/users/"+url.PathEscape(id), &u); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// CreateUser creates an account with an explicit role. Admin-only.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var created User
	if err := c.post(ctx, "/api/users", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateUser: %w", err)
	}
	return &created, nil
}

// UpdateUser rewrites a user's profile. Admins may update anyone;
// regular users only themselves.
func (c *Client) UpdateUser(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	var updated User
	if err := c.doRequest(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), update, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	return &updated, nil
}

// DeleteUser soft-deletes a user, or removes the row entirely when hard
// is true. Admin-only.
func (c *Client) DeleteUser(ctx context.Context, id string, hard bool) error {
	path := "/api/users/" + url.PathEscape(id)
	if hard {
		path += "?hard=true"
	}
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("client.DeleteUser: %w", err)
	}
	return nil
}

// GetUserStats returns aggregate user counts. Admin-only.
func (c *Client) GetUserStats(ctx context.Context) (*UserStats, error) {
	var stats UserStats
	if err := c.get(ctx, "/api/users/stats", &stats); err != nil {
		return nil, fmt.Errorf("client.GetUserStats: %w", err)
	}
	return &stats, nil
}

// --- Tickets ---

// TicketListOptions filter ListTickets.
type TicketListOptions struct {
	Status   string
	Priority string
}

// ListTickets fetches tickets, newest request first.
func (c *Client) ListTickets(ctx context.Context, opts TicketListOptions) ([]Ticket, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Priority != "" {
		params.Set("priority", opts.Priority)
	}

	var tickets []Ticket
	if err := c.get(ctx, "/api/tickets?"+params.Encode(), &tickets); err != nil {
		return nil, fmt.Errorf("client.ListTickets: %w", err)
	}
	return tickets, nil
}

// GetTicket fetches a single ticket by ID.
func (c *Client) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	var ticket Ticket
	if err := c.get(ctx, "/api/tickets/"+url.PathEscape(id), &ticket); err != nil {
		return nil, fmt.Errorf("client.GetTicket: %w", err)
	}
	return &ticket, nil
}

// CreateTicket opens an approval ticket against a task.
func (c *Client) CreateTicket(ctx context.Context, req TicketRequest) (*Ticket, error) {
	var created Ticket
	if err := c.post(ctx, "/api/tickets", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateTicket: %w", err)
	}
	return &created, nil
}

// UpdateTicket rewrites an undecided ticket.
func (c *Client) UpdateTicket(ctx context.Context, id string, update TicketUpdate) (*Ticket, error) {
	var updated Ticket
	if err := c.doRequest(ctx, http.MethodPut, "/api/tickets/"+url.PathEscape(id), update, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateTicket: %w", err)
	}
	return &updated, nil
}

// ApproveTicket approves a pending ticket. Admin-only.
func (c *Client) ApproveTicket(ctx context.Context, id string) (*Ticket, error) {
	var decided Ticket
	if err := c.post(ctx, "/api/tickets/"+url.PathEscape(id)+"/approve", nil, &decided); err != nil {
		return nil, fmt.Errorf("client.ApproveTicket: %w", err)
	}
	return &decided, nil
}

// RejectTicket rejects a pending ticket. Admin-only.
func (c *Client) RejectTicket(ctx context.Context, id string) (*Ticket, error) {
	var decided Ticket
	if err := c.post(ctx, "/api/tickets/"+url.PathEscape(id)+"/reject", nil, &decided); err != nil {
		return nil, fmt.Errorf("client.RejectTicket: %w", err)
	}
	return &decided, nil
}

// DeleteTicket removes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/tickets/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteTicket: %w", err)
	}
	return nil
}

// --- Work logs ---

// WorkLogListOptions filter ListWorkLogs. Dates use YYYY-MM-DD.
type WorkLogListOptions struct {
	From   string
	To     string
	UserID string
	TaskID string
}

// ListWorkLogs fetches work logs, most recent date first.
func (c *Client) ListWorkLogs(ctx context.Context, opts WorkLogListOptions) ([]WorkLog, error) {
	params := url.Values{}
	if opts.From != "" {
		params.Set("from", opts.From)
	}
	if opts.To != "" {
		params.Set("to", opts.To)
	}
	if opts.UserID != "" {
		params.Set("user", opts.UserID)
	}
	if opts.TaskID != "" {
		params.Set("task", opts.TaskID)
	}

	var logs []WorkLog
	if err := c.get(ctx, "/api/worklogs?"+params.Encode(), &logs); err != nil {
		return nil, fmt.Errorf("client.ListWorkLogs: %w", err)
	}
	return logs, nil
}

// CreateWorkLog records hours worked against a task.
func (c *Client) CreateWorkLog(ctx context.Context, req WorkLogRequest) (*WorkLog, error) {
	var created WorkLog
	if err := c.post(ctx, "/api/worklogs", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateWorkLog: %w", err)
	}
	return &created, nil
}

// UpdateWorkLog rewrites a work log's date, hours, and description.
func (c *Client) UpdateWorkLog(ctx context.Context, id string, req WorkLogRequest) (*WorkLog, error) {
	var updated WorkLog
	if err := c.doRequest(ctx, http.MethodPut, "/api/worklogs/"+url.PathEscape(id), req, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateWorkLog: %w", err)
	}
	return &updated, nil
}

// DeleteWorkLog removes a work log.
func (c *Client) DeleteWorkLog(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/worklogs/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteWorkLog: %w", err)
	}
	return nil
}

// --- Transport ---

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	tok, _ := c.tokens.Get()
	return c.doRequestToken(ctx, method, path, body, out, tok)
}

func (c *Client) doRequestToken(ctx context.Context, method, path string, body any, out any, token string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// A rejected credential invalidates the stored token everywhere.
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			_ = c.tokens.Clear()
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}
