// Package api is the HTTP boundary client for the organizer backend.
//
// Every call is credentialed with a bearer token when one is set. Failures
// are classified into the error types in errors.go; callers branch with
// errors.As rather than looking at status codes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jtoledano/organizer/internal/models"
)

// Client talks to the organizer API
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for the API rooted at baseURL (e.g.
// "http://127.0.0.1:5000/api").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token attached to subsequent requests. An empty
// string clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// apiError is the backend's error body
type apiError struct {
	Message string `json:"message"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the payload of a successful login or register call. The
// token is present when the server issues one.
type AuthResult struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

type checkAuthResponse struct {
	IsAuthenticated bool        `json:"is_authenticated"`
	User            models.User `json:"user"`
}

// CheckAuth performs the session bootstrap check with the current token. A
// 200 whose body denies the session is treated as a rejection.
func (c *Client) CheckAuth(ctx context.Context) (*models.User, error) {
	var out checkAuthResponse
	if err := c.do(ctx, http.MethodGet, "/check_auth", nil, &out, false); err != nil {
		return nil, err
	}
	if !out.IsAuthenticated {
		return nil, &AuthError{StatusCode: http.StatusOK, Message: "session expired"}
	}
	return &out.User, nil
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/login", credentials{Email: email, Password: password}, &out, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. A successful registration also establishes a
// session, so the result carries the same payload as Login.
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/register", credentials{Email: email, Password: password}, &out, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the server-side session
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, true)
}

// ListTasks returns every task owned by the authenticated user, in the
// server's order.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask posts a new task and returns the server's copy
func (c *Client) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", draft, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask applies a partial update and returns the updated task
func (c *Client) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	var out models.Task
	path := fmt.Sprintf("/tasks/%d", id)
	if err := c.do(ctx, http.MethodPut, path, patch, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil, true)
}

// ToggleComplete flips only the completed flag via the PATCH route
func (c *Client) ToggleComplete(ctx context.Context, id int64, completed bool) (*models.Task, error) {
	body := map[string]bool{"completed": completed}
	var out models.Task
	path := fmt.Sprintf("/tasks/%d/complete", id)
	if err := c.do(ctx, http.MethodPatch, path, body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTags returns the user's tags, sorted by name server-side
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	if err := c.do(ctx, http.MethodGet, "/tags", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTag creates a tag. A duplicate name yields a ConflictError.
func (c *Client) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	body := map[string]string{"name": name}
	var out models.Tag
	if err := c.do(ctx, http.MethodPost, "/tags", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTag deletes a tag. The server detaches it from tasks itself.
func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tags/%d", id), nil, nil, true)
}

// do runs one request/response cycle. body and out may be nil. write selects
// whether a generic non-2xx becomes a MutationError or a LoadError; 401/403
// and 409 are always classified as AuthError and ConflictError.
func (c *Client) do(ctx context.Context, method, path string, body, out any, write bool) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var serverErr apiError
		_ = json.Unmarshal(respBody, &serverErr)

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return &AuthError{StatusCode: resp.StatusCode, Message: serverErr.Message}
		case resp.StatusCode == http.StatusConflict:
			return &ConflictError{Message: serverErr.Message}
		case write:
			return &MutationError{Op: op, StatusCode: resp.StatusCode, Message: serverErr.Message}
		default:
			return &LoadError{Op: op, StatusCode: resp.StatusCode, Message: serverErr.Message}
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
