package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jtoledano/organizer/internal/models"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL+"/api", time.Second), srv
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Task{})
	}))
	defer srv.Close()

	client.SetToken("abc123")
	if _, err := client.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}

	client.SetToken("")
	if _, err := client.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("cleared token still sent: %q", gotAuth)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		call   func(c *Client) error
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 on read is an auth error with the server message",
			status: http.StatusUnauthorized,
			body:   `{"message": "Invalid credentials"}`,
			call: func(c *Client) error {
				_, err := c.Login(context.Background(), "a@b.c", "pw")
				return err
			},
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthError, got %T", err)
				}
				if authErr.Error() != "Invalid credentials" {
					t.Fatalf("expected server message, got %q", authErr.Error())
				}
			},
		},
		{
			name:   "409 on tag create is a conflict",
			status: http.StatusConflict,
			body:   `{"message": "Tag already exists"}`,
			call: func(c *Client) error {
				_, err := c.CreateTag(context.Background(), "home")
				return err
			},
			check: func(t *testing.T, err error) {
				var conflict *ConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("expected ConflictError, got %T", err)
				}
				if conflict.Message != "Tag already exists" {
					t.Fatalf("unexpected message %q", conflict.Message)
				}
			},
		},
		{
			name:   "500 on write is a mutation error",
			status: http.StatusInternalServerError,
			body:   `{"message": "boom"}`,
			call: func(c *Client) error {
				_, err := c.CreateTask(context.Background(), models.TaskDraft{Title: "x"})
				return err
			},
			check: func(t *testing.T, err error) {
				var mutErr *MutationError
				if !errors.As(err, &mutErr) {
					t.Fatalf("expected MutationError, got %T", err)
				}
			},
		},
		{
			name:   "500 on read is a load error",
			status: http.StatusInternalServerError,
			body:   ``,
			call: func(c *Client) error {
				_, err := c.ListTasks(context.Background())
				return err
			},
			check: func(t *testing.T, err error) {
				var loadErr *LoadError
				if !errors.As(err, &loadErr) {
					t.Fatalf("expected LoadError, got %T", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := tt.call(client)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url+"/api", time.Second)
	_, err := client.ListTasks(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T (%v)", err, err)
	}
}

func TestListTasksDecodesBackendTimestamps(t *testing.T) {
	// The backend serializes naive datetimes without a zone designator
	payload := `[
		{
			"id": 1,
			"title": "Write report",
			"status": "pending",
			"priority": "high",
			"eisenhower_quadrant": "urgente_importante",
			"completed": false,
			"due_date": "2026-09-02T14:30:00",
			"created_at": "2026-08-30T09:15:22.123456",
			"updated_at": "2026-08-30T09:15:22.123456",
			"tags": [{"id": 4, "name": "work"}]
		},
		{
			"id": 2,
			"title": "No deadline",
			"status": "pending",
			"priority": "low",
			"eisenhower_quadrant": "",
			"completed": false,
			"due_date": null,
			"created_at": "2026-08-29",
			"updated_at": "2026-08-29",
			"tags": []
		}
	]`
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	tasks, err := client.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	first := tasks[0]
	if first.DueDate == nil || first.DueDate.Day() != 2 {
		t.Fatalf("due date not decoded: %v", first.DueDate)
	}
	if first.CreatedAt.Year() != 2026 {
		t.Fatalf("created_at not decoded: %v", first.CreatedAt)
	}
	if first.Quadrant != models.QuadrantDo {
		t.Fatalf("quadrant not decoded: %q", first.Quadrant)
	}
	if len(first.Tags) != 1 || first.Tags[0].Name != "work" {
		t.Fatalf("tags not decoded: %v", first.Tags)
	}
	if tasks[1].DueDate != nil {
		t.Fatal("null due date should decode to nil")
	}
	if tasks[1].Quadrant.Known() {
		t.Fatal("empty quadrant should be unknown")
	}
}

func TestToggleCompleteUsesPatchRoute(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]bool
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(models.Task{ID: 5, Completed: true, Status: models.StatusCompleted})
	}))
	defer srv.Close()

	task, err := client.ToggleComplete(context.Background(), 5, true)
	if err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/api/tasks/5/complete" {
		t.Fatalf("unexpected route: %s %s", gotMethod, gotPath)
	}
	if !gotBody["completed"] {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	if !task.Completed {
		t.Fatal("expected updated task back")
	}
}

func TestUpdateTaskOmitsUnsetFields(t *testing.T) {
	var raw map[string]json.RawMessage
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(models.Task{ID: 1})
	}))
	defer srv.Close()

	status := models.StatusInProgress
	patch := models.TaskPatch{Status: &status}
	if _, err := client.UpdateTask(context.Background(), 1, patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if _, ok := raw["status"]; !ok {
		t.Fatal("expected status in the body")
	}
	for _, field := range []string{"title", "description", "due_date", "priority"} {
		if _, ok := raw[field]; ok {
			t.Fatalf("unset field %q leaked into the body", field)
		}
	}
}

func TestUpdateTaskSendsNullToClearDueDate(t *testing.T) {
	var raw map[string]json.RawMessage
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(models.Task{ID: 1})
	}))
	defer srv.Close()

	// The edit form's shape: every field set, the date field emptied
	title := "keep title"
	desc := ""
	status := models.StatusPending
	priority := models.PriorityMedium
	quadrant := models.QuadrantEliminate
	completed := false
	patch := models.TaskPatch{
		Title:        &title,
		Description:  &desc,
		Status:       &status,
		Priority:     &priority,
		Quadrant:     &quadrant,
		Completed:    &completed,
		ClearDueDate: true,
	}
	if _, err := client.UpdateTask(context.Background(), 1, patch); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	got, ok := raw["due_date"]
	if !ok {
		t.Fatal("due_date missing from the body; the removal never reaches the server")
	}
	if string(got) != "null" {
		t.Fatalf("expected null due_date, got %s", got)
	}
}

func TestCheckAuthRejectsUnauthenticatedBody(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"is_authenticated": false}`))
	}))
	defer srv.Close()

	_, err := client.CheckAuth(context.Background())
	if err == nil {
		t.Fatal("expected error for a denied session")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T", err)
	}
}

func TestCheckAuthReturnsUser(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"is_authenticated": true, "user": {"id": 7, "email": "me@example.com", "created_at": "2026-01-05T08:00:00"}}`))
	}))
	defer srv.Close()

	user, err := client.CheckAuth(context.Background())
	if err != nil {
		t.Fatalf("CheckAuth: %v", err)
	}
	if user.ID != 7 || user.Email != "me@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestDeleteTagHandlesEmptyBody(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := client.DeleteTag(context.Background(), 3); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
}
