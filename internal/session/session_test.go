package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jtoledano/organizer/internal/api"
	"github.com/jtoledano/organizer/internal/models"
)

type fakeAuth struct {
	CheckAuthFunc func(ctx context.Context) (*models.User, error)
	LoginFunc     func(ctx context.Context, email, password string) (*api.AuthResult, error)
	RegisterFunc  func(ctx context.Context, email, password string) (*api.AuthResult, error)
	LogoutFunc    func(ctx context.Context) error

	token string
}

func (f *fakeAuth) CheckAuth(ctx context.Context) (*models.User, error) {
	if f.CheckAuthFunc != nil {
		return f.CheckAuthFunc(ctx)
	}
	return nil, &api.AuthError{StatusCode: 401}
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*api.AuthResult, error) {
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, email, password)
	}
	return nil, &api.AuthError{StatusCode: 401}
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (*api.AuthResult, error) {
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, email, password)
	}
	return nil, &api.AuthError{StatusCode: 401}
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	if f.LogoutFunc != nil {
		return f.LogoutFunc(ctx)
	}
	return nil
}

func (f *fakeAuth) SetToken(token string) { f.token = token }

type fakeTokens struct {
	token   string
	user    *models.User
	cleared bool
}

func (f *fakeTokens) Token() string { return f.token }

func (f *fakeTokens) SetToken(token string) error {
	f.token = token
	return nil
}

func (f *fakeTokens) ClearToken() error {
	f.token = ""
	f.user = nil
	f.cleared = true
	return nil
}

func (f *fakeTokens) SetCachedUser(u models.User) error {
	f.user = &u
	return nil
}

// signedToken builds a real JWT whose exp claim sits at the given offset
func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestBootstrapWithoutTokenStaysSignedOut(t *testing.T) {
	client := &fakeAuth{
		CheckAuthFunc: func(ctx context.Context) (*models.User, error) {
			t.Fatal("no session check should happen without a token")
			return nil, nil
		},
	}
	s := New(client, &fakeTokens{})

	if !s.Loading() {
		t.Fatal("expected loading before bootstrap")
	}
	s.Bootstrap(context.Background())

	if s.Loading() {
		t.Fatal("loading should clear after bootstrap")
	}
	if s.Authenticated() {
		t.Fatal("expected unauthenticated state")
	}
}

func TestBootstrapExpiredTokenSkipsServerCheck(t *testing.T) {
	client := &fakeAuth{
		CheckAuthFunc: func(ctx context.Context) (*models.User, error) {
			t.Fatal("expired token must not reach the server")
			return nil, nil
		},
	}
	tokens := &fakeTokens{token: signedToken(t, -time.Hour)}
	s := New(client, tokens)

	s.Bootstrap(context.Background())

	if s.Authenticated() {
		t.Fatal("expected unauthenticated state")
	}
	if !tokens.cleared {
		t.Fatal("expected the expired token to be discarded")
	}
}

func TestBootstrapValidTokenRestoresSession(t *testing.T) {
	user := models.User{ID: 7, Email: "me@example.com"}
	client := &fakeAuth{
		CheckAuthFunc: func(ctx context.Context) (*models.User, error) {
			return &user, nil
		},
	}
	tokens := &fakeTokens{token: signedToken(t, time.Hour)}
	s := New(client, tokens)

	s.Bootstrap(context.Background())

	if !s.Authenticated() {
		t.Fatal("expected authenticated state")
	}
	if got := s.User(); got == nil || got.Email != user.Email {
		t.Fatalf("expected restored user, got %v", got)
	}
	if client.token == "" {
		t.Fatal("expected the persisted token to be applied to the client")
	}
}

func TestBootstrapRejectedTokenSignsOut(t *testing.T) {
	client := &fakeAuth{
		CheckAuthFunc: func(ctx context.Context) (*models.User, error) {
			return nil, &api.AuthError{StatusCode: 401, Message: "Token revoked"}
		},
	}
	s := New(client, &fakeTokens{token: signedToken(t, time.Hour)})

	s.Bootstrap(context.Background())

	if s.Authenticated() {
		t.Fatal("expected unauthenticated state after rejection")
	}
	if s.Loading() {
		t.Fatal("loading should clear even on failure")
	}
	if client.token != "" {
		t.Fatal("expected client token to be cleared after rejection")
	}
}

func TestLoginFailureRecordsServerMessage(t *testing.T) {
	client := &fakeAuth{
		LoginFunc: func(ctx context.Context, email, password string) (*api.AuthResult, error) {
			return nil, &api.AuthError{StatusCode: 401, Message: "Invalid credentials"}
		},
	}
	s := New(client, &fakeTokens{})

	user, err := s.Login(context.Background(), "me@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if user != nil {
		t.Fatal("expected no user on failure")
	}
	if s.Authenticated() {
		t.Fatal("failed login must not authenticate")
	}
	if got := s.LastError(); got != "Invalid credentials" {
		t.Fatalf("expected the server message, got %q", got)
	}
}

func TestLoginSuccessPersistsTokenAndUser(t *testing.T) {
	result := &api.AuthResult{
		User:        models.User{ID: 3, Email: "me@example.com"},
		AccessToken: signedToken(t, time.Hour),
	}
	client := &fakeAuth{
		LoginFunc: func(ctx context.Context, email, password string) (*api.AuthResult, error) {
			return result, nil
		},
	}
	tokens := &fakeTokens{}
	s := New(client, tokens)

	user, err := s.Login(context.Background(), "me@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 3 {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !s.Authenticated() {
		t.Fatal("expected authenticated state")
	}
	if tokens.token != result.AccessToken {
		t.Fatal("expected token to be persisted")
	}
	if tokens.user == nil || tokens.user.Email != "me@example.com" {
		t.Fatal("expected user to be cached for next start")
	}
	if client.token != result.AccessToken {
		t.Fatal("expected token to be applied to the client")
	}
}

func TestRegisterSignsInImmediately(t *testing.T) {
	client := &fakeAuth{
		RegisterFunc: func(ctx context.Context, email, password string) (*api.AuthResult, error) {
			return &api.AuthResult{
				User:        models.User{ID: 9, Email: email},
				AccessToken: signedToken(t, time.Hour),
			}, nil
		},
	}
	s := New(client, &fakeTokens{})

	if _, err := s.Register(context.Background(), "new@example.com", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !s.Authenticated() {
		t.Fatal("registration should establish a session")
	}
}

func TestLogoutSignsOutDespiteServerFailure(t *testing.T) {
	client := &fakeAuth{
		LogoutFunc: func(ctx context.Context) error {
			return &api.NetworkError{Op: "POST /logout"}
		},
	}
	tokens := &fakeTokens{token: signedToken(t, time.Hour)}
	s := New(client, tokens)
	s.Bootstrap(context.Background())

	s.Logout(context.Background())

	if s.Authenticated() {
		t.Fatal("logout must sign out locally regardless of the server")
	}
	if tokens.token != "" {
		t.Fatal("expected persisted token to be cleared")
	}
	if s.LastError() == "" {
		t.Fatal("expected the network failure to be recorded")
	}
}

func TestTokenExpired(t *testing.T) {
	if tokenExpired(signedToken(t, time.Hour)) {
		t.Fatal("future token reported expired")
	}
	if !tokenExpired(signedToken(t, -time.Minute)) {
		t.Fatal("past token reported valid")
	}
	if tokenExpired("not-a-jwt") {
		t.Fatal("malformed tokens are left for the server to judge")
	}
}
