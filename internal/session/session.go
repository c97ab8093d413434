// Package session holds the authentication state: the bootstrap check run
// once at startup and the login/register/logout transitions.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jtoledano/organizer/internal/api"
	"github.com/jtoledano/organizer/internal/logger"
	"github.com/jtoledano/organizer/internal/models"
)

const genericAuthError = "authentication failed"

// Authenticator is the slice of the API client the session uses
type Authenticator interface {
	CheckAuth(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
	Register(ctx context.Context, email, password string) (*api.AuthResult, error)
	Logout(ctx context.Context) error
	SetToken(token string)
}

// TokenStore persists the bearer token and user blob between runs
type TokenStore interface {
	Token() string
	SetToken(token string) error
	ClearToken() error
	SetCachedUser(u models.User) error
}

// Store is the session state machine. Loading starts true and is cleared by
// the first (and only) Bootstrap call; login/register/logout only touch the
// error field.
type Store struct {
	client Authenticator
	tokens TokenStore

	mu            sync.RWMutex
	authenticated bool
	user          *models.User
	loading       bool
	lastErr       string
}

// New creates an unauthenticated session awaiting Bootstrap
func New(client Authenticator, tokens TokenStore) *Store {
	return &Store{
		client:  client,
		tokens:  tokens,
		loading: true,
	}
}

// Bootstrap checks for an existing session using the persisted token. It
// never returns an error: any failure leaves the session unauthenticated,
// and loading is cleared regardless of outcome so the UI can unblock.
func (s *Store) Bootstrap(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token := s.tokens.Token()
	if token == "" {
		s.setUnauthenticated()
		return
	}
	if tokenExpired(token) {
		logger.Debug("persisted token expired, skipping session check")
		_ = s.tokens.ClearToken()
		s.setUnauthenticated()
		return
	}

	s.client.SetToken(token)
	user, err := s.client.CheckAuth(ctx)
	if err != nil {
		logger.Info("session check failed", "error", err)
		s.client.SetToken("")
		s.setUnauthenticated()
		return
	}

	s.mu.Lock()
	s.authenticated = true
	s.user = user
	s.mu.Unlock()
}

// Login authenticates and establishes the session. On failure the error is
// recorded and returned so the initiating flow can react.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.clearError()

	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	s.establish(result)
	return &result.User, nil
}

// Register creates an account and, like the backend, signs the new user in
// immediately.
func (s *Store) Register(ctx context.Context, email, password string) (*models.User, error) {
	s.clearError()

	result, err := s.client.Register(ctx, email, password)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	s.establish(result)
	return &result.User, nil
}

// Logout posts the logout request and signs out locally no matter what the
// server said. A network failure is recorded but never blocks the local
// sign-out.
func (s *Store) Logout(ctx context.Context) {
	s.clearError()

	if err := s.client.Logout(ctx); err != nil {
		logger.Warn("server logout failed", "error", err)
		s.recordError(err)
	}

	s.client.SetToken("")
	_ = s.tokens.ClearToken()
	s.setUnauthenticated()
}

// establish applies a successful auth result: state, client token, and
// persisted credentials.
func (s *Store) establish(result *api.AuthResult) {
	if result.AccessToken != "" {
		s.client.SetToken(result.AccessToken)
		if err := s.tokens.SetToken(result.AccessToken); err != nil {
			logger.Warn("persisting token failed", "error", err)
		}
	}
	if err := s.tokens.SetCachedUser(result.User); err != nil {
		logger.Warn("persisting user failed", "error", err)
	}

	s.mu.Lock()
	s.authenticated = true
	user := result.User
	s.user = &user
	s.mu.Unlock()
}

func (s *Store) setUnauthenticated() {
	s.mu.Lock()
	s.authenticated = false
	s.user = nil
	s.mu.Unlock()
}

func (s *Store) clearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// recordError stores the server-provided message when there is one, or a
// generic fallback.
func (s *Store) recordError(err error) {
	msg := err.Error()
	if msg == "" {
		msg = genericAuthError
	}
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// Authenticated reports whether a user is signed in
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns the signed-in user, or nil
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Loading reports whether the bootstrap check is still in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the most recent auth error message, or ""
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// tokenExpired parses the token without verifying the signature (the secret
// lives on the server) just to read the exp claim. Tokens without one are
// left for the server to judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
