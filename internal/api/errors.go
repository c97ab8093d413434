package api

import "fmt"

// NetworkError wraps a transport-level failure (connection refused, DNS,
// timeout). The request never produced an HTTP status.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is a 401/403 or an explicit credential rejection. Message holds
// the server-provided text when the body had one.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("authentication failed (status %d)", e.StatusCode)
}

// LoadError is a non-2xx response on a read endpoint.
type LoadError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *LoadError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed (status %d)", e.Op, e.StatusCode)
}

// MutationError is a non-2xx response on a write endpoint.
type MutationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *MutationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed (status %d)", e.Op, e.StatusCode)
}

// ConflictError is a 409, returned when creating a tag whose name already
// exists (or registering an email that is taken).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}
