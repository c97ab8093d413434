// Package prefs is the local key/value store: Pomodoro durations, the cached
// auth token and user blob, and the last active view. Plain pass-through,
// no schema versioning.
package prefs

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jtoledano/organizer/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Setting keys
const (
	keyPomodoroWork       = "pomodoro_work"
	keyPomodoroShortBreak = "pomodoro_short_break"
	keyPomodoroLongBreak  = "pomodoro_long_break"
	keyAuthToken          = "auth_token"
	keyAuthUser           = "auth_user"
	keyLastView           = "last_view"
)

// Pomodoro defaults, in minutes
const (
	DefaultWorkMinutes       = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15
)

// Pomodoro is the work/short-break/long-break duration triple, in minutes
type Pomodoro struct {
	Work       int
	ShortBreak int
	LongBreak  int
}

// Store wraps the settings database
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the settings database under dir
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, "organizer.db"))
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves a setting value by key; missing keys yield ""
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Set stores a setting value
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// Delete removes a setting
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}

// Pomodoro returns the stored durations, falling back to the defaults for
// missing or unparseable values.
func (s *Store) Pomodoro() Pomodoro {
	return Pomodoro{
		Work:       s.minutes(keyPomodoroWork, DefaultWorkMinutes),
		ShortBreak: s.minutes(keyPomodoroShortBreak, DefaultShortBreakMinutes),
		LongBreak:  s.minutes(keyPomodoroLongBreak, DefaultLongBreakMinutes),
	}
}

// SetPomodoro stores the duration triple
func (s *Store) SetPomodoro(p Pomodoro) error {
	if err := s.Set(keyPomodoroWork, strconv.Itoa(p.Work)); err != nil {
		return err
	}
	if err := s.Set(keyPomodoroShortBreak, strconv.Itoa(p.ShortBreak)); err != nil {
		return err
	}
	return s.Set(keyPomodoroLongBreak, strconv.Itoa(p.LongBreak))
}

func (s *Store) minutes(key string, fallback int) int {
	v, err := s.Get(key)
	if err != nil || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Token returns the persisted bearer token, or ""
func (s *Store) Token() string {
	v, _ := s.Get(keyAuthToken)
	return v
}

// SetToken persists the bearer token
func (s *Store) SetToken(token string) error {
	return s.Set(keyAuthToken, token)
}

// ClearToken removes the persisted token and cached user
func (s *Store) ClearToken() error {
	if err := s.Delete(keyAuthToken); err != nil {
		return err
	}
	return s.Delete(keyAuthUser)
}

// CachedUser returns the last persisted user blob, if any
func (s *Store) CachedUser() (*models.User, bool) {
	v, err := s.Get(keyAuthUser)
	if err != nil || v == "" {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return nil, false
	}
	return &u, true
}

// SetCachedUser persists the user blob alongside the token
func (s *Store) SetCachedUser(u models.User) error {
	encoded, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.Set(keyAuthUser, string(encoded))
}

// LastView returns the view name persisted on exit, or ""
func (s *Store) LastView() string {
	v, _ := s.Get(keyLastView)
	return v
}

// SetLastView persists the active view name
func (s *Store) SetLastView(name string) error {
	return s.Set(keyLastView, name)
}
