package prefs

import (
	"testing"

	"github.com/jtoledano/organizer/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingKeyYieldsEmpty(t *testing.T) {
	s := openTestStore(t)

	v, err := s.Get("nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "" {
		t.Fatalf("expected empty value, got %q", v)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("k", "one"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("k", "two"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, err := s.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "two" {
		t.Fatalf("expected %q, got %q", "two", v)
	}
}

func TestPomodoroDefaults(t *testing.T) {
	s := openTestStore(t)

	p := s.Pomodoro()
	if p.Work != DefaultWorkMinutes || p.ShortBreak != DefaultShortBreakMinutes || p.LongBreak != DefaultLongBreakMinutes {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestPomodoroRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := Pomodoro{Work: 50, ShortBreak: 10, LongBreak: 30}
	if err := s.SetPomodoro(want); err != nil {
		t.Fatalf("SetPomodoro: %v", err)
	}

	if got := s.Pomodoro(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestPomodoroGarbageFallsBackToDefaults(t *testing.T) {
	s := openTestStore(t)

	s.Set("pomodoro_work", "not-a-number")
	s.Set("pomodoro_short_break", "-3")

	p := s.Pomodoro()
	if p.Work != DefaultWorkMinutes {
		t.Fatalf("expected default work minutes, got %d", p.Work)
	}
	if p.ShortBreak != DefaultShortBreakMinutes {
		t.Fatalf("expected default short break, got %d", p.ShortBreak)
	}
}

func TestClearTokenAlsoDropsCachedUser(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := s.SetCachedUser(models.User{ID: 1, Email: "me@example.com"}); err != nil {
		t.Fatalf("SetCachedUser: %v", err)
	}

	if s.Token() != "tok" {
		t.Fatal("token not persisted")
	}
	if u, ok := s.CachedUser(); !ok || u.Email != "me@example.com" {
		t.Fatalf("user not persisted: %v %v", u, ok)
	}

	if err := s.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if s.Token() != "" {
		t.Fatal("token survived ClearToken")
	}
	if _, ok := s.CachedUser(); ok {
		t.Fatal("cached user survived ClearToken")
	}
}

func TestLastViewRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if s.LastView() != "" {
		t.Fatal("expected no last view on a fresh store")
	}
	if err := s.SetLastView("matrix"); err != nil {
		t.Fatalf("SetLastView: %v", err)
	}
	if got := s.LastView(); got != "matrix" {
		t.Fatalf("expected %q, got %q", "matrix", got)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := s.SetToken("persisted"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	s.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s2.Close()
	if got := s2.Token(); got != "persisted" {
		t.Fatalf("expected token to survive reopen, got %q", got)
	}
}
