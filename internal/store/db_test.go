package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
)

// Helper function to create an in-memory store for testing
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	if err := store.CreateSchema(); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return store
}

func TestNew(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer store.Close()

	if store.db == nil {
		t.Error("Store.db should not be nil")
	}
}

func TestCreateSchema(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	var name string
	err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&name)
	if err != nil {
		t.Errorf("Table runs not found: %v", err)
	}

	indexes := []string{"idx_runs_package", "idx_runs_started"}
	for _, index := range indexes {
		err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", index).Scan(&name)
		if err != nil {
			t.Errorf("Index %s not found: %v", index, err)
		}
	}

	// Idempotent
	if err := store.CreateSchema(); err != nil {
		t.Errorf("second CreateSchema() failed: %v", err)
	}
}

func TestListRuns_NoSchema_ReturnsErrNotInitialized(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	// Do NOT call CreateSchema; simulate an uninitialized database.
	_, err = s.ListRuns("", 0)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ListRuns() error = %v; want errors.Is(err, ErrNotInitialized) to be true", err)
	}
}

func TestLastRun_NoSchema_ReturnsErrNotInitialized(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	_, err = s.LastRun("Text_LanguageDetect")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("LastRun() error = %v; want errors.Is(err, ErrNotInitialized) to be true", err)
	}
}

func TestErrNotInitialized_ErrorMessage(t *testing.T) {
	if !strings.Contains(ErrNotInitialized.Error(), "pkgensure apply") {
		t.Errorf("ErrNotInitialized message %q should contain 'pkgensure apply'", ErrNotInitialized.Error())
	}
}

func TestInsertAndListRuns(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	started := time.Date(2026, 10, 1, 12, 0, 0, 123000000, time.UTC)
	first := &Run{
		Package:       "Text_LanguageDetect",
		Outcome:       ensure.OutcomeInstalled,
		ListOutput:    "PHP => not installed\n",
		InstallOutput: "install ok: channel://pear.php.net/Text_LanguageDetect-0.3.0\n",
		StartedAt:     started,
		Duration:      1500 * time.Millisecond,
	}
	second := &Run{
		Package:    "Text_LanguageDetect",
		Outcome:    ensure.OutcomeSkipped,
		ListOutput: "Text_LanguageDetect  0.3.0  stable\n",
		StartedAt:  started.Add(time.Hour),
		Duration:   40 * time.Millisecond,
	}
	other := &Run{
		Package:   "Mail",
		Outcome:   ensure.OutcomeFailed,
		ExitCode:  1,
		Error:     "Mail: install command failed: exit status 1",
		StartedAt: started.Add(2 * time.Hour),
	}

	for _, r := range []*Run{first, second, other} {
		id, err := store.InsertRun(r)
		if err != nil {
			t.Fatalf("InsertRun() error: %v", err)
		}
		if id == 0 || r.ID != id {
			t.Errorf("InsertRun() id = %d, run.ID = %d", id, r.ID)
		}
	}

	all, err := store.ListRuns("", 0)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if all[0].Package != "Mail" {
		t.Errorf("newest run should come first, got %s", all[0].Package)
	}

	tld, err := store.ListRuns("Text_LanguageDetect", 0)
	if err != nil {
		t.Fatalf("ListRuns(pkg) error: %v", err)
	}
	if len(tld) != 2 {
		t.Fatalf("expected 2 runs for Text_LanguageDetect, got %d", len(tld))
	}

	got := tld[1]
	if got.Outcome != ensure.OutcomeInstalled {
		t.Errorf("Outcome = %q, want %q", got.Outcome, ensure.OutcomeInstalled)
	}
	if got.ListOutput != first.ListOutput || got.InstallOutput != first.InstallOutput {
		t.Errorf("outputs not round-tripped: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %s, want %s", got.StartedAt, started)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %s, want 1.5s", got.Duration)
	}

	limited, err := store.ListRuns("", 1)
	if err != nil {
		t.Fatalf("ListRuns(limit) error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 run with limit, got %d", len(limited))
	}
}

func TestLastRun(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	run, err := store.LastRun("Text_LanguageDetect")
	if err != nil {
		t.Fatalf("LastRun() error: %v", err)
	}
	if run != nil {
		t.Errorf("LastRun() on empty history = %+v, want nil", run)
	}

	now := time.Now().UTC()
	for _, outcome := range []ensure.Outcome{ensure.OutcomeFailed, ensure.OutcomeInstalled} {
		if _, err := store.InsertRun(&Run{Package: "Text_LanguageDetect", Outcome: outcome, StartedAt: now}); err != nil {
			t.Fatalf("InsertRun() error: %v", err)
		}
	}

	run, err = store.LastRun("Text_LanguageDetect")
	if err != nil {
		t.Fatalf("LastRun() error: %v", err)
	}
	if run == nil || run.Outcome != ensure.OutcomeInstalled {
		t.Errorf("LastRun() = %+v, want the installed run", run)
	}
}

func TestRunFromResult(t *testing.T) {
	res := &ensure.Result{
		Package:       "Text_LanguageDetect",
		Outcome:       ensure.OutcomeFailed,
		ListOutput:    "not installed",
		InstallOutput: "boom",
		ExitCode:      2,
		StartedAt:     time.Now(),
		Duration:      time.Second,
	}
	err := errors.New("install command failed")

	run := RunFromResult(res, err)
	if run.Package != res.Package || run.Outcome != res.Outcome || run.ExitCode != 2 {
		t.Errorf("RunFromResult() = %+v", run)
	}
	if run.Error != "install command failed" {
		t.Errorf("Error = %q", run.Error)
	}

	if RunFromResult(res, nil).Error != "" {
		t.Error("Error should be empty when err is nil")
	}
}
