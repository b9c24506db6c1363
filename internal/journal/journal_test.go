package journal

import (
	"os"
	"path/filepath"
	"testing"
)

// createTestJournal opens a fresh journal in a temp directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	j1.Close()

	j2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer j2.Close()

	var count int
	if err := j2.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		j.Close()
	}

	j, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer j.Close()

	tables := []string{"runs", "firings"}
	for _, table := range tables {
		var name string
		err := j.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/journal.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_MigratesToCurrentVersion(t *testing.T) {
	j := createTestJournal(t)

	var version int
	if err := j.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}

	var name string
	err := j.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_runs_event'",
	).Scan(&name)
	if err != nil {
		t.Errorf("v1 index not found: %v", err)
	}
}

func TestClose_NilDB(t *testing.T) {
	j := &Journal{db: nil}
	if err := j.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	j := createTestJournal(t)

	db := j.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	j := createTestJournal(t)
	if err := j.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	j := createTestJournal(t)

	// NORMAL = 1
	if err := j.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	j := createTestJournal(t)
	if err := j.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	j := createTestJournal(t)

	// ON = 1
	if err := j.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}
