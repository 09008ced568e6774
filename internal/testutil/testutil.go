// Package testutil provides shared test helpers for setting up record
// stores and sample notes.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/halvard/ansuz/internal/models"
	"github.com/halvard/ansuz/internal/remote"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestProvider creates a temporary SQLite record store that is
// automatically cleaned up.
func TestProvider(t *testing.T) *remote.SQLiteProvider {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	p, err := remote.OpenSQLite(f.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// Note builds a note with a fixed Zettelkasten ID for link tests.
func Note(zettelID, title, content string) models.Note {
	n := models.NewNote(title, content)
	n.ZettelID = zettelID
	n.CreatedAt = time.Date(2025, 3, 4, 17, 12, 0, 0, time.UTC)
	n.ModifiedAt = n.CreatedAt
	return n
}
