package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '[]',
	metadata    BLOB NOT NULL DEFAULT '{}',
	created_at  DATETIME NOT NULL,
	modified_at DATETIME NOT NULL
);
`

// SQLiteProvider implements Provider on a local SQLite database. It stands
// in for the remote store in single-machine deployments: other processes
// may write the same file, which is why busy/locked errors are mapped to
// the transient ErrServiceUnavailable class for the retry layer.
type SQLiteProvider struct {
	conn *sql.DB
}

// Verify SQLiteProvider satisfies Provider at compile time.
var _ Provider = (*SQLiteProvider)(nil)

// OpenSQLite opens (or creates) the record database and applies the schema.
func OpenSQLite(dsn string) (*SQLiteProvider, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("remote: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("remote: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("remote: apply schema: %w", err)
	}
	return &SQLiteProvider{conn: conn}, nil
}

// Close closes the underlying database connection.
func (p *SQLiteProvider) Close() error {
	return p.conn.Close()
}

// QueryAll returns every persisted record.
func (p *SQLiteProvider) QueryAll(ctx context.Context) ([]Record, error) {
	rows, err := p.conn.QueryContext(ctx, `
		SELECT id, title, content, tags, metadata, created_at, modified_at
		FROM records
	`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Fetch returns one record by id.
func (p *SQLiteProvider) Fetch(ctx context.Context, id string) (Record, error) {
	row := p.conn.QueryRowContext(ctx, `
		SELECT id, title, content, tags, metadata, created_at, modified_at
		FROM records WHERE id = ?
	`, id)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, classify(err)
	}
	return rec, nil
}

// Save upserts a record by id.
func (p *SQLiteProvider) Save(ctx context.Context, rec Record) error {
	tagsJSON, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("remote: marshal tags: %w", err)
	}
	_, err = p.conn.ExecContext(ctx, `
		INSERT INTO records (id, title, content, tags, metadata, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			content     = excluded.content,
			tags        = excluded.tags,
			metadata    = excluded.metadata,
			modified_at = excluded.modified_at
	`, rec.ID, rec.Title, rec.Content, string(tagsJSON), rec.Metadata, rec.CreatedAt, rec.ModifiedAt)
	if err != nil {
		return classify(err)
	}
	return nil
}

// Delete removes a record by id.
func (p *SQLiteProvider) Delete(ctx context.Context, id string) error {
	res, err := p.conn.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var rec Record
	var tagsJSON string
	if err := scan(&rec.ID, &rec.Title, &rec.Content, &tagsJSON, &rec.Metadata,
		&rec.CreatedAt, &rec.ModifiedAt); err != nil {
		return Record{}, err
	}
	// Corrupt tag JSON leaves Tags nil; the Store's decode pass treats a
	// tagless record as undecodable (valid records always carry the
	// "untagged" sentinel) and skips it.
	_ = json.Unmarshal([]byte(tagsJSON), &rec.Tags)
	return rec, nil
}

// classify maps driver-level contention onto the transient error taxonomy.
func classify(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		if serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
	}
	return err
}
