package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id         TEXT PRIMARY KEY,
	scope      TEXT NOT NULL,
	day        TEXT NOT NULL,
	position   INTEGER NOT NULL,
	text       TEXT NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_todos_scope_day ON todos(scope, day, position);
`

// SQLiteBackend keeps tasks in a SQLite table, one row per task.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	// One connection: saves are serialized by the Store anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, &IOError{Op: "migrate", Path: path, Err: err}
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Location() string {
	return b.path
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Load(ctx context.Context) (ScopeMap, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, scope, day, text, completed FROM todos ORDER BY scope, day, position`)
	if err != nil {
		return nil, &IOError{Op: "query", Path: b.path, Err: err}
	}
	// Empty buckets have no rows; they are indistinguishable from absent ones.
	return b.scanRows(rows)
}

func (b *SQLiteBackend) scanRows(rows *sql.Rows) (ScopeMap, error) {
	defer rows.Close()

	m := make(ScopeMap)
	for rows.Next() {
		var (
			t          Task
			scope, day string
		)
		if err := rows.Scan(&t.ID, &scope, &day, &t.Text, &t.Completed); err != nil {
			return nil, &MalformedError{Path: b.path, Err: err}
		}
		days := m.ensure(scope)
		days[day] = append(days[day], t)
	}
	if err := rows.Err(); err != nil {
		return nil, &IOError{Op: "query", Path: b.path, Err: err}
	}
	return m, nil
}

// preserveUnreadable copies every row into todos_unreadable when the table
// holds rows Load cannot read, since Save is about to replace them.
func (b *SQLiteBackend) preserveUnreadable(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, scope, day, text, completed FROM todos ORDER BY scope, day, position`)
	if err != nil {
		return &IOError{Op: "query", Path: b.path, Err: err}
	}
	_, err = b.scanRows(rows)
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		return err
	}

	for _, q := range []string{
		`CREATE TABLE IF NOT EXISTS todos_unreadable AS SELECT * FROM todos WHERE 0`,
		`INSERT INTO todos_unreadable SELECT * FROM todos`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return &IOError{Op: "backup", Path: b.path, Err: err}
		}
	}
	return nil
}

func (b *SQLiteBackend) Save(ctx context.Context, m ScopeMap) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return &IOError{Op: "begin", Path: b.path, Err: err}
	}
	defer tx.Rollback()

	if err := b.preserveUnreadable(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM todos`); err != nil {
		return &IOError{Op: "delete", Path: b.path, Err: err}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO todos (id, scope, day, position, text, completed) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &IOError{Op: "prepare", Path: b.path, Err: err}
	}
	defer stmt.Close()

	for scope, days := range m {
		for day, bucket := range days {
			for pos, t := range bucket {
				if _, err := stmt.ExecContext(ctx, t.ID, scope, day, pos, t.Text, t.Completed); err != nil {
					return &IOError{Op: "insert", Path: b.path, Err: fmt.Errorf("task %s: %w", t.ID, err)}
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &IOError{Op: "commit", Path: b.path, Err: err}
	}
	return nil
}
