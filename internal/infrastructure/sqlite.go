package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteClient backs local development and tests
type SQLiteClient struct {
	DB *sql.DB
}

// NewSQLiteClient opens path; ":memory:" gives a private in-memory database
func NewSQLiteClient(path string) (*SQLiteClient, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer keeps SQLite from returning SQLITE_BUSY under concurrent webhooks,
	// and an in-memory database only exists on one connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteClient{DB: db}, nil
}

func (s *SQLiteClient) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contatos (
			tenant TEXT NOT NULL,
			telefone TEXT NOT NULL,
			status TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (tenant, telefone)
		)`,
		`CREATE TABLE IF NOT EXISTS mensagens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tenant TEXT NOT NULL,
			telefone TEXT NOT NULL,
			origem TEXT NOT NULL,
			autor TEXT NOT NULL,
			tipo TEXT NOT NULL DEFAULT 'text',
			conteudo TEXT NOT NULL,
			message_id TEXT,
			created_at INTEGER NOT NULL,
			UNIQUE (tenant, message_id)
		)`,
		`CREATE INDEX IF NOT EXISTS mensagens_history_idx ON mensagens (tenant, telefone, created_at, id)`,
	}
	for _, ddl := range stmts {
		if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLiteClient) Close() error {
	return s.DB.Close()
}
