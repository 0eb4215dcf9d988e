package sqlitekv

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core"

	_ "modernc.org/sqlite"
)

// Store implements core.KVStore on a single SQLite table.
type Store struct {
	db *sql.DB
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite")
	}
	db.SetMaxOpenConns(1) // sqlite allows a single writer
	store, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, errors.Wrap(err, "migrating sqlite kv")
	}
	return s, nil
}

func (s *Store) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS kv (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at DATETIME NOT NULL
    );`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", core.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "selecting kv")
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	query := `
        INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
    `
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "upserting kv")
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.Wrap(err, "deleting kv")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
