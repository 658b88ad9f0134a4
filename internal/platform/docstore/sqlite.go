package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) InitTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("SQLiteStore.InitTable: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("SQLiteStore.Get: %w", err)
	}

	data, err := decode([]byte(raw))
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Data: data}, nil
}

// FindBy scans the collection and compares decoded values, which keeps
// equality identical to the other drivers for non-string values.
func (s *SQLiteStore) FindBy(ctx context.Context, collection, field string, value any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("SQLiteStore.FindBy: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("SQLiteStore.FindBy scan: %w", err)
		}
		data, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		if matches(data, field, value) {
			docs = append(docs, Document{ID: id, Data: data})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SQLiteStore.FindBy rows: %w", err)
	}
	return docs, nil
}

func (s *SQLiteStore) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	update, err := normalize(data)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SQLiteStore.Set begin: %w", err)
	}
	defer tx.Rollback()

	if merge {
		existing, err := s.load(ctx, tx, collection, id)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		default:
			update = mergeData(existing, update)
		}
	}

	if err := s.save(ctx, tx, collection, id, update); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) ArrayUnion(ctx context.Context, collection, id, field string, values ...any) error {
	fn, err := unionMutation(field, values)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, fn)
}

func (s *SQLiteStore) ArrayRemove(ctx context.Context, collection, id, field string, values ...any) error {
	fn, err := removeMutation(field, values)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, fn)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) mutate(ctx context.Context, collection, id string, fn mutation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SQLiteStore.mutate begin: %w", err)
	}
	defer tx.Rollback()

	data, err := s.load(ctx, tx, collection, id)
	if err != nil {
		return err
	}
	if err := s.save(ctx, tx, collection, id, fn(data)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) load(ctx context.Context, tx *sql.Tx, collection, id string) (map[string]any, error) {
	var raw string
	err := tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("SQLiteStore.load: %w", err)
	}
	return decode([]byte(raw))
}

func (s *SQLiteStore) save(ctx context.Context, tx *sql.Tx, collection, id string, data map[string]any) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, query, collection, id, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("SQLiteStore.save: %w", err)
	}
	return nil
}
