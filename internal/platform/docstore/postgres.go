package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

func (s *PostgresStore) InitTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("PostgresStore.InitTable: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, data FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.Get: %w", err)
	}

	data, err := decode(row.Data)
	if err != nil {
		return nil, err
	}
	return &Document{ID: row.ID, Data: data}, nil
}

func (s *PostgresStore) FindBy(ctx context.Context, collection, field string, value any) ([]Document, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode query value: %w", err)
	}

	var rows []documentRow
	err = s.db.SelectContext(ctx, &rows,
		`SELECT id, data FROM documents
		 WHERE collection = $1 AND data -> $2 = $3::jsonb
		 ORDER BY id`,
		collection, field, string(want))
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.FindBy: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		data, err := decode(r.Data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: r.ID, Data: data})
	}
	return docs, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}

	// jsonb || jsonb replaces top-level keys, which is the merge contract.
	query := `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (collection, id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now()
	`
	if merge {
		query = `
			INSERT INTO documents (collection, id, data, updated_at)
			VALUES ($1, $2, $3::jsonb, now())
			ON CONFLICT (collection, id) DO UPDATE SET
				data = documents.data || EXCLUDED.data,
				updated_at = now()
		`
	}

	if _, err := s.db.ExecContext(ctx, query, collection, id, string(raw)); err != nil {
		return fmt.Errorf("PostgresStore.Set: %w", err)
	}
	return nil
}

func (s *PostgresStore) ArrayUnion(ctx context.Context, collection, id, field string, values ...any) error {
	fn, err := unionMutation(field, values)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, fn)
}

func (s *PostgresStore) ArrayRemove(ctx context.Context, collection, id, field string, values ...any) error {
	fn, err := removeMutation(field, values)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, fn)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) mutate(ctx context.Context, collection, id string, fn mutation) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("PostgresStore.mutate begin: %w", err)
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.GetContext(ctx, &raw,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("PostgresStore.mutate select: %w", err)
	}

	data, err := decode(raw)
	if err != nil {
		return err
	}
	next, err := encode(fn(data))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET data = $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, id, string(next))
	if err != nil {
		return fmt.Errorf("PostgresStore.mutate update: %w", err)
	}
	return tx.Commit()
}
