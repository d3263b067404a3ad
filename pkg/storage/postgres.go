package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
	pkgpostgres "github.com/Adithya-Monish-Kumar-K/invindex/pkg/postgres"
)

// PostgresStore keeps each index as a bytea row keyed by name.
type PostgresStore struct {
	client *pkgpostgres.Client
	table  string
}

// NewPostgresStore creates the backing table if it does not exist.
func NewPostgresStore(ctx context.Context, client *pkgpostgres.Client, table string) (*PostgresStore, error) {
	s := &PostgresStore{client: client, table: pq.QuoteIdentifier(table)}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name       TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, s.table)
	if _, err := client.DB.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return s, nil
}

func (s *PostgresStore) Put(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return apperrors.New(apperrors.ErrInvalidDestination, "empty index name")
	}
	query := fmt.Sprintf(`INSERT INTO %s (name, payload, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`, s.table)
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, name, data)
		return err
	})
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDestination, "storing %q in postgres: %v", name, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, name string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE name = $1`, s.table)
	var data []byte
	if err := s.client.DB.QueryRowContext(ctx, query, name).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Newf(apperrors.ErrNotFound, "index %q in postgres", name)
		}
		return nil, fmt.Errorf("reading %q from postgres: %w", name, err)
	}
	return data, nil
}

// Delete removes the row for name.
func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, s.table)
	_, err := s.client.DB.ExecContext(ctx, query, name)
	return err
}

func (s *PostgresStore) Close() error {
	return s.client.Close()
}
