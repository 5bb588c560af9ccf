package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStore keeps documents in a single key/value table
type PostgresStore struct {
	db     *pgxpool.Pool
	table  string
	logger *zap.Logger
}

// NewPostgresStore creates a PostgresStore over an existing pool.
// table is quoted, so any identifier is accepted.
func NewPostgresStore(db *pgxpool.Pool, table string, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		logger: logger,
	}
}

// Migrate creates the document table if it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key VARCHAR(255) PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`, s.table)

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to migrate document table: %w", err)
	}
	return nil
}

// Get retrieves the document stored under key
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)

	var value []byte
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to get document", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return value, nil
}

// Put upserts the document stored under key
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.Exec(ctx, s.upsertQuery(), key, value); err != nil {
		s.logger.Error("failed to put document", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// Delete removes the document stored under key
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, s.deleteQuery(), key); err != nil {
		s.logger.Error("failed to delete document", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Update applies the batch inside one transaction
func (s *PostgresStore) Update(ctx context.Context, fn func(b *Batch) error) error {
	b, err := collect(fn)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range b.ops {
		switch o.kind {
		case opPut:
			_, err = tx.Exec(ctx, s.upsertQuery(), o.key, o.value)
		case opDelete:
			_, err = tx.Exec(ctx, s.deleteQuery(), o.key)
		}
		if err != nil {
			s.logger.Error("failed to apply batch operation", zap.Error(err), zap.String("key", o.key))
			return fmt.Errorf("failed to apply batch operation on %s: %w", o.key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("document batch committed", zap.Int("operations", b.Len()))
	return nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func (s *PostgresStore) upsertQuery() string {
	return fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, s.table)
}

func (s *PostgresStore) deleteQuery() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table)
}
