package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/prospector/internal/entity"
)

const DefaultKVTable = "kv_store"

const undefinedTable = "42P01"

var ErrSchemaMissing = errors.New("tabela do kv não existe; rode com migração habilitada")

// KVRepository guarda pares chave/JSON numa tabela Postgres.
type KVRepository struct {
	DB    *sql.DB
	table string
}

func NewKVRepository(db *sql.DB, table string) *KVRepository {
	if table == "" {
		table = DefaultKVTable
	}
	return &KVRepository{DB: db, table: pq.QuoteIdentifier(table)}
}

func (r *KVRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, r.table)

	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("erro ao criar tabela %s: %w", r.table, err)
	}
	return nil
}

func (r *KVRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, r.table)

	var value []byte
	err := r.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrKeyNotFound
	}
	if err != nil {
		return nil, mapPgError(err)
	}
	return value, nil
}

func (r *KVRepository) Save(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`, r.table)

	if _, err := r.DB.ExecContext(ctx, query, key, string(value)); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *KVRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, pgErr.Message)
	}
	return err
}
