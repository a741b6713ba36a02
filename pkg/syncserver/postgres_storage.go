package syncserver

import (
	"context"
	"embed"
	"errors"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cc-d/open2fa/pkg/pg"
	"github.com/cc-d/open2fa/pkg/remote"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the goose migrations for PostgresStorage.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// PostgresStorage keeps pairs in the totps table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const (
	insertTOTPQuery = `INSERT INTO totps (user_hash, name, enc_secret) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	listTOTPsQuery  = `SELECT name, enc_secret FROM totps WHERE user_hash = $1 ORDER BY id`
	deleteTOTPQuery = `DELETE FROM totps WHERE user_hash = $1 AND COALESCE(name, '') = $2 AND enc_secret = $3`
)

func (s *PostgresStorage) Put(ctx context.Context, user string, items []remote.TOTP) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(insertTOTPQuery, user, nullableName(it), it.EncSecret)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *PostgresStorage) List(ctx context.Context, user string) ([]remote.TOTP, error) {
	rows, err := s.pool.Query(ctx, listTOTPsQuery, user)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (remote.TOTP, error) {
		var t remote.TOTP
		err := row.Scan(&t.Name, &t.EncSecret)
		return t, err
	})
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return out, nil
}

func (s *PostgresStorage) Delete(ctx context.Context, user string, items []remote.TOTP) (int, error) {
	var deleted int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, it := range items {
			tag, err := tx.Exec(ctx, deleteTOTPQuery, user, it.DisplayName(), it.EncSecret)
			if err != nil {
				return err
			}
			deleted += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return int(deleted), nil
}

func (s *PostgresStorage) Healthcheck(ctx context.Context) error {
	return pg.Healthcheck(s.pool)(ctx)
}

func nullableName(t remote.TOTP) *string {
	if t.DisplayName() == "" {
		return nil
	}
	return t.Name
}
