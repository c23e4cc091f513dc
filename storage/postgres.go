package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDatabase = errors.New("database-error")

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (repo *PostgresRepo) Close() {
	repo.pool.Close()
}

// AppendChatMessage stores a chat message keyed by its arrival time.
func (repo *PostgresRepo) AppendChatMessage(ctx context.Context, username, message string, at time.Time) error {
	_, err := repo.pool.Exec(ctx,
		"INSERT INTO chat_messages (username, message, timestamp) VALUES ($1, $2, $3)",
		username, message, at)
	return wrapError(err)
}

func (repo *PostgresRepo) AppendGameEvent(ctx context.Context, event string, at time.Time) error {
	_, err := repo.pool.Exec(ctx,
		"INSERT INTO game_logs (event, timestamp) VALUES ($1, $2)",
		event, at)
	return wrapError(err)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (%s)", ErrDatabase, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %w", ErrDatabase, err)
}
