package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// PostgresRepository stores session state in the agent_session_state table.
type PostgresRepository struct {
	db  Database
	log *slog.Logger
}

// NewPostgresRepository creates a new instance of PostgresRepository with the provided Database.
func NewPostgresRepository(db Database, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, log: log}
}

// Migrate creates the session state table when it does not exist yet.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS agent_session_state (
			session_id TEXT NOT NULL,
			state_key  TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (session_id, state_key)
		);
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create session state table: %w", err)
	}

	return nil
}

// SaveState inserts or replaces the value stored under key for the session.
func (r *PostgresRepository) SaveState(ctx context.Context, sessionID, key, value string) error {
	query := `
		INSERT INTO agent_session_state (session_id, state_key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, state_key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now();
	`

	if _, err := r.db.Exec(ctx, query, sessionID, key, value); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}

	r.log.DebugContext(ctx, "Session state saved", "session", sessionID, "key", key)

	return nil
}

// LoadState returns the value stored under key, or ErrStateNotFound.
func (r *PostgresRepository) LoadState(ctx context.Context, sessionID, key string) (string, error) {
	query := `
		SELECT value
		FROM agent_session_state
		WHERE session_id = $1 AND state_key = $2;
	`

	var value string
	err := r.db.QueryRow(ctx, query, sessionID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session state: %w", err)
	}

	return value, nil
}

// DeleteSession removes every value stored for the session.
func (r *PostgresRepository) DeleteSession(ctx context.Context, sessionID string) error {
	query := `
		DELETE FROM agent_session_state
		WHERE session_id = $1;
	`

	if _, err := r.db.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session state: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
