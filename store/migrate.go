package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id         TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		doc        JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tournaments_status ON tournaments (status)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		code           TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		competition_id TEXT NOT NULL,
		round_id       TEXT,
		match_id       TEXT,
		valid          BOOLEAN NOT NULL,
		issued_at      TIMESTAMPTZ NOT NULL,
		expires_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_competition ON tickets (competition_id)`,
	`CREATE TABLE IF NOT EXISTS disputes (
		id            TEXT PRIMARY KEY,
		tournament_id TEXT NOT NULL,
		match_id      TEXT NOT NULL,
		reported_by   TEXT NOT NULL,
		reason        TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		resolved_at   TIMESTAMPTZ,
		resolved_by   TEXT,
		resolution    TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_disputes_match ON disputes (match_id)`,
	`CREATE INDEX IF NOT EXISTS idx_disputes_tournament ON disputes (tournament_id)`,
}

// Migrate applies the schema. Statements are idempotent, so running it on
// every startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
