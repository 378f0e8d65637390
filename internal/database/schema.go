package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS link_tokens (
		code             TEXT PRIMARY KEY,
		owner_id         TEXT NOT NULL,
		default_currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at       TIMESTAMPTZ NOT NULL,
		used_at          TIMESTAMPTZ,
		used_by          TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_link_tokens_owner ON link_tokens (owner_id)`,
	`CREATE TABLE IF NOT EXISTS linked_identities (
		owner_id          TEXT PRIMARY KEY,
		messaging_address TEXT NOT NULL UNIQUE,
		linked_at         TIMESTAMPTZ NOT NULL,
		currency          VARCHAR(3) NOT NULL DEFAULT 'USD'
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                   UUID PRIMARY KEY,
		owner_id             TEXT NOT NULL,
		amount               NUMERIC(14,2) NOT NULL CHECK (amount > 0),
		currency             VARCHAR(3) NOT NULL,
		vendor               TEXT NOT NULL,
		note                 TEXT NOT NULL DEFAULT '',
		category             TEXT NOT NULL,
		txn_date             DATE NOT NULL,
		message_kind         TEXT NOT NULL,
		attachment_reference TEXT,
		sync_status          TEXT NOT NULL DEFAULT 'pending_sync',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_owner_sync ON transactions (owner_id, sync_status)`,
	`CREATE TABLE IF NOT EXISTS user_categories (
		owner_id      TEXT NOT NULL,
		category_name TEXT NOT NULL,
		category_type TEXT NOT NULL,
		is_custom     BOOLEAN NOT NULL DEFAULT FALSE,
		position      INT NOT NULL DEFAULT 0,
		UNIQUE (owner_id, category_name, category_type)
	)`,
}

// Schema provisions tables on first use. Safe for concurrent callers.
type Schema struct {
	db   *sql.DB
	once sync.Once
	err  error
}

func NewSchema(db *sql.DB) *Schema {
	return &Schema{db: db}
}

// Ensure runs the DDL once per process; later calls return the first result
func (s *Schema) Ensure(ctx context.Context) error {
	s.once.Do(func() {
		for _, stmt := range schemaStatements {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				s.err = fmt.Errorf("provision schema: %w", err)
				return
			}
		}
		log.Info().Int("statements", len(schemaStatements)).Msg("schema ensured")
	})
	return s.err
}
