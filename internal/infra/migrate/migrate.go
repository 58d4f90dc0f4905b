// Package migrate applies the schema as explicit versioned steps at startup.
// Each step runs at most once, recorded in schema_migrations; there is no
// runtime per-row fallback for missing columns.
package migrate

import (
	"context"
	"log/slog"

	"library-lending/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_users",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id            BIGSERIAL PRIMARY KEY,
				username      TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				role          TEXT NOT NULL DEFAULT 'member',
				is_active     BOOLEAN NOT NULL DEFAULT TRUE,
				last_login    TIMESTAMPTZ,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		version: 2,
		name:    "create_book_copies",
		sql: `
			CREATE TABLE IF NOT EXISTS book_copies (
				id         BIGSERIAL PRIMARY KEY,
				isbn       TEXT NOT NULL DEFAULT '',
				title      TEXT NOT NULL,
				author     TEXT NOT NULL,
				available  BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		version: 3,
		name:    "create_rentals",
		sql: `
			CREATE TABLE IF NOT EXISTS rentals (
				id                   BIGSERIAL PRIMARY KEY,
				user_id              BIGINT NOT NULL REFERENCES users(id),
				book_copy_id         BIGINT NOT NULL REFERENCES book_copies(id),
				rent_date            DATE NOT NULL,
				expected_return_date DATE NOT NULL,
				return_date          DATE,
				status               TEXT NOT NULL DEFAULT 'ACTIVE',
				extension_count      INTEGER NOT NULL DEFAULT 0,
				CONSTRAINT rentals_return_date_matches_status CHECK (
					(status = 'RETURNED') = (return_date IS NOT NULL)
				)
			)`,
	},
	{
		version: 4,
		name:    "one_active_rental_per_copy",
		sql: `
			CREATE UNIQUE INDEX IF NOT EXISTS rentals_active_copy_uniq
				ON rentals (book_copy_id) WHERE status = 'ACTIVE'`,
	},
	{
		version: 5,
		name:    "create_extension_requests",
		sql: `
			CREATE TABLE IF NOT EXISTS extension_requests (
				id                  BIGSERIAL PRIMARY KEY,
				rental_id           BIGINT NOT NULL REFERENCES rentals(id),
				user_id             BIGINT NOT NULL REFERENCES users(id),
				requested_days      INTEGER NOT NULL CHECK (requested_days > 0),
				request_date        TIMESTAMPTZ NOT NULL DEFAULT now(),
				status              TEXT NOT NULL DEFAULT 'PENDING',
				admin_decision_date TIMESTAMPTZ,
				admin_id            BIGINT REFERENCES users(id),
				admin_comment       TEXT
			)`,
	},
	{
		version: 6,
		name:    "one_pending_request_per_rental",
		sql: `
			CREATE UNIQUE INDEX IF NOT EXISTS extension_requests_pending_uniq
				ON extension_requests (rental_id) WHERE status = 'PENDING'`,
	},
	{
		version: 7,
		name:    "rental_list_indexes",
		sql: `
			CREATE INDEX IF NOT EXISTS rentals_user_active_idx
				ON rentals (user_id, rent_date DESC) WHERE status = 'ACTIVE';
			CREATE INDEX IF NOT EXISTS rentals_due_idx
				ON rentals (expected_return_date) WHERE status = 'ACTIVE'`,
	},
}

// Run applies pending migrations in version order. Safe to call on every
// startup; concurrent starters serialize on an advisory lock.
func Run(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	const lockKey = 7402811 // arbitrary app-wide advisory lock id

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return errs.Wrap(err, "failed to acquire connection for migration")
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, "SELECT pg_advisory_lock($1)", lockKey); err != nil {
		return errs.Wrap(err, "failed to take migration lock")
	}
	defer func() {
		if _, unlockErr := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", lockKey); unlockErr != nil {
			logger.Warn("failed to release migration lock", "error", unlockErr.Error())
		}
	}()

	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return errs.Wrap(err, "failed to create schema_migrations table")
	}

	var current int
	if err = conn.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return errs.Wrap(err, "failed to read schema version")
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, txErr := conn.Begin(ctx)
		if txErr != nil {
			return errs.Wrap(txErr, "failed to begin migration transaction")
		}

		if _, execErr := tx.Exec(ctx, m.sql); execErr != nil {
			_ = tx.Rollback(ctx)
			return errs.Wrap(execErr, "migration "+m.name+" failed")
		}
		if _, execErr := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.version, m.name); execErr != nil {
			_ = tx.Rollback(ctx)
			return errs.Wrap(execErr, "failed to record migration "+m.name)
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return errs.Wrap(commitErr, "failed to commit migration "+m.name)
		}

		logger.Info("applied migration", "version", m.version, "name", m.name)
	}

	return nil
}
