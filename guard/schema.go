package guard

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema holds the tables owned by the guard. They are created alongside the
// rest of the bot's tables at startup.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS guard_settings (
		guild_id TEXT PRIMARY KEY,
		enabled INTEGER NOT NULL DEFAULT 0,
		notification_channel_id TEXT,
		exempt_channel_ids TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS guard_violations (
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		violation_type TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
		last_violation INTEGER NOT NULL,
		PRIMARY KEY (user_id, guild_id, violation_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_guard_violations_last ON guard_violations (last_violation)`,
}

// CreateSchema runs Schema inside one transaction.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range Schema {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create guard table: %w", err)
		}
	}
	return tx.Commit()
}
