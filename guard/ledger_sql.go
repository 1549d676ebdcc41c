package guard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// SQLLedger stores counters in the guard_violations table. Timestamps are unix
// milliseconds so MAX() keeps them monotonic without string comparisons.
type SQLLedger struct {
	db *sql.DB
}

var _ Ledger = (*SQLLedger)(nil)

func NewSQLLedger(db *sql.DB) *SQLLedger {
	return &SQLLedger{db: db}
}

func (l *SQLLedger) RecordViolation(ctx context.Context, subject, scope snowflake.ID, kind Kind, now time.Time) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx, `
		INSERT INTO guard_violations (user_id, guild_id, violation_type, count, last_violation)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (user_id, guild_id, violation_type) DO UPDATE SET
			count = guard_violations.count + 1,
			last_violation = MAX(guard_violations.last_violation, excluded.last_violation)
		RETURNING count
	`, subject.String(), scope.String(), string(kind), now.UnixMilli()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: record %s for %s in %s: %w", ErrStorage, kind, subject, scope, err)
	}
	return count, nil
}

func (l *SQLLedger) GetCount(ctx context.Context, subject, scope snowflake.ID, kind Kind) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx,
		"SELECT count FROM guard_violations WHERE user_id = ? AND guild_id = ? AND violation_type = ?",
		subject.String(), scope.String(), string(kind)).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read %s for %s in %s: %w", ErrStorage, kind, subject, scope, err)
	}
	return count, nil
}

func (l *SQLLedger) Records(ctx context.Context, subject, scope snowflake.ID) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT violation_type, count, last_violation
		FROM guard_violations WHERE user_id = ? AND guild_id = ?
		ORDER BY violation_type ASC
	`, subject.String(), scope.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", ErrStorage, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r := Record{Subject: subject, Scope: scope}
		var kind string
		var lastMs int64
		if err := rows.Scan(&kind, &r.Count, &lastMs); err != nil {
			return nil, fmt.Errorf("%w: scan record: %w", ErrStorage, err)
		}
		r.Kind = Kind(kind)
		r.LastViolationAt = time.UnixMilli(lastMs).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list records: %w", ErrStorage, err)
	}
	return records, nil
}

func (l *SQLLedger) Reset(ctx context.Context, subject, scope snowflake.ID) error {
	_, err := l.db.ExecContext(ctx, "DELETE FROM guard_violations WHERE user_id = ? AND guild_id = ?", subject.String(), scope.String())
	if err != nil {
		return fmt.Errorf("%w: reset %s in %s: %w", ErrStorage, subject, scope, err)
	}
	return nil
}

func (l *SQLLedger) ResetScope(ctx context.Context, scope snowflake.ID) (int64, error) {
	result, err := l.db.ExecContext(ctx, "DELETE FROM guard_violations WHERE guild_id = ?", scope.String())
	if err != nil {
		return 0, fmt.Errorf("%w: reset scope %s: %w", ErrStorage, scope, err)
	}
	return result.RowsAffected()
}

func (l *SQLLedger) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := l.db.ExecContext(ctx, "DELETE FROM guard_violations WHERE last_violation < ?", before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("%w: prune: %w", ErrStorage, err)
	}
	return result.RowsAffected()
}
