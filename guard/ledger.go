package guard

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Record is one violation counter, keyed by (Subject, Scope, Kind).
type Record struct {
	Subject         snowflake.ID
	Scope           snowflake.ID
	Kind            Kind
	Count           int
	LastViolationAt time.Time
}

// Ledger is the durable store of violation counters.
//
// RecordViolation must be a single atomic upsert-and-increment: two concurrent
// calls for the same key always produce two increments.
type Ledger interface {
	RecordViolation(ctx context.Context, subject, scope snowflake.ID, kind Kind, now time.Time) (int, error)
	GetCount(ctx context.Context, subject, scope snowflake.ID, kind Kind) (int, error)
	Records(ctx context.Context, subject, scope snowflake.ID) ([]Record, error)
	Reset(ctx context.Context, subject, scope snowflake.ID) error
	ResetScope(ctx context.Context, scope snowflake.ID) (int64, error)
	// Prune drops counters whose last violation is before the given time and
	// returns how many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
