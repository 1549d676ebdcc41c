package guard

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSubject snowflake.ID = 111111111111111111
	testScope   snowflake.ID = 222222222222222222
	testZone    snowflake.ID = 333333333333333333
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guard.db")
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=10000")
	require.NoError(t, err)
	db.SetMaxOpenConns(5)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, CreateSchema(context.Background(), db))
	return db
}

func ledgers(t *testing.T) map[string]Ledger {
	return map[string]Ledger{
		"mem": NewMemLedger(),
		"sql": NewSQLLedger(openTestDB(t)),
	}
}

func TestLedgerBasics(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

			c, err := l.GetCount(ctx, testSubject, testScope, KindSpam)
			assert.NoError(err)
			assert.Equal(0, c)

			c, err = l.RecordViolation(ctx, testSubject, testScope, KindSpam, now)
			assert.NoError(err)
			assert.Equal(1, c)
			c, err = l.RecordViolation(ctx, testSubject, testScope, KindSpam, now.Add(time.Minute))
			assert.NoError(err)
			assert.Equal(2, c)

			// kinds and guilds are independent counters
			c, err = l.RecordViolation(ctx, testSubject, testScope, KindInviteLink, now)
			assert.NoError(err)
			assert.Equal(1, c)
			c, err = l.RecordViolation(ctx, testSubject, testScope+1, KindSpam, now)
			assert.NoError(err)
			assert.Equal(1, c)

			c, err = l.GetCount(ctx, testSubject, testScope, KindSpam)
			assert.NoError(err)
			assert.Equal(2, c)

			records, err := l.Records(ctx, testSubject, testScope)
			assert.NoError(err)
			if assert.Len(records, 2) {
				assert.Equal(KindInviteLink, records[0].Kind)
				assert.Equal(KindSpam, records[1].Kind)
				assert.Equal(2, records[1].Count)
				assert.True(now.Add(time.Minute).Equal(records[1].LastViolationAt))
			}
		})
	}
}

func TestLedgerTimestampNeverMovesBack(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			later := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)

			_, err := l.RecordViolation(ctx, testSubject, testScope, KindSpam, later)
			assert.NoError(err)
			_, err = l.RecordViolation(ctx, testSubject, testScope, KindSpam, later.Add(-time.Hour))
			assert.NoError(err)

			records, err := l.Records(ctx, testSubject, testScope)
			assert.NoError(err)
			if assert.Len(records, 1) {
				assert.Equal(2, records[0].Count)
				assert.True(later.Equal(records[0].LastViolationAt))
			}
		})
	}
}

func TestLedgerConcurrentIncrements(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			now := time.Now().UTC()

			const workers, perWorker = 8, 25
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						_, err := l.RecordViolation(ctx, testSubject, testScope, KindSpam, now)
						assert.NoError(err)
					}
				}()
			}
			wg.Wait()

			c, err := l.GetCount(ctx, testSubject, testScope, KindSpam)
			assert.NoError(err)
			assert.Equal(workers*perWorker, c)
		})
	}
}

func TestLedgerResetIdempotent(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			now := time.Now().UTC()

			for i := 0; i < 7; i++ {
				_, err := l.RecordViolation(ctx, testSubject, testScope, KindTokenLeak, now)
				assert.NoError(err)
			}
			_, err := l.RecordViolation(ctx, testSubject, testScope, KindSpam, now)
			assert.NoError(err)
			_, err = l.RecordViolation(ctx, testSubject+1, testScope, KindSpam, now)
			assert.NoError(err)

			assert.NoError(l.Reset(ctx, testSubject, testScope))
			assert.NoError(l.Reset(ctx, testSubject, testScope))

			for _, k := range AllKinds {
				c, err := l.GetCount(ctx, testSubject, testScope, k)
				assert.NoError(err)
				assert.Equal(0, c, k)
			}
			records, err := l.Records(ctx, testSubject, testScope)
			assert.NoError(err)
			assert.Empty(records)

			// other members are untouched
			c, err := l.GetCount(ctx, testSubject+1, testScope, KindSpam)
			assert.NoError(err)
			assert.Equal(1, c)

			// next violation starts a fresh escalation
			c, err = l.RecordViolation(ctx, testSubject, testScope, KindTokenLeak, now)
			assert.NoError(err)
			assert.Equal(1, c)
		})
	}
}

func TestLedgerResetScopeAndPrune(t *testing.T) {
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			recent := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

			_, err := l.RecordViolation(ctx, testSubject, testScope, KindSpam, old)
			assert.NoError(err)
			_, err = l.RecordViolation(ctx, testSubject, testScope, KindInviteLink, recent)
			assert.NoError(err)
			_, err = l.RecordViolation(ctx, testSubject+1, testScope+1, KindSpam, recent)
			assert.NoError(err)

			n, err := l.Prune(ctx, recent.Add(-time.Hour))
			assert.NoError(err)
			assert.Equal(int64(1), n)

			c, err := l.GetCount(ctx, testSubject, testScope, KindSpam)
			assert.NoError(err)
			assert.Equal(0, c)
			c, err = l.GetCount(ctx, testSubject, testScope, KindInviteLink)
			assert.NoError(err)
			assert.Equal(1, c)

			n, err = l.ResetScope(ctx, testScope)
			assert.NoError(err)
			assert.Equal(int64(1), n)

			c, err = l.GetCount(ctx, testSubject+1, testScope+1, KindSpam)
			assert.NoError(err)
			assert.Equal(1, c)
		})
	}
}
