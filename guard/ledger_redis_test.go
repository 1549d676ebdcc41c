package guard

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a live server; set REDIS_URL to run.
func TestRedisLedger(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	assert := assert.New(t)
	ctx := context.Background()

	l, err := NewRedisLedger(redisURL, time.Hour)
	require.NoError(t, err)
	defer l.Close()

	// keep clear of real data
	scope := testScope + 7
	_, err = l.ResetScope(ctx, scope)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	for i := 1; i <= 3; i++ {
		c, err := l.RecordViolation(ctx, testSubject, scope, KindSpam, now)
		assert.NoError(err)
		assert.Equal(i, c)
	}
	_, err = l.RecordViolation(ctx, testSubject, scope, KindInviteLink, now.Add(-time.Minute))
	assert.NoError(err)

	records, err := l.Records(ctx, testSubject, scope)
	assert.NoError(err)
	if assert.Len(records, 2) {
		assert.Equal(KindInviteLink, records[0].Kind)
		assert.Equal(3, records[1].Count)
		assert.True(now.Equal(records[1].LastViolationAt))
	}

	assert.NoError(l.Reset(ctx, testSubject, scope))
	c, err := l.GetCount(ctx, testSubject, scope, KindSpam)
	assert.NoError(err)
	assert.Equal(0, c)

	_, err = l.RecordViolation(ctx, testSubject+1, scope, KindSpam, now)
	assert.NoError(err)
	n, err := l.ResetScope(ctx, scope)
	assert.NoError(err)
	assert.Equal(int64(1), n)
}
