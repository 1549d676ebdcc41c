package sys

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leeineian/warden/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabaseCreatesGuardTables(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "warden.db")
	require.NoError(t, InitDatabase(ctx, path))
	t.Cleanup(CloseDatabase)

	assert := assert.New(t)

	v, err := GetBotConfig(ctx, "last_cmd_hash")
	assert.NoError(err)
	assert.Empty(v)

	assert.NoError(SetBotConfig(ctx, "last_cmd_hash", "abc"))
	assert.NoError(SetBotConfig(ctx, "last_cmd_hash", "def"))
	v, err = GetBotConfig(ctx, "last_cmd_hash")
	assert.NoError(err)
	assert.Equal("def", v)

	c, err := guard.NewSQLLedger(DB).RecordViolation(ctx, 1, 2, guard.KindSpam, StartupTime)
	assert.NoError(err)
	assert.Equal(1, c)

	// running it twice is harmless
	CloseDatabase()
	require.NoError(t, InitDatabase(ctx, path))
	c, err = guard.NewSQLLedger(DB).GetCount(ctx, 1, 2, guard.KindSpam)
	assert.NoError(err)
	assert.Equal(1, c)
}
