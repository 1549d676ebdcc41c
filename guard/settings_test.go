package guard

import (
	"context"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

func TestSettingsStores(t *testing.T) {
	stores := map[string]SettingsStore{
		"mem": NewMemSettings(),
		"sql": NewSQLSettings(openTestDB(t)),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			s := Settings{Store: store}

			cfg, err := store.Get(ctx, testScope)
			assert.NoError(err)
			assert.Nil(cfg)

			active, err := s.IsActive(ctx, testScope)
			assert.NoError(err)
			assert.False(active)

			target := snowflake.ID(444444444444444444)
			assert.NoError(s.SetConfig(ctx, testScope, true, &target, []snowflake.ID{testZone, testZone + 1}))

			active, err = s.IsActive(ctx, testScope)
			assert.NoError(err)
			assert.True(active)

			exempt, err := s.IsExemptZone(ctx, testScope, testZone+1)
			assert.NoError(err)
			assert.True(exempt)
			exempt, err = s.IsExemptZone(ctx, testScope, testZone+2)
			assert.NoError(err)
			assert.False(exempt)

			got, err := s.NotificationTarget(ctx, testScope)
			assert.NoError(err)
			if assert.NotNil(got) {
				assert.Equal(target, *got)
			}

			// overwriting clears the target and the exempt list
			assert.NoError(s.SetConfig(ctx, testScope, false, nil, nil))
			cfg, err = store.Get(ctx, testScope)
			assert.NoError(err)
			if assert.NotNil(cfg) {
				assert.False(cfg.Enabled)
				assert.Nil(cfg.NotificationTarget)
				assert.Empty(cfg.ExemptZones)
			}
		})
	}
}

func TestSplitIDs(t *testing.T) {
	assert := assert.New(t)

	ids, err := splitIDs(" 1, 2,,3 ")
	assert.NoError(err)
	assert.Equal([]snowflake.ID{1, 2, 3}, ids)

	ids, err = splitIDs("")
	assert.NoError(err)
	assert.Empty(ids)

	_, err = splitIDs("1,abc")
	assert.Error(err)

	assert.Equal("1,2,3", joinIDs([]snowflake.ID{1, 2, 3}))
}

func TestSettingsEnabledCount(t *testing.T) {
	type counter interface {
		SettingsStore
		EnabledCount(ctx context.Context) (int, error)
	}
	stores := map[string]counter{
		"mem": NewMemSettings(),
		"sql": NewSQLSettings(openTestDB(t)),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()

			n, err := store.EnabledCount(ctx)
			assert.NoError(err)
			assert.Equal(0, n)

			assert.NoError(store.Put(ctx, ScopeConfig{Scope: 1, Enabled: true}))
			assert.NoError(store.Put(ctx, ScopeConfig{Scope: 2, Enabled: true}))
			assert.NoError(store.Put(ctx, ScopeConfig{Scope: 3}))

			n, err = store.EnabledCount(ctx)
			assert.NoError(err)
			assert.Equal(2, n)
		})
	}
}
