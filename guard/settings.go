package guard

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// ScopeConfig is the per-guild configuration. A guild without a row behaves
// exactly like one with Enabled set to false.
type ScopeConfig struct {
	Scope              snowflake.ID
	Enabled            bool
	NotificationTarget *snowflake.ID
	ExemptZones        []snowflake.ID
}

func (c *ScopeConfig) IsExempt(zone snowflake.ID) bool {
	return slices.Contains(c.ExemptZones, zone)
}

// SettingsStore persists ScopeConfig rows. Get returns nil, nil for an
// unconfigured guild.
type SettingsStore interface {
	Get(ctx context.Context, scope snowflake.ID) (*ScopeConfig, error)
	Put(ctx context.Context, cfg ScopeConfig) error
}

// Settings answers configuration questions straight from the store. Nothing
// is cached, so a change made by an administrator applies to the very next
// message, on every bot instance.
type Settings struct {
	Store SettingsStore
}

func (s Settings) IsActive(ctx context.Context, scope snowflake.ID) (bool, error) {
	cfg, err := s.Store.Get(ctx, scope)
	if err != nil {
		return false, err
	}
	return cfg != nil && cfg.Enabled, nil
}

func (s Settings) IsExemptZone(ctx context.Context, scope, zone snowflake.ID) (bool, error) {
	cfg, err := s.Store.Get(ctx, scope)
	if err != nil {
		return false, err
	}
	return cfg != nil && cfg.IsExempt(zone), nil
}

func (s Settings) NotificationTarget(ctx context.Context, scope snowflake.ID) (*snowflake.ID, error) {
	cfg, err := s.Store.Get(ctx, scope)
	if err != nil || cfg == nil {
		return nil, err
	}
	return cfg.NotificationTarget, nil
}

func (s Settings) SetConfig(ctx context.Context, scope snowflake.ID, enabled bool, target *snowflake.ID, exempt []snowflake.ID) error {
	return s.Store.Put(ctx, ScopeConfig{
		Scope:              scope,
		Enabled:            enabled,
		NotificationTarget: target,
		ExemptZones:        exempt,
	})
}

// --- SQL ---

type SQLSettings struct {
	db *sql.DB
}

var _ SettingsStore = (*SQLSettings)(nil)

func NewSQLSettings(db *sql.DB) *SQLSettings {
	return &SQLSettings{db: db}
}

func (s *SQLSettings) Get(ctx context.Context, scope snowflake.ID) (*ScopeConfig, error) {
	var enabled int
	var target, exempt sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT enabled, notification_channel_id, exempt_channel_ids FROM guard_settings WHERE guild_id = ?",
		scope.String()).Scan(&enabled, &target, &exempt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read settings for %s: %w", ErrStorage, scope, err)
	}

	cfg := &ScopeConfig{Scope: scope, Enabled: enabled == 1}
	if target.Valid && target.String != "" {
		id, err := snowflake.Parse(target.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse notification channel ID '%s': %w", target.String, err)
		}
		cfg.NotificationTarget = &id
	}
	cfg.ExemptZones, err = splitIDs(exempt.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exempt channels for %s: %w", scope, err)
	}
	return cfg, nil
}

func (s *SQLSettings) Put(ctx context.Context, cfg ScopeConfig) error {
	var target sql.NullString
	if cfg.NotificationTarget != nil {
		target = sql.NullString{String: cfg.NotificationTarget.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guard_settings (guild_id, enabled, notification_channel_id, exempt_channel_ids)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			enabled = excluded.enabled,
			notification_channel_id = excluded.notification_channel_id,
			exempt_channel_ids = excluded.exempt_channel_ids,
			updated_at = CURRENT_TIMESTAMP
	`, cfg.Scope.String(), boolToInt(cfg.Enabled), target, joinIDs(cfg.ExemptZones))
	if err != nil {
		return fmt.Errorf("%w: write settings for %s: %w", ErrStorage, cfg.Scope, err)
	}
	return nil
}

// EnabledCount is the number of guilds with tracking switched on.
func (s *SQLSettings) EnabledCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM guard_settings WHERE enabled = 1").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count enabled guilds: %w", ErrStorage, err)
	}
	return n, nil
}

func joinIDs(ids []snowflake.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := snowflake.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- Memory ---

type MemSettings struct {
	mu   sync.Mutex
	Data map[snowflake.ID]ScopeConfig
}

var _ SettingsStore = (*MemSettings)(nil)

func NewMemSettings() *MemSettings {
	return &MemSettings{Data: make(map[snowflake.ID]ScopeConfig)}
}

func (s *MemSettings) Get(ctx context.Context, scope snowflake.ID) (*ScopeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.Data[scope]
	if !ok {
		return nil, nil
	}
	cfg.ExemptZones = slices.Clone(cfg.ExemptZones)
	return &cfg, nil
}

func (s *MemSettings) Put(ctx context.Context, cfg ScopeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.ExemptZones = slices.Clone(cfg.ExemptZones)
	s.Data[cfg.Scope] = cfg
	return nil
}

func (s *MemSettings) EnabledCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, cfg := range s.Data {
		if cfg.Enabled {
			n++
		}
	}
	return n, nil
}
