package guard

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"
)

var redisLedgerPrefix = "violations/"

// recordViolationScript increments one kind and moves its timestamp forward in
// a single server-side step.
var recordViolationScript = redis.NewScript(`
local count = redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
local atField = ARGV[1] .. ':at'
local prev = tonumber(redis.call('HGET', KEYS[1], atField) or '0')
local now = tonumber(ARGV[2])
if now > prev then
	redis.call('HSET', KEYS[1], atField, ARGV[2])
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[1], ttl)
end
return count
`)

// RedisLedger keeps one hash per member and guild. Each kind has a count field
// and a "<kind>:at" field holding the last violation in unix milliseconds.
//
// Decay is applied by Redis itself: with a non-zero TTL the whole hash expires
// once the member has been quiet for that long, so Prune has nothing to do.
type RedisLedger struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ Ledger = (*RedisLedger)(nil)

func NewRedisLedger(redisURL string, ttl time.Duration) (*RedisLedger, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
		return nil, err
	}
	return &RedisLedger{Client: rdb, TTL: ttl}, nil
}

func redisLedgerKey(subject, scope snowflake.ID) string {
	return redisLedgerPrefix + scope.String() + "/" + subject.String()
}

func (l *RedisLedger) RecordViolation(ctx context.Context, subject, scope snowflake.ID, kind Kind, now time.Time) (int, error) {
	count, err := recordViolationScript.Run(ctx, l.Client,
		[]string{redisLedgerKey(subject, scope)},
		string(kind), now.UnixMilli(), l.TTL.Milliseconds(),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("%w: record %s for %s in %s: %w", ErrStorage, kind, subject, scope, err)
	}
	return count, nil
}

func (l *RedisLedger) GetCount(ctx context.Context, subject, scope snowflake.ID, kind Kind) (int, error) {
	c, err := l.Client.HGet(ctx, redisLedgerKey(subject, scope), string(kind)).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("%w: read %s for %s in %s: %w", ErrStorage, kind, subject, scope, err)
	}
	return c, nil
}

func (l *RedisLedger) Records(ctx context.Context, subject, scope snowflake.ID) ([]Record, error) {
	fields, err := l.Client.HGetAll(ctx, redisLedgerKey(subject, scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", ErrStorage, err)
	}

	var records []Record
	for field, val := range fields {
		if strings.HasSuffix(field, ":at") {
			continue
		}
		count, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("%w: bad count %q for %s: %w", ErrStorage, val, field, err)
		}
		r := Record{Subject: subject, Scope: scope, Kind: Kind(field), Count: count}
		if ms, err := strconv.ParseInt(fields[field+":at"], 10, 64); err == nil {
			r.LastViolationAt = time.UnixMilli(ms).UTC()
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Kind < records[j].Kind })
	return records, nil
}

func (l *RedisLedger) Reset(ctx context.Context, subject, scope snowflake.ID) error {
	if err := l.Client.Del(ctx, redisLedgerKey(subject, scope)).Err(); err != nil {
		return fmt.Errorf("%w: reset %s in %s: %w", ErrStorage, subject, scope, err)
	}
	return nil
}

// ResetScope removes every member hash of the guild and returns the number of
// counters that were dropped.
func (l *RedisLedger) ResetScope(ctx context.Context, scope snowflake.ID) (int64, error) {
	match := redisLedgerPrefix + scope.String() + "/*"
	var removed int64
	var cursor uint64
	for {
		keys, next, err := l.Client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("%w: scan scope %s: %w", ErrStorage, scope, err)
		}
		for _, key := range keys {
			n, err := l.Client.HLen(ctx, key).Result()
			if err != nil {
				return removed, fmt.Errorf("%w: reset scope %s: %w", ErrStorage, scope, err)
			}
			if err := l.Client.Del(ctx, key).Err(); err != nil {
				return removed, fmt.Errorf("%w: reset scope %s: %w", ErrStorage, scope, err)
			}
			removed += n / 2
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (l *RedisLedger) Prune(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (l *RedisLedger) Close() error {
	return l.Client.Close()
}
