package guard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

type recordKey struct {
	subject, scope snowflake.ID
	kind           Kind
}

// MemLedger keeps counters in process memory. Only useful for tests and
// single-instance development runs.
type MemLedger struct {
	mu      sync.Mutex
	records map[recordKey]Record
}

var _ Ledger = (*MemLedger)(nil)

func NewMemLedger() *MemLedger {
	return &MemLedger{records: make(map[recordKey]Record)}
}

func (l *MemLedger) RecordViolation(ctx context.Context, subject, scope snowflake.ID, kind Kind, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := recordKey{subject, scope, kind}
	r, ok := l.records[k]
	if !ok {
		r = Record{Subject: subject, Scope: scope, Kind: kind}
	}
	r.Count++
	if now.After(r.LastViolationAt) {
		r.LastViolationAt = now
	}
	l.records[k] = r
	return r.Count, nil
}

func (l *MemLedger) GetCount(ctx context.Context, subject, scope snowflake.ID, kind Kind) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[recordKey{subject, scope, kind}].Count, nil
}

func (l *MemLedger) Records(ctx context.Context, subject, scope snowflake.ID) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Record
	for k, r := range l.records {
		if k.subject == subject && k.scope == scope {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

func (l *MemLedger) Reset(ctx context.Context, subject, scope snowflake.ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.records {
		if k.subject == subject && k.scope == scope {
			delete(l.records, k)
		}
	}
	return nil
}

func (l *MemLedger) ResetScope(ctx context.Context, scope snowflake.ID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for k := range l.records {
		if k.scope == scope {
			delete(l.records, k)
			n++
		}
	}
	return n, nil
}

func (l *MemLedger) Prune(ctx context.Context, before time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for k, r := range l.records {
		if r.LastViolationAt.Before(before) {
			delete(l.records, k)
			n++
		}
	}
	return n, nil
}
