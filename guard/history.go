package guard

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type historyKey struct {
	scope, zone, subject snowflake.ID
}

// History keeps the recent arrival times of each member per channel. Entries
// idle for longer than the TTL fall out, and the total number of tracked
// members is bounded.
type History struct {
	mu      sync.Mutex
	entries *expirable.LRU[historyKey, []time.Time]
	window  time.Duration
}

func NewHistory(capacity int, window time.Duration) *History {
	if capacity <= 0 {
		capacity = 10_000
	}
	return &History{
		// a key is useless once it is older than the window, keep a margin for clock jitter
		entries: expirable.NewLRU[historyKey, []time.Time](capacity, nil, 2*window),
		window:  window,
	}
}

// Observe records an arrival and returns the arrivals still inside the window,
// the new one included.
func (h *History) Observe(ev Event) []time.Time {
	k := historyKey{ev.Scope, ev.Zone, ev.Subject}

	h.mu.Lock()
	defer h.mu.Unlock()

	prev, _ := h.entries.Get(k)
	cutoff := ev.At.Add(-h.window)
	kept := make([]time.Time, 0, len(prev)+1)
	for _, t := range prev {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, ev.At)
	h.entries.Add(k, kept)

	out := make([]time.Time, len(kept))
	copy(out, kept)
	return out
}

// Clear forgets a member's arrivals in one channel.
func (h *History) Clear(scope, zone, subject snowflake.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries.Remove(historyKey{scope, zone, subject})
}
