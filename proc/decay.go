package proc

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/leeineian/warden/guard"
	"github.com/leeineian/warden/sys"
)

// DecayInterval is how often stale violation counters are swept.
var DecayInterval = time.Hour

var decaySweeperRunning int32

// StartDecaySweeper drops counters whose last violation is older than decay.
// With decay <= 0 counters live forever and the sweeper does not start.
func StartDecaySweeper(ctx context.Context, ledger guard.Ledger, decay time.Duration) (bool, func(), func()) {
	if decay <= 0 || ledger == nil {
		return false, nil, nil
	}
	if !atomic.CompareAndSwapInt32(&decaySweeperRunning, 0, 1) {
		return false, nil, nil
	}

	return true, func() {
			defer atomic.StoreInt32(&decaySweeperRunning, 0)

			sweepDecayed(ctx, ledger, decay)

			ticker := time.NewTicker(DecayInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					sweepDecayed(ctx, ledger, decay)
				case <-ctx.Done():
					return
				}
			}
		}, func() {
			sys.LogDecay(sys.MsgDecayShutdown)
		}
}

func sweepDecayed(parentCtx context.Context, ledger guard.Ledger, decay time.Duration) {
	ctx, cancel := context.WithTimeout(parentCtx, 30*time.Second)
	defer cancel()

	n, err := PruneDecayed(ctx, ledger, decay, time.Now().UTC())
	if err != nil {
		sys.LogDecay(sys.MsgDecayFailed, err)
		return
	}
	if n > 0 {
		sys.LogDecay(sys.MsgDecayPruned, n, sys.FormatDuration(decay))
	}
}

// PruneDecayed removes every counter last touched before now-decay.
func PruneDecayed(ctx context.Context, ledger guard.Ledger, decay time.Duration, now time.Time) (int64, error) {
	if decay <= 0 {
		return 0, nil
	}
	return ledger.Prune(ctx, now.Add(-decay))
}
