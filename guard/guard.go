package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Guard runs the detection pipeline for inbound messages:
// config check, matching, ledger increment, escalation, enforcement.
type Guard struct {
	Settings SettingsStore
	Ledger   Ledger
	Policy   Policy
	Enforcer *Enforcer
	History  *History
	Logger   *slog.Logger
}

// Action is the outcome for one detected kind.
type Action struct {
	Kind     Kind
	Count    int
	Duration time.Duration
	Err      error
}

// Report describes what Handle did with an event. A nil report means the
// event was skipped before detection (guild disabled or channel exempt).
type Report struct {
	Kinds   []Kind
	Actions []Action
}

func (g *Guard) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Handle processes one event. Every kind found is recorded and enforced on its
// own. A storage error stops the pass and is returned; enforcement errors are
// reported per action and do not stop the remaining kinds.
func (g *Guard) Handle(ctx context.Context, ev Event) (*Report, error) {
	start := time.Now()
	defer func() {
		eventProcessDuration.Observe(time.Since(start).Seconds())
	}()

	cfg, err := g.Settings.Get(ctx, ev.Scope)
	if err != nil {
		storageErrorCount.Inc()
		g.logger().Error("failed to read guild settings", "scope", ev.Scope, "err", err)
		return nil, err
	}
	if cfg == nil || !cfg.Enabled || cfg.IsExempt(ev.Zone) {
		return nil, nil
	}

	var recent []time.Time
	if g.History != nil {
		recent = g.History.Observe(ev)
	}

	report := &Report{Kinds: Match(ev, recent)}
	if len(report.Kinds) == 0 {
		return report, nil
	}

	for _, kind := range report.Kinds {
		if kind == KindSpam && g.History != nil {
			g.History.Clear(ev.Scope, ev.Zone, ev.Subject)
		}

		count, err := g.Ledger.RecordViolation(ctx, ev.Subject, ev.Scope, kind, ev.At)
		if err != nil {
			storageErrorCount.Inc()
			g.logger().Error("failed to record violation", "subject", ev.Subject, "scope", ev.Scope, "kind", kind, "err", err)
			return report, err
		}
		violationCount.WithLabelValues(string(kind)).Inc()

		action := Action{Kind: kind, Count: count, Duration: g.Policy.Duration(count)}
		if g.Enforcer != nil {
			action.Err = g.Enforcer.Enforce(ctx, Enforcement{
				Subject:  ev.Subject,
				Scope:    ev.Scope,
				Zone:     ev.Zone,
				Kind:     kind,
				Count:    count,
				Duration: action.Duration,
			}, cfg.NotificationTarget)
		}
		report.Actions = append(report.Actions, action)
	}
	return report, nil
}

// Reset clears every counter of a member in a guild. Calling it again is a
// no-op.
func (g *Guard) Reset(ctx context.Context, subject, scope snowflake.ID) error {
	return g.Ledger.Reset(ctx, subject, scope)
}

// NextDuration is the timeout the member's next violation of kind would earn.
func (g *Guard) NextDuration(ctx context.Context, subject, scope snowflake.ID, kind Kind) (time.Duration, error) {
	count, err := g.Ledger.GetCount(ctx, subject, scope, kind)
	if err != nil {
		return 0, err
	}
	return g.Policy.Duration(count + 1), nil
}
