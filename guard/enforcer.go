package guard

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

const DefaultEnforceTimeout = 8 * time.Second

// Moderator applies a time-boxed restriction to a member.
type Moderator interface {
	Restrict(ctx context.Context, scope, subject snowflake.ID, until time.Time, reason string) error
}

// Notifier delivers a report to a guild's notification channel.
type Notifier interface {
	Notify(ctx context.Context, target snowflake.ID, n Notice) error
}

// Enforcement is one punitive action computed for one violation kind.
type Enforcement struct {
	Subject  snowflake.ID
	Scope    snowflake.ID
	Zone     snowflake.ID
	Kind     Kind
	Count    int
	Duration time.Duration
}

// Notice is what moderators get to see. Err is set when the restriction
// itself failed.
type Notice struct {
	Enforcement
	Until time.Time
	Err   error
}

func (n Notice) Failed() bool { return n.Err != nil }

// Reason is the audit log reason attached to the timeout.
func Reason(kind Kind) string {
	return "violation: " + string(kind)
}

type Enforcer struct {
	Moderator Moderator
	Notifier  Notifier
	Timeout   time.Duration
	Logger    *slog.Logger
	Now       func() time.Time

	issued atomic.Int64
}

// Issued is the number of timeouts applied since start.
func (e *Enforcer) Issued() int64 { return e.issued.Load() }

func (e *Enforcer) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

func (e *Enforcer) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultEnforceTimeout
}

func (e *Enforcer) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Enforce restricts the member until now+Duration and then tells the
// notification target, if any, how it went. The restriction is attempted once;
// a failed notification never undoes or fails the restriction.
func (e *Enforcer) Enforce(ctx context.Context, en Enforcement, target *snowflake.ID) error {
	until := e.now().Add(en.Duration)

	rctx, cancel := context.WithTimeout(ctx, e.timeout())
	restrictErr := e.Moderator.Restrict(rctx, en.Scope, en.Subject, until, Reason(en.Kind))
	cancel()

	var err error
	if restrictErr != nil {
		enforcementCount.WithLabelValues(string(en.Kind), "failed").Inc()
		err = fmt.Errorf("%w: timeout %s in %s: %w", ErrEnforcement, en.Subject, en.Scope, restrictErr)
		e.logger().Warn("failed to apply timeout", "subject", en.Subject, "scope", en.Scope, "kind", en.Kind, "err", restrictErr)
	} else {
		enforcementCount.WithLabelValues(string(en.Kind), "ok").Inc()
		e.issued.Add(1)
		e.logger().Info("timed out member", "subject", en.Subject, "scope", en.Scope, "kind", en.Kind, "count", en.Count, "duration", en.Duration)
	}

	if target != nil && e.Notifier != nil {
		e.notify(ctx, *target, Notice{Enforcement: en, Until: until, Err: restrictErr})
	}
	return err
}

func (e *Enforcer) notify(ctx context.Context, target snowflake.ID, n Notice) {
	nctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	if err := e.Notifier.Notify(nctx, target, n); err != nil {
		notificationErrorCount.Inc()
		e.logger().Warn("failed to send notification", "target", target, "scope", n.Scope, "err", fmt.Errorf("%w: %w", ErrNotification, err))
	}
}
