package home

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/warden/guard"
	"github.com/leeineian/warden/proc"
	"github.com/leeineian/warden/sys"
)

var activeGuard atomic.Pointer[guard.Guard]

func init() {
	sys.RegisterMessageCreateHandler(onGuardMessage)

	sys.OnClientReady(func(ctx context.Context, client *bot.Client) {
		cfg := sys.GlobalConfig
		// Ready fires again after a fresh gateway session.
		if cfg == nil || activeGuard.Load() != nil {
			return
		}

		ledger, err := openLedger(ctx, cfg)
		if err != nil {
			sys.LogError(sys.MsgGuardLedgerInitFail, cfg.LedgerBackend, err)
			return
		}
		sys.LogGuard(sys.MsgGuardLedgerBackend, cfg.LedgerBackend)

		g := newGuard(cfg, ledger, &discordModerator{client: client}, newDiscordNotifier(client, cfg.NotifyRate))
		activeGuard.Store(g)

		sys.RegisterDaemon(sys.LogGuard, func(ctx context.Context) (bool, func(), func()) {
			return true, func() { <-ctx.Done() }, func() {
				sys.LogGuard(sys.MsgGuardShutdown)
				activeGuard.Store(nil)
				if c, ok := ledger.(io.Closer); ok {
					_ = c.Close()
				}
			}
		})
		sys.RegisterDaemon(sys.LogDecay, func(ctx context.Context) (bool, func(), func()) {
			return proc.StartDecaySweeper(ctx, ledger, cfg.ViolationDecay)
		})

		sources := []proc.StatusSource{
			proc.UptimeStatus,
			proc.LatencyStatus(client),
			proc.TimeoutsStatus(g.Enforcer.Issued),
		}
		if counter, ok := g.Settings.(interface {
			EnabledCount(ctx context.Context) (int, error)
		}); ok {
			sources = append(sources, proc.GuardedStatus(counter.EnabledCount))
		}
		rotator := proc.NewStatusRotator(client, sources...)
		sys.RegisterDaemon(sys.LogStatus, func(ctx context.Context) (bool, func(), func()) {
			return proc.StartStatusRotator(ctx, rotator)
		})
	})
}

// openLedger picks the counter backend named by LEDGER_BACKEND.
func openLedger(ctx context.Context, cfg *sys.Config) (guard.Ledger, error) {
	switch cfg.LedgerBackend {
	case sys.LedgerRedis:
		return guard.NewRedisLedger(cfg.RedisURL, cfg.ViolationDecay)
	case sys.LedgerMemory:
		return guard.NewMemLedger(), nil
	case sys.LedgerSQLite, "":
		if sys.DB == nil {
			return nil, fmt.Errorf("database is not initialized")
		}
		return guard.NewSQLLedger(sys.DB), nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
}

func newGuard(cfg *sys.Config, ledger guard.Ledger, mod guard.Moderator, notifier guard.Notifier) *guard.Guard {
	logger := sys.ComponentLogger("guard")
	return &guard.Guard{
		Settings: guard.NewSQLSettings(sys.DB),
		Ledger:   ledger,
		Policy:   guard.Policy{BaseUnit: cfg.EscalationBase, Cap: cfg.EscalationCap},
		Enforcer: &guard.Enforcer{
			Moderator: mod,
			Notifier:  notifier,
			Timeout:   cfg.EnforceTimeout,
			Logger:    logger,
		},
		History: guard.NewHistory(0, guard.BurstWindow),
		Logger:  logger,
	}
}

func onGuardMessage(event *events.MessageCreate) {
	if event.Message.Author.Bot || event.GuildID == nil {
		return
	}
	g := activeGuard.Load()
	if g == nil {
		return
	}

	ev := guard.Event{
		Subject:   event.Message.Author.ID,
		Scope:     *event.GuildID,
		Zone:      event.ChannelID,
		MessageID: event.MessageID,
		Content:   event.Message.Content,
		At:        messageTime(event.Message.CreatedAt),
	}

	parent := sys.AppContext
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	if _, err := g.Handle(ctx, ev); err != nil {
		sys.LogWarn(sys.MsgGuardHandleFail, ev.MessageID, err)
	}
}

func messageTime(created time.Time) time.Time {
	if created.IsZero() {
		return time.Now().UTC()
	}
	return created.UTC()
}
