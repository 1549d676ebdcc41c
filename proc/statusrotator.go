package proc

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/gateway"
	"github.com/leeineian/warden/sys"
)

// ConfigKeyStatusVisible hides the rotating presence when set to "false".
const ConfigKeyStatusVisible = "status_visible"

// StatusSource produces one presence line. An empty string skips the source
// for this round.
type StatusSource func(ctx context.Context) string

var StartTime = time.Now().UTC()

func GetRotationInterval() time.Duration {
	return time.Duration(15+rand.Intn(46)) * time.Second
}

// StatusRotator cycles the bot presence through its sources, never showing
// the same line twice in a row.
type StatusRotator struct {
	Sources []StatusSource
	set     func(ctx context.Context, text string) error
	last    string
}

func NewStatusRotator(client *bot.Client, sources ...StatusSource) *StatusRotator {
	return &StatusRotator{
		Sources: sources,
		set: func(ctx context.Context, text string) error {
			if text == "" {
				return client.SetPresence(ctx, gateway.WithOnlineStatus(discord.OnlineStatusOnline))
			}
			return client.SetPresence(ctx,
				gateway.WithOnlineStatus(discord.OnlineStatusOnline),
				gateway.WithPlayingActivity(text),
			)
		},
	}
}

func StartStatusRotator(ctx context.Context, r *StatusRotator) (bool, func(), func()) {
	if r == nil || len(r.Sources) == 0 {
		return false, nil, nil
	}
	return true, func() {
		for {
			next := GetRotationInterval()
			r.rotate(ctx, next)
			select {
			case <-time.After(next):
			case <-ctx.Done():
				return
			}
		}
	}, nil
}

// pick returns the next line to show, or "" when nothing is available.
func (r *StatusRotator) pick(ctx context.Context) string {
	var available []string
	for _, src := range r.Sources {
		if text := src(ctx); text != "" {
			available = append(available, text)
		}
	}
	if len(available) == 0 {
		return ""
	}

	var choices []string
	for _, s := range available {
		if s != r.last {
			choices = append(choices, s)
		}
	}
	if len(choices) == 0 {
		return available[0]
	}
	return choices[rand.Intn(len(choices))]
}

func (r *StatusRotator) rotate(ctx context.Context, next time.Duration) {
	if visible, err := sys.GetBotConfig(ctx, ConfigKeyStatusVisible); err == nil && visible == "false" {
		_ = r.set(ctx, "")
		return
	}

	text := r.pick(ctx)
	if err := r.set(ctx, text); err != nil {
		sys.LogStatus(sys.MsgStatusUpdateFail, err)
		return
	}
	r.last = text
	sys.LogStatus(sys.MsgStatusRotated, text, next)
}

// Sources

func UptimeStatus(ctx context.Context) string {
	return "Uptime: " + sys.FormatDuration(time.Since(StartTime))
}

func LatencyStatus(client *bot.Client) StatusSource {
	return func(ctx context.Context) string {
		ping := client.Gateway.Latency()
		if ping == 0 {
			return ""
		}
		return fmt.Sprintf("Ping: %dms", ping.Milliseconds())
	}
}

// GuardedStatus reports how many servers have tracking enabled.
func GuardedStatus(count func(ctx context.Context) (int, error)) StatusSource {
	return func(ctx context.Context) string {
		n, err := count(ctx)
		if err != nil || n == 0 {
			return ""
		}
		if n == 1 {
			return "Guarding 1 server"
		}
		return fmt.Sprintf("Guarding %d servers", n)
	}
}

// TimeoutsStatus reports timeouts applied since start.
func TimeoutsStatus(issued func() int64) StatusSource {
	return func(ctx context.Context) string {
		n := issued()
		if n == 0 {
			return ""
		}
		return fmt.Sprintf("Timeouts issued: %d", n)
	}
}
