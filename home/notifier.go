package home

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/warden/guard"
	"github.com/leeineian/warden/sys"
	"golang.org/x/time/rate"
)

const (
	colorTimedOut     = 0xED4245
	colorTimeoutError = 0xFAA61A
)

var errNotifyThrottled = errors.New("notification rate limit reached")

// discordNotifier posts a notice embed to the guild's notification channel.
// Each guild gets its own token bucket so a raid in one server cannot starve
// the others.
type discordNotifier struct {
	send     func(ctx context.Context, channelID snowflake.ID, msg discord.MessageCreate) error
	perMin   int
	mu       sync.Mutex
	limiters map[snowflake.ID]*rate.Limiter
}

var _ guard.Notifier = (*discordNotifier)(nil)

func newDiscordNotifier(client *bot.Client, perMinute int) *discordNotifier {
	return &discordNotifier{
		send: func(ctx context.Context, channelID snowflake.ID, msg discord.MessageCreate) error {
			_, err := client.Rest.CreateMessage(channelID, msg, rest.WithCtx(ctx))
			return err
		},
		perMin:   perMinute,
		limiters: make(map[snowflake.ID]*rate.Limiter),
	}
}

// allow reports whether scope still has notification budget. A zero rate
// means unlimited.
func (n *discordNotifier) allow(scope snowflake.ID) bool {
	if n.perMin <= 0 {
		return true
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	l, ok := n.limiters[scope]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n.perMin)), n.perMin)
		n.limiters[scope] = l
	}
	return l.Allow()
}

func (n *discordNotifier) Notify(ctx context.Context, target snowflake.ID, notice guard.Notice) error {
	if !n.allow(notice.Scope) {
		sys.LogGuard(sys.MsgGuardNotifyThrottled, target)
		return errNotifyThrottled
	}
	return n.send(ctx, target, discord.MessageCreate{
		Embeds:          []discord.Embed{noticeEmbed(notice)},
		AllowedMentions: &discord.AllowedMentions{},
	})
}

func noticeEmbed(n guard.Notice) discord.Embed {
	ts := n.Until.Add(-n.Duration)
	embed := discord.Embed{
		Title:       "Member timed out",
		Description: fmt.Sprintf("<@%s> was timed out for **%s**.", n.Subject, sys.FormatDuration(n.Duration)),
		Color:       colorTimedOut,
		Fields: []discord.EmbedField{
			{Name: "Violation", Value: string(n.Kind), Inline: sys.BoolPtr(true)},
			{Name: "Count", Value: fmt.Sprintf("%d", n.Count), Inline: sys.BoolPtr(true)},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", n.Zone), Inline: sys.BoolPtr(true)},
			{Name: "Until", Value: fmt.Sprintf("<t:%d:f>", n.Until.Unix()), Inline: sys.BoolPtr(true)},
		},
		Timestamp: &ts,
	}
	if n.Failed() {
		embed.Title = "Timeout failed"
		embed.Description = fmt.Sprintf("<@%s> should have been timed out for **%s**, but Discord refused.", n.Subject, sys.FormatDuration(n.Duration))
		embed.Color = colorTimeoutError
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  "Error",
			Value: sys.Truncate(n.Err.Error(), 1024),
		})
	}
	return embed
}
