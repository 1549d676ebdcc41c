package home

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/omit"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/warden/guard"
)

// discordModerator applies guard restrictions as native member timeouts.
type discordModerator struct {
	client *bot.Client
}

var _ guard.Moderator = (*discordModerator)(nil)

func (m *discordModerator) Restrict(ctx context.Context, scope, subject snowflake.ID, until time.Time, reason string) error {
	_, err := m.client.Rest.UpdateMember(scope, subject, discord.MemberUpdate{
		CommunicationDisabledUntil: omit.New(&until),
	}, rest.WithCtx(ctx), rest.WithReason(reason))
	return err
}
