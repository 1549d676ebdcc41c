package home

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/warden/sys"
)

func handleAntitrollReset(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := *event.GuildID()
	user := data.User("user")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := activeGuard.Load().Reset(ctx, user.ID, guildID); err != nil {
		sys.LogError(sys.MsgGenericError, err)
		respond(event, sys.ErrGuardStorage)
		return
	}
	sys.LogGuard(sys.MsgGuardMemberReset, user.ID, guildID)
	respond(event, fmt.Sprintf(sys.MsgGuardResetDone, user.ID))
}
