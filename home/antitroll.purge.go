package home

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/warden/sys"
)

func handleAntitrollPurge(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	if !data.Bool("confirm") {
		respond(event, sys.MsgGuardPurgeNotConfirmed)
		return
	}
	guildID := *event.GuildID()

	// scanning a large Redis keyspace can take a while
	_ = event.DeferCreateMessage(true)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var msg string
	n, err := activeGuard.Load().Ledger.ResetScope(ctx, guildID)
	if err != nil {
		sys.LogError(sys.MsgGenericError, err)
		msg = sys.ErrGuardStorage
	} else {
		sys.LogGuard(sys.MsgGuardScopePurged, n, guildID)
		msg = fmt.Sprintf(sys.MsgGuardPurgeDone, n)
	}

	_, _ = event.Client().Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(), discord.NewMessageUpdateBuilder().
		SetIsComponentsV2(true).
		AddComponents(discord.NewContainer(discord.NewTextDisplay(msg))).
		Build())
}
