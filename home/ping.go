package home

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/warden/sys"
)

const pingRefreshID = "ping_refresh"

func init() {
	adminPerm := discord.PermissionAdministrator

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "ping",
		Description:              "Check bot latency (Admin Only)",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
	}, handlePing)

	sys.RegisterComponentHandler(pingRefreshID, handlePingRefresh)
}

func pingContent(id snowflake.ID, gateway time.Duration) string {
	rtt := time.Since(id.Time()).Milliseconds()
	return fmt.Sprintf("# Pong!\n\n> **Interaction:** %dms\n> **Gateway:** %dms", rtt, gateway.Milliseconds())
}

func pingMessage(content string) *discord.MessageUpdateBuilder {
	return discord.NewMessageUpdateBuilder().
		SetIsComponentsV2(true).
		AddComponents(
			discord.NewContainer(
				discord.NewTextDisplay(content),
				discord.NewActionRow(
					discord.NewSuccessButton("Refresh", pingRefreshID),
				),
			),
		)
}

func handlePing(event *events.ApplicationCommandInteractionCreate) {
	content := pingContent(event.ID(), event.Client().Gateway.Latency())

	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetIsComponentsV2(true).
		SetEphemeral(true).
		AddComponents(
			discord.NewContainer(
				discord.NewTextDisplay(content),
				discord.NewActionRow(
					discord.NewSuccessButton("Refresh", pingRefreshID),
				),
			),
		).
		Build())
	if err != nil {
		sys.LogDebug(sys.MsgRespondFail, err)
	}
}

func handlePingRefresh(event *events.ComponentInteractionCreate) {
	content := pingContent(event.ID(), event.Client().Gateway.Latency())
	if err := event.UpdateMessage(pingMessage(content).Build()); err != nil {
		sys.LogDebug(sys.MsgRespondFail, err)
	}
}
