package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/leeineian/warden/proc"
	"github.com/leeineian/warden/sys"
)

func init() {
	adminPerm := discord.PermissionAdministrator

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "status",
		Description:              "Show or hide the rotating bot presence (Admin Only)",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionBool{
				Name:        "visible",
				Description: "Whether guard stats rotate in the presence",
				Required:    true,
			},
		},
	}, handleStatus)
}

func handleStatus(event *events.ApplicationCommandInteractionCreate) {
	visible := event.SlashCommandInteractionData().Bool("visible")

	value := "false"
	if visible {
		value = "true"
	}
	if err := sys.SetBotConfig(sys.AppContext, proc.ConfigKeyStatusVisible, value); err != nil {
		sys.LogError(sys.MsgGenericError, err)
		respond(event, sys.ErrGuardStorage)
		return
	}

	if visible {
		respond(event, sys.MsgStatusShown)
	} else {
		respond(event, sys.MsgStatusHidden)
	}
}

// respond sends an ephemeral components v2 reply.
func respond(event *events.ApplicationCommandInteractionCreate, content string) {
	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetIsComponentsV2(true).
		AddComponents(
			discord.NewContainer(
				discord.NewTextDisplay(content),
			),
		).
		SetEphemeral(true).
		Build())
	if err != nil {
		sys.LogDebug(sys.MsgRespondFail, err)
	}
}
