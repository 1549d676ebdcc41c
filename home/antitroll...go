package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/leeineian/warden/sys"
)

func init() {
	adminPerm := discord.PermissionAdministrator

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "antitroll",
		Description:              "Violation tracking and automatic timeouts (Admin Only)",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "set",
				Description: "Configure violation tracking for this server",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionBool{
						Name:        "enabled",
						Description: "Whether messages are checked at all",
						Required:    true,
					},
					discord.ApplicationCommandOptionChannel{
						Name:        "notification_channel",
						Description: "Where moderators are told about timeouts",
						Required:    false,
						ChannelTypes: []discord.ChannelType{
							discord.ChannelTypeGuildText,
						},
					},
					discord.ApplicationCommandOptionString{
						Name:        "exempt_channels",
						Description: "Channels that are never checked (mentions or IDs, comma separated)",
						Required:    false,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "reset",
				Description: "Clear every violation of a member",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: "Member to forgive",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "purge",
				Description: "Clear the violations of every member in this server",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionBool{
						Name:        "confirm",
						Description: "Set to true to really drop all counters",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "status",
				Description: "Show the configuration, or a member's violations",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: "Member to inspect",
						Required:    false,
					},
				},
			},
		},
	}, handleAntitroll)
}

func handleAntitroll(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	subCmd := data.SubCommandName
	if subCmd == nil {
		return
	}

	if event.GuildID() == nil {
		respond(event, sys.ErrGuardGuildOnly)
		return
	}
	if activeGuard.Load() == nil {
		respond(event, sys.ErrGuardNotReady)
		return
	}

	switch *subCmd {
	case "set":
		handleAntitrollSet(event, data)
	case "reset":
		handleAntitrollReset(event, data)
	case "purge":
		handleAntitrollPurge(event, data)
	case "status":
		handleAntitrollStatus(event, data)
	}
}
