package home

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/warden/guard"
	"github.com/leeineian/warden/sys"
)

var channelRefPattern = regexp.MustCompile(`^(?:<#)?(\d{17,20})>?$`)

// parseChannelList reads channel mentions or raw IDs separated by commas or
// whitespace. Duplicates are dropped.
func parseChannelList(s string) ([]snowflake.ID, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})

	var ids []snowflake.ID
	seen := make(map[snowflake.ID]struct{})
	for _, f := range fields {
		m := channelRefPattern.FindStringSubmatch(f)
		if m == nil {
			return nil, fmt.Errorf("not a channel: %q", f)
		}
		id, err := snowflake.Parse(m[1])
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func handleAntitrollSet(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := *event.GuildID()
	enabled := data.Bool("enabled")

	var target *snowflake.ID
	if ch, ok := data.OptChannel("notification_channel"); ok {
		id := ch.ID
		target = &id
	}

	var exempt []snowflake.ID
	if raw, ok := data.OptString("exempt_channels"); ok {
		var err error
		if exempt, err = parseChannelList(raw); err != nil {
			respond(event, sys.ErrGuardBadExemptList)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settings := guard.Settings{Store: activeGuard.Load().Settings}
	if err := settings.SetConfig(ctx, guildID, enabled, target, exempt); err != nil {
		sys.LogError(sys.MsgGenericError, err)
		respond(event, sys.ErrGuardStorage)
		return
	}
	sys.LogGuard(sys.MsgGuardConfigUpdated, guildID, enabled, len(exempt))

	cfg := guard.ScopeConfig{Scope: guildID, Enabled: enabled, NotificationTarget: target, ExemptZones: exempt}
	respond(event, "> "+sys.MsgGuardSettingsStored+"\n\n"+formatScopeConfig(&cfg))
}
