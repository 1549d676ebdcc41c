package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/warden/guard"
	"github.com/leeineian/warden/sys"
)

func handleAntitrollStatus(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := *event.GuildID()
	g := activeGuard.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, hasUser := data.OptUser("user")
	if !hasUser {
		cfg, err := g.Settings.Get(ctx, guildID)
		if err != nil {
			sys.LogError(sys.MsgGenericError, err)
			respond(event, sys.ErrGuardStorage)
			return
		}
		if cfg == nil {
			respond(event, sys.MsgGuardNotConfigured)
			return
		}
		respond(event, formatScopeConfig(cfg))
		return
	}

	records, err := g.Ledger.Records(ctx, user.ID, guildID)
	if err != nil {
		sys.LogError(sys.MsgGenericError, err)
		respond(event, sys.ErrGuardStorage)
		return
	}
	respond(event, formatMemberRecords(user.ID, records, g.Policy))
}

func formatScopeConfig(cfg *guard.ScopeConfig) string {
	var sb strings.Builder
	sb.WriteString("## Violation tracking\n")

	state := "Disabled"
	if cfg.Enabled {
		state = "Enabled"
	}
	fmt.Fprintf(&sb, "**Status:** %s\n", state)

	if cfg.NotificationTarget != nil {
		fmt.Fprintf(&sb, "**Notifications:** <#%s>\n", *cfg.NotificationTarget)
	} else {
		sb.WriteString("**Notifications:** none\n")
	}

	if len(cfg.ExemptZones) == 0 {
		sb.WriteString("**Exempt channels:** none")
	} else {
		refs := make([]string, len(cfg.ExemptZones))
		for i, id := range cfg.ExemptZones {
			refs[i] = fmt.Sprintf("<#%s>", id)
		}
		fmt.Fprintf(&sb, "**Exempt channels:** %s", strings.Join(refs, ", "))
	}
	return sb.String()
}

func formatMemberRecords(subject snowflake.ID, records []guard.Record, policy guard.Policy) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Violations of <@%s>\n", subject)
	if len(records) == 0 {
		sb.WriteString(sys.MsgGuardNoViolations)
		return sb.String()
	}
	for _, r := range records {
		fmt.Fprintf(&sb, "- **%s**: %d (last <t:%d:R>, next timeout %s)\n",
			r.Kind, r.Count, r.LastViolationAt.Unix(), sys.FormatDuration(policy.Duration(r.Count+1)))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
