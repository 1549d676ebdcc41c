package guard

import (
	"regexp"
	"strings"
	"time"
)

const (
	// BurstThreshold is how many messages inside BurstWindow count as spam.
	BurstThreshold = 3
	BurstWindow    = time.Second
)

var (
	botTokenPattern = regexp.MustCompile(`[A-Za-z0-9_-]{24,28}\.[A-Za-z0-9_-]{6,7}\.[A-Za-z0-9_-]{27,38}`)
	inviteMarkers   = []string{"discord.gg/", "discord.com/invite/", "discordapp.com/invite/"}
)

// Match classifies an event. recent holds the subject's arrival times in the
// event's zone, including the event itself. The returned kinds keep the order
// spam, token_leak, invite_link.
func Match(ev Event, recent []time.Time) []Kind {
	var kinds []Kind
	if IsBurst(ev.At, recent) {
		kinds = append(kinds, KindSpam)
	}
	if LeaksToken(ev.Content) {
		kinds = append(kinds, KindTokenLeak)
	}
	if HasInvite(ev.Content) {
		kinds = append(kinds, KindInviteLink)
	}
	return kinds
}

// IsBurst reports whether at least BurstThreshold arrivals fall in the window
// (now-BurstWindow, now].
func IsBurst(now time.Time, recent []time.Time) bool {
	cutoff := now.Add(-BurstWindow)
	n := 0
	for _, t := range recent {
		if t.After(cutoff) && !t.After(now) {
			n++
		}
	}
	return n >= BurstThreshold
}

// LeaksToken matches the three-part bot token shape, or an API URL pasted
// together with an Authorization "Bot" header.
func LeaksToken(content string) bool {
	if botTokenPattern.MatchString(content) {
		return true
	}
	return strings.Contains(content, "discord.com/api") && strings.Contains(content, "Bot")
}

func HasInvite(content string) bool {
	lower := strings.ToLower(content)
	for _, m := range inviteMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
