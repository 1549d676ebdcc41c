package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsBurst(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(IsBurst(now, nil))
	assert.False(IsBurst(now, []time.Time{now.Add(-500 * time.Millisecond), now}))
	assert.True(IsBurst(now, []time.Time{now.Add(-800 * time.Millisecond), now.Add(-400 * time.Millisecond), now}))

	// exactly one second old falls outside the window
	assert.False(IsBurst(now, []time.Time{now.Add(-time.Second), now.Add(-200 * time.Millisecond), now}))
	// arrivals after now are ignored
	assert.False(IsBurst(now, []time.Time{now.Add(-200 * time.Millisecond), now, now.Add(time.Second)}))
}

func TestLeaksToken(t *testing.T) {
	assert := assert.New(t)

	assert.True(LeaksToken("here MTA1MjM0NTY3ODkwMTIzNDU2Nzg5MA.GaBcDe.abcdefghijklmnopqrstuvwxyz0123 oops"))
	assert.True(LeaksToken("curl https://discord.com/api/v10/users/@me -H 'Authorization: Bot xyz'"))
	assert.False(LeaksToken("the bot is at discord.com/app"))
	assert.False(LeaksToken("Bot commands are fun"))
	assert.False(LeaksToken("a.b.c"))
}

func TestHasInvite(t *testing.T) {
	assert := assert.New(t)

	assert.True(HasInvite("join us discord.gg/abc123"))
	assert.True(HasInvite("https://DISCORD.GG/abc"))
	assert.True(HasInvite("https://discord.com/invite/xyz"))
	assert.True(HasInvite("https://discordapp.com/invite/xyz"))
	assert.False(HasInvite("discord is great"))
	assert.False(HasInvite("https://discord.com/channels/1/2"))
}

func TestMatchOrderAndIndependence(t *testing.T) {
	assert := assert.New(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	recent := []time.Time{now.Add(-300 * time.Millisecond), now.Add(-100 * time.Millisecond), now}

	ev := Event{Content: "discord.gg/raid", At: now}
	assert.Equal([]Kind{KindSpam, KindInviteLink}, Match(ev, recent))
	assert.Equal([]Kind{KindInviteLink}, Match(ev, []time.Time{now}))

	ev.Content = "hello"
	assert.Empty(Match(ev, []time.Time{now}))

	ev.Content = "https://discord.com/api Bot token, also discord.gg/x"
	assert.Equal([]Kind{KindSpam, KindTokenLeak, KindInviteLink}, Match(ev, recent))
}

func TestHistoryObserve(t *testing.T) {
	assert := assert.New(t)
	h := NewHistory(100, BurstWindow)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := Event{Subject: 1, Scope: 2, Zone: 3, At: base}

	assert.Len(h.Observe(ev), 1)
	ev.At = base.Add(400 * time.Millisecond)
	assert.Len(h.Observe(ev), 2)

	// another channel has its own history
	other := ev
	other.Zone = 4
	assert.Len(h.Observe(other), 1)

	ev.At = base.Add(1200 * time.Millisecond)
	assert.Len(h.Observe(ev), 2, "the first arrival left the window")

	h.Clear(2, 3, 1)
	ev.At = base.Add(1300 * time.Millisecond)
	assert.Len(h.Observe(ev), 1)
}
