// Package guard tracks rule violations per member and answers them with
// progressively longer timeouts.
//
// The package knows nothing about the Discord gateway. Inbound messages are
// handed over as Event values and punitive actions leave through the
// Moderator and Notifier interfaces, which the bot wires to disgo.
package guard

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Kind classifies a violation. New kinds can be added without touching the
// ledger, which stores them as plain text.
type Kind string

const (
	KindSpam       Kind = "spam"
	KindTokenLeak  Kind = "token_leak"
	KindInviteLink Kind = "invite_link"
)

// AllKinds lists the built-in kinds in evaluation order.
var AllKinds = []Kind{KindSpam, KindTokenLeak, KindInviteLink}

func (k Kind) String() string { return string(k) }

// Event is a single inbound message as seen by the guard.
type Event struct {
	Subject   snowflake.ID // author
	Scope     snowflake.ID // guild
	Zone      snowflake.ID // channel
	MessageID snowflake.ID
	Content   string
	At        time.Time
}
