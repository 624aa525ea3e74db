package audit

import (
	"fmt"
	"time"
)

// Kind labels an auditable event.
type Kind string

const (
	KindTicketCreated  Kind = "ticket_created"
	KindTicketClosed   Kind = "ticket_closed"
	KindMessageDeleted Kind = "message_deleted"
	KindMemberKicked   Kind = "member_kicked"
	KindMemberBanned   Kind = "member_banned"
	KindMessagesPurged Kind = "messages_purged"
)

// Event is one audit record. ActorTag is the human-readable actor name,
// ActorID the stable identifier; Detail carries kind-specific text.
type Event struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	GuildID     string    `json:"guild_id"`
	ActorID     string    `json:"actor_id"`
	ActorTag    string    `json:"actor_tag"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	Detail      string    `json:"detail"`
	At          time.Time `json:"at"`
}

// Line renders the event as a single log-channel message.
func (e Event) Line() string {
	switch e.Kind {
	case KindTicketCreated:
		return fmt.Sprintf("Ticket created: <#%s> by %s (%s)", e.ChannelID, e.ActorTag, e.ActorID)
	case KindTicketClosed:
		return fmt.Sprintf("Ticket closed: %s by %s (%s)", e.ChannelName, e.ActorTag, e.ActorID)
	case KindMessageDeleted:
		return fmt.Sprintf("Message deleted in <#%s> by %s (%s):\n%s", e.ChannelID, e.ActorTag, e.ActorID, e.Detail)
	case KindMemberKicked:
		return fmt.Sprintf("Member kicked by %s (%s): %s", e.ActorTag, e.ActorID, e.Detail)
	case KindMemberBanned:
		return fmt.Sprintf("Member banned by %s (%s): %s", e.ActorTag, e.ActorID, e.Detail)
	case KindMessagesPurged:
		return fmt.Sprintf("Messages purged in <#%s> by %s (%s): %s", e.ChannelID, e.ActorTag, e.ActorID, e.Detail)
	default:
		return fmt.Sprintf("%s by %s (%s): %s", e.Kind, e.ActorTag, e.ActorID, e.Detail)
	}
}
