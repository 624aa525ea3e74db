package ticket

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Ticket is a view over a live ticket channel. There is no separate store:
// the channel's existence is the ticket's existence.
type Ticket struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
	OwnerID   string `json:"owner_id"`
}

// Directory derives the open-ticket set from live channel state on every
// call. It holds no state of its own and performs no writes.
type Directory struct {
	gw     Gateway
	prefix string
}

func NewDirectory(gw Gateway, prefix string) *Directory {
	return &Directory{gw: gw, prefix: prefix}
}

// FindOpen returns the owner's open ticket channel, or nil when there is
// none. Iteration order is the gateway's channel ordering: deterministic per
// snapshot, otherwise implementation-defined.
func (d *Directory) FindOpen(guildID, ownerID string) (*discordgo.Channel, error) {
	channels, err := d.gw.GuildChannels(guildID)
	if err != nil {
		return nil, platformErr("list channels", err)
	}
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if !d.IsTicketChannel(ch) {
			continue
		}
		if owner, ok := ParseOwner(ch.Topic); ok && owner == ownerID {
			return ch, nil
		}
	}
	return nil, nil
}

// IsTicketChannel is a name-prefix test only; topic content is irrelevant.
func (d *Directory) IsTicketChannel(ch *discordgo.Channel) bool {
	return ch != nil && strings.HasPrefix(ch.Name, d.prefix)
}

// OwnerOf parses the ownership token out of the channel topic. A channel
// with a missing or malformed token is unowned.
func (d *Directory) OwnerOf(ch *discordgo.Channel) (string, bool) {
	if ch == nil {
		return "", false
	}
	return ParseOwner(ch.Topic)
}

// Open lists every open ticket in the guild.
func (d *Directory) Open(guildID string) ([]Ticket, error) {
	channels, err := d.gw.GuildChannels(guildID)
	if err != nil {
		return nil, platformErr("list channels", err)
	}
	var out []Ticket
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText || !d.IsTicketChannel(ch) {
			continue
		}
		owner, _ := ParseOwner(ch.Topic)
		out = append(out, Ticket{ChannelID: ch.ID, Name: ch.Name, OwnerID: owner})
	}
	return out, nil
}
