package audit

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// Sender is the slice of the Discord API the notifier needs.
// *discordgo.Session satisfies it.
type Sender interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier emits audit events to the guild's log channel. It is strictly
// best-effort: a missing log channel or a failed send never propagates to
// the caller; the returned bool only reports whether the log-channel
// message was delivered. Archive and stream fan-out are likewise
// best-effort.
type Notifier struct {
	sender         Sender
	logChannelName string
	archive        Archive
	stream         *Broadcaster
}

func NewNotifier(sender Sender, logChannelName string, archive Archive, stream *Broadcaster) *Notifier {
	return &Notifier{
		sender:         sender,
		logChannelName: logChannelName,
		archive:        archive,
		stream:         stream,
	}
}

// Notify records the event and posts it to the log channel if one exists.
// The channel is looked up by name on every call so renames and deletions
// take effect immediately.
func (n *Notifier) Notify(ctx context.Context, e Event) bool {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	if n.archive != nil {
		_ = n.archive.Record(ctx, e)
	}
	if n.stream != nil {
		n.stream.Publish(e)
	}

	ch := n.findLogChannel(e.GuildID)
	if ch == nil {
		return false
	}
	if _, err := n.sender.ChannelMessageSend(ch.ID, e.Line()); err != nil {
		return false
	}
	return true
}

func (n *Notifier) findLogChannel(guildID string) *discordgo.Channel {
	if guildID == "" {
		return nil
	}
	channels, err := n.sender.GuildChannels(guildID)
	if err != nil {
		return nil
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && strings.EqualFold(ch.Name, n.logChannelName) {
			return ch
		}
	}
	return nil
}
