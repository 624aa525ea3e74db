package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeSender struct {
	channels []*discordgo.Channel
	listErr  error
	sendErr  error
	sent     []string
	sentTo   []string
}

func (f *fakeSender) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, f.listErr
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentTo = append(f.sentTo, channelID)
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: "m1", ChannelID: channelID, Content: content}, nil
}

func logChannel() *discordgo.Channel {
	return &discordgo.Channel{ID: "log1", Name: "ticket-logs", Type: discordgo.ChannelTypeGuildText}
}

func TestNotifyDeliversToLogChannel(t *testing.T) {
	sender := &fakeSender{channels: []*discordgo.Channel{logChannel()}}
	n := NewNotifier(sender, "ticket-logs", nil, nil)

	ok := n.Notify(context.Background(), Event{
		Kind: KindTicketCreated, GuildID: "g1",
		ActorID: "u1", ActorTag: "alice#0001", ChannelID: "c1",
	})
	if !ok {
		t.Fatalf("Notify() = false, want true")
	}
	if len(sender.sent) != 1 || sender.sentTo[0] != "log1" {
		t.Fatalf("expected one message to log1, got %v", sender.sentTo)
	}
}

func TestNotifyNoLogChannelIsSilent(t *testing.T) {
	sender := &fakeSender{channels: []*discordgo.Channel{
		{ID: "c1", Name: "general", Type: discordgo.ChannelTypeGuildText},
	}}
	n := NewNotifier(sender, "ticket-logs", nil, nil)

	if n.Notify(context.Background(), Event{Kind: KindTicketClosed, GuildID: "g1"}) {
		t.Fatalf("Notify() = true, want false when log channel is absent")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no message should be sent, got %d", len(sender.sent))
	}
}

func TestNotifySwallowsSendFailure(t *testing.T) {
	sender := &fakeSender{
		channels: []*discordgo.Channel{logChannel()},
		sendErr:  errors.New("missing access"),
	}
	n := NewNotifier(sender, "ticket-logs", nil, nil)

	if n.Notify(context.Background(), Event{Kind: KindTicketClosed, GuildID: "g1"}) {
		t.Fatalf("Notify() = true, want false on send failure")
	}
}

func TestNotifySwallowsChannelListFailure(t *testing.T) {
	sender := &fakeSender{listErr: errors.New("rate limited")}
	n := NewNotifier(sender, "ticket-logs", nil, nil)

	if n.Notify(context.Background(), Event{Kind: KindTicketClosed, GuildID: "g1"}) {
		t.Fatalf("Notify() = true, want false on lookup failure")
	}
}

func TestNotifyMatchesLogChannelCaseInsensitively(t *testing.T) {
	sender := &fakeSender{channels: []*discordgo.Channel{
		{ID: "log1", Name: "Ticket-Logs", Type: discordgo.ChannelTypeGuildText},
	}}
	n := NewNotifier(sender, "ticket-logs", nil, nil)

	if !n.Notify(context.Background(), Event{Kind: KindTicketCreated, GuildID: "g1"}) {
		t.Fatalf("Notify() = false, want case-insensitive channel match")
	}
}

func TestNotifyRecordsToArchiveEvenWithoutLogChannel(t *testing.T) {
	archive := NewInMemoryArchive()
	sender := &fakeSender{}
	n := NewNotifier(sender, "ticket-logs", archive, nil)

	n.Notify(context.Background(), Event{Kind: KindMemberKicked, GuildID: "g1", Detail: "bob"})

	events, err := archive.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("archive has %d events, want 1", len(events))
	}
	if events[0].ID == "" {
		t.Fatalf("archived event should have an assigned ID")
	}
	if events[0].At.IsZero() {
		t.Fatalf("archived event should have an assigned timestamp")
	}
}

func TestNotifyPublishesToStream(t *testing.T) {
	stream := NewBroadcaster()
	sub, cancel := stream.Subscribe()
	defer cancel()

	sender := &fakeSender{}
	n := NewNotifier(sender, "ticket-logs", nil, stream)
	n.Notify(context.Background(), Event{Kind: KindMessagesPurged, GuildID: "g1"})

	select {
	case e := <-sub:
		if e.Kind != KindMessagesPurged {
			t.Fatalf("streamed kind = %q, want %q", e.Kind, KindMessagesPurged)
		}
	default:
		t.Fatalf("expected a streamed event")
	}
}
