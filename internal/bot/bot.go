package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/halcyonlabs/concierge/internal/audit"
	"github.com/halcyonlabs/concierge/internal/config"
	"github.com/halcyonlabs/concierge/internal/observability"
	"github.com/halcyonlabs/concierge/internal/ticket"
)

// messenger is the slice of the session used for plain text replies.
// *discordgo.Session satisfies it; command tests substitute a recorder.
type messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot owns the Discord session and wires the ticket lifecycle, audit
// notifier and command dispatch together.
type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	session   *discordgo.Session
	out       messenger
	notifier  *audit.Notifier
	directory *ticket.Directory
	manager   *ticket.Manager
	startedAt time.Time
}

func New(cfg config.Config, logger *zap.Logger, metrics *observability.Metrics, archive audit.Archive, stream *audit.Broadcaster) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsDirectMessages

	// Cache recent messages so delete events can report author and content.
	session.State.MaxMessageCount = 1024

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		session:   session,
		out:       session,
		startedAt: time.Now(),
	}
	b.notifier = audit.NewNotifier(session, cfg.LogChannelName, archive, stream)
	b.directory = ticket.NewDirectory(session, cfg.TicketPrefix)
	b.manager = ticket.NewManager(session, b.directory, b, b, ticket.Options{
		Prefix:       cfg.TicketPrefix,
		CategoryName: cfg.TicketCategoryName,
		SupportRole:  cfg.SupportRoleName,
		CloseWindow:  cfg.CloseConfirmWindow,
	})

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageDelete)
	b.session.AddHandler(b.onInteractionCreate)

	return b.session.Open()
}

func (b *Bot) Close() {
	if b.session != nil {
		_ = b.session.Close()
	}
}

// Connected reports whether the gateway websocket has completed its ready
// handshake.
func (b *Bot) Connected() bool {
	return b.session != nil && b.session.DataReady
}

// OpenTickets lists the open tickets in a guild for the admin API.
func (b *Bot) OpenTickets(guildID string) ([]ticket.Ticket, error) {
	tickets, err := b.directory.Open(guildID)
	if err != nil {
		return nil, err
	}
	b.metrics.OpenTickets.Set(float64(len(tickets)))
	return tickets, nil
}

// Notify forwards lifecycle events to the audit notifier and records the
// delivery outcome. Satisfies ticket.Auditor.
func (b *Bot) Notify(ctx context.Context, e audit.Event) bool {
	delivered := b.notifier.Notify(ctx, e)
	if delivered {
		b.metrics.AuditDeliveries.WithLabelValues("delivered").Inc()
	} else {
		b.metrics.AuditDeliveries.WithLabelValues("dropped").Inc()
	}
	return delivered
}

// AwaitMessage blocks until the author posts a matching message in the
// channel or the window elapses. The gateway listener is removed on every
// exit path. Satisfies ticket.Waiter.
func (b *Bot) AwaitMessage(ctx context.Context, channelID, authorID string, window time.Duration, match func(content string) bool) bool {
	matched := make(chan struct{}, 1)
	remove := b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.ChannelID != channelID || m.Author == nil || m.Author.ID != authorID {
			return
		}
		if !match(m.Content) {
			return
		}
		select {
		case matched <- struct{}{}:
		default:
		}
	})
	defer remove()

	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case <-matched:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
