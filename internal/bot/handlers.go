package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/halcyonlabs/concierge/internal/audit"
)

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", s.State.User.Username),
		zap.String("user_id", s.State.User.ID))
	b.metrics.GatewayEvents.WithLabelValues("ready").Inc()

	if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", &discordgo.ApplicationCommand{
		Name:        "source-code",
		Description: "Where to find this bot's source code",
	}); err != nil {
		b.logger.Warn("register source-code command failed", zap.Error(err))
	}
}

// onGuildMemberAdd sends new members a welcome DM. Members with closed DMs
// are silently skipped.
func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	b.metrics.GatewayEvents.WithLabelValues("member_join").Inc()
	if m.User == nil || m.User.Bot {
		return
	}

	guildName := "the server"
	if g, err := s.State.Guild(m.GuildID); err == nil && g.Name != "" {
		guildName = g.Name
	}

	dm, err := s.UserChannelCreate(m.User.ID)
	if err != nil {
		b.logger.Debug("welcome dm channel failed", zap.String("user_id", m.User.ID), zap.Error(err))
		return
	}
	_, _ = s.ChannelMessageSend(dm.ID, fmt.Sprintf(
		"Welcome to %s, <@%s>!\n\n"+
			"If you need help, create a ticket in the server using `%sticket create`.\n"+
			"Enjoy your stay!",
		guildName, m.User.ID, b.cfg.CommandPrefix))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.CommandPrefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, b.cfg.CommandPrefix))
	if len(fields) == 0 {
		return
	}
	command, args := fields[0], fields[1:]

	switch command {
	case "ticket":
		b.runCommand("ticket", m, func() error { return b.cmdTicket(m, args) })
	case "help":
		b.runCommand("help", m, func() error { return b.cmdHelp(m) })
	case "ping":
		b.runCommand("ping", m, func() error { return b.cmdPing(m) })
	case "uptime":
		b.runCommand("uptime", m, func() error { return b.cmdUptime(m) })
	case "userinfo":
		b.runCommand("userinfo", m, func() error { return b.cmdUserInfo(m, args) })
	case "serverinfo":
		b.runCommand("serverinfo", m, func() error { return b.cmdServerInfo(m) })
	case "kick":
		b.runCommand("kick", m, func() error { return b.cmdKick(m, args) })
	case "ban":
		b.runCommand("ban", m, func() error { return b.cmdBan(m, args) })
	case "purge":
		b.runCommand("purge", m, func() error { return b.cmdPurge(m, args) })
	default:
		// Unrecognized commands are silently ignored.
	}
}

// onMessageDelete logs deleted messages to the audit channel. Content and
// author come from the state cache and may be unavailable for old messages.
func (b *Bot) onMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	b.metrics.GatewayEvents.WithLabelValues("message_delete").Inc()
	if m.GuildID == "" {
		return
	}

	e := audit.Event{
		Kind:      audit.KindMessageDeleted,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		ActorTag:  "unknown",
		Detail:    "(content unavailable)",
	}
	if cached := m.BeforeDelete; cached != nil {
		if cached.Author != nil {
			e.ActorID = cached.Author.ID
			e.ActorTag = cached.Author.String()
		}
		if cached.Author != nil && cached.Author.Bot {
			return
		}
		detail := truncateContent(cached.Content, maxDeletedContentLen)
		for _, att := range cached.Attachments {
			detail += "\n" + att.URL
		}
		e.Detail = detail
	}

	b.Notify(context.Background(), e)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.ApplicationCommandData().Name != "source-code" {
		return
	}

	b.metrics.Commands.WithLabelValues("source-code", "ok").Inc()
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: b.cfg.SourceCodeURL},
	}); err != nil {
		b.logger.Warn("source-code respond failed", zap.Error(err))
	}
}

// runCommand executes one command handler and renders its error, if any,
// as a short user-facing reply.
func (b *Bot) runCommand(name string, m *discordgo.MessageCreate, fn func() error) {
	err := fn()
	if err == nil {
		b.metrics.Commands.WithLabelValues(name, "ok").Inc()
		return
	}

	reply, known := userMessageFor(err)
	if known {
		b.metrics.Commands.WithLabelValues(name, "rejected").Inc()
	} else {
		b.metrics.Commands.WithLabelValues(name, "error").Inc()
		b.logger.Error("command failed",
			zap.String("command", name),
			zap.String("user_id", m.Author.ID),
			zap.String("channel_id", m.ChannelID),
			zap.Error(err))
	}
	b.reply(m.ChannelID, reply)
}

func (b *Bot) reply(channelID, content string) {
	if _, err := b.out.ChannelMessageSend(channelID, content); err != nil {
		b.logger.Debug("reply failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}
