package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/halcyonlabs/concierge/internal/format"
	"github.com/halcyonlabs/concierge/internal/ticket"
)

// userMessageFor maps command errors to user-facing replies. The second
// return reports whether the error is an expected rejection rather than a
// platform failure.
func userMessageFor(err error) (string, bool) {
	var dup *ticket.DuplicateError
	switch {
	case errors.Is(err, ticket.ErrGuildOnly):
		return "Tickets can only be created within a server.", true
	case errors.As(err, &dup):
		return fmt.Sprintf("You already have an open ticket: <#%s>", dup.ChannelID), true
	case errors.Is(err, ticket.ErrNotTicket):
		return "This command can only be used inside a ticket channel.", true
	case errors.Is(err, ticket.ErrNotAuthorized):
		return "You don't have permission to close this ticket.", true
	default:
		return "Something went wrong while handling that command. Please try again later.", false
	}
}

func (b *Bot) cmdTicket(m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		b.reply(m.ChannelID, b.ticketUsage())
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "create":
		return b.ticketCreate(m)
	case "close":
		return b.ticketClose(m)
	default:
		b.reply(m.ChannelID, b.ticketUsage())
		return nil
	}
}

func (b *Bot) ticketUsage() string {
	return fmt.Sprintf("Usage: `%sticket create` or `%sticket close`", b.cfg.CommandPrefix, b.cfg.CommandPrefix)
}

func (b *Bot) ticketCreate(m *discordgo.MessageCreate) error {
	botID := ""
	if b.session.State.User != nil {
		botID = b.session.State.User.ID
	}

	created, err := b.manager.Create(context.Background(), ticket.CreateRequest{
		GuildID:     m.GuildID,
		RequesterID: m.Author.ID,
		DisplayName: m.Author.Username,
		Tag:         channelTag(m.Author),
		BotID:       botID,
	})
	if err != nil {
		return err
	}

	b.metrics.TicketEvents.WithLabelValues("created").Inc()
	b.reply(m.ChannelID, fmt.Sprintf("Your ticket has been created: <#%s>", created.ID))
	return nil
}

func (b *Bot) ticketClose(m *discordgo.MessageCreate) error {
	ch, err := b.channel(m.ChannelID)
	if err != nil {
		return err
	}

	outcome, err := b.manager.Close(context.Background(), ticket.CloseRequest{
		GuildID:           m.GuildID,
		Channel:           ch,
		InvokerID:         m.Author.ID,
		InvokerTag:        m.Author.String(),
		InvokerRoles:      memberRoles(m.Member),
		CanManageChannels: b.hasPermission(m.Author.ID, m.ChannelID, discordgo.PermissionManageChannels),
	})
	if err != nil {
		return err
	}
	if outcome == ticket.CloseDeleted {
		b.metrics.TicketEvents.WithLabelValues("closed").Inc()
	} else {
		b.metrics.TicketEvents.WithLabelValues("close_canceled").Inc()
	}
	return nil
}

func (b *Bot) cmdHelp(m *discordgo.MessageCreate) error {
	p := b.cfg.CommandPrefix
	lines := []string{
		"**Commands**",
		fmt.Sprintf("`%sticket create` - open a support ticket", p),
		fmt.Sprintf("`%sticket close` - close the current ticket (cancellable for %d seconds)", p, int(b.cfg.CloseConfirmWindow.Seconds())),
		fmt.Sprintf("`%shelp` - show this message", p),
		fmt.Sprintf("`%sping` - gateway latency", p),
		fmt.Sprintf("`%suptime` - how long the bot has been running", p),
		fmt.Sprintf("`%suserinfo [@user]` - details about a member", p),
		fmt.Sprintf("`%sserverinfo` - details about this server", p),
		fmt.Sprintf("`%skick @user [reason]` - kick a member", p),
		fmt.Sprintf("`%sban @user [reason]` - ban a member", p),
		fmt.Sprintf("`%spurge <count>` - bulk delete recent messages", p),
	}
	b.reply(m.ChannelID, strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) cmdPing(m *discordgo.MessageCreate) error {
	b.reply(m.ChannelID, fmt.Sprintf("Pong! %dms", b.session.HeartbeatLatency().Milliseconds()))
	return nil
}

func (b *Bot) cmdUptime(m *discordgo.MessageCreate) error {
	b.reply(m.ChannelID, "Uptime: "+format.Duration(time.Since(b.startedAt)))
	return nil
}

func (b *Bot) cmdUserInfo(m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		b.reply(m.ChannelID, "This command can only be used within a server.")
		return nil
	}

	targetID := m.Author.ID
	if len(args) > 0 {
		id, ok := parseUserMention(args[0])
		if !ok {
			b.reply(m.ChannelID, "Mention a member, like `"+b.cfg.CommandPrefix+"userinfo @user`.")
			return nil
		}
		targetID = id
	}

	member, err := b.session.GuildMember(m.GuildID, targetID)
	if err != nil {
		b.reply(m.ChannelID, "Couldn't find that member in this server.")
		return nil
	}

	created, _ := discordgo.SnowflakeTimestamp(member.User.ID)
	topRole, roleList := b.roleSummary(m.GuildID, member.Roles)

	embed := &discordgo.MessageEmbed{
		Title: member.User.String(),
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: member.User.AvatarURL("256"),
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: member.User.ID, Inline: true},
			{Name: "Top role", Value: topRole, Inline: true},
			{Name: "Roles", Value: roleList, Inline: false},
			{Name: "Joined", Value: member.JoinedAt.UTC().Format("2006-01-02 15:04 UTC"), Inline: true},
			{Name: "Account created", Value: created.UTC().Format("2006-01-02 15:04 UTC"), Inline: true},
		},
	}
	if _, err := b.session.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		return fmt.Errorf("send userinfo embed: %w", err)
	}
	return nil
}

func (b *Bot) cmdServerInfo(m *discordgo.MessageCreate) error {
	if m.GuildID == "" {
		b.reply(m.ChannelID, "This command can only be used within a server.")
		return nil
	}

	g, err := b.session.State.Guild(m.GuildID)
	if err != nil {
		g, err = b.session.Guild(m.GuildID)
		if err != nil {
			return fmt.Errorf("fetch guild: %w", err)
		}
	}

	channels, err := b.session.GuildChannels(m.GuildID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}
	textCount, voiceCount := 0, 0
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText:
			textCount++
		case discordgo.ChannelTypeGuildVoice:
			voiceCount++
		}
	}

	created, _ := discordgo.SnowflakeTimestamp(g.ID)
	embed := &discordgo.MessageEmbed{
		Title: g.Name,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: g.ID, Inline: true},
			{Name: "Owner", Value: "<@" + g.OwnerID + ">", Inline: true},
			{Name: "Members", Value: fmt.Sprintf("%d", g.MemberCount), Inline: true},
			{Name: "Text channels", Value: fmt.Sprintf("%d", textCount), Inline: true},
			{Name: "Voice channels", Value: fmt.Sprintf("%d", voiceCount), Inline: true},
			{Name: "Roles", Value: fmt.Sprintf("%d", len(g.Roles)), Inline: true},
			{Name: "Created", Value: created.UTC().Format("2006-01-02 15:04 UTC"), Inline: true},
		},
	}
	if g.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: g.IconURL("256")}
	}
	if _, err := b.session.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		return fmt.Errorf("send serverinfo embed: %w", err)
	}
	return nil
}

// channel resolves a channel from the state cache, falling back to the API.
func (b *Bot) channel(channelID string) (*discordgo.Channel, error) {
	if ch, err := b.session.State.Channel(channelID); err == nil {
		return ch, nil
	}
	ch, err := b.session.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	return ch, nil
}

func (b *Bot) hasPermission(userID, channelID string, perm int64) bool {
	perms, err := b.session.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false
	}
	return perms&(perm|discordgo.PermissionAdministrator) != 0
}

// roleSummary resolves a member's role IDs to the highest-positioned role
// name and a comma-separated list of all role names. Embed fields cap at
// 1024 characters, so the list is truncated when needed.
func (b *Bot) roleSummary(guildID string, roleIDs []string) (top, list string) {
	roles, err := b.session.GuildRoles(guildID)
	if err != nil {
		return "unknown", "unknown"
	}
	byID := make(map[string]*discordgo.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	top = "@everyone"
	best := -1
	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		r, ok := byID[id]
		if !ok {
			continue
		}
		names = append(names, r.Name)
		if r.Position > best {
			best, top = r.Position, r.Name
		}
	}
	if len(names) == 0 {
		return top, "none"
	}
	return top, truncateContent(strings.Join(names, ", "), 1000)
}

func memberRoles(m *discordgo.Member) []string {
	if m == nil {
		return nil
	}
	return m.Roles
}
