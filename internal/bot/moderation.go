package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/halcyonlabs/concierge/internal/audit"
)

const (
	purgeMaxCount  = 1000
	purgeBatchSize = 100
)

// parsePurgeCount validates the purge argument: a single integer in
// [1, purgeMaxCount].
func parsePurgeCount(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > purgeMaxCount {
		return 0, false
	}
	return n, true
}

func (b *Bot) cmdKick(m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		b.reply(m.ChannelID, "This command can only be used within a server.")
		return nil
	}
	if !b.hasPermission(m.Author.ID, m.ChannelID, discordgo.PermissionKickMembers) {
		b.reply(m.ChannelID, "You don't have permission to kick members.")
		return nil
	}
	if len(args) == 0 {
		b.reply(m.ChannelID, "Mention a member to kick, like `"+b.cfg.CommandPrefix+"kick @user spamming`.")
		return nil
	}
	targetID, ok := parseUserMention(args[0])
	if !ok {
		b.reply(m.ChannelID, "Mention a member to kick, like `"+b.cfg.CommandPrefix+"kick @user spamming`.")
		return nil
	}

	reason := strings.Join(args[1:], " ")
	if reason == "" {
		reason = "No reason provided"
	}

	if err := b.session.GuildMemberDeleteWithReason(m.GuildID, targetID, reason); err != nil {
		return fmt.Errorf("kick member %s: %w", targetID, err)
	}

	b.reply(m.ChannelID, fmt.Sprintf("Kicked <@%s>. Reason: %s", targetID, reason))
	b.Notify(context.Background(), audit.Event{
		Kind:      audit.KindMemberKicked,
		GuildID:   m.GuildID,
		ActorID:   m.Author.ID,
		ActorTag:  m.Author.String(),
		ChannelID: m.ChannelID,
		Detail:    fmt.Sprintf("<@%s>: %s", targetID, reason),
	})
	return nil
}

func (b *Bot) cmdBan(m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		b.reply(m.ChannelID, "This command can only be used within a server.")
		return nil
	}
	if !b.hasPermission(m.Author.ID, m.ChannelID, discordgo.PermissionBanMembers) {
		b.reply(m.ChannelID, "You don't have permission to ban members.")
		return nil
	}
	if len(args) == 0 {
		b.reply(m.ChannelID, "Mention a member to ban, like `"+b.cfg.CommandPrefix+"ban @user raiding`.")
		return nil
	}
	targetID, ok := parseUserMention(args[0])
	if !ok {
		b.reply(m.ChannelID, "Mention a member to ban, like `"+b.cfg.CommandPrefix+"ban @user raiding`.")
		return nil
	}

	reason := strings.Join(args[1:], " ")
	if reason == "" {
		reason = "No reason provided"
	}

	if err := b.session.GuildBanCreateWithReason(m.GuildID, targetID, reason, 0); err != nil {
		return fmt.Errorf("ban member %s: %w", targetID, err)
	}

	b.reply(m.ChannelID, fmt.Sprintf("Banned <@%s>. Reason: %s", targetID, reason))
	b.Notify(context.Background(), audit.Event{
		Kind:      audit.KindMemberBanned,
		GuildID:   m.GuildID,
		ActorID:   m.Author.ID,
		ActorTag:  m.Author.String(),
		ChannelID: m.ChannelID,
		Detail:    fmt.Sprintf("<@%s>: %s", targetID, reason),
	})
	return nil
}

// cmdPurge bulk-deletes up to purgeMaxCount recent messages, plus the
// command message itself. Messages older than two weeks cannot be
// bulk-deleted by the platform and will make the call fail.
func (b *Bot) cmdPurge(m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		b.reply(m.ChannelID, "This command can only be used within a server.")
		return nil
	}
	if !b.hasPermission(m.Author.ID, m.ChannelID, discordgo.PermissionManageMessages) {
		b.reply(m.ChannelID, "You don't have permission to purge messages.")
		return nil
	}

	count, ok := parsePurgeCount(args)
	if !ok {
		b.reply(m.ChannelID, fmt.Sprintf("Give a message count between 1 and %d, like `%spurge 25`.",
			purgeMaxCount, b.cfg.CommandPrefix))
		return nil
	}

	ids := []string{m.ID}
	before := m.ID
	for len(ids) < count+1 {
		batch := count + 1 - len(ids)
		if batch > purgeBatchSize {
			batch = purgeBatchSize
		}
		msgs, err := b.session.ChannelMessages(m.ChannelID, batch, before, "", "")
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		if len(msgs) == 0 {
			break
		}
		for _, msg := range msgs {
			ids = append(ids, msg.ID)
		}
		before = msgs[len(msgs)-1].ID
	}

	for start := 0; start < len(ids); start += purgeBatchSize {
		end := start + purgeBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		if len(chunk) == 1 {
			if err := b.session.ChannelMessageDelete(m.ChannelID, chunk[0]); err != nil {
				return fmt.Errorf("delete message: %w", err)
			}
			continue
		}
		if err := b.session.ChannelMessagesBulkDelete(m.ChannelID, chunk); err != nil {
			return fmt.Errorf("bulk delete messages: %w", err)
		}
	}

	purged := len(ids) - 1
	b.reply(m.ChannelID, fmt.Sprintf("Purged %d messages.", purged))
	b.Notify(context.Background(), audit.Event{
		Kind:      audit.KindMessagesPurged,
		GuildID:   m.GuildID,
		ActorID:   m.Author.ID,
		ActorTag:  m.Author.String(),
		ChannelID: m.ChannelID,
		Detail:    fmt.Sprintf("%d messages", purged),
	})
	return nil
}
