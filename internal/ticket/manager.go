package ticket

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/halcyonlabs/concierge/internal/audit"
)

// cancelKeyword aborts a pending close when sent by the close invoker
// inside the ticket channel during the confirmation window.
const cancelKeyword = "cancel"

const memberPerms = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// Waiter blocks until the author posts a matching message in the channel or
// the window elapses. Implementations must unregister their listener on
// every exit path.
type Waiter interface {
	AwaitMessage(ctx context.Context, channelID, authorID string, window time.Duration, match func(content string) bool) bool
}

// Auditor receives lifecycle events; delivery is best-effort and the
// manager never acts on the result.
type Auditor interface {
	Notify(ctx context.Context, e audit.Event) bool
}

// Options are the fixed names the lifecycle manager works with.
type Options struct {
	Prefix       string
	CategoryName string
	SupportRole  string
	CloseWindow  time.Duration
}

// Manager drives the ticket lifecycle:
//
//	{absent} -> create -> {open} -> close-requested -> {pending-close}
//	    -> cancel -> {open} | timeout -> {deleted}
//
// Tickets have no stored state; every decision is made against live channel
// metadata through the Directory.
type Manager struct {
	gw      Gateway
	dir     *Directory
	auditor Auditor
	waiter  Waiter
	opts    Options

	// Per-owner locks close the race between two near-simultaneous create
	// requests from the same user. The category-creation race between
	// different users is left as-is.
	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

func NewManager(gw Gateway, dir *Directory, auditor Auditor, waiter Waiter, opts Options) *Manager {
	if opts.CloseWindow <= 0 {
		opts.CloseWindow = 5 * time.Second
	}
	return &Manager{
		gw:      gw,
		dir:     dir,
		auditor: auditor,
		waiter:  waiter,
		opts:    opts,
		owners:  make(map[string]*sync.Mutex),
	}
}

// CreateRequest identifies the requester and the guild scope of a create.
type CreateRequest struct {
	GuildID     string
	RequesterID string
	DisplayName string
	Tag         string
	BotID       string
}

// CloseRequest carries the invoker's identity and capabilities for a close.
// CanManageChannels is resolved by the dispatch shell from live channel
// permissions.
type CloseRequest struct {
	GuildID           string
	Channel           *discordgo.Channel
	InvokerID         string
	InvokerTag        string
	InvokerRoles      []string
	CanManageChannels bool
}

// Create opens a new ticket channel for the requester. It fails with
// ErrGuildOnly outside a guild and with *DuplicateError when the requester
// already has an open ticket.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*discordgo.Channel, error) {
	if req.GuildID == "" {
		return nil, ErrGuildOnly
	}

	lock := m.ownerLock(req.RequesterID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := m.dir.FindOpen(req.GuildID, req.RequesterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateError{ChannelID: existing.ID}
	}

	category, err := m.resolveCategory(req.GuildID)
	if err != nil {
		return nil, err
	}
	supportRole, err := m.resolveSupportRole(req.GuildID)
	if err != nil {
		return nil, err
	}

	channels, err := m.gw.GuildChannels(req.GuildID)
	if err != nil {
		return nil, platformErr("list channels", err)
	}
	name := ChannelName(m.opts.Prefix, req.DisplayName, req.Tag, func(candidate string) bool {
		for _, ch := range channels {
			if ch.Name == candidate {
				return true
			}
		}
		return false
	})

	overwrites := []*discordgo.PermissionOverwrite{
		{ID: req.GuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: req.RequesterID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberPerms},
	}
	if req.BotID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: req.BotID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberPerms,
		})
	}
	if supportRole != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: supportRole.ID, Type: discordgo.PermissionOverwriteTypeRole, Allow: memberPerms,
		})
	}

	channel, err := m.gw.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                EncodeTopic(req.RequesterID),
		ParentID:             category.ID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, platformErr("create channel", err)
	}

	// The welcome message is best-effort: a channel whose greeting failed
	// to send is still a valid ticket.
	_, _ = m.gw.ChannelMessageSend(channel.ID, fmt.Sprintf(
		"Hello <@%s>, thank you for opening a ticket. Staff (%s) will be with you soon.\n"+
			"To close this ticket, use `ticket close` (staff or the ticket owner).",
		req.RequesterID, m.opts.SupportRole))

	m.auditor.Notify(ctx, audit.Event{
		Kind:        audit.KindTicketCreated,
		GuildID:     req.GuildID,
		ActorID:     req.RequesterID,
		ActorTag:    req.Tag,
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
	})

	return channel, nil
}

// CloseOutcome reports how a close request ended.
type CloseOutcome int

const (
	CloseCanceled CloseOutcome = iota
	CloseDeleted
)

// Close tears down a ticket channel after a cancellable confirmation
// window. Only the owner, support-role holders, and channel managers may
// close; a literal cancel message from the invoker aborts.
func (m *Manager) Close(ctx context.Context, req CloseRequest) (CloseOutcome, error) {
	if !m.dir.IsTicketChannel(req.Channel) {
		return 0, ErrNotTicket
	}

	authorized, err := m.authorizeClose(req)
	if err != nil {
		return 0, err
	}
	if !authorized {
		return 0, ErrNotAuthorized
	}

	seconds := int(m.opts.CloseWindow / time.Second)
	_, _ = m.gw.ChannelMessageSend(req.Channel.ID, fmt.Sprintf(
		"This ticket will be deleted in %d seconds. To cancel, type `%s`.", seconds, cancelKeyword))

	canceled := m.waiter.AwaitMessage(ctx, req.Channel.ID, req.InvokerID, m.opts.CloseWindow, isCancelMessage)
	if canceled {
		_, _ = m.gw.ChannelMessageSend(req.Channel.ID, "Ticket close canceled.")
		return CloseCanceled, nil
	}

	// Audit before deletion so the event still lands if the log channel
	// shares any dependency with the one being removed.
	owner, _ := m.dir.OwnerOf(req.Channel)
	m.auditor.Notify(ctx, audit.Event{
		Kind:        audit.KindTicketClosed,
		GuildID:     req.GuildID,
		ActorID:     req.InvokerID,
		ActorTag:    req.InvokerTag,
		ChannelID:   req.Channel.ID,
		ChannelName: req.Channel.Name,
		Detail:      fmt.Sprintf("owner_id=%s", owner),
	})

	reason := fmt.Sprintf("Ticket closed by %s", req.InvokerTag)
	if _, err := m.gw.ChannelDelete(req.Channel.ID, discordgo.WithAuditLogReason(reason)); err != nil {
		return 0, platformErr("delete channel", err)
	}
	return CloseDeleted, nil
}

func (m *Manager) authorizeClose(req CloseRequest) (bool, error) {
	if owner, ok := m.dir.OwnerOf(req.Channel); ok && owner == req.InvokerID {
		return true, nil
	}
	if req.CanManageChannels {
		return true, nil
	}

	supportRole, err := m.resolveSupportRole(req.GuildID)
	if err != nil {
		return false, err
	}
	if supportRole != nil {
		for _, roleID := range req.InvokerRoles {
			if roleID == supportRole.ID {
				return true, nil
			}
		}
	}
	return false, nil
}

// resolveCategory finds the ticket category by name, creating it on first
// use. Two different users racing here can still create two categories;
// later creates keep preferring the first one returned by the gateway.
func (m *Manager) resolveCategory(guildID string) (*discordgo.Channel, error) {
	channels, err := m.gw.GuildChannels(guildID)
	if err != nil {
		return nil, platformErr("list channels", err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == m.opts.CategoryName {
			return ch, nil
		}
	}

	category, err := m.gw.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: m.opts.CategoryName,
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		return nil, platformErr("create category", err)
	}
	return category, nil
}

// resolveSupportRole looks the support role up by name on every call so
// role membership changes take effect immediately. Absence is not an error.
func (m *Manager) resolveSupportRole(guildID string) (*discordgo.Role, error) {
	roles, err := m.gw.GuildRoles(guildID)
	if err != nil {
		return nil, platformErr("list roles", err)
	}
	for _, role := range roles {
		if role.Name == m.opts.SupportRole {
			return role, nil
		}
	}
	return nil, nil
}

func (m *Manager) ownerLock(ownerID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.owners[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		m.owners[ownerID] = lock
	}
	return lock
}

func isCancelMessage(content string) bool {
	return strings.ToLower(strings.TrimSpace(content)) == cancelKeyword
}
