package bot

import (
	"fmt"
	"strings"

	"cerealbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// SyncResult reports what a command sync did
type SyncResult struct {
	Scope   string
	Synced  int
	Cleared []string
}

// CommandSyncer pushes the registry's definitions to the platform
type CommandSyncer struct {
	session common.Session
	appID   string
	defs    func() []*discordgo.ApplicationCommand
}

func NewCommandSyncer(s common.Session, appID string, defs func() []*discordgo.ApplicationCommand) *CommandSyncer {
	return &CommandSyncer{session: s, appID: appID, defs: defs}
}

// SyncGuild registers every command on one guild (visible instantly) and
// clears the global registrations so nothing shows up twice.
func (c *CommandSyncer) SyncGuild(guildID string) (*SyncResult, error) {
	synced, err := c.session.ApplicationCommandBulkOverwrite(c.appID, guildID, c.defs())
	if err != nil {
		return nil, fmt.Errorf("failed to sync commands to guild %s: %w", guildID, err)
	}

	if _, err := c.session.ApplicationCommandBulkOverwrite(c.appID, "", []*discordgo.ApplicationCommand{}); err != nil {
		return nil, fmt.Errorf("failed to clear global commands: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"count":   len(synced),
	}).Info("Synced commands to guild (instant); global commands cleared")

	return &SyncResult{Scope: "guild", Synced: len(synced), Cleared: []string{"global"}}, nil
}

// SyncGlobal registers every command globally (propagation can take up to an
// hour) and clears stale per-guild registrations in the given guilds.
// Failing to clear a guild is logged, not fatal.
func (c *CommandSyncer) SyncGlobal(staleGuildIDs []string) (*SyncResult, error) {
	synced, err := c.session.ApplicationCommandBulkOverwrite(c.appID, "", c.defs())
	if err != nil {
		return nil, fmt.Errorf("failed to sync global commands: %w", err)
	}

	result := &SyncResult{Scope: "global", Synced: len(synced)}
	for _, guildID := range staleGuildIDs {
		existing, err := c.session.ApplicationCommands(c.appID, guildID)
		if err != nil {
			log.WithError(err).WithField("guildID", guildID).Warn("Failed to list guild commands")
			continue
		}
		if len(existing) == 0 {
			continue
		}
		if err := c.ClearGuild(guildID); err != nil {
			log.WithError(err).WithField("guildID", guildID).Warn("Failed to clear stale guild commands")
			continue
		}
		result.Cleared = append(result.Cleared, guildID)
	}

	log.WithFields(log.Fields{
		"count":         len(synced),
		"clearedGuilds": len(result.Cleared),
	}).Info("Synced commands globally; may take up to 1 hour to appear in all servers")

	return result, nil
}

// ClearGuild removes every command registered on a guild
func (c *CommandSyncer) ClearGuild(guildID string) error {
	if _, err := c.session.ApplicationCommandBulkOverwrite(c.appID, guildID, []*discordgo.ApplicationCommand{}); err != nil {
		return fmt.Errorf("failed to clear commands for guild %s: %w", guildID, err)
	}
	return nil
}

// Owner text commands, prefixed with the configured prefix
const (
	ownerCmdSync      = "sync"
	ownerCmdSyncGuild = "syncguild"
	ownerCmdUnsync    = "unsync"
)

// handleOwnerCommand runs !sync, !syncguild and !unsync. It reports whether
// the message was one of them, so other text listeners can skip it.
func (c *CommandSyncer) handleOwnerCommand(s common.Session, m *discordgo.Message, prefix string, isOwner func(string) bool, guildIDs func() []string) bool {
	name, ok := strings.CutPrefix(strings.TrimSpace(m.Content), prefix)
	if !ok {
		return false
	}
	name = strings.ToLower(name)
	if name != ownerCmdSync && name != ownerCmdSyncGuild && name != ownerCmdUnsync {
		return false
	}
	if !isOwner(m.Author.ID) {
		// Mirror the platform's behaviour for unknown commands: say nothing
		log.WithFields(log.Fields{"userID": m.Author.ID, "command": name}).Info("Non-owner tried an owner command")
		return true
	}

	var reply string
	switch name {
	case ownerCmdSync:
		res, err := c.SyncGlobal(guildIDs())
		if err != nil {
			reply = fmt.Sprintf("❌ Error: %v", err)
			break
		}
		reply = fmt.Sprintf("✅ Synced %d commands globally. May take up to 1 hour to appear everywhere.", res.Synced)

	case ownerCmdSyncGuild:
		if m.GuildID == "" {
			reply = common.MsgGuildOnly
			break
		}
		res, err := c.SyncGuild(m.GuildID)
		if err != nil {
			reply = fmt.Sprintf("❌ Error: %v", err)
			break
		}
		reply = fmt.Sprintf("✅ Synced %d commands to this server (instant)", res.Synced)

	case ownerCmdUnsync:
		if m.GuildID == "" {
			reply = common.MsgGuildOnly
			break
		}
		if err := c.ClearGuild(m.GuildID); err != nil {
			reply = fmt.Sprintf("❌ Error: %v", err)
			break
		}
		reply = "✅ Removed all commands from this server"
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		log.WithError(err).Warn("Failed to reply to owner command")
	}
	return true
}
