package bot

import (
	"context"
	"fmt"
	"time"

	"cerealbot/bot/common"
	"cerealbot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// How long AFK notices stay in the channel
const (
	afkReturnNoticeTTL  = 5 * time.Second
	afkMentionNoticeTTL = 10 * time.Second
)

var userMentionsOnly = &discordgo.MessageAllowedMentions{
	Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(b.ctx, s, m.Message)
}

// handleMessage runs the text listeners for one message. Owner commands go
// first, then AFK bookkeeping. A prefixed message runs a registered text
// command or, failing that, a custom command. Every message counts as activity.
func (b *Bot) handleMessage(ctx context.Context, s common.Session, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	b.metrics.GatewayEvent(EventMessage)

	if syncer := b.syncer.Load(); syncer != nil {
		if syncer.handleOwnerCommand(s, m, b.config.Prefix, b.owners.Has, b.guildIDs) {
			return
		}
	}

	guild := b.messageGuild(ctx, m)
	prefix := b.config.Prefix
	if guild != nil && guild.Prefix != "" {
		prefix = guild.Prefix
	}

	b.handleAFK(s, m)
	if !b.dispatcher.DispatchMessage(ctx, s, m, prefix, b.messagePermissions) {
		b.handleCustomCommand(ctx, s, m, guild, prefix)
	}
	b.recordActivity(ctx, m.Author, models.ActivityMessage)
}

// messageGuild loads the settings of the guild a message was sent in; nil in DMs or when they cannot be read
func (b *Bot) messageGuild(ctx context.Context, m *discordgo.Message) *models.Guild {
	if m.GuildID == "" {
		return nil
	}
	guild, err := b.services.Guilds.GetSettings(ctx, common.IDOrZero(m.GuildID))
	if err != nil {
		log.WithError(err).WithField("guildID", m.GuildID).Error("Failed to load guild prefix")
		return nil
	}
	return guild
}

func (b *Bot) handleAFK(s common.Session, m *discordgo.Message) {
	mentionIDs := make([]string, 0, len(m.Mentions))
	names := make(map[string]string, len(m.Mentions))
	for _, u := range m.Mentions {
		mentionIDs = append(mentionIDs, u.ID)
		names[u.ID] = u.DisplayName()
	}

	outcome := b.afk.HandleMessage(m.Author.ID, mentionIDs)

	if outcome.Returned != nil {
		b.sendTemporary(s, m.ChannelID,
			fmt.Sprintf("Welcome back %s! You were AFK: %s", m.Author.Mention(), outcome.Returned.Reason),
			afkReturnNoticeTTL)
	}
	for _, status := range outcome.Mentioned {
		b.sendTemporary(s, m.ChannelID,
			fmt.Sprintf("💤 %s is currently AFK: %s", names[status.UserID], status.Reason),
			afkMentionNoticeTTL)
	}
}

// sendTemporary posts a notice and deletes it after ttl
func (b *Bot) sendTemporary(s common.Session, channelID, content string, ttl time.Duration) {
	msg, err := s.ChannelMessageSend(channelID, content)
	if err != nil {
		log.WithFields(log.Fields{
			"channelID": channelID,
			"error":     err,
		}).Warn("Failed to send notice")
		return
	}

	b.after(ttl, func() {
		if err := s.ChannelMessageDelete(channelID, msg.ID); err != nil {
			log.WithError(err).WithField("messageID", msg.ID).Debug("Failed to delete notice")
		}
	})
}

func (b *Bot) handleCustomCommand(ctx context.Context, s common.Session, m *discordgo.Message, guild *models.Guild, prefix string) {
	if guild == nil || m.Content == "" {
		return
	}

	if _, err := b.customCommands.HandleMessage(ctx, s, m, prefix); err != nil {
		log.WithFields(log.Fields{
			"guildID":   m.GuildID,
			"channelID": m.ChannelID,
			"error":     err,
		}).Error("Failed to run custom command")
	}
}

// onGuildCreate fires when the bot joins a guild and for every guild after connecting
func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	b.handleGuildCreate(b.ctx, g.Guild)
}

func (b *Bot) handleGuildCreate(ctx context.Context, g *discordgo.Guild) {
	if g.Unavailable {
		return
	}

	guild, err := b.services.Guilds.SyncGuild(ctx, &models.Guild{
		ID:          common.IDOrZero(g.ID),
		Name:        g.Name,
		OwnerID:     common.IDOrZero(g.OwnerID),
		MemberCount: g.MemberCount,
	})
	if err != nil {
		log.Errorf("Failed to track guild %s (%s): %v", g.Name, g.ID, err)
		return
	}

	log.WithFields(log.Fields{
		"guildID": guild.ID,
		"name":    guild.Name,
		"members": guild.MemberCount,
		"prefix":  guild.Prefix,
	}).Info("Guild available")
}

func memberModel(guildID string, m *discordgo.Member) *models.GuildMember {
	member := &models.GuildMember{
		GuildID:  common.IDOrZero(guildID),
		UserID:   common.IDOrZero(m.User.ID),
		Roles:    make([]int64, 0, len(m.Roles)),
		JoinedAt: m.JoinedAt,
	}
	if m.Nick != "" {
		nick := m.Nick
		member.Nickname = &nick
	}
	for _, r := range m.Roles {
		if id := common.IDOrZero(r); id != 0 {
			member.Roles = append(member.Roles, id)
		}
	}
	return member
}

// memberCount reads the count the state cache keeps current for member events
func (b *Bot) memberCount(s *discordgo.Session, guildID string) int {
	g, err := s.State.Guild(guildID)
	if err != nil {
		return 0
	}
	return g.MemberCount
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	b.handleMemberAdd(b.ctx, s, m.Member, b.memberCount(s, m.GuildID))
}

func (b *Bot) onGuildMemberUpdate(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	b.handleMemberUpdate(b.ctx, m.Member)
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	b.handleMemberRemove(b.ctx, m.Member, b.memberCount(s, m.GuildID))
}

// handleMemberAdd records the membership and posts the guild's welcome message
func (b *Bot) handleMemberAdd(ctx context.Context, s common.Session, m *discordgo.Member, memberCount int) {
	if m.User == nil {
		return
	}
	fields := log.Fields{"guildID": m.GuildID, "userID": m.User.ID}

	if err := b.services.Guilds.MemberJoined(ctx, memberModel(m.GuildID, m), memberCount); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to record member join")
	}
	if m.User.Bot {
		return
	}

	guild, err := b.services.Guilds.GetSettings(ctx, common.IDOrZero(m.GuildID))
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to load welcome settings")
		return
	}
	if !guild.WelcomeEnabled || guild.WelcomeChannelID == nil || *guild.WelcomeChannelID == 0 {
		return
	}

	_, err = s.ChannelMessageSendComplex(common.FormatID(*guild.WelcomeChannelID), &discordgo.MessageSend{
		Content:         guild.RenderWelcome(m.User.Mention()),
		AllowedMentions: userMentionsOnly,
	})
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("Failed to send welcome message")
	}
}

func (b *Bot) handleMemberUpdate(ctx context.Context, m *discordgo.Member) {
	if m.User == nil {
		return
	}
	if err := b.services.Guilds.MemberUpdated(ctx, memberModel(m.GuildID, m)); err != nil {
		log.WithFields(log.Fields{
			"guildID": m.GuildID,
			"userID":  m.User.ID,
			"error":   err,
		}).Error("Failed to record member update")
	}
}

func (b *Bot) handleMemberRemove(ctx context.Context, m *discordgo.Member, memberCount int) {
	if m.User == nil {
		return
	}
	err := b.services.Guilds.MemberLeft(ctx, common.IDOrZero(m.GuildID), common.IDOrZero(m.User.ID), memberCount)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": m.GuildID,
			"userID":  m.User.ID,
			"error":   err,
		}).Error("Failed to record member leave")
	}
}
