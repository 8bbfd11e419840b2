package bot

import (
	"context"
	"fmt"

	"cerealbot/bot/common"
	"cerealbot/bot/features/giveaways"
	"cerealbot/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// registerSubscriptions registers all bot-level event subscriptions.
// Events arrive after the unit of work that raised them committed.
func (b *Bot) registerSubscriptions() {
	b.eventBus.Subscribe(events.EventTypeWarningIssued, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.WarningIssuedEvent); ok {
			b.handleWarningIssued(ctx, b.session, e)
		}
	})

	b.eventBus.Subscribe(events.EventTypeWarningsCleared, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.WarningsClearedEvent); ok {
			b.handleWarningsCleared(ctx, b.session, e)
		}
	})

	b.eventBus.Subscribe(events.EventTypeGiveawayEnded, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.GiveawayEndedEvent); ok {
			b.handleGiveawayEnded(b.session, e)
		}
	})

	log.Info("Bot event subscriptions registered successfully")
}

// handleWarningIssued posts the warning to the mod log and, with auto-moderation on,
// times the member out once they reach the warn limit
func (b *Bot) handleWarningIssued(ctx context.Context, s common.Session, e events.WarningIssuedEvent) {
	embed := common.NewEmbed("⚠️ Member Warned", "", common.ColorOrange)
	common.AddField(embed, "User", common.UserMention(common.FormatID(e.UserID)), true)
	common.AddField(embed, "Moderator", common.UserMention(common.FormatID(e.ModeratorID)), true)
	common.AddField(embed, "Total Warnings", fmt.Sprintf("%d", e.Count), true)
	common.AddField(embed, "Reason", common.Truncate(e.Reason, 1024), false)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Warning #%d", e.WarningID)}
	b.postModLog(ctx, s, e.GuildID, embed)

	if !e.LimitReached || !b.config.AutoModEnabled {
		return
	}

	fields := log.Fields{
		"guildID": e.GuildID,
		"userID":  e.UserID,
		"count":   e.Count,
	}

	until := b.now().Add(b.config.MuteDuration)
	if err := s.GuildMemberTimeout(common.FormatID(e.GuildID), common.FormatID(e.UserID), &until); err != nil {
		log.WithFields(fields).WithError(err).Warn("Auto-moderation timeout failed")
		return
	}
	log.WithFields(fields).Info("Auto-moderation timed out member")

	minutes := int64(b.config.MuteDuration.Minutes())
	muted := common.NewEmbed("🔇 Auto-Moderation",
		fmt.Sprintf("%s was muted for %s after reaching %s.",
			common.UserMention(common.FormatID(e.UserID)),
			common.Plural(minutes, "minute"),
			common.Plural(e.Count, "warning")),
		common.ColorDanger)
	b.postModLog(ctx, s, e.GuildID, muted)
}

func (b *Bot) handleWarningsCleared(ctx context.Context, s common.Session, e events.WarningsClearedEvent) {
	embed := common.NewEmbed("🧹 Warnings Cleared", "", common.ColorSuccess)
	common.AddField(embed, "User", common.UserMention(common.FormatID(e.UserID)), true)
	common.AddField(embed, "Moderator", common.UserMention(common.FormatID(e.ModeratorID)), true)
	common.AddField(embed, "Removed", fmt.Sprintf("%d", e.Removed), true)
	b.postModLog(ctx, s, e.GuildID, embed)
}

func (b *Bot) handleGiveawayEnded(s common.Session, e events.GiveawayEndedEvent) {
	if !e.Reroll {
		b.metrics.GiveawayEnded()
	}
	if err := giveaways.Announce(s, e); err != nil {
		log.WithFields(log.Fields{
			"giveawayID": e.GiveawayID,
			"guildID":    e.GuildID,
			"error":      err,
		}).Error("Failed to announce giveaway results")
	}
}

// postModLog sends embed to the guild's log channel; guilds without one are skipped
func (b *Bot) postModLog(ctx context.Context, s common.Session, guildID int64, embed *discordgo.MessageEmbed) {
	guild, err := b.services.Guilds.GetSettings(ctx, guildID)
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).Error("Failed to load log channel")
		return
	}
	if guild.LogChannelID == nil || *guild.LogChannelID == 0 {
		return
	}

	_, err = s.ChannelMessageSendComplex(common.FormatID(*guild.LogChannelID), &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"guildID":   guildID,
			"channelID": *guild.LogChannelID,
			"error":     err,
		}).Warn("Failed to post to log channel")
	}
}
