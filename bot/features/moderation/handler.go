package moderation

import (
	"context"
	"fmt"
	"time"

	"cerealbot/bot/common"
	"cerealbot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Messages older than this cannot be bulk deleted
const bulkDeleteMaxAge = 14 * 24 * time.Hour

func actionFailed(err error, userMessage, logMessage string) error {
	return &common.BotError{UserMessage: userMessage, LogMessage: logMessage, Err: err}
}

// targetMember returns the guild member behind the member option
func targetMember(inv *common.Invocation) (*discordgo.Member, error) {
	m := inv.ResolvedMember("member")
	if m == nil || m.User == nil {
		return nil, common.NewUserError("❌ That user is not a member of this server.", "moderation target is not a guild member")
	}
	return m, nil
}

// guard loads the role hierarchy and guild owner, then runs CheckTarget.
// Only read calls happen here; a refusal leaves the guild untouched.
func (f *Feature) guard(inv *common.Invocation, action Action, target *discordgo.Member) (*discordgo.Guild, error) {
	guildID := inv.GuildID()

	roles, err := inv.Session.GuildRoles(guildID)
	if err != nil {
		return nil, common.NewSystemError(err, "failed to load guild roles")
	}
	guild, err := inv.Session.Guild(guildID)
	if err != nil {
		return nil, common.NewSystemError(err, "failed to load guild")
	}

	var actorRoles []string
	if inv.Interaction.Member != nil {
		actorRoles = inv.Interaction.Member.Roles
	}

	ok, message := CheckTarget(action, Target{
		ActorID:      inv.UserID(),
		ActorRank:    TopRolePosition(actorRoles, roles),
		TargetID:     target.User.ID,
		TargetRank:   TopRolePosition(target.Roles, roles),
		GuildOwnerID: guild.OwnerID,
		BotID:        f.botID(),
	})
	if !ok {
		log.WithFields(log.Fields{
			"action":   action,
			"guildID":  guildID,
			"actorID":  inv.UserID(),
			"targetID": target.User.ID,
		}).Info("Moderation action refused")
		return nil, common.NewUserError(message, fmt.Sprintf("%s refused", action))
	}
	return guild, nil
}

func actionEmbed(title, description string, color int, reason, moderatorID string) *discordgo.MessageEmbed {
	embed := common.NewEmbed(title, description, color)
	common.AddField(embed, "Reason", reasonOrDefault(reason), true)
	common.AddField(embed, "Moderator", common.UserMention(moderatorID), true)
	return embed
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return models.DefaultWarningReason
	}
	return reason
}

func (f *Feature) handleKick(_ context.Context, inv *common.Invocation) error {
	member, err := targetMember(inv)
	if err != nil {
		return err
	}
	if _, err := f.guard(inv, ActionKick, member); err != nil {
		return err
	}

	reason := inv.Options.String("reason", "")
	if err := inv.Session.GuildMemberDeleteWithReason(inv.GuildID(), member.User.ID, reason); err != nil {
		return actionFailed(err, "❌ I don't have permission to kick this member!", "failed to kick member")
	}

	log.WithFields(log.Fields{
		"guildID":  inv.GuildID(),
		"targetID": member.User.ID,
		"modID":    inv.UserID(),
	}).Info("Member kicked")

	embed := actionEmbed("👢 Member Kicked", member.User.Mention()+" has been kicked", common.ColorOrange, reason, inv.UserID())
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleBan(_ context.Context, inv *common.Invocation) error {
	member, err := targetMember(inv)
	if err != nil {
		return err
	}
	if _, err := f.guard(inv, ActionBan, member); err != nil {
		return err
	}

	reason := inv.Options.String("reason", "")
	if err := inv.Session.GuildBanCreateWithReason(inv.GuildID(), member.User.ID, reason, 0); err != nil {
		return actionFailed(err, "❌ I don't have permission to ban this member!", "failed to ban member")
	}

	log.WithFields(log.Fields{
		"guildID":  inv.GuildID(),
		"targetID": member.User.ID,
		"modID":    inv.UserID(),
	}).Info("Member banned")

	embed := actionEmbed("🔨 Member Banned", member.User.Mention()+" has been banned", common.ColorDanger, reason, inv.UserID())
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleUnban(_ context.Context, inv *common.Invocation) error {
	raw := inv.Options.String("user_id", "")
	if _, err := common.ParseID(raw); err != nil {
		return common.NewUserError("❌ Invalid user ID!", "unban with malformed user id")
	}

	user, err := inv.Session.User(raw)
	if err != nil {
		return actionFailed(err, "❌ User not found or not banned", "failed to fetch user to unban")
	}
	if err := inv.Session.GuildBanDelete(inv.GuildID(), user.ID); err != nil {
		return actionFailed(err, "❌ User not found or not banned", "failed to remove ban")
	}

	log.WithFields(log.Fields{
		"guildID":  inv.GuildID(),
		"targetID": user.ID,
		"modID":    inv.UserID(),
	}).Info("User unbanned")

	return inv.Respond(fmt.Sprintf("✅ %s has been unbanned", user.Mention()), false)
}

func (f *Feature) handleMute(_ context.Context, inv *common.Invocation) error {
	member, err := targetMember(inv)
	if err != nil {
		return err
	}
	if _, err := f.guard(inv, ActionMute, member); err != nil {
		return err
	}

	minutes := inv.Options.Int("duration", defaultMuteMinutes)
	if minutes > maxMuteMinutes {
		return common.NewUserError(
			fmt.Sprintf("❌ Duration cannot exceed %d minutes (28 days)!", maxMuteMinutes),
			"mute duration too long",
		)
	}

	reason := inv.Options.String("reason", "")
	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := inv.Session.GuildMemberTimeout(inv.GuildID(), member.User.ID, &until); err != nil {
		return actionFailed(err, "❌ I don't have permission to mute this member!", "failed to time out member")
	}

	log.WithFields(log.Fields{
		"guildID":  inv.GuildID(),
		"targetID": member.User.ID,
		"modID":    inv.UserID(),
		"minutes":  minutes,
	}).Info("Member muted")

	embed := actionEmbed(
		"🔇 Member Muted",
		fmt.Sprintf("%s has been muted for %d minutes", member.User.Mention(), minutes),
		common.ColorInfo,
		reason,
		inv.UserID(),
	)
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleUnmute(_ context.Context, inv *common.Invocation) error {
	member, err := targetMember(inv)
	if err != nil {
		return err
	}

	if err := inv.Session.GuildMemberTimeout(inv.GuildID(), member.User.ID, nil); err != nil {
		return actionFailed(err, "❌ I don't have permission to unmute this member!", "failed to remove timeout")
	}
	return inv.Respond(fmt.Sprintf("✅ %s has been unmuted", member.User.Mention()), false)
}

func (f *Feature) handleClear(_ context.Context, inv *common.Invocation) error {
	amount := int(inv.Options.Int("amount", defaultClearAmount))

	if err := inv.Defer(true); err != nil {
		return fmt.Errorf("failed to defer clear: %w", err)
	}

	messages, err := inv.Session.ChannelMessages(inv.ChannelID(), amount, "", "", "")
	if err != nil {
		return actionFailed(err, "❌ I don't have permission to delete messages!", "failed to fetch messages to clear")
	}

	cutoff := time.Now().Add(-bulkDeleteMaxAge)
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Timestamp.After(cutoff) {
			ids = append(ids, m.ID)
		}
	}

	switch len(ids) {
	case 0:
	case 1:
		err = inv.Session.ChannelMessageDelete(inv.ChannelID(), ids[0])
	default:
		err = inv.Session.ChannelMessagesBulkDelete(inv.ChannelID(), ids)
	}
	if err != nil || (len(ids) == 0 && len(messages) > 0) {
		if err != nil {
			log.WithError(err).WithField("channelID", inv.ChannelID()).Warn("Failed to delete messages")
		}
		return inv.EditContent("❌ Failed to delete messages. They might be too old (14+ days).")
	}

	log.WithFields(log.Fields{
		"channelID": inv.ChannelID(),
		"deleted":   len(ids),
		"modID":     inv.UserID(),
	}).Info("Messages cleared")

	return inv.EditContent(fmt.Sprintf("🗑️ Deleted %d messages", len(ids)))
}

func (f *Feature) handleSlowmode(_ context.Context, inv *common.Invocation) error {
	seconds := int(inv.Options.Int("seconds", 0))
	if seconds > maxSlowmodeSeconds {
		return common.NewUserError(
			fmt.Sprintf("❌ Slowmode cannot exceed 6 hours (%d seconds)", maxSlowmodeSeconds),
			"slowmode too long",
		)
	}

	if _, err := inv.Session.ChannelEditComplex(inv.ChannelID(), &discordgo.ChannelEdit{RateLimitPerUser: &seconds}); err != nil {
		return actionFailed(err, "❌ I don't have permission to manage this channel!", "failed to set slowmode")
	}

	if seconds == 0 {
		return inv.Respond("✅ Slowmode disabled", false)
	}
	return inv.Respond(fmt.Sprintf("✅ Slowmode set to %d seconds", seconds), false)
}

func (f *Feature) handleWarn(ctx context.Context, inv *common.Invocation) error {
	member, err := targetMember(inv)
	if err != nil {
		return err
	}
	if member.User.ID == inv.UserID() {
		return common.NewUserError("❌ You cannot warn yourself!", "self warn")
	}
	guild, err := f.guard(inv, ActionWarn, member)
	if err != nil {
		return err
	}

	reason := reasonOrDefault(inv.Options.String("reason", ""))
	result, err := f.warningService.Warn(ctx,
		common.IDOrZero(inv.GuildID()),
		common.IDOrZero(member.User.ID),
		common.IDOrZero(inv.UserID()),
		reason,
	)
	if err != nil {
		return actionFailed(err, "❌ An error occurred while warning the user.", "failed to store warning")
	}

	count := common.Plural(result.Count, "warning")
	embed := common.NewEmbed("⚠️ Member Warned", member.User.Mention()+" has been warned", common.ColorWarning)
	common.AddField(embed, "Reason", reason, false)
	common.AddField(embed, "Moderator", common.UserMention(inv.UserID()), true)
	common.AddField(embed, "Warning Count", count, true)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Warning ID: %d", result.Warning.ID)}

	if err := inv.RespondEmbed(embed, nil, false); err != nil {
		return err
	}

	dm := common.NewEmbed("You were warned in "+guild.Name, "", common.ColorDanger)
	common.AddField(dm, "Reason", reason, false)
	common.AddField(dm, "Moderator", common.UserMention(inv.UserID()), true)
	common.AddField(dm, "Warning Count", count, true)
	common.TrySendDM(inv.Session, member.User.ID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{dm}})

	return nil
}

func (f *Feature) handleWarnings(ctx context.Context, inv *common.Invocation) error {
	target := inv.ResolvedUser("member")
	if target == nil {
		target = inv.User()
	}

	warnings, err := f.warningService.ListWarnings(ctx, common.IDOrZero(inv.GuildID()), common.IDOrZero(target.ID))
	if err != nil {
		return actionFailed(err, "❌ An error occurred while fetching warnings.", "failed to list warnings")
	}

	if len(warnings) == 0 {
		return inv.Respond(target.Mention()+" has no warnings in this server.", true)
	}

	name := target.Username
	if name == "" {
		name = target.ID
	}
	embed := common.NewEmbed("⚠️ Warnings for "+name, "", common.ColorOrange)

	start := max(len(warnings)-warningsShown, 0)
	for i, w := range warnings[start:] {
		common.AddField(embed,
			fmt.Sprintf("Warning #%d", start+i+1),
			fmt.Sprintf("**Reason:** %s\n**Moderator:** %s\n**Date:** %s",
				w.Reason,
				common.UserMention(common.FormatID(w.ModeratorID)),
				w.CreatedAt.Format("2006-01-02 15:04"),
			),
			false,
		)
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Total warnings: %d", len(warnings))}

	return inv.RespondEmbed(embed, nil, true)
}

func (f *Feature) handleClearWarnings(ctx context.Context, inv *common.Invocation) error {
	target := inv.ResolvedUser("member")

	deleted, err := f.warningService.ClearWarnings(ctx, common.IDOrZero(inv.GuildID()), common.IDOrZero(target.ID), common.IDOrZero(inv.UserID()))
	if err != nil {
		return actionFailed(err, "❌ An error occurred while clearing warnings.", "failed to clear warnings")
	}

	embed := common.NewEmbed(
		"🗑️ Warnings Cleared",
		fmt.Sprintf("Cleared %s for %s", common.Plural(deleted, "warning"), target.Mention()),
		common.ColorSuccess,
	)
	common.AddField(embed, "Moderator", common.UserMention(inv.UserID()), true)

	return inv.RespondEmbed(embed, nil, false)
}
