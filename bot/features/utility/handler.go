package utility

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cerealbot/bot/common"
	"cerealbot/scheduler"
	"cerealbot/timeparse"
	"cerealbot/timezone"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var numberEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

// guildLocation is the configured timezone of the guild, UTC in DMs or when it cannot be read
func (f *Feature) guildLocation(ctx context.Context, guildID string) *time.Location {
	if guildID == "" {
		return time.UTC
	}
	guild, err := f.guildService.GetSettings(ctx, common.IDOrZero(guildID))
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"error":   err,
		}).Warn("Failed to load guild timezone, using UTC")
		return time.UTC
	}
	loc, err := time.LoadLocation(guild.Timezone)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID":  guildID,
			"timezone": guild.Timezone,
		}).Warn("Guild has an unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}

func (f *Feature) handleRemind(ctx context.Context, inv *common.Invocation) error {
	input := inv.Options.String("time", "")
	message := inv.Options.String("message", "")
	now := f.now()

	d, err := timeparse.ParseReminderAt(input, now, f.guildLocation(ctx, inv.GuildID()))
	switch {
	case errors.Is(err, timeparse.ErrTooShort):
		return common.NewUserError("❌ Reminder must be at least 10 seconds!", "reminder too short")
	case errors.Is(err, timeparse.ErrTooLong):
		return common.NewUserError("❌ Reminder cannot be longer than 30 days!", "reminder too long")
	case err != nil:
		return common.NewUserError("❌ Invalid time format! Use: 10s, 5m, 2h, or 1d", "invalid reminder time")
	}

	user := inv.User()
	r := f.reminders.Add(scheduler.Reminder{
		UserID:    user.ID,
		Username:  user.Username,
		ChannelID: inv.ChannelID(),
		GuildID:   inv.GuildID(),
		Message:   message,
		CreatedAt: now,
		DueAt:     now.Add(d),
	})

	log.WithFields(log.Fields{
		"reminderID": r.ID,
		"userID":     r.UserID,
		"dueAt":      r.DueAt,
	}).Debug("Reminder scheduled")

	embed := common.NewEmbed("✅ Reminder Set!", fmt.Sprintf("I'll remind you about: **%s**", message), common.ColorSuccess)
	common.AddField(embed, "When", common.FormatDiscordTimestamp(r.DueAt, "R"), false)
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleReminders(_ context.Context, inv *common.Invocation) error {
	pending := f.reminders.ListByUser(inv.UserID())
	if len(pending) == 0 {
		return inv.Respond("You have no active reminders!", false)
	}

	embed := common.NewEmbed(fmt.Sprintf("⏰ Your Reminders (%d)", len(pending)), "", common.ColorInfo)
	for i, r := range pending {
		if i == remindersShown {
			break
		}
		name := fmt.Sprintf("%d. %s", i+1, common.FormatDiscordTimestamp(r.DueAt, "R"))
		common.AddField(embed, name, common.Truncate(r.Message, 100), false)
	}
	if len(pending) > remindersShown {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Showing %d of %d reminders", remindersShown, len(pending)),
		}
	}
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleTimer(_ context.Context, inv *common.Invocation) error {
	d, err := timeparse.ParseTimer(inv.Options.String("time", ""))
	switch {
	case errors.Is(err, timeparse.ErrTooShort):
		return common.NewUserError("❌ Timer must be at least 1 second!", "timer too short")
	case errors.Is(err, timeparse.ErrTooLong):
		return common.NewUserError("❌ Timer cannot exceed 24 hours!", "timer too long")
	case err != nil:
		return common.NewUserError("❌ Invalid time format! Use: 10s, 5m, or 2h\nExample: `/timer 30s`", "invalid timer")
	}

	display := timeparse.Humanize(d)
	user := inv.User()

	embed := common.NewEmbed("⏱️ Timer Started", fmt.Sprintf("Timer set for **%s**", display), common.ColorInfo)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Started by " + user.Username}
	if err := inv.RespondEmbed(embed, nil, false); err != nil {
		return err
	}

	// The interaction token expires after 15 minutes, so the status message is edited through the channel
	msg, err := inv.ResponseMessage()
	if err != nil {
		log.WithError(err).Warn("Could not fetch timer message, completion will only be announced")
	}

	s, channelID, userID := inv.Session, inv.ChannelID(), user.ID
	f.after(d, func() {
		finishTimer(s, channelID, msg, display, userID)
	})
	return nil
}

func finishTimer(s common.Session, channelID string, msg *discordgo.Message, display, userID string) {
	if msg != nil {
		embeds := []*discordgo.MessageEmbed{
			common.NewEmbed("⏰ Timer Complete!", fmt.Sprintf("Your **%s** timer is up!", display), common.ColorSuccess),
		}
		if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:      msg.ID,
			Channel: msg.ChannelID,
			Embeds:  &embeds,
		}); err != nil {
			log.WithError(err).WithField("messageID", msg.ID).Warn("Failed to edit timer message")
		}
	}
	if _, err := s.ChannelMessageSend(channelID, common.UserMention(userID)+" ⏰ Time's up!"); err != nil {
		log.WithFields(log.Fields{
			"channelID": channelID,
			"userID":    userID,
			"error":     err,
		}).Warn("Failed to announce finished timer")
	}
}

func (f *Feature) handleTimezone(_ context.Context, inv *common.Invocation) error {
	location := inv.Options.String("location", "")

	match, err := f.zones.Lookup(location)
	var notFound *timezone.NotFoundError
	if errors.As(err, &notFound) {
		msg := fmt.Sprintf("❌ Timezone '%s' not found!", location)
		if len(notFound.Suggestions) > 0 {
			msg += "\n\nDid you mean: " + strings.Join(notFound.Suggestions, ", ") + "?"
		} else {
			msg += "\n\nTry: New York, London, Tokyo, EST, GMT, UTC, etc."
		}
		return common.NewUserError(msg, "timezone not found")
	}
	if err != nil {
		return common.NewSystemError(err, "failed to resolve timezone")
	}

	now := f.now().In(match.Location)
	embed := common.NewEmbed("🌍 Time in "+timezone.DisplayName(location), "", common.ColorInfo)
	common.AddField(embed, "📅 Date", now.Format("Monday, January 02, 2006"), false)
	common.AddField(embed, "🕐 12-Hour", now.Format("03:04:05 PM"), true)
	common.AddField(embed, "🕐 24-Hour", now.Format("15:04:05"), true)
	common.AddField(embed, "🌐 Timezone", fmt.Sprintf("%s\n(%s)", match.Zone, timezone.FormatOffset(now)), false)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Requested by " + inv.User().Username}
	return inv.RespondEmbed(embed, nil, false)
}

// ParsePollOptions splits comma separated options, dropping blanks
func ParsePollOptions(raw string) ([]string, error) {
	var options []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			options = append(options, part)
		}
	}
	if len(options) < minPollOptions {
		return nil, common.NewUserError("❌ You need at least 2 options!", "too few poll options")
	}
	if len(options) > maxPollOptions {
		return nil, common.NewUserError("❌ Maximum 10 options allowed!", "too many poll options")
	}
	return options, nil
}

// addReactions reacts to the response message in order, stopping at the first failure
func addReactions(inv *common.Invocation, emojis []string) {
	msg, err := inv.ResponseMessage()
	if err != nil {
		log.WithError(err).Warn("Could not fetch response message for reactions")
		return
	}
	for _, emoji := range emojis {
		if err := inv.Session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			log.WithFields(log.Fields{
				"messageID": msg.ID,
				"emoji":     emoji,
				"error":     err,
			}).Warn("Failed to add reaction")
			return
		}
	}
}

func (f *Feature) handlePoll(_ context.Context, inv *common.Invocation) error {
	options, err := ParsePollOptions(inv.Options.String("options", ""))
	if err != nil {
		return err
	}

	lines := make([]string, len(options))
	for i, option := range options {
		lines[i] = numberEmojis[i] + " " + option
	}

	embed := common.NewEmbed("📊 "+inv.Options.String("question", ""), strings.Join(lines, "\n"), common.ColorInfo)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Poll by " + inv.User().Username}
	if err := inv.RespondEmbed(embed, nil, false); err != nil {
		return err
	}

	addReactions(inv, numberEmojis[:len(options)])
	return nil
}

func (f *Feature) handleAFK(_ context.Context, inv *common.Invocation) error {
	user := inv.User()
	status := f.afk.Set(user.ID, inv.Options.String("reason", ""))

	embed := common.NewEmbed("💤 AFK", fmt.Sprintf("%s is now AFK: %s", user.Mention(), status.Reason), common.ColorGold)
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handlePing(_ context.Context, inv *common.Invocation) error {
	ms := f.latency().Milliseconds()
	color := common.ColorSuccess
	if ms >= 200 {
		color = common.ColorDanger
	}
	return inv.RespondEmbed(common.NewEmbed("🏓 Pong!", fmt.Sprintf("Latency: **%dms**", ms), color), nil, false)
}

func (f *Feature) handleSuggest(_ context.Context, inv *common.Invocation) error {
	user := inv.User()

	embed := common.NewEmbed("💡 New Suggestion", inv.Options.String("suggestion", ""), common.ColorInfo)
	embed.Author = &discordgo.MessageEmbedAuthor{Name: user.Username, IconURL: user.AvatarURL("")}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "User ID: " + user.ID}
	if err := inv.RespondEmbed(embed, nil, false); err != nil {
		return err
	}

	addReactions(inv, []string{"👍", "👎"})
	deleteTrigger(inv)
	return nil
}

// deleteTrigger removes the message behind a text command; the bot may lack Manage Messages
func deleteTrigger(inv *common.Invocation) {
	if err := inv.DeleteTrigger(); err != nil {
		log.WithFields(log.Fields{
			"command":   inv.Name,
			"channelID": inv.ChannelID(),
			"error":     err,
		}).Debug("Could not delete command message")
	}
}

func (f *Feature) handleSay(_ context.Context, inv *common.Invocation) error {
	// A typed command is replaced by the message itself
	deleteTrigger(inv)

	// Only user mentions ping; @everyone and role mentions are sent as text
	_, err := inv.Session.ChannelMessageSendComplex(inv.ChannelID(), &discordgo.MessageSend{
		Content: inv.Options.String("message", ""),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	})
	if err != nil {
		return &common.BotError{
			UserMessage: common.MsgBotMissingPerms,
			LogMessage:  "failed to send say message",
			Err:         err,
		}
	}
	if inv.FromMessage() {
		return nil
	}
	return inv.Respond("✅ Message sent!", true)
}

func (f *Feature) handleEmbed(_ context.Context, inv *common.Invocation) error {
	embed := common.NewEmbed(inv.Options.String("title", ""), inv.Options.String("description", ""), common.ColorInfo)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Created by " + inv.User().Username}
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleCalculate(_ context.Context, inv *common.Invocation) error {
	expression := inv.Options.String("expression", "")

	result, err := Calculate(expression)
	if errors.Is(err, ErrInvalidCharacters) {
		return common.NewUserError("❌ Invalid characters in expression!", "calculator input rejected")
	}
	if err != nil {
		return common.NewUserError("❌ Error calculating: "+err.Error(), "calculator error")
	}

	embed := common.NewEmbed("🧮 Calculator", "", common.ColorInfo)
	common.AddField(embed, "Expression", "```"+expression+"```", false)
	common.AddField(embed, "Result", "```"+result+"```", false)
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleBotInfo(ctx context.Context, inv *common.Invocation) error {
	if err := inv.Defer(false); err != nil {
		return err
	}

	snap := f.collect(ctx)

	embed := common.NewEmbed("🥣 Cereal Bot", "", common.ColorPrimary)
	common.AddField(embed, "Uptime", common.FormatUptime(f.now().Sub(f.startedAt)), true)
	common.AddField(embed, "Latency", fmt.Sprintf("%dms", f.latency().Milliseconds()), true)
	common.AddField(embed, "Go", snap.GoVersion, true)
	common.AddField(embed, "CPU", fmt.Sprintf("%d cores, %.1f%%", snap.CPUCount, snap.CPUPercent), true)
	common.AddField(embed, "Memory", fmt.Sprintf("%d / %d MB (%.1f%%)", snap.MemoryUsedMB, snap.MemoryTotalMB, snap.MemoryPercent), true)
	common.AddField(embed, "Heap", fmt.Sprintf("%d MB", snap.HeapAllocMB), true)
	common.AddField(embed, "Goroutines", fmt.Sprintf("%d", snap.Goroutines), true)
	common.AddField(embed, "Pending Reminders", fmt.Sprintf("%d", f.reminders.Len()), true)
	common.AddField(embed, "AFK Users", fmt.Sprintf("%d", f.afk.Len()), true)
	if snap.Platform != "" {
		common.AddField(embed, "Host", fmt.Sprintf("%s %s (up %s)", snap.Platform, snap.PlatformVersion,
			common.FormatUptime(time.Duration(snap.HostUptime)*time.Second)), false)
	}
	return inv.EditEmbed(embed)
}
