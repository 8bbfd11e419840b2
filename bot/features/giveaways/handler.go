package giveaways

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cerealbot/bot/common"
	"cerealbot/bot/registry"
	"cerealbot/events"
	"cerealbot/models"
	"cerealbot/service"
	"cerealbot/timeparse"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func mentions(ids []int64) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = common.UserMention(common.FormatID(id))
	}
	return strings.Join(out, ", ")
}

// giveawayError maps service sentinels to user-facing refusals
func giveawayError(err error, id int64) error {
	switch {
	case errors.Is(err, service.ErrGiveawayNotFound):
		return common.NewUserError(fmt.Sprintf("❌ Giveaway #%d not found.", id), "giveaway not found")
	case errors.Is(err, service.ErrGiveawayNotActive):
		return common.NewUserError(fmt.Sprintf("❌ Giveaway #%d has already ended.", id), "giveaway not active")
	case errors.Is(err, service.ErrGiveawayStillActive):
		return common.NewUserError(fmt.Sprintf("❌ Giveaway #%d is still running. End it first.", id), "giveaway still active")
	default:
		return common.NewSystemError(err, "giveaway operation failed")
	}
}

// Embed renders a running giveaway
func Embed(g *models.Giveaway) *discordgo.MessageEmbed {
	var b strings.Builder
	if g.Description != "" {
		b.WriteString(g.Description + "\n\n")
	}
	fmt.Fprintf(&b, "**Prize:** %s\n", g.Prize)
	fmt.Fprintf(&b, "**Winners:** %d\n", g.WinnerCount)
	fmt.Fprintf(&b, "**Ends:** %s (%s)\n", common.FormatDiscordTimestamp(g.EndsAt, "R"), common.FormatDiscordTimestamp(g.EndsAt, "f"))
	fmt.Fprintf(&b, "**Hosted by:** %s", common.UserMention(common.FormatID(g.CreatedBy)))

	embed := common.NewEmbed(g.Title, b.String(), common.ColorPurple)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Giveaway #%d • Press the button to enter", g.ID)}
	return embed
}

func joinButton(g *models.Giveaway) []discordgo.MessageComponent {
	return common.ButtonRows(
		common.Button("Enter", registry.ComponentID(componentPrefix, common.FormatID(g.ID), actionJoin), discordgo.SuccessButton, "🎉"),
	)
}

func (f *Feature) handleGiveaway(ctx context.Context, inv *common.Invocation) error {
	switch inv.Subcommand {
	case "start":
		return f.handleStart(ctx, inv)
	case "end":
		return f.handleEnd(ctx, inv)
	case "list":
		return f.handleList(ctx, inv)
	case "reroll":
		return f.handleReroll(ctx, inv)
	default:
		return common.NewUserError(common.MsgInvalidArgs, "unknown giveaway subcommand "+inv.Subcommand)
	}
}

func (f *Feature) handleStart(ctx context.Context, inv *common.Invocation) error {
	duration, err := timeparse.ParseReminder(inv.Options.String("duration", ""))
	switch {
	case errors.Is(err, timeparse.ErrTooShort):
		return common.NewUserError("❌ A giveaway must run for at least 10 seconds!", "giveaway too short")
	case errors.Is(err, timeparse.ErrTooLong):
		return common.NewUserError("❌ A giveaway cannot run longer than 30 days!", "giveaway too long")
	case err != nil:
		return common.NewUserError("❌ Invalid duration! Use: 10m, 2h, or 1d", "invalid giveaway duration")
	}

	g, err := f.giveawayService.Start(ctx, service.StartGiveawayParams{
		GuildID:     common.IDOrZero(inv.GuildID()),
		ChannelID:   common.IDOrZero(inv.ChannelID()),
		CreatedBy:   common.IDOrZero(inv.UserID()),
		Title:       inv.Options.String("title", ""),
		Description: inv.Options.String("description", ""),
		Prize:       inv.Options.String("prize", ""),
		WinnerCount: int(inv.Options.Int("winners", 1)),
		Duration:    duration,
	})
	if errors.Is(err, service.ErrInvalidGiveaway) {
		return common.NewUserError("❌ "+err.Error(), "invalid giveaway")
	}
	if err != nil {
		return common.NewSystemError(err, "failed to start giveaway")
	}

	if err := inv.RespondEmbed(Embed(g), joinButton(g), false); err != nil {
		return err
	}

	msg, err := inv.ResponseMessage()
	if err != nil {
		log.WithFields(log.Fields{
			"giveawayID": g.ID,
			"error":      err,
		}).Warn("Could not fetch giveaway message, it will not be updated when the giveaway ends")
		return nil
	}
	if err := f.giveawayService.AttachMessage(ctx, g.ID, common.IDOrZero(msg.ID)); err != nil {
		log.WithFields(log.Fields{
			"giveawayID": g.ID,
			"messageID":  msg.ID,
			"error":      err,
		}).Error("Failed to record giveaway message")
	}
	return nil
}

func (f *Feature) handleEnd(ctx context.Context, inv *common.Invocation) error {
	id := inv.Options.Int("id", 0)
	g, err := f.giveawayService.Get(ctx, id)
	if err == nil && g.GuildID != common.IDOrZero(inv.GuildID()) {
		err = service.ErrGiveawayNotFound
	}
	if err == nil {
		_, err = f.giveawayService.End(ctx, id)
	}
	if err != nil {
		return giveawayError(err, id)
	}
	return inv.Respond(fmt.Sprintf("✅ Giveaway #%d ended. Winners are announced in %s.", id, common.ChannelMention(common.FormatID(g.ChannelID))), true)
}

func (f *Feature) handleReroll(ctx context.Context, inv *common.Invocation) error {
	id := inv.Options.Int("id", 0)
	g, err := f.giveawayService.Get(ctx, id)
	if err == nil && g.GuildID != common.IDOrZero(inv.GuildID()) {
		err = service.ErrGiveawayNotFound
	}
	if err == nil {
		g, err = f.giveawayService.Reroll(ctx, id)
	}
	if err != nil {
		return giveawayError(err, id)
	}
	if len(g.Winners) == 0 {
		return inv.Respond(fmt.Sprintf("Giveaway #%d had no entries to draw from.", id), true)
	}
	return inv.Respond(fmt.Sprintf("🔁 Rerolled giveaway #%d.", id), true)
}

func (f *Feature) handleList(ctx context.Context, inv *common.Invocation) error {
	active, err := f.giveawayService.ListActive(ctx, common.IDOrZero(inv.GuildID()))
	if err != nil {
		return common.NewSystemError(err, "failed to list giveaways")
	}
	if len(active) == 0 {
		return inv.Respond("There are no running giveaways.", true)
	}

	embed := common.NewEmbed(fmt.Sprintf("🎉 Running Giveaways (%d)", len(active)), "", common.ColorPurple)
	for _, g := range active {
		value := fmt.Sprintf("Ends %s in %s • %s",
			common.FormatDiscordTimestamp(g.EndsAt, "R"),
			common.ChannelMention(common.FormatID(g.ChannelID)),
			common.Plural(int64(len(g.Participants)), "entry"))
		common.AddField(embed, fmt.Sprintf("#%d %s", g.ID, common.Truncate(g.Prize, 100)), value, false)
		if len(embed.Fields) == 25 {
			break
		}
	}
	return inv.RespondEmbed(embed, nil, true)
}

func (f *Feature) handleJoin(ctx context.Context, inv *common.Invocation) error {
	parts := registry.ComponentParts(inv.CustomID)
	if len(parts) != 2 || parts[1] != actionJoin {
		return common.NewUserError(common.MsgInvalidArgs, "malformed giveaway custom id "+inv.CustomID)
	}
	id, err := common.ParseID(parts[0])
	if err != nil {
		return common.NewUserError(common.MsgInvalidArgs, "malformed giveaway id "+parts[0])
	}

	result, err := f.giveawayService.Join(ctx, id, common.IDOrZero(inv.UserID()))
	if errors.Is(err, service.ErrGiveawayNotFound) {
		result, err = service.JoinResultNotActive, nil
	}
	if err != nil {
		return common.NewSystemError(err, "failed to join giveaway")
	}

	switch result {
	case service.JoinResultJoined:
		return inv.Respond("🎉 You're in! Good luck.", true)
	case service.JoinResultAlreadyJoined:
		return inv.Respond("You've already entered this giveaway!", true)
	default:
		return inv.Respond("❌ This giveaway has ended.", true)
	}
}

// Announce closes out a giveaway in its channel: the original message loses its button and a
// results message names the winners. Rerolls only post the results.
func Announce(s common.Session, e events.GiveawayEndedEvent) error {
	channelID := common.FormatID(e.ChannelID)

	if e.MessageID != nil && !e.Reroll {
		description := fmt.Sprintf("**Prize:** %s\n**Entries:** %d\n**Winners:** ", e.Prize, e.ParticipantCount)
		if len(e.Winners) == 0 {
			description += "none"
		} else {
			description += mentions(e.Winners)
		}
		embeds := []*discordgo.MessageEmbed{common.NewEmbed("🎉 Giveaway Ended", description, common.ColorGray)}
		embeds[0].Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Giveaway #%d", e.GiveawayID)}
		components := []discordgo.MessageComponent{}

		if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         common.FormatID(*e.MessageID),
			Channel:    channelID,
			Embeds:     &embeds,
			Components: &components,
		}); err != nil {
			log.WithFields(log.Fields{
				"giveawayID": e.GiveawayID,
				"error":      err,
			}).Warn("Failed to update giveaway message")
		}
	}

	var content string
	switch {
	case len(e.Winners) == 0:
		content = fmt.Sprintf("No one entered the giveaway for **%s** 😢", e.Prize)
	case e.Reroll:
		content = fmt.Sprintf("🔁 New draw! Congratulations %s, you won **%s**!", mentions(e.Winners), e.Prize)
	default:
		content = fmt.Sprintf("🎉 Congratulations %s! You won **%s**!", mentions(e.Winners), e.Prize)
	}

	send := &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}
	if e.MessageID != nil {
		failIfMissing := false
		send.Reference = &discordgo.MessageReference{
			MessageID:       common.FormatID(*e.MessageID),
			ChannelID:       channelID,
			FailIfNotExists: &failIfMissing,
		}
	}
	if _, err := s.ChannelMessageSendComplex(channelID, send); err != nil {
		return fmt.Errorf("failed to announce giveaway %d: %w", e.GiveawayID, err)
	}
	return nil
}
