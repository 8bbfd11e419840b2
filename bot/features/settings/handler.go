package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cerealbot/bot/common"
	"cerealbot/models"
	"cerealbot/service"
	"cerealbot/timezone"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleSettings(ctx context.Context, inv *common.Invocation) error {
	switch inv.Subcommand {
	case "view":
		return f.handleView(ctx, inv)
	case "prefix":
		return f.handlePrefix(ctx, inv)
	case "timezone":
		return f.handleTimezone(ctx, inv)
	case "welcome":
		return f.handleWelcome(ctx, inv)
	case "logchannel":
		return f.handleLogChannel(ctx, inv)
	default:
		return common.NewUserError(common.MsgInvalidArgs, "unknown settings subcommand "+inv.Subcommand)
	}
}

func channelOrNone(id *int64) string {
	if id == nil || *id == 0 {
		return "Not set"
	}
	return common.ChannelMention(common.FormatID(*id))
}

// SettingsEmbed renders the stored settings of a guild
func SettingsEmbed(g *models.Guild) *discordgo.MessageEmbed {
	welcome := "Disabled"
	if g.WelcomeEnabled {
		welcome = "Enabled in " + channelOrNone(g.WelcomeChannelID)
	}
	message := g.WelcomeMessage
	if message == "" {
		message = models.DefaultWelcomeMessage
	}

	embed := common.NewEmbed("⚙️ Server Settings", "", common.ColorPrimary)
	common.AddField(embed, "Prefix", "`"+g.Prefix+"`", true)
	common.AddField(embed, "Timezone", g.Timezone, true)
	common.AddField(embed, "Log Channel", channelOrNone(g.LogChannelID), true)
	common.AddField(embed, "Welcome", welcome, false)
	common.AddField(embed, "Welcome Message", common.Truncate(message, 1024), false)
	return embed
}

func (f *Feature) update(ctx context.Context, inv *common.Invocation, update models.GuildSettingsUpdate) (*models.Guild, error) {
	guild, err := f.guildService.UpdateSettings(ctx, common.IDOrZero(inv.GuildID()), update)
	if errors.Is(err, service.ErrInvalidSettings) {
		reason := strings.TrimSuffix(err.Error(), ": "+service.ErrInvalidSettings.Error())
		return nil, common.NewUserError("❌ Invalid setting: "+reason, err.Error())
	}
	if err != nil {
		return nil, common.NewSystemError(err, "failed to update guild settings")
	}

	log.WithFields(log.Fields{
		"guildID": inv.GuildID(),
		"userID":  inv.UserID(),
		"setting": inv.Subcommand,
	}).Info("Settings changed")
	return guild, nil
}

func (f *Feature) handleView(ctx context.Context, inv *common.Invocation) error {
	guild, err := f.guildService.GetSettings(ctx, common.IDOrZero(inv.GuildID()))
	if err != nil {
		return common.NewSystemError(err, "failed to load guild settings")
	}
	return inv.RespondEmbed(SettingsEmbed(guild), nil, true)
}

func (f *Feature) handlePrefix(ctx context.Context, inv *common.Invocation) error {
	prefix := inv.Options.String("value", "")
	guild, err := f.update(ctx, inv, models.GuildSettingsUpdate{Prefix: &prefix})
	if err != nil {
		return err
	}
	return inv.Respond(fmt.Sprintf("✅ Prefix set to `%s`", guild.Prefix), true)
}

func (f *Feature) handleTimezone(ctx context.Context, inv *common.Invocation) error {
	location := inv.Options.String("location", "")

	match, err := f.zones.Lookup(location)
	var notFound *timezone.NotFoundError
	if errors.As(err, &notFound) {
		msg := fmt.Sprintf("❌ Timezone '%s' not found!", location)
		if len(notFound.Suggestions) > 0 {
			msg += "\n\nDid you mean: " + strings.Join(notFound.Suggestions, ", ") + "?"
		}
		return common.NewUserError(msg, "timezone not found")
	}
	if err != nil {
		return common.NewSystemError(err, "failed to resolve timezone")
	}

	guild, err := f.update(ctx, inv, models.GuildSettingsUpdate{Timezone: &match.Zone})
	if err != nil {
		return err
	}
	return inv.Respond(fmt.Sprintf("✅ Timezone set to **%s**", guild.Timezone), true)
}

func (f *Feature) handleWelcome(ctx context.Context, inv *common.Invocation) error {
	enabled := inv.Options.Bool("enabled", false)
	update := models.GuildSettingsUpdate{WelcomeEnabled: &enabled}

	if inv.Options.Has("channel") {
		id := common.IDOrZero(inv.Options.Snowflake("channel"))
		update.WelcomeChannelID = &id
	}
	if inv.Options.Has("message") {
		message := inv.Options.String("message", "")
		update.WelcomeMessage = &message
	}

	if enabled && update.WelcomeChannelID == nil {
		current, err := f.guildService.GetSettings(ctx, common.IDOrZero(inv.GuildID()))
		if err != nil {
			return common.NewSystemError(err, "failed to load guild settings")
		}
		if current.WelcomeChannelID == nil || *current.WelcomeChannelID == 0 {
			here := common.IDOrZero(inv.ChannelID())
			update.WelcomeChannelID = &here
		}
	}

	guild, err := f.update(ctx, inv, update)
	if err != nil {
		return err
	}
	if !guild.WelcomeEnabled {
		return inv.Respond("✅ Welcome messages disabled", true)
	}
	return inv.Respond(fmt.Sprintf("✅ Welcome messages enabled in %s\nPreview: %s",
		channelOrNone(guild.WelcomeChannelID), guild.RenderWelcome(inv.User().Mention())), true)
}

func (f *Feature) handleLogChannel(ctx context.Context, inv *common.Invocation) error {
	id := common.IDOrZero(inv.Options.Snowflake("channel"))
	if _, err := f.update(ctx, inv, models.GuildSettingsUpdate{LogChannelID: &id}); err != nil {
		return err
	}
	if id == 0 {
		return inv.Respond("✅ Moderation logging disabled", true)
	}
	return inv.Respond("✅ Moderation events will be logged in "+common.ChannelMention(common.FormatID(id)), true)
}
