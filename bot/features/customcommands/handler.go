package customcommands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cerealbot/bot/common"
	"cerealbot/models"
	"cerealbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const listDescriptionLimit = 4000

// userMentionsOnly keeps canned responses from pinging roles or @everyone
var userMentionsOnly = &discordgo.MessageAllowedMentions{
	Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
}

func notFound(name string) error {
	return common.NewUserError(fmt.Sprintf("❌ No custom command named `%s`.", name), "custom command not found")
}

func (f *Feature) handleCustomCommand(ctx context.Context, inv *common.Invocation) error {
	switch inv.Subcommand {
	case "add":
		return f.handleAdd(ctx, inv)
	case "remove":
		return f.handleRemove(ctx, inv)
	case "list":
		return f.handleList(ctx, inv)
	case "show":
		return f.handleShow(ctx, inv)
	default:
		return common.NewUserError(common.MsgInvalidArgs, "unknown customcommand subcommand "+inv.Subcommand)
	}
}

func (f *Feature) handleAdd(ctx context.Context, inv *common.Invocation) error {
	name := service.NormalizeCommandName(inv.Options.String("name", ""))
	response := inv.Options.String("response", "")

	cmd, err := f.customCommandService.Create(ctx, common.IDOrZero(inv.GuildID()), name, response, common.IDOrZero(inv.UserID()))
	switch {
	case errors.Is(err, service.ErrDuplicateCustomCommand):
		return common.NewUserError(fmt.Sprintf("❌ A custom command named `%s` already exists!", name), "duplicate custom command")
	case errors.Is(err, service.ErrInvalidCustomCommand):
		return common.NewUserError(
			"❌ Command names must be 1-32 characters of a-z, 0-9, _ or -, and responses at most 2000 characters.",
			err.Error(),
		)
	case err != nil:
		return common.NewSystemError(err, "failed to create custom command")
	}

	embed := common.SuccessEmbed("Custom Command Created",
		fmt.Sprintf("Run it with `/cc name:%s` or by typing the server prefix followed by `%s`.", cmd.Name, cmd.Name))
	return inv.RespondEmbed(embed, nil, false)
}

func (f *Feature) handleRemove(ctx context.Context, inv *common.Invocation) error {
	name := service.NormalizeCommandName(inv.Options.String("name", ""))

	err := f.customCommandService.Remove(ctx, common.IDOrZero(inv.GuildID()), name)
	if errors.Is(err, service.ErrCustomCommandNotFound) {
		return notFound(name)
	}
	if err != nil {
		return common.NewSystemError(err, "failed to remove custom command")
	}
	return inv.Respond(fmt.Sprintf("🗑️ Custom command `%s` removed.", name), false)
}

func (f *Feature) handleList(ctx context.Context, inv *common.Invocation) error {
	cmds, err := f.customCommandService.List(ctx, common.IDOrZero(inv.GuildID()))
	if err != nil {
		return common.NewSystemError(err, "failed to list custom commands")
	}
	if len(cmds) == 0 {
		return inv.Respond("This server has no custom commands yet. Add one with `/customcommand add`.", true)
	}

	var b strings.Builder
	for i, cmd := range cmds {
		line := fmt.Sprintf("`%s` (%s)\n", cmd.Name, common.Plural(cmd.UsageCount, "use"))
		if b.Len()+len(line) > listDescriptionLimit {
			fmt.Fprintf(&b, "…and %d more", len(cmds)-i)
			break
		}
		b.WriteString(line)
	}

	embed := common.NewEmbed(fmt.Sprintf("📝 Custom Commands (%d)", len(cmds)), b.String(), common.ColorInfo)
	return inv.RespondEmbed(embed, nil, true)
}

func (f *Feature) handleShow(ctx context.Context, inv *common.Invocation) error {
	name := service.NormalizeCommandName(inv.Options.String("name", ""))

	cmd, err := f.customCommandService.Get(ctx, common.IDOrZero(inv.GuildID()), name)
	if errors.Is(err, service.ErrCustomCommandNotFound) {
		return notFound(name)
	}
	if err != nil {
		return common.NewSystemError(err, "failed to load custom command")
	}

	embed := common.NewEmbed("📝 "+cmd.Name, cmd.Response, common.ColorInfo)
	common.AddField(embed, "Uses", common.FormatNumber(cmd.UsageCount), true)
	common.AddField(embed, "Created By", common.UserMention(common.FormatID(cmd.CreatedBy)), true)
	common.AddField(embed, "Created", common.FormatDiscordTimestamp(cmd.CreatedAt, "R"), true)
	return inv.RespondEmbed(embed, nil, true)
}

func (f *Feature) handleInvoke(ctx context.Context, inv *common.Invocation) error {
	name := service.NormalizeCommandName(inv.Options.String("name", ""))

	cmd, err := f.customCommandService.Invoke(ctx, common.IDOrZero(inv.GuildID()), name)
	if err != nil {
		return common.NewSystemError(err, "failed to invoke custom command")
	}
	if cmd == nil {
		return notFound(name)
	}

	return inv.RespondData(&discordgo.InteractionResponseData{
		Content:         cmd.Response,
		AllowedMentions: userMentionsOnly,
	})
}

// CommandName extracts the custom command name from a "<prefix><name> ..." message, or "" when
// the message does not start with the prefix
func CommandName(content, prefix string) string {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return ""
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 || content[len(prefix)] == ' ' {
		return ""
	}
	return service.NormalizeCommandName(fields[0])
}

// HandleMessage answers a text message that names a custom command after the guild prefix.
// It reports whether a command was sent.
func (f *Feature) HandleMessage(ctx context.Context, s common.Session, m *discordgo.Message, prefix string) (bool, error) {
	name := CommandName(m.Content, prefix)
	if name == "" || m.GuildID == "" {
		return false, nil
	}

	cmd, err := f.customCommandService.Invoke(ctx, common.IDOrZero(m.GuildID), name)
	if err != nil {
		return false, fmt.Errorf("failed to invoke custom command %s: %w", name, err)
	}
	if cmd == nil {
		return false, nil
	}

	if err := send(s, m.ChannelID, cmd); err != nil {
		return false, err
	}

	log.WithFields(log.Fields{
		"guildID": m.GuildID,
		"name":    cmd.Name,
		"userID":  m.Author.ID,
	}).Debug("Custom command triggered by message")
	return true, nil
}

func send(s common.Session, channelID string, cmd *models.CustomCommand) error {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         cmd.Response,
		AllowedMentions: userMentionsOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to send custom command %s: %w", cmd.Name, err)
	}
	return nil
}
