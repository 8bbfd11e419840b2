package bot

import (
	"context"
	"fmt"
	"strings"

	"cerealbot/bot/common"
	"cerealbot/bot/registry"

	"github.com/bwmarrin/discordgo"
)

const maxEmbedFields = 25

func (b *Bot) helpCommand() registry.Command {
	return registry.Command{
		Definition: &discordgo.ApplicationCommand{
			Name:        "help",
			Description: "List the bot's commands or show details for one",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "command",
					Description: "Command to explain",
					MaxLength:   32,
				},
			},
		},
		Handler:    b.handleHelp,
		NoCooldown: true,
	}
}

func (b *Bot) handleHelp(_ context.Context, inv *common.Invocation) error {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(inv.Options.String("command", ""))), "/")
	if name != "" {
		cmd, err := b.registry.Resolve(name)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("❌ Unknown command `%s`. Use `/help` to see them all.", name), "help for unknown command")
		}
		return inv.RespondEmbed(commandHelp(cmd), nil, true)
	}

	var sb strings.Builder
	for _, cmd := range b.registry.Commands() {
		fmt.Fprintf(&sb, "`/%s` %s\n", cmd.Name(), cmd.Definition.Description)
	}

	embed := common.NewEmbed("🥣 Cereal Bot Commands", common.Truncate(sb.String(), 4096), common.ColorPrimary)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Use /help command:<name> for details"}
	return inv.RespondEmbed(embed, nil, true)
}

func commandHelp(cmd *registry.Command) *discordgo.MessageEmbed {
	embed := common.NewEmbed("/"+cmd.Name(), cmd.Definition.Description, common.ColorPrimary)

	for _, opt := range cmd.Definition.Options {
		if len(embed.Fields) == maxEmbedFields {
			break
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand:
			common.AddField(embed, fmt.Sprintf("/%s %s", cmd.Name(), opt.Name), opt.Description, false)
		default:
			name := opt.Name
			if opt.Required {
				name += " (required)"
			}
			common.AddField(embed, name, opt.Description, true)
		}
	}

	if len(cmd.Aliases) > 0 && len(embed.Fields) < maxEmbedFields {
		common.AddField(embed, "Aliases", "`"+strings.Join(cmd.Aliases, "`, `")+"`", false)
	}

	if cmd.Permissions.GuildOnly {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Server only"}
	}
	return embed
}
