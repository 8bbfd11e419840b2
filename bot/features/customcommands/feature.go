package customcommands

import (
	"cerealbot/bot/common"
	"cerealbot/bot/registry"
	"cerealbot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature manages guild-defined canned responses
type Feature struct {
	customCommandService service.CustomCommandService
}

// NewFeature creates a new custom commands feature instance
func NewFeature(customCommandService service.CustomCommandService) *Feature {
	return &Feature{customCommandService: customCommandService}
}

func nameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Command name (a-z, 0-9, _ or -)",
		Required:    true,
		MaxLength:   32,
	}
}

// Commands returns the custom command management and invocation commands
func (f *Feature) Commands() []registry.Command {
	return []registry.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "customcommand",
				Description: "Manage this server's custom commands",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "add",
						Description: "Create a custom command",
						Options: []*discordgo.ApplicationCommandOption{
							nameOption(),
							{
								Type:        discordgo.ApplicationCommandOptionString,
								Name:        "response",
								Description: "What the bot replies with",
								Required:    true,
								MaxLength:   common.MaxMessageLength,
							},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "remove",
						Description: "Delete a custom command",
						Options:     []*discordgo.ApplicationCommandOption{nameOption()},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "list",
						Description: "List this server's custom commands",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "show",
						Description: "Show a custom command and its usage",
						Options:     []*discordgo.ApplicationCommandOption{nameOption()},
					},
				},
			},
			Handler: f.handleCustomCommand,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionManageGuild,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "cc",
				Description: "Run one of this server's custom commands",
				Options:     []*discordgo.ApplicationCommandOption{nameOption()},
			},
			Handler:     f.handleInvoke,
			Permissions: registry.Permissions{GuildOnly: true},
		},
	}
}
