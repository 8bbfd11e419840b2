package settings

import (
	"cerealbot/bot/registry"
	"cerealbot/service"
	"cerealbot/timezone"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild settings management
type Feature struct {
	guildService service.GuildService
	zones        *timezone.Table
}

// NewFeature creates a new settings feature instance
func NewFeature(guildService service.GuildService, zones *timezone.Table) *Feature {
	return &Feature{
		guildService: guildService,
		zones:        zones,
	}
}

func textChannel(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         name,
		Description:  description,
		Required:     required,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
	}
}

// Commands returns the /settings command
func (f *Feature) Commands() []registry.Command {
	return []registry.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "settings",
				Description: "View or change this server's bot settings",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "view",
						Description: "Show the current settings",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "prefix",
						Description: "Set the prefix for text commands",
						Options: []*discordgo.ApplicationCommandOption{
							{
								Type:        discordgo.ApplicationCommandOptionString,
								Name:        "value",
								Description: "New prefix (up to 10 characters, no spaces)",
								Required:    true,
								MaxLength:   10,
							},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "timezone",
						Description: "Set the timezone used for reminders",
						Options: []*discordgo.ApplicationCommandOption{
							{
								Type:        discordgo.ApplicationCommandOptionString,
								Name:        "location",
								Description: "City, country, or timezone (e.g., Tokyo, EST, UTC)",
								Required:    true,
								MaxLength:   100,
							},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "welcome",
						Description: "Configure the welcome message for new members",
						Options: []*discordgo.ApplicationCommandOption{
							{
								Type:        discordgo.ApplicationCommandOptionBoolean,
								Name:        "enabled",
								Description: "Send welcome messages",
								Required:    true,
							},
							textChannel("channel", "Where to post welcome messages", false),
							{
								Type:        discordgo.ApplicationCommandOptionString,
								Name:        "message",
								Description: "Template; {user} and {guild} are replaced",
								MaxLength:   1000,
							},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "logchannel",
						Description: "Set where moderation events are logged (omit to disable)",
						Options:     []*discordgo.ApplicationCommandOption{textChannel("channel", "Log channel", false)},
					},
				},
			},
			Handler: f.handleSettings,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionManageGuild,
				GuildOnly: true,
			},
		},
	}
}
