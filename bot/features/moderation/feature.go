package moderation

import (
	"cerealbot/bot/common"
	"cerealbot/bot/registry"
	"cerealbot/service"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultMuteMinutes = 60
	maxMuteMinutes     = 40320
	defaultClearAmount = 10
	maxClearAmount     = 100
	maxSlowmodeSeconds = 21600
	warningsShown      = 5
)

// Feature handles member moderation and warnings
type Feature struct {
	warningService service.WarningService
	botID          func() string
}

// NewFeature creates a new moderation feature instance. botID reports the
// bot's own user id once the gateway is ready.
func NewFeature(warningService service.WarningService, botID func() string) *Feature {
	return &Feature{
		warningService: warningService,
		botID:          botID,
	}
}

func memberOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "member",
		Description: description,
		Required:    required,
	}
}

func reasonOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: description,
		MaxLength:   512,
	}
}

// Commands returns the moderation slash commands
func (f *Feature) Commands() []registry.Command {
	return []registry.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "kick",
				Description: "Kick a member from the server",
				Options: []*discordgo.ApplicationCommandOption{
					memberOption("The member to kick", true),
					reasonOption("Reason for kicking"),
				},
			},
			Handler: f.handleKick,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionKickMembers,
				Bot:       discordgo.PermissionKickMembers,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "ban",
				Description: "Ban a member from the server",
				Options: []*discordgo.ApplicationCommandOption{
					memberOption("The member to ban", true),
					reasonOption("Reason for banning"),
				},
			},
			Handler: f.handleBan,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionBanMembers,
				Bot:       discordgo.PermissionBanMembers,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "unban",
				Description: "Unban a user by their ID",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "user_id",
						Description: "The ID of the user to unban",
						Required:    true,
					},
				},
			},
			Handler: f.handleUnban,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionBanMembers,
				Bot:       discordgo.PermissionBanMembers,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "mute",
				Description: "Timeout a member",
				Options: []*discordgo.ApplicationCommandOption{
					memberOption("The member to timeout", true),
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "duration",
						Description: "Duration in minutes (max 40320)",
						MinValue:    common.Bound(1),
					},
					reasonOption("Reason for timeout"),
				},
			},
			Handler: f.handleMute,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionModerateMembers,
				Bot:       discordgo.PermissionModerateMembers,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "unmute",
				Description: "Remove timeout from a member",
				Options: []*discordgo.ApplicationCommandOption{
					memberOption("The member to unmute", true),
				},
			},
			Handler: f.handleUnmute,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionModerateMembers,
				Bot:       discordgo.PermissionModerateMembers,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "clear",
				Description: "Delete messages from the channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "amount",
						Description: "Number of messages to delete (max 100)",
						MinValue:    common.Bound(1),
						MaxValue:    maxClearAmount,
					},
				},
			},
			Handler: f.handleClear,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionManageMessages,
				Bot:       discordgo.PermissionManageMessages | discordgo.PermissionReadMessageHistory,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "slowmode",
				Description: "Set slowmode for the current channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "seconds",
						Description: "Slowmode delay in seconds (0 to disable, max 21600)",
						MinValue:    common.Bound(0),
					},
				},
			},
			Handler: f.handleSlowmode,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionManageChannels,
				Bot:       discordgo.PermissionManageChannels,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "warn",
				Description: "Warn a member",
				Options: []*discordgo.ApplicationCommandOption{
					memberOption("The member to warn", true),
					reasonOption("Reason for warning"),
				},
			},
			Handler: f.handleWarn,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionModerateMembers,
				GuildOnly: true,
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "warnings",
				Description: "View warnings for a member",
				Options: []*discordgo.ApplicationCommandOption{
					memberOption("The member to check warnings for (leave empty for yourself)", false),
				},
			},
			Handler:     f.handleWarnings,
			Permissions: registry.Permissions{GuildOnly: true},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "clear_warnings",
				Description: "Clear all warnings for a member",
				Options: []*discordgo.ApplicationCommandOption{
					memberOption("The member to clear warnings for", true),
				},
			},
			Handler: f.handleClearWarnings,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionAdministrator,
				GuildOnly: true,
			},
		},
	}
}
