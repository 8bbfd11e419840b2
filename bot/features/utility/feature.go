package utility

import (
	"context"
	"time"

	"cerealbot/afk"
	"cerealbot/bot/common"
	"cerealbot/bot/registry"
	"cerealbot/scheduler"
	"cerealbot/service"
	"cerealbot/sysinfo"
	"cerealbot/timezone"

	"github.com/bwmarrin/discordgo"
)

const (
	remindersShown  = 10
	minPollOptions  = 2
	maxPollOptions  = 10
	maxMessageInput = 1000
)

// Feature holds reminders, timers, lookups and the small channel tools
type Feature struct {
	reminders    *scheduler.Store
	afk          *afk.Tracker
	zones        *timezone.Table
	guildService service.GuildService

	// latency reports the gateway heartbeat round trip
	latency   func() time.Duration
	startedAt time.Time

	now     func() time.Time
	after   func(d time.Duration, f func())
	collect func(ctx context.Context) sysinfo.Snapshot
}

// NewFeature creates a new utility feature instance
func NewFeature(reminders *scheduler.Store, tracker *afk.Tracker, zones *timezone.Table, guildService service.GuildService, latency func() time.Duration) *Feature {
	return &Feature{
		reminders:    reminders,
		afk:          tracker,
		zones:        zones,
		guildService: guildService,
		latency:      latency,
		startedAt:    time.Now(),
		now:          time.Now,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		collect: sysinfo.Collect,
	}
}

func stringOption(name, description string, required bool, maxLength int) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
		MaxLength:   maxLength,
	}
}

// Commands returns the utility commands. All but botinfo also run from a prefixed text message.
func (f *Feature) Commands() []registry.Command {
	return []registry.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "remind",
				Description: "Set a reminder",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("time", "Time format: 10s, 5m, 2h, 1d (or \"tomorrow at 9am\")", true, 100),
					stringOption("message", "What to remind you about", true, maxMessageInput),
				},
			},
			Handler: f.handleRemind,
			Text:    true,
			Aliases: []string{"reminder", "remindme"},
		},
		{
			Definition: &discordgo.ApplicationCommand{Name: "reminders", Description: "List your active reminders"},
			Handler:    f.handleReminders,
			Text:       true,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "timer",
				Description: "Start a countdown timer",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("time", "Time format: 10s, 5m, 2h", true, 20),
				},
			},
			Handler: f.handleTimer,
			Text:    true,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "timezone",
				Description: "Check the current time in any timezone",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("location", "City, country, or timezone (e.g., Tokyo, EST, UTC)", true, 100),
				},
			},
			Handler: f.handleTimezone,
			Text:    true,
			Aliases: []string{"time", "tz"},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "poll",
				Description: "Create a poll",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("question", "The poll question", true, 200),
					stringOption("options", "Poll options separated by commas (e.g., Option1, Option2, Option3)", true, maxMessageInput),
				},
			},
			Handler:     f.handlePoll,
			Permissions: registry.Permissions{Bot: discordgo.PermissionAddReactions},
			Text:        true,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "afk",
				Description: "Set your AFK status",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("reason", "Reason for being AFK", false, 200),
				},
			},
			Handler: f.handleAFK,
			Text:    true,
		},
		{
			Definition: &discordgo.ApplicationCommand{Name: "ping", Description: "Check bot latency"},
			Handler:    f.handlePing,
			NoCooldown: true,
			Text:       true,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "suggest",
				Description: "Submit a suggestion",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("suggestion", "Your suggestion", true, maxMessageInput),
				},
			},
			Handler:     f.handleSuggest,
			Permissions: registry.Permissions{Bot: discordgo.PermissionAddReactions},
			Text:        true,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "say",
				Description: "Make the bot say something",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("message", "The message for the bot to say", true, common.MaxMessageLength),
				},
			},
			Handler: f.handleSay,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionManageMessages,
				GuildOnly: true,
			},
			Text: true,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "embed",
				Description: "Create a custom embed",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("title", "Embed title", true, common.MaxEmbedTitle),
					stringOption("description", "Embed description", true, 4000),
				},
			},
			Handler: f.handleEmbed,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionManageMessages,
				GuildOnly: true,
			},
			Text: true,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "calculate",
				Description: "Calculate a mathematical expression",
				Options: []*discordgo.ApplicationCommandOption{
					stringOption("expression", "The mathematical expression to calculate", true, 200),
				},
			},
			Handler: f.handleCalculate,
			Text:    true,
			Aliases: []string{"calc", "math"},
		},
		{
			Definition: &discordgo.ApplicationCommand{Name: "botinfo", Description: "Show bot and host statistics"},
			Handler:    f.handleBotInfo,
		},
	}
}
