package giveaways

import (
	"time"

	"cerealbot/bot/common"
	"cerealbot/bot/registry"
	"cerealbot/service"

	"github.com/bwmarrin/discordgo"
)

const (
	componentPrefix = "giveaway"
	actionJoin      = "join"
	maxWinners      = 20
)

// Feature runs prize draws with a join button
type Feature struct {
	giveawayService service.GiveawayService
	now             func() time.Time
}

// NewFeature creates a new giveaways feature instance
func NewFeature(giveawayService service.GiveawayService) *Feature {
	return &Feature{
		giveawayService: giveawayService,
		now:             time.Now,
	}
}

func idOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: "Giveaway ID (shown in the giveaway footer)",
		Required:    true,
		MinValue:    common.Bound(1),
	}
}

// Commands returns the giveaway slash command
func (f *Feature) Commands() []registry.Command {
	return []registry.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "giveaway",
				Description: "Run giveaways in this server",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "start",
						Description: "Start a giveaway in this channel",
						Options: []*discordgo.ApplicationCommandOption{
							{
								Type:        discordgo.ApplicationCommandOptionString,
								Name:        "prize",
								Description: "What the winners get",
								Required:    true,
								MaxLength:   200,
							},
							{
								Type:        discordgo.ApplicationCommandOptionString,
								Name:        "duration",
								Description: "How long it runs: 10m, 2h, 1d",
								Required:    true,
								MaxLength:   20,
							},
							{
								Type:        discordgo.ApplicationCommandOptionInteger,
								Name:        "winners",
								Description: "Number of winners (default 1)",
								MinValue:    common.Bound(1),
								MaxValue:    maxWinners,
							},
							{
								Type:        discordgo.ApplicationCommandOptionString,
								Name:        "title",
								Description: "Headline for the giveaway",
								MaxLength:   common.MaxEmbedTitle,
							},
							{
								Type:        discordgo.ApplicationCommandOptionString,
								Name:        "description",
								Description: "Extra details",
								MaxLength:   1000,
							},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "end",
						Description: "End a giveaway now and draw winners",
						Options:     []*discordgo.ApplicationCommandOption{idOption()},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "list",
						Description: "List running giveaways",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "reroll",
						Description: "Draw new winners for an ended giveaway",
						Options:     []*discordgo.ApplicationCommandOption{idOption()},
					},
				},
			},
			Handler: f.handleGiveaway,
			Permissions: registry.Permissions{
				User:      discordgo.PermissionManageGuild,
				GuildOnly: true,
			},
		},
	}
}

// Components routes the join button
func (f *Feature) Components() map[string]registry.Handler {
	return map[string]registry.Handler{
		componentPrefix: f.handleJoin,
	}
}
