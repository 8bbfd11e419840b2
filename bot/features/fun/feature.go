package fun

import (
	"context"
	"math/rand/v2"

	"cerealbot/bot/registry"
	"cerealbot/content"

	"github.com/bwmarrin/discordgo"
)

// ContentSource is the subset of the content client the fun commands use
type ContentSource interface {
	Meme(ctx context.Context) (*content.Meme, error)
	DadJoke(ctx context.Context) (string, error)
	Fact(ctx context.Context) (string, error)
	Quote(ctx context.Context) (*content.Quote, error)
	Roast(ctx context.Context) (text string, fromAPI bool)
}

var _ ContentSource = (*content.Client)(nil)

// Feature provides fetched content, shipping and profile lookups
type Feature struct {
	content ContentSource
	intN    func(n int) int
}

// NewFeature creates a new fun feature instance
func NewFeature(source ContentSource) *Feature {
	return &Feature{
		content: source,
		intN:    rand.IntN,
	}
}

func optionalMember(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "member",
		Description: description,
	}
}

// Commands returns the fun slash commands
func (f *Feature) Commands() []registry.Command {
	return []registry.Command{
		{
			Definition: &discordgo.ApplicationCommand{Name: "meme", Description: "Get a random meme from Reddit"},
			Handler:    f.handleMeme,
		},
		{
			Definition: &discordgo.ApplicationCommand{Name: "dadjoke", Description: "Get a random dad joke"},
			Handler:    f.handleDadJoke,
		},
		{
			Definition: &discordgo.ApplicationCommand{Name: "fact", Description: "Get a random fact"},
			Handler:    f.handleFact,
		},
		{
			Definition: &discordgo.ApplicationCommand{Name: "quote", Description: "Get an inspirational quote"},
			Handler:    f.handleQuote,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "roast",
				Description: "Roast someone (or yourself)",
				Options:     []*discordgo.ApplicationCommandOption{optionalMember("The member to roast (optional)")},
			},
			Handler: f.handleRoast,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "compliment",
				Description: "Give someone a compliment",
				Options:     []*discordgo.ApplicationCommandOption{optionalMember("The member to compliment (optional)")},
			},
			Handler: f.handleCompliment,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "ship",
				Description: "Ship two members together",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "member1",
						Description: "First member",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "member2",
						Description: "Second member (optional)",
					},
				},
			},
			Handler: f.handleShip,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "avatar",
				Description: "Get someone's avatar",
				Options:     []*discordgo.ApplicationCommandOption{optionalMember("The member whose avatar to get (optional)")},
			},
			Handler: f.handleAvatar,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "userinfo",
				Description: "Get information about a user",
				Options:     []*discordgo.ApplicationCommandOption{optionalMember("The member to get info about (optional)")},
			},
			Handler:     f.handleUserInfo,
			Permissions: registry.Permissions{GuildOnly: true},
		},
		{
			Definition:  &discordgo.ApplicationCommand{Name: "serverinfo", Description: "Get information about the server"},
			Handler:     f.handleServerInfo,
			Permissions: registry.Permissions{GuildOnly: true},
		},
	}
}
