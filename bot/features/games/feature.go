package games

import (
	"math/rand/v2"

	"cerealbot/bot/registry"

	"github.com/bwmarrin/discordgo"
)

// componentPrefix routes truth-or-dare button presses back to this feature
const componentPrefix = "tod"

// Feature provides party games and random pickers
type Feature struct {
	sessions *Sessions
	intN     func(n int) int
}

// NewFeature creates a new games feature instance
func NewFeature() *Feature {
	return &Feature{
		sessions: NewSessions(),
		intN:     rand.IntN,
	}
}

func pick[T any](f *Feature, items []T) T {
	return items[f.intN(len(items))]
}

// Commands returns the game slash commands
func (f *Feature) Commands() []registry.Command {
	return []registry.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "truthordare",
				Description: "Play Truth or Dare",
			},
			Handler: f.handleTruthOrDare,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "wouldyourather",
				Description: "Get a Would You Rather question",
			},
			Handler: f.handleWouldYouRather,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "neverhaveiever",
				Description: "Play Never Have I Ever",
			},
			Handler: f.handleNeverHaveIEver,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "8ball",
				Description: "Ask the magic 8ball a question",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "question",
						Description: "Your question for the magic 8ball",
						Required:    true,
						MaxLength:   1000,
					},
				},
			},
			Handler: f.handleEightBall,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "rps",
				Description: "Play Rock Paper Scissors",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "choice",
						Description: "Choose rock, paper, or scissors",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Rock", Value: "rock"},
							{Name: "Paper", Value: "paper"},
							{Name: "Scissors", Value: "scissors"},
						},
					},
				},
			},
			Handler: f.handleRPS,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "flip",
				Description: "Flip a coin",
			},
			Handler: f.handleFlip,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "roll",
				Description: "Roll dice",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "dice",
						Description: "Format: NdN (e.g., 2d6 for two 6-sided dice)",
					},
				},
			},
			Handler: f.handleRoll,
		},
	}
}

// Components returns the button handlers keyed by custom id prefix
func (f *Feature) Components() map[string]registry.Handler {
	return map[string]registry.Handler{
		componentPrefix: f.handleTruthOrDareChoice,
	}
}
