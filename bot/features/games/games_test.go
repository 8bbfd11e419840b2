package games

import (
	"context"
	"testing"
	"time"

	"cerealbot/bot/common"
	"cerealbot/bot/registry"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions()
	s.now = func() time.Time { return now }

	t.Run("only the starter resolves", func(t *testing.T) {
		id := s.Start("alice")

		assert.Equal(t, ChoiceNotStarter, s.Choose(id, "bob"))
		assert.Equal(t, ChoiceAccepted, s.Choose(id, "alice"))
		assert.Equal(t, ChoiceClosed, s.Choose(id, "alice"))
	})

	t.Run("expires after the ttl", func(t *testing.T) {
		id := s.Start("alice")
		now = now.Add(SessionTTL)

		assert.Equal(t, ChoiceClosed, s.Choose(id, "alice"))
	})

	t.Run("unknown session", func(t *testing.T) {
		assert.Equal(t, ChoiceClosed, s.Choose(uuid.New(), "alice"))
	})

	t.Run("start prunes expired sessions", func(t *testing.T) {
		s.Start("a")
		s.Start("b")
		now = now.Add(time.Minute)
		s.Start("c")

		assert.Equal(t, 1, s.Len())
	})
}

func TestParseDice(t *testing.T) {
	tests := []struct {
		in    string
		count int
		sides int
		err   error
	}{
		{"1d6", 1, 6, nil},
		{"2D20", 2, 20, nil},
		{" 25d100 ", 25, 100, nil},
		{"26d6", 0, 0, ErrTooManyDice},
		{"1d101", 0, 0, ErrTooManyDice},
		{"0d6", 0, 0, ErrDiceFormat},
		{"1d0", 0, 0, ErrDiceFormat},
		{"d6", 0, 0, ErrDiceFormat},
		{"six", 0, 0, ErrDiceFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			count, sides, err := ParseDice(tt.in)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.count, count)
			assert.Equal(t, tt.sides, sides)
		})
	}
}

func TestRPSOutcome(t *testing.T) {
	assert.Equal(t, 0, RPSOutcome("rock", "rock"))
	assert.Equal(t, 1, RPSOutcome("rock", "scissors"))
	assert.Equal(t, 1, RPSOutcome("paper", "rock"))
	assert.Equal(t, 1, RPSOutcome("scissors", "paper"))
	assert.Equal(t, -1, RPSOutcome("rock", "paper"))
}

func slash(name string, userID string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: userID, Username: userID},
		Data: discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}
}

func press(customID, userID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		User: &discordgo.User{ID: userID, Username: userID},
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func TestTruthOrDare(t *testing.T) {
	f := NewFeature()
	f.intN = func(int) int { return 0 }

	var buttons []discordgo.MessageComponent
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data.Embeds[0].Title == "🎲 Truth or Dare"
	})).Run(func(args mock.Arguments) {
		buttons = args.Get(1).(*discordgo.InteractionResponse).Data.Components
	}).Return(nil).Once()

	require.NoError(t, f.handleTruthOrDare(context.Background(), common.NewInvocation(s, slash("truthordare", "alice"))))
	require.Len(t, buttons, 1)
	dare := buttons[0].(discordgo.ActionsRow).Components[1].(discordgo.Button).CustomID
	assert.Equal(t, componentPrefix, dare[:len(componentPrefix)])

	t.Run("someone else is turned away", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
			return r.Data.Content == "This isn't your game!" && r.Data.Flags == discordgo.MessageFlagsEphemeral
		})).Return(nil).Once()

		require.NoError(t, f.handleTruthOrDareChoice(context.Background(), common.NewInvocation(s, press(dare, "bob"))))
		s.AssertExpectations(t)
	})

	t.Run("starter gets a dare", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
			e := r.Data.Embeds[0]
			return e.Title == "🎯 Dare" && e.Description == dareChallenges[0] && e.Footer.Text == "Asked by alice"
		})).Return(nil).Once()

		require.NoError(t, f.handleTruthOrDareChoice(context.Background(), common.NewInvocation(s, press(dare, "alice"))))
		s.AssertExpectations(t)
	})

	t.Run("second press produces no output", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
			return r.Type == discordgo.InteractionResponseDeferredMessageUpdate
		})).Return(nil).Once()

		require.NoError(t, f.handleTruthOrDareChoice(context.Background(), common.NewInvocation(s, press(dare, "alice"))))
		s.AssertExpectations(t)
	})
}

func TestRoll(t *testing.T) {
	f := NewFeature()
	f.intN = func(n int) int { return n - 1 }

	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		e := r.Data.Embeds[0]
		return e.Fields[0].Value == "6, 6, 6" && e.Fields[1].Value == "18"
	})).Return(nil).Once()

	opt := &discordgo.ApplicationCommandInteractionDataOption{Name: "dice", Type: discordgo.ApplicationCommandOptionString, Value: "3d6"}
	require.NoError(t, f.handleRoll(context.Background(), common.NewInvocation(s, slash("roll", "alice", opt))))
	s.AssertExpectations(t)

	opt.Value = "30d6"
	err := f.handleRoll(context.Background(), common.NewInvocation(&common.MockSession{}, slash("roll", "alice", opt)))
	assert.Equal(t, "❌ Too many dice or sides! Max: 25d100", common.UserMessage(err))
}

func TestCommandsRegister(t *testing.T) {
	f := NewFeature()
	reg := registry.New()
	reg.MustRegister(f.Commands()...)
	for prefix, h := range f.Components() {
		require.NoError(t, reg.RegisterComponent(prefix, h))
	}
	assert.Equal(t, 7, reg.Len())
}
