package giveaways

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cerealbot/bot/common"
	"cerealbot/events"
	"cerealbot/models"
	"cerealbot/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func subcommand(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "1",
		ChannelID: "20",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "10", Username: "alice"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "giveaway",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: name, Type: discordgo.ApplicationCommandOptionSubCommand, Options: opts},
			},
		},
	}
}

func str(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func num(name string, value float64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: value}
}

func button(customID, userID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:    discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func TestStart(t *testing.T) {
	svc := &service.MockGiveawayService{}
	svc.On("Start", mock.Anything, service.StartGiveawayParams{
		GuildID:     1,
		ChannelID:   20,
		CreatedBy:   10,
		Prize:       "Nitro",
		WinnerCount: 2,
		Duration:    2 * time.Hour,
	}).Return(&models.Giveaway{ID: 7, Title: "🎉 Giveaway", Prize: "Nitro", WinnerCount: 2, CreatedBy: 10, Active: true}, nil).Once()
	svc.On("AttachMessage", mock.Anything, int64(7), int64(555)).Return(nil).Once()

	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		e := r.Data.Embeds[0]
		row := r.Data.Components[0].(discordgo.ActionsRow)
		return strings.Contains(e.Description, "**Prize:** Nitro") &&
			e.Footer.Text == "Giveaway #7 • Press the button to enter" &&
			row.Components[0].(discordgo.Button).CustomID == "giveaway:7:join"
	})).Return(nil).Once()
	s.On("InteractionResponse", mock.Anything).Return(&discordgo.Message{ID: "555"}, nil).Once()

	inv := common.NewInvocation(s, subcommand("start", str("prize", "Nitro"), str("duration", "2h"), num("winners", 2)))
	require.NoError(t, NewFeature(svc).handleGiveaway(context.Background(), inv))
	svc.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestStart_InvalidDuration(t *testing.T) {
	svc := &service.MockGiveawayService{}
	f := NewFeature(svc)

	err := f.handleGiveaway(context.Background(), common.NewInvocation(&common.MockSession{}, subcommand("start", str("prize", "x"), str("duration", "soon"))))
	assert.Equal(t, "❌ Invalid duration! Use: 10m, 2h, or 1d", common.UserMessage(err))

	err = f.handleGiveaway(context.Background(), common.NewInvocation(&common.MockSession{}, subcommand("start", str("prize", "x"), str("duration", "5s"))))
	assert.Equal(t, "❌ A giveaway must run for at least 10 seconds!", common.UserMessage(err))
	svc.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func TestEnd(t *testing.T) {
	t.Run("ends and points to the channel", func(t *testing.T) {
		svc := &service.MockGiveawayService{}
		svc.On("Get", mock.Anything, int64(7)).Return(&models.Giveaway{ID: 7, GuildID: 1, ChannelID: 20, Active: true}, nil).Once()
		svc.On("End", mock.Anything, int64(7)).Return(&models.Giveaway{ID: 7, GuildID: 1}, nil).Once()

		s := &common.MockSession{}
		s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
			return r.Data.Content == "✅ Giveaway #7 ended. Winners are announced in <#20>."
		})).Return(nil).Once()

		require.NoError(t, NewFeature(svc).handleGiveaway(context.Background(), common.NewInvocation(s, subcommand("end", num("id", 7)))))
		svc.AssertExpectations(t)
	})

	t.Run("already ended", func(t *testing.T) {
		svc := &service.MockGiveawayService{}
		svc.On("Get", mock.Anything, int64(7)).Return(&models.Giveaway{ID: 7, GuildID: 1}, nil).Once()
		svc.On("End", mock.Anything, int64(7)).Return(nil, service.ErrGiveawayNotActive).Once()

		err := NewFeature(svc).handleGiveaway(context.Background(), common.NewInvocation(&common.MockSession{}, subcommand("end", num("id", 7))))
		assert.Equal(t, "❌ Giveaway #7 has already ended.", common.UserMessage(err))
	})

	t.Run("other guild's giveaway", func(t *testing.T) {
		svc := &service.MockGiveawayService{}
		svc.On("Get", mock.Anything, int64(8)).Return(&models.Giveaway{ID: 8, GuildID: 2}, nil).Once()

		err := NewFeature(svc).handleGiveaway(context.Background(), common.NewInvocation(&common.MockSession{}, subcommand("end", num("id", 8))))
		assert.Equal(t, "❌ Giveaway #8 not found.", common.UserMessage(err))
		svc.AssertNotCalled(t, "End", mock.Anything, mock.Anything)
	})
}

func TestReroll_StillActive(t *testing.T) {
	svc := &service.MockGiveawayService{}
	svc.On("Get", mock.Anything, int64(7)).Return(&models.Giveaway{ID: 7, GuildID: 1, Active: true}, nil).Once()
	svc.On("Reroll", mock.Anything, int64(7)).Return(nil, service.ErrGiveawayStillActive).Once()

	err := NewFeature(svc).handleGiveaway(context.Background(), common.NewInvocation(&common.MockSession{}, subcommand("reroll", num("id", 7))))
	assert.Equal(t, "❌ Giveaway #7 is still running. End it first.", common.UserMessage(err))
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name   string
		result service.JoinResult
		err    error
		want   string
	}{
		{"joined", service.JoinResultJoined, nil, "🎉 You're in! Good luck."},
		{"already joined", service.JoinResultAlreadyJoined, nil, "You've already entered this giveaway!"},
		{"ended", service.JoinResultNotActive, nil, "❌ This giveaway has ended."},
		{"deleted", service.JoinResultNotActive, service.ErrGiveawayNotFound, "❌ This giveaway has ended."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &service.MockGiveawayService{}
			svc.On("Join", mock.Anything, int64(7), int64(30)).Return(tt.result, tt.err).Once()

			s := &common.MockSession{}
			s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
				return r.Data.Content == tt.want && r.Data.Flags == discordgo.MessageFlagsEphemeral
			})).Return(nil).Once()

			require.NoError(t, NewFeature(svc).handleJoin(context.Background(), common.NewInvocation(s, button("giveaway:7:join", "30"))))
			s.AssertExpectations(t)
		})
	}

	t.Run("database failure", func(t *testing.T) {
		svc := &service.MockGiveawayService{}
		svc.On("Join", mock.Anything, int64(7), int64(30)).Return(service.JoinResultNotActive, errors.New("timeout")).Once()

		err := NewFeature(svc).handleJoin(context.Background(), common.NewInvocation(&common.MockSession{}, button("giveaway:7:join", "30")))
		assert.False(t, common.IsUserError(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		err := NewFeature(&service.MockGiveawayService{}).handleJoin(context.Background(),
			common.NewInvocation(&common.MockSession{}, button("giveaway:abc:join", "30")))
		assert.True(t, common.IsUserError(err))
	})
}

func TestAnnounce(t *testing.T) {
	messageID := int64(555)

	t.Run("ended with winners", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("ChannelMessageEditComplex", mock.MatchedBy(func(e *discordgo.MessageEdit) bool {
			return e.ID == "555" && e.Channel == "20" && len(*e.Components) == 0 &&
				strings.HasSuffix((*e.Embeds)[0].Description, "**Winners:** <@1>, <@2>")
		})).Return(&discordgo.Message{}, nil).Once()
		s.On("ChannelMessageSendComplex", "20", mock.MatchedBy(func(m *discordgo.MessageSend) bool {
			return m.Content == "🎉 Congratulations <@1>, <@2>! You won **Nitro**!" && m.Reference.MessageID == "555"
		})).Return(&discordgo.Message{}, nil).Once()

		require.NoError(t, Announce(s, events.GiveawayEndedEvent{
			GiveawayID: 7, ChannelID: 20, MessageID: &messageID, Prize: "Nitro", Winners: []int64{1, 2}, ParticipantCount: 5,
		}))
		s.AssertExpectations(t)
	})

	t.Run("reroll leaves the original message alone", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("ChannelMessageSendComplex", "20", mock.MatchedBy(func(m *discordgo.MessageSend) bool {
			return m.Content == "🔁 New draw! Congratulations <@3>, you won **Nitro**!"
		})).Return(&discordgo.Message{}, nil).Once()

		require.NoError(t, Announce(s, events.GiveawayEndedEvent{
			GiveawayID: 7, ChannelID: 20, MessageID: &messageID, Prize: "Nitro", Winners: []int64{3}, Reroll: true,
		}))
		s.AssertNotCalled(t, "ChannelMessageEditComplex", mock.Anything)
		s.AssertExpectations(t)
	})

	t.Run("no entries", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("ChannelMessageSendComplex", "20", mock.MatchedBy(func(m *discordgo.MessageSend) bool {
			return m.Content == "No one entered the giveaway for **Nitro** 😢" && m.Reference == nil
		})).Return(&discordgo.Message{}, nil).Once()

		require.NoError(t, Announce(s, events.GiveawayEndedEvent{GiveawayID: 7, ChannelID: 20, Prize: "Nitro"}))
		s.AssertExpectations(t)
	})
}
