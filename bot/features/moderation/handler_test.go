package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cerealbot/bot/common"
	"cerealbot/models"
	"cerealbot/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGuild   = "100"
	testChannel = "200"
	testMod     = "300"
	testMember  = "400"
	testOwner   = "500"
	testBot     = "600"
)

var testRoles = []*discordgo.Role{
	{ID: "r-admin", Position: 10},
	{ID: "r-mod", Position: 5},
	{ID: "r-member", Position: 1},
}

// interaction builds a slash command from the moderator with the member option resolved
func interaction(name, targetID string, targetRoles []string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	options := append([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "member", Type: discordgo.ApplicationCommandOptionUser, Value: targetID},
	}, opts...)

	return &discordgo.Interaction{
		ID:        "i1",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   testGuild,
		ChannelID: testChannel,
		Member: &discordgo.Member{
			User:  &discordgo.User{ID: testMod, Username: "mod"},
			Roles: []string{"r-mod"},
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Users:   map[string]*discordgo.User{targetID: {ID: targetID, Username: "target"}},
				Members: map[string]*discordgo.Member{targetID: {Roles: targetRoles}},
			},
		},
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func intOpt(name string, value float64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: value}
}

func guildSession() *common.MockSession {
	s := &common.MockSession{}
	s.On("GuildRoles", testGuild).Return(testRoles, nil)
	s.On("Guild", testGuild).Return(&discordgo.Guild{ID: testGuild, Name: "Cereal Box", OwnerID: testOwner}, nil)
	return s
}

func embedTitled(title string) any {
	return mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data != nil && len(r.Data.Embeds) == 1 && r.Data.Embeds[0].Title == title
	})
}

func newFeature(warnings service.WarningService) *Feature {
	return NewFeature(warnings, func() string { return testBot })
}

func TestKick(t *testing.T) {
	s := guildSession()
	s.On("GuildMemberDeleteWithReason", testGuild, testMember, "spam").Return(nil).Once()
	s.On("InteractionRespond", mock.Anything, embedTitled("👢 Member Kicked")).Return(nil).Once()

	inv := common.NewInvocation(s, interaction("kick", testMember, []string{"r-member"}, stringOpt("reason", "spam")))
	err := newFeature(nil).handleKick(context.Background(), inv)

	require.NoError(t, err)
	s.AssertExpectations(t)
}

func TestModerationRefusalsHaveNoSideEffects(t *testing.T) {
	tests := []struct {
		name     string
		targetID string
		roles    []string
		message  string
	}{
		{"higher role", testMember, []string{"r-admin"}, "❌ You cannot %s someone with equal or higher role!"},
		{"equal role", testMember, []string{"r-mod"}, "❌ You cannot %s someone with equal or higher role!"},
		{"server owner", testOwner, nil, "❌ Cannot %s the server owner!"},
		{"the bot", testBot, []string{"r-member"}, "❌ I cannot %s myself!"},
	}

	f := newFeature(&service.MockWarningService{})
	handlers := map[Action]func(context.Context, *common.Invocation) error{
		ActionKick: f.handleKick,
		ActionBan:  f.handleBan,
		ActionMute: f.handleMute,
		ActionWarn: f.handleWarn,
	}

	for _, tt := range tests {
		for action, handler := range handlers {
			t.Run(tt.name+"/"+string(action), func(t *testing.T) {
				s := guildSession()
				inv := common.NewInvocation(s, interaction(string(action), tt.targetID, tt.roles))

				err := handler(context.Background(), inv)

				require.Error(t, err)
				assert.True(t, common.IsUserError(err))
				assert.Equal(t, strings.Replace(tt.message, "%s", string(action), 1), common.UserMessage(err))
				s.AssertNotCalled(t, "GuildMemberDeleteWithReason", mock.Anything, mock.Anything, mock.Anything)
				s.AssertNotCalled(t, "GuildBanCreateWithReason", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				s.AssertNotCalled(t, "GuildMemberTimeout", mock.Anything, mock.Anything, mock.Anything)
				s.AssertNotCalled(t, "InteractionRespond", mock.Anything, mock.Anything)
				s.AssertNotCalled(t, "UserChannelCreate", mock.Anything)
			})
		}
	}
}

func TestKick_ForbiddenReportsPermissionError(t *testing.T) {
	s := guildSession()
	s.On("GuildMemberDeleteWithReason", testGuild, testMember, "").Return(errors.New("403 Forbidden"))

	inv := common.NewInvocation(s, interaction("kick", testMember, nil))
	err := newFeature(nil).handleKick(context.Background(), inv)

	require.Error(t, err)
	assert.False(t, common.IsUserError(err))
	assert.Equal(t, "❌ I don't have permission to kick this member!", common.UserMessage(err))
}

func TestMute(t *testing.T) {
	t.Run("default duration", func(t *testing.T) {
		s := guildSession()
		before := time.Now()
		s.On("GuildMemberTimeout", testGuild, testMember, mock.MatchedBy(func(until *time.Time) bool {
			return until != nil && until.Sub(before) >= 59*time.Minute && until.Sub(before) <= 61*time.Minute
		})).Return(nil).Once()
		s.On("InteractionRespond", mock.Anything, embedTitled("🔇 Member Muted")).Return(nil).Once()

		inv := common.NewInvocation(s, interaction("mute", testMember, nil))
		require.NoError(t, newFeature(nil).handleMute(context.Background(), inv))
		s.AssertExpectations(t)
	})

	t.Run("too long", func(t *testing.T) {
		s := guildSession()
		inv := common.NewInvocation(s, interaction("mute", testMember, nil, intOpt("duration", 40321)))

		err := newFeature(nil).handleMute(context.Background(), inv)

		assert.Equal(t, "❌ Duration cannot exceed 40320 minutes (28 days)!", common.UserMessage(err))
		s.AssertNotCalled(t, "GuildMemberTimeout", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWarn(t *testing.T) {
	warnings := &service.MockWarningService{}
	warnings.On("Warn", mock.Anything, int64(100), int64(400), int64(300), models.DefaultWarningReason).
		Return(&models.WarningResult{Warning: &models.Warning{ID: 7}, Count: 2}, nil).Once()

	s := guildSession()
	s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		e := r.Data.Embeds[0]
		return e.Title == "⚠️ Member Warned" && e.Fields[2].Value == "2 warnings" && e.Footer.Text == "Warning ID: 7"
	})).Return(nil).Once()
	s.On("UserChannelCreate", testMember).Return(&discordgo.Channel{ID: "dm"}, nil).Once()
	s.On("ChannelMessageSendComplex", "dm", mock.MatchedBy(func(m *discordgo.MessageSend) bool {
		return m.Embeds[0].Title == "You were warned in Cereal Box"
	})).Return(&discordgo.Message{}, nil).Once()

	inv := common.NewInvocation(s, interaction("warn", testMember, []string{"r-member"}))
	require.NoError(t, newFeature(warnings).handleWarn(context.Background(), inv))

	warnings.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestWarn_DMFailureIsSwallowed(t *testing.T) {
	warnings := &service.MockWarningService{}
	warnings.On("Warn", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "rude").
		Return(&models.WarningResult{Warning: &models.Warning{ID: 1}, Count: 1}, nil)

	s := guildSession()
	s.On("InteractionRespond", mock.Anything, embedTitled("⚠️ Member Warned")).Return(nil).Once()
	s.On("UserChannelCreate", testMember).Return(nil, errors.New("cannot send messages to this user"))

	inv := common.NewInvocation(s, interaction("warn", testMember, nil, stringOpt("reason", "rude")))
	assert.NoError(t, newFeature(warnings).handleWarn(context.Background(), inv))
}

func TestWarn_SelfIsRefusedFirst(t *testing.T) {
	warnings := &service.MockWarningService{}
	s := &common.MockSession{}

	inv := common.NewInvocation(s, interaction("warn", testMod, []string{"r-mod"}))
	err := newFeature(warnings).handleWarn(context.Background(), inv)

	assert.Equal(t, "❌ You cannot warn yourself!", common.UserMessage(err))
	warnings.AssertNotCalled(t, "Warn", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.AssertNotCalled(t, "GuildRoles", mock.Anything)
}

func TestWarnings(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		warnings := &service.MockWarningService{}
		warnings.On("ListWarnings", mock.Anything, int64(100), int64(400)).Return([]*models.Warning{}, nil)
		s := &common.MockSession{}
		s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
			return r.Data.Content == "<@400> has no warnings in this server." && r.Data.Flags == discordgo.MessageFlagsEphemeral
		})).Return(nil).Once()

		inv := common.NewInvocation(s, interaction("warnings", testMember, nil))
		require.NoError(t, newFeature(warnings).handleWarnings(context.Background(), inv))
		s.AssertExpectations(t)
	})

	t.Run("shows the last five", func(t *testing.T) {
		list := make([]*models.Warning, 7)
		for i := range list {
			list[i] = &models.Warning{ID: int64(i + 1), ModeratorID: 300, Reason: "r", CreatedAt: time.Now()}
		}
		warnings := &service.MockWarningService{}
		warnings.On("ListWarnings", mock.Anything, int64(100), int64(400)).Return(list, nil)

		var embed *discordgo.MessageEmbed
		s := &common.MockSession{}
		s.On("InteractionRespond", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			embed = args.Get(1).(*discordgo.InteractionResponse).Data.Embeds[0]
		}).Return(nil)

		inv := common.NewInvocation(s, interaction("warnings", testMember, nil))
		require.NoError(t, newFeature(warnings).handleWarnings(context.Background(), inv))

		require.NotNil(t, embed)
		assert.Len(t, embed.Fields, 5)
		assert.Equal(t, "Warning #3", embed.Fields[0].Name)
		assert.Equal(t, "Total warnings: 7", embed.Footer.Text)
	})
}

func TestClearWarnings(t *testing.T) {
	warnings := &service.MockWarningService{}
	warnings.On("ClearWarnings", mock.Anything, int64(100), int64(400), int64(300)).Return(int64(1), nil)
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data.Embeds[0].Description == "Cleared 1 warning for <@400>"
	})).Return(nil).Once()

	inv := common.NewInvocation(s, interaction("clear_warnings", testMember, nil))
	require.NoError(t, newFeature(warnings).handleClearWarnings(context.Background(), inv))
	s.AssertExpectations(t)
	warnings.AssertExpectations(t)
}

func TestUnban(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		s := &common.MockSession{}
		i := interaction("unban", testMember, nil)
		i.Data = discordgo.ApplicationCommandInteractionData{Name: "unban", Options: []*discordgo.ApplicationCommandInteractionDataOption{stringOpt("user_id", "abc")}}

		err := newFeature(nil).handleUnban(context.Background(), common.NewInvocation(s, i))

		assert.Equal(t, "❌ Invalid user ID!", common.UserMessage(err))
	})

	t.Run("not banned", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("User", testMember).Return(&discordgo.User{ID: testMember}, nil)
		s.On("GuildBanDelete", testGuild, testMember).Return(errors.New("404 Unknown Ban"))
		i := interaction("unban", testMember, nil)
		i.Data = discordgo.ApplicationCommandInteractionData{Name: "unban", Options: []*discordgo.ApplicationCommandInteractionDataOption{stringOpt("user_id", testMember)}}

		err := newFeature(nil).handleUnban(context.Background(), common.NewInvocation(s, i))

		assert.Equal(t, "❌ User not found or not banned", common.UserMessage(err))
	})
}

func TestClear_SkipsOldMessages(t *testing.T) {
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, mock.Anything).Return(nil).Once()
	s.On("ChannelMessages", testChannel, 10, "", "", "").Return([]*discordgo.Message{
		{ID: "m1", Timestamp: time.Now()},
		{ID: "m2", Timestamp: time.Now().Add(-time.Hour)},
		{ID: "m3", Timestamp: time.Now().Add(-30 * 24 * time.Hour)},
	}, nil)
	s.On("ChannelMessagesBulkDelete", testChannel, []string{"m1", "m2"}).Return(nil).Once()
	s.On("InteractionResponseEdit", mock.Anything, mock.MatchedBy(func(e *discordgo.WebhookEdit) bool {
		return *e.Content == "🗑️ Deleted 2 messages"
	})).Return(&discordgo.Message{}, nil).Once()

	i := interaction("clear", testMember, nil)
	i.Data = discordgo.ApplicationCommandInteractionData{Name: "clear"}
	require.NoError(t, newFeature(nil).handleClear(context.Background(), common.NewInvocation(s, i)))
	s.AssertExpectations(t)
}

func TestSlowmode(t *testing.T) {
	s := &common.MockSession{}
	s.On("ChannelEditComplex", testChannel, mock.MatchedBy(func(e *discordgo.ChannelEdit) bool {
		return *e.RateLimitPerUser == 30
	})).Return(&discordgo.Channel{}, nil).Once()
	s.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data.Content == "✅ Slowmode set to 30 seconds"
	})).Return(nil).Once()

	i := interaction("slowmode", testMember, nil)
	i.Data = discordgo.ApplicationCommandInteractionData{Name: "slowmode", Options: []*discordgo.ApplicationCommandInteractionDataOption{intOpt("seconds", 30)}}
	require.NoError(t, newFeature(nil).handleSlowmode(context.Background(), common.NewInvocation(s, i)))
	s.AssertExpectations(t)

	i.Data = discordgo.ApplicationCommandInteractionData{Name: "slowmode", Options: []*discordgo.ApplicationCommandInteractionDataOption{intOpt("seconds", 21601)}}
	err := newFeature(nil).handleSlowmode(context.Background(), common.NewInvocation(&common.MockSession{}, i))
	assert.Equal(t, "❌ Slowmode cannot exceed 6 hours (21600 seconds)", common.UserMessage(err))
}

func TestCommandsAreGuildOnly(t *testing.T) {
	for _, cmd := range newFeature(nil).Commands() {
		assert.True(t, cmd.Permissions.GuildOnly, cmd.Name())
	}
}
