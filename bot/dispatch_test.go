package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cerealbot/bot/common"
	"cerealbot/bot/registry"
	"cerealbot/metrics"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func slash(name string, perms int64, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:             "i-" + name,
		Type:           discordgo.InteractionApplicationCommand,
		GuildID:        "1",
		ChannelID:      "2",
		AppPermissions: discordgo.PermissionAdministrator,
		Data:           discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "10", Username: "alice"},
			Permissions: perms,
		},
	}
}

func responseWith(content string) any {
	return mock.MatchedBy(func(r *discordgo.InteractionResponse) bool {
		return r.Data != nil && strings.Contains(r.Data.Content, content)
	})
}

type dispatchFixture struct {
	reg     *registry.Registry
	metrics *metrics.Metrics
	d       *Dispatcher
	calls   int
}

func newDispatchFixture(t *testing.T, cooldown time.Duration) *dispatchFixture {
	t.Helper()
	f := &dispatchFixture{reg: registry.New(), metrics: metrics.New()}
	f.d = NewDispatcher(f.reg, NewCooldown(cooldown), f.metrics, func(id string) bool { return id == "99" }, nil)
	return f
}

func (f *dispatchFixture) register(t *testing.T, cmd registry.Command) {
	t.Helper()
	inner := cmd.Handler
	cmd.Handler = func(ctx context.Context, inv *common.Invocation) error {
		f.calls++
		return inner(ctx, inv)
	}
	require.NoError(t, f.reg.Register(cmd))
}

func pong(_ context.Context, inv *common.Invocation) error {
	return inv.Respond("pong", false)
}

func TestDispatch_UnknownCommandIsIgnored(t *testing.T) {
	f := newDispatchFixture(t, 0)
	s := &common.MockSession{}

	f.d.Dispatch(context.Background(), s, slash("ghost", 0))

	s.AssertNotCalled(t, "InteractionRespond", mock.Anything, mock.Anything)
}

func TestDispatch_RunsHandler(t *testing.T) {
	f := newDispatchFixture(t, 0)
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "ping"}, Handler: pong})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, responseWith("pong")).Return(nil).Once()

	f.d.Dispatch(context.Background(), s, slash("ping", 0))

	assert.Equal(t, 1, f.calls)
	s.AssertExpectations(t)
	series, err := testutil.GatherAndCount(f.metrics.Registry(), "cerealbot_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
}

func TestDispatch_PermissionRefusalSkipsHandler(t *testing.T) {
	f := newDispatchFixture(t, 0)
	f.register(t, registry.Command{
		Definition:  &discordgo.ApplicationCommand{Name: "kick"},
		Handler:     pong,
		Permissions: registry.Permissions{User: discordgo.PermissionKickMembers, GuildOnly: true},
	})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, responseWith(common.MsgMissingPerms)).Return(nil).Once()

	f.d.Dispatch(context.Background(), s, slash("kick", discordgo.PermissionSendMessages))

	assert.Zero(t, f.calls)
	s.AssertExpectations(t)
}

func TestDispatch_InvalidArguments(t *testing.T) {
	f := newDispatchFixture(t, 0)
	minAmount := 1.0
	f.register(t, registry.Command{
		Definition: &discordgo.ApplicationCommand{
			Name: "clear",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", MinValue: &minAmount, MaxValue: 100},
			},
		},
		Handler: pong,
	})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, responseWith("Invalid arguments")).Return(nil).Once()

	f.d.Dispatch(context.Background(), s, slash("clear", 0, &discordgo.ApplicationCommandInteractionDataOption{
		Name: "amount", Type: discordgo.ApplicationCommandOptionInteger, Value: 500.0,
	}))

	assert.Zero(t, f.calls)
	s.AssertExpectations(t)
}

func TestDispatch_PanicIsContained(t *testing.T) {
	f := newDispatchFixture(t, 0)
	f.register(t, registry.Command{
		Definition: &discordgo.ApplicationCommand{Name: "boom"},
		Handler:    func(context.Context, *common.Invocation) error { panic("kaboom") },
	})
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "ping"}, Handler: pong})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, responseWith(common.MsgGenericError)).Return(nil).Once()
	s.On("InteractionRespond", mock.Anything, responseWith("pong")).Return(nil).Once()

	assert.NotPanics(t, func() {
		f.d.Dispatch(context.Background(), s, slash("boom", 0))
	})
	f.d.Dispatch(context.Background(), s, slash("ping", 0))

	s.AssertExpectations(t)
}

func TestDispatch_ErrorAfterResponseSendsNothingMore(t *testing.T) {
	f := newDispatchFixture(t, 0)
	f.register(t, registry.Command{
		Definition: &discordgo.ApplicationCommand{Name: "warn"},
		Handler: func(_ context.Context, inv *common.Invocation) error {
			_ = inv.Respond("warned", false)
			return errors.New("log channel unavailable")
		},
	})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, mock.Anything).Return(nil)

	f.d.Dispatch(context.Background(), s, slash("warn", 0))

	s.AssertNumberOfCalls(t, "InteractionRespond", 1)
}

func TestDispatch_UserErrorMessageIsShown(t *testing.T) {
	f := newDispatchFixture(t, 0)
	f.register(t, registry.Command{
		Definition: &discordgo.ApplicationCommand{Name: "timer"},
		Handler: func(context.Context, *common.Invocation) error {
			return common.NewUserError("❌ Maximum timer duration is 24 hours!", "timer too long")
		},
	})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, responseWith("Maximum timer duration")).Return(nil).Once()

	f.d.Dispatch(context.Background(), s, slash("timer", 0))

	s.AssertExpectations(t)
}

func TestDispatch_Cooldown(t *testing.T) {
	f := newDispatchFixture(t, time.Hour)
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "ping"}, Handler: pong})
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "help"}, Handler: pong, NoCooldown: true})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, responseWith("pong")).Return(nil)
	s.On("InteractionRespond", mock.Anything, responseWith("Slow down")).Return(nil).Once()

	f.d.Dispatch(context.Background(), s, slash("ping", 0))
	f.d.Dispatch(context.Background(), s, slash("ping", 0))
	f.d.Dispatch(context.Background(), s, slash("help", 0))

	assert.Equal(t, 2, f.calls)
	s.AssertExpectations(t)
}

func TestDispatch_OwnersBypassCooldown(t *testing.T) {
	f := newDispatchFixture(t, time.Hour)
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "ping"}, Handler: pong})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, responseWith("pong")).Return(nil)

	i := slash("ping", 0)
	i.Member.User.ID = "99"
	f.d.Dispatch(context.Background(), s, i)
	f.d.Dispatch(context.Background(), s, i)

	assert.Equal(t, 2, f.calls)
}

func TestDispatch_Component(t *testing.T) {
	f := newDispatchFixture(t, 0)
	var got string
	require.NoError(t, f.reg.RegisterComponent("tod", func(_ context.Context, inv *common.Invocation) error {
		got = inv.CustomID
		return nil
	}))

	i := &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "tod:abc:dare"},
		User: &discordgo.User{ID: "10"},
	}
	f.d.Dispatch(context.Background(), &common.MockSession{}, i)

	assert.Equal(t, "tod:abc:dare", got)
}

func TestDispatch_RecordsActivity(t *testing.T) {
	f := newDispatchFixture(t, 0)
	seen := make(chan string, 1)
	f.d.activity = func(_ context.Context, u *discordgo.User) { seen <- u.ID }
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "ping"}, Handler: pong})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, mock.Anything).Return(nil)

	f.d.Dispatch(context.Background(), s, slash("ping", 0))

	select {
	case id := <-seen:
		assert.Equal(t, "10", id)
	case <-time.After(time.Second):
		t.Fatal("activity was not recorded")
	}
}

func textMessage(content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		GuildID:   "1",
		ChannelID: "2",
		Content:   content,
		Author:    &discordgo.User{ID: "10", Username: "alice"},
		Member:    &discordgo.Member{Roles: []string{"r1"}},
	}
}

func replyWith(content string) any {
	return mock.MatchedBy(func(m *discordgo.MessageSend) bool {
		return strings.Contains(m.Content, content) && m.Reference != nil && m.Reference.MessageID == "m1"
	})
}

func grants(user int64) MessagePermissions {
	return func(*discordgo.Message) (int64, int64, error) {
		return user, discordgo.PermissionAdministrator, nil
	}
}

var remindCommand = &discordgo.ApplicationCommand{
	Name: "remind",
	Options: []*discordgo.ApplicationCommandOption{
		{Type: discordgo.ApplicationCommandOptionString, Name: "time", Required: true},
		{Type: discordgo.ApplicationCommandOptionString, Name: "message", Required: true},
	},
}

func TestDispatchMessage_RunsTextCommandByAlias(t *testing.T) {
	f := newDispatchFixture(t, 0)
	var got common.Options
	f.register(t, registry.Command{
		Definition: remindCommand,
		Text:       true,
		Aliases:    []string{"remindme"},
		Handler: func(ctx context.Context, inv *common.Invocation) error {
			got = inv.Options
			assert.Equal(t, "remind", inv.Name)
			assert.Equal(t, "10", inv.UserID())
			return pong(ctx, inv)
		},
	})
	s := &common.MockSession{}
	s.On("ChannelMessageSendComplex", "2", replyWith("pong")).Return(&discordgo.Message{ID: "r1"}, nil).Once()

	handled := f.d.DispatchMessage(context.Background(), s, textMessage("!remindme 10m stretch your legs"), "!", grants(0))

	assert.True(t, handled)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "10m", got.String("time", ""))
	assert.Equal(t, "stretch your legs", got.String("message", ""))
	s.AssertExpectations(t)
	s.AssertNotCalled(t, "InteractionRespond", mock.Anything, mock.Anything)
}

func TestDispatchMessage_LeavesOtherMessages(t *testing.T) {
	f := newDispatchFixture(t, 0)
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "ping"}, Handler: pong, Text: true})
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "ban"}, Handler: pong})
	s := &common.MockSession{}

	for _, content := range []string{"ping", "?ping", "! ping", "!rules", "!ban"} {
		assert.False(t, f.d.DispatchMessage(context.Background(), s, textMessage(content), "!", grants(0)), content)
	}
	assert.Zero(t, f.calls)
	s.AssertNotCalled(t, "ChannelMessageSendComplex", mock.Anything, mock.Anything)
}

func TestDispatchMessage_InvalidArguments(t *testing.T) {
	f := newDispatchFixture(t, 0)
	f.register(t, registry.Command{Definition: remindCommand, Handler: pong, Text: true})
	s := &common.MockSession{}
	s.On("ChannelMessageSendComplex", "2", replyWith("`message` is required")).Return(&discordgo.Message{}, nil).Once()

	assert.True(t, f.d.DispatchMessage(context.Background(), s, textMessage("!remind 10m"), "!", grants(0)))

	assert.Zero(t, f.calls)
	s.AssertExpectations(t)
}

func TestDispatchMessage_Permissions(t *testing.T) {
	f := newDispatchFixture(t, 0)
	f.register(t, registry.Command{
		Definition:  &discordgo.ApplicationCommand{Name: "say", Options: []*discordgo.ApplicationCommandOption{{Type: discordgo.ApplicationCommandOptionString, Name: "message", Required: true}}},
		Handler:     pong,
		Text:        true,
		Permissions: registry.Permissions{User: discordgo.PermissionManageMessages, GuildOnly: true},
	})

	t.Run("refused without the permission", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("ChannelMessageSendComplex", "2", replyWith(common.MsgMissingPerms)).Return(&discordgo.Message{}, nil).Once()

		f.d.DispatchMessage(context.Background(), s, textMessage("!say hello"), "!", grants(discordgo.PermissionSendMessages))

		assert.Zero(t, f.calls)
		s.AssertExpectations(t)
	})

	t.Run("refused in DMs", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("ChannelMessageSendComplex", "2", replyWith(common.MsgGuildOnly)).Return(&discordgo.Message{}, nil).Once()
		m := textMessage("!say hello")
		m.GuildID, m.Member = "", nil

		f.d.DispatchMessage(context.Background(), s, m, "!", grants(discordgo.PermissionAdministrator))

		assert.Zero(t, f.calls)
		s.AssertExpectations(t)
	})

	t.Run("allowed with the permission", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("ChannelMessageSendComplex", "2", replyWith("pong")).Return(&discordgo.Message{}, nil).Once()

		f.d.DispatchMessage(context.Background(), s, textMessage("!say hello"), "!", grants(discordgo.PermissionManageMessages))

		assert.Equal(t, 1, f.calls)
		s.AssertExpectations(t)
	})
}

func TestDispatchMessage_SharesCooldownWithSlash(t *testing.T) {
	f := newDispatchFixture(t, time.Hour)
	f.register(t, registry.Command{Definition: &discordgo.ApplicationCommand{Name: "ping"}, Handler: pong, Text: true})
	s := &common.MockSession{}
	s.On("InteractionRespond", mock.Anything, responseWith("pong")).Return(nil).Once()
	s.On("ChannelMessageSendComplex", "2", replyWith("Slow down")).Return(&discordgo.Message{}, nil).Once()

	f.d.Dispatch(context.Background(), s, slash("ping", 0))
	f.d.DispatchMessage(context.Background(), s, textMessage("!PING"), "!", grants(0))

	assert.Equal(t, 1, f.calls)
	s.AssertExpectations(t)
}

func TestClassifyInteraction(t *testing.T) {
	assert.Equal(t, EventCommand, ClassifyInteraction(&discordgo.Interaction{Type: discordgo.InteractionApplicationCommand}))
	assert.Equal(t, EventComponent, ClassifyInteraction(&discordgo.Interaction{Type: discordgo.InteractionMessageComponent}))
	assert.Equal(t, EventOther, ClassifyInteraction(&discordgo.Interaction{Type: discordgo.InteractionModalSubmit}))
}
