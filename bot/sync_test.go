package bot

import (
	"errors"
	"testing"

	"cerealbot/bot/common"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testDefs = []*discordgo.ApplicationCommand{{Name: "ping"}, {Name: "meme"}}

func defs() []*discordgo.ApplicationCommand { return testDefs }

func empty(cmds []*discordgo.ApplicationCommand) bool { return len(cmds) == 0 }

func TestSyncGuild_ClearsGlobal(t *testing.T) {
	s := &common.MockSession{}
	s.On("ApplicationCommandBulkOverwrite", "app", "g1", testDefs).Return(testDefs, nil).Once()
	s.On("ApplicationCommandBulkOverwrite", "app", "", mock.MatchedBy(empty)).Return([]*discordgo.ApplicationCommand{}, nil).Once()

	res, err := NewCommandSyncer(s, "app", defs).SyncGuild("g1")

	require.NoError(t, err)
	assert.Equal(t, 2, res.Synced)
	assert.Equal(t, "guild", res.Scope)
	s.AssertExpectations(t)
}

func TestSyncGuild_FailureLeavesGlobalAlone(t *testing.T) {
	s := &common.MockSession{}
	s.On("ApplicationCommandBulkOverwrite", "app", "g1", testDefs).Return(nil, errors.New("403")).Once()

	_, err := NewCommandSyncer(s, "app", defs).SyncGuild("g1")

	assert.Error(t, err)
	s.AssertNotCalled(t, "ApplicationCommandBulkOverwrite", "app", "", mock.Anything)
}

func TestSyncGlobal_ClearsStaleGuilds(t *testing.T) {
	s := &common.MockSession{}
	s.On("ApplicationCommandBulkOverwrite", "app", "", testDefs).Return(testDefs, nil).Once()
	s.On("ApplicationCommands", "app", "g1").Return([]*discordgo.ApplicationCommand{{Name: "old"}}, nil)
	s.On("ApplicationCommands", "app", "g2").Return([]*discordgo.ApplicationCommand{}, nil)
	s.On("ApplicationCommands", "app", "g3").Return(nil, errors.New("missing access"))
	s.On("ApplicationCommandBulkOverwrite", "app", "g1", mock.MatchedBy(empty)).Return([]*discordgo.ApplicationCommand{}, nil).Once()

	res, err := NewCommandSyncer(s, "app", defs).SyncGlobal([]string{"g1", "g2", "g3"})

	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, res.Cleared)
	s.AssertExpectations(t)
}

func TestHandleOwnerCommand(t *testing.T) {
	owner := func(id string) bool { return id == "owner" }
	guilds := func() []string { return nil }

	t.Run("unsync by owner", func(t *testing.T) {
		s := &common.MockSession{}
		s.On("ApplicationCommandBulkOverwrite", "app", "g1", mock.MatchedBy(empty)).Return([]*discordgo.ApplicationCommand{}, nil).Once()
		s.On("ChannelMessageSend", "c1", "✅ Removed all commands from this server").Return(&discordgo.Message{}, nil).Once()

		m := &discordgo.Message{Content: "!unsync", GuildID: "g1", ChannelID: "c1", Author: &discordgo.User{ID: "owner"}}
		handled := NewCommandSyncer(s, "app", defs).handleOwnerCommand(s, m, "!", owner, guilds)

		assert.True(t, handled)
		s.AssertExpectations(t)
	})

	t.Run("non owner is ignored silently", func(t *testing.T) {
		s := &common.MockSession{}
		m := &discordgo.Message{Content: "!sync", GuildID: "g1", ChannelID: "c1", Author: &discordgo.User{ID: "someone"}}

		handled := NewCommandSyncer(s, "app", defs).handleOwnerCommand(s, m, "!", owner, guilds)

		assert.True(t, handled)
		s.AssertNotCalled(t, "ChannelMessageSend", mock.Anything, mock.Anything)
		s.AssertNotCalled(t, "ApplicationCommandBulkOverwrite", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other text passes through", func(t *testing.T) {
		s := &common.MockSession{}
		m := &discordgo.Message{Content: "!hello", Author: &discordgo.User{ID: "owner"}}

		assert.False(t, NewCommandSyncer(s, "app", defs).handleOwnerCommand(s, m, "!", owner, guilds))
	})
}
