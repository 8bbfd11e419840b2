package common

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockSession is a mock implementation of Session. Request options are not
// recorded, expectations match on the remaining arguments.
type MockSession struct {
	mock.Mock
}

var _ Session = (*MockSession)(nil)

func messageOrNil(args mock.Arguments) *discordgo.Message {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*discordgo.Message)
}

func (m *MockSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	args := m.Called(interaction, resp)
	return args.Error(0)
}

func (m *MockSession) InteractionResponse(interaction *discordgo.Interaction, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(interaction)
	return messageOrNil(args), args.Error(1)
}

func (m *MockSession) InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(interaction, newresp)
	return messageOrNil(args), args.Error(1)
}

func (m *MockSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	return messageOrNil(args), args.Error(1)
}

func (m *MockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, data)
	return messageOrNil(args), args.Error(1)
}

func (m *MockSession) ChannelMessageEditComplex(edit *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(edit)
	return messageOrNil(args), args.Error(1)
}

func (m *MockSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	args := m.Called(channelID, messageID)
	return args.Error(0)
}

func (m *MockSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	args := m.Called(channelID, limit, beforeID, afterID, aroundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.Message), args.Error(1)
}

func (m *MockSession) ChannelMessagesBulkDelete(channelID string, messages []string, _ ...discordgo.RequestOption) error {
	args := m.Called(channelID, messages)
	return args.Error(0)
}

func (m *MockSession) ChannelEditComplex(channelID string, data *discordgo.ChannelEdit, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	args := m.Called(channelID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Channel), args.Error(1)
}

func (m *MockSession) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	args := m.Called(channelID, messageID, emojiID)
	return args.Error(0)
}

func (m *MockSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	args := m.Called(recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Channel), args.Error(1)
}

func (m *MockSession) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.User), args.Error(1)
}

func (m *MockSession) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Guild), args.Error(1)
}

func (m *MockSession) GuildWithCounts(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Guild), args.Error(1)
}

func (m *MockSession) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.Channel), args.Error(1)
}

func (m *MockSession) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.Role), args.Error(1)
}

func (m *MockSession) GuildMemberDeleteWithReason(guildID, userID, reason string, _ ...discordgo.RequestOption) error {
	args := m.Called(guildID, userID, reason)
	return args.Error(0)
}

func (m *MockSession) GuildBanCreateWithReason(guildID, userID, reason string, days int, _ ...discordgo.RequestOption) error {
	args := m.Called(guildID, userID, reason, days)
	return args.Error(0)
}

func (m *MockSession) GuildBanDelete(guildID, userID string, _ ...discordgo.RequestOption) error {
	args := m.Called(guildID, userID)
	return args.Error(0)
}

func (m *MockSession) GuildMemberTimeout(guildID string, userID string, until *time.Time, _ ...discordgo.RequestOption) error {
	args := m.Called(guildID, userID, until)
	return args.Error(0)
}

func (m *MockSession) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	args := m.Called(appID, guildID, commands)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.ApplicationCommand), args.Error(1)
}

func (m *MockSession) ApplicationCommands(appID, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	args := m.Called(appID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.ApplicationCommand), args.Error(1)
}
