package service

import (
	"context"
	"time"

	"cerealbot/models"

	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) RecordActivity(ctx context.Context, userID int64, username string, bot bool, kind models.ActivityKind) error {
	args := m.Called(ctx, userID, username, bot, kind)
	return args.Error(0)
}

func (m *MockUserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGuildService is a mock implementation of GuildService
type MockGuildService struct {
	mock.Mock
}

func (m *MockGuildService) SyncGuild(ctx context.Context, guild *models.Guild) (*models.Guild, error) {
	args := m.Called(ctx, guild)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildService) GetSettings(ctx context.Context, guildID int64) (*models.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildService) UpdateSettings(ctx context.Context, guildID int64, update models.GuildSettingsUpdate) (*models.Guild, error) {
	args := m.Called(ctx, guildID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildService) MemberJoined(ctx context.Context, member *models.GuildMember, memberCount int) error {
	args := m.Called(ctx, member, memberCount)
	return args.Error(0)
}

func (m *MockGuildService) MemberUpdated(ctx context.Context, member *models.GuildMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockGuildService) MemberLeft(ctx context.Context, guildID, userID int64, memberCount int) error {
	args := m.Called(ctx, guildID, userID, memberCount)
	return args.Error(0)
}

// MockWarningService is a mock implementation of WarningService
type MockWarningService struct {
	mock.Mock
}

func (m *MockWarningService) Warn(ctx context.Context, guildID, userID, moderatorID int64, reason string) (*models.WarningResult, error) {
	args := m.Called(ctx, guildID, userID, moderatorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WarningResult), args.Error(1)
}

func (m *MockWarningService) ListWarnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Warning), args.Error(1)
}

func (m *MockWarningService) ClearWarnings(ctx context.Context, guildID, userID, moderatorID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID, moderatorID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomCommandService is a mock implementation of CustomCommandService
type MockCustomCommandService struct {
	mock.Mock
}

func (m *MockCustomCommandService) Create(ctx context.Context, guildID int64, name, response string, createdBy int64) (*models.CustomCommand, error) {
	args := m.Called(ctx, guildID, name, response, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomCommand), args.Error(1)
}

func (m *MockCustomCommandService) Remove(ctx context.Context, guildID int64, name string) error {
	args := m.Called(ctx, guildID, name)
	return args.Error(0)
}

func (m *MockCustomCommandService) List(ctx context.Context, guildID int64) ([]*models.CustomCommand, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CustomCommand), args.Error(1)
}

func (m *MockCustomCommandService) Get(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error) {
	args := m.Called(ctx, guildID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomCommand), args.Error(1)
}

func (m *MockCustomCommandService) Invoke(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error) {
	args := m.Called(ctx, guildID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomCommand), args.Error(1)
}

// MockGiveawayService is a mock implementation of GiveawayService
type MockGiveawayService struct {
	mock.Mock
}

func giveawayOrNil(args mock.Arguments) *models.Giveaway {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Giveaway)
}

func giveawaysOrNil(args mock.Arguments) []*models.Giveaway {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.Giveaway)
}

func (m *MockGiveawayService) Start(ctx context.Context, params StartGiveawayParams) (*models.Giveaway, error) {
	args := m.Called(ctx, params)
	return giveawayOrNil(args), args.Error(1)
}

func (m *MockGiveawayService) AttachMessage(ctx context.Context, giveawayID, messageID int64) error {
	args := m.Called(ctx, giveawayID, messageID)
	return args.Error(0)
}

func (m *MockGiveawayService) Join(ctx context.Context, giveawayID, userID int64) (JoinResult, error) {
	args := m.Called(ctx, giveawayID, userID)
	return args.Get(0).(JoinResult), args.Error(1)
}

func (m *MockGiveawayService) End(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	args := m.Called(ctx, giveawayID)
	return giveawayOrNil(args), args.Error(1)
}

func (m *MockGiveawayService) EndExpired(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	args := m.Called(ctx, now)
	return giveawaysOrNil(args), args.Error(1)
}

func (m *MockGiveawayService) Reroll(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	args := m.Called(ctx, giveawayID)
	return giveawayOrNil(args), args.Error(1)
}

func (m *MockGiveawayService) ListActive(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	args := m.Called(ctx, guildID)
	return giveawaysOrNil(args), args.Error(1)
}

func (m *MockGiveawayService) Get(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	args := m.Called(ctx, giveawayID)
	return giveawayOrNil(args), args.Error(1)
}
