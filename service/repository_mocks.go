package service

import (
	"context"
	"time"

	"cerealbot/events"
	"cerealbot/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) RecordActivity(ctx context.Context, user *models.User, kind models.ActivityKind) (*models.User, error) {
	args := m.Called(ctx, user, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetActiveUsers(ctx context.Context, since time.Time) ([]*models.User, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGuildRepository is a mock implementation of GuildRepository
type MockGuildRepository struct {
	mock.Mock
}

func (m *MockGuildRepository) GetByID(ctx context.Context, id int64) (*models.Guild, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildRepository) Upsert(ctx context.Context, guild *models.Guild) (*models.Guild, error) {
	args := m.Called(ctx, guild)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildRepository) UpdateMemberCount(ctx context.Context, id int64, memberCount int) error {
	args := m.Called(ctx, id, memberCount)
	return args.Error(0)
}

func (m *MockGuildRepository) UpdateSettings(ctx context.Context, id int64, update models.GuildSettingsUpdate) (*models.Guild, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildRepository) GetAll(ctx context.Context) ([]*models.Guild, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Guild), args.Error(1)
}

// MockGuildMemberRepository is a mock implementation of GuildMemberRepository
type MockGuildMemberRepository struct {
	mock.Mock
}

func (m *MockGuildMemberRepository) Get(ctx context.Context, guildID, userID int64) (*models.GuildMember, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildMember), args.Error(1)
}

func (m *MockGuildMemberRepository) Exists(ctx context.Context, guildID, userID int64) (bool, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuildMemberRepository) Upsert(ctx context.Context, member *models.GuildMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockGuildMemberRepository) Delete(ctx context.Context, guildID, userID int64) (bool, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuildMemberRepository) CountByGuild(ctx context.Context, guildID int64) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

// MockWarningRepository is a mock implementation of WarningRepository
type MockWarningRepository struct {
	mock.Mock
}

func (m *MockWarningRepository) Create(ctx context.Context, warning *models.Warning) (*models.Warning, error) {
	args := m.Called(ctx, warning)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warning), args.Error(1)
}

func (m *MockWarningRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Warning), args.Error(1)
}

func (m *MockWarningRepository) CountByUser(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWarningRepository) DeleteByUser(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomCommandRepository is a mock implementation of CustomCommandRepository
type MockCustomCommandRepository struct {
	mock.Mock
}

func (m *MockCustomCommandRepository) Create(ctx context.Context, cmd *models.CustomCommand) (*models.CustomCommand, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomCommand), args.Error(1)
}

func (m *MockCustomCommandRepository) GetByName(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error) {
	args := m.Called(ctx, guildID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomCommand), args.Error(1)
}

func (m *MockCustomCommandRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.CustomCommand, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CustomCommand), args.Error(1)
}

func (m *MockCustomCommandRepository) Delete(ctx context.Context, guildID int64, name string) (bool, error) {
	args := m.Called(ctx, guildID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomCommandRepository) IncrementUsage(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error) {
	args := m.Called(ctx, guildID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CustomCommand), args.Error(1)
}

// MockGiveawayRepository is a mock implementation of GiveawayRepository
type MockGiveawayRepository struct {
	mock.Mock
}

func (m *MockGiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) (*models.Giveaway, error) {
	args := m.Called(ctx, giveaway)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) SetMessageID(ctx context.Context, id int64, messageID int64) error {
	args := m.Called(ctx, id, messageID)
	return args.Error(0)
}

func (m *MockGiveawayRepository) GetActiveByGuild(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) GetExpired(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) AddParticipant(ctx context.Context, id int64, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGiveawayRepository) End(ctx context.Context, id int64, winners []int64, endedAt time.Time) (*models.Giveaway, error) {
	args := m.Called(ctx, id, winners, endedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) SetWinners(ctx context.Context, id int64, winners []int64) error {
	args := m.Called(ctx, id, winners)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Repositories are wired with SetRepositories; only Begin, Commit and Rollback are recorded.
type MockUnitOfWork struct {
	mock.Mock

	userRepo          UserRepository
	guildRepo         GuildRepository
	guildMemberRepo   GuildMemberRepository
	warningRepo       WarningRepository
	customCommandRepo CustomCommandRepository
	giveawayRepo      GiveawayRepository
	eventBus          EventPublisher
}

// MockRepositories bundles the repositories a MockUnitOfWork hands out
type MockRepositories struct {
	Users          UserRepository
	Guilds         GuildRepository
	GuildMembers   GuildMemberRepository
	Warnings       WarningRepository
	CustomCommands CustomCommandRepository
	Giveaways      GiveawayRepository
	Events         EventPublisher
}

// SetRepositories configures the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(repos MockRepositories) {
	m.userRepo = repos.Users
	m.guildRepo = repos.Guilds
	m.guildMemberRepo = repos.GuildMembers
	m.warningRepo = repos.Warnings
	m.customCommandRepo = repos.CustomCommands
	m.giveawayRepo = repos.Giveaways
	m.eventBus = repos.Events
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository                   { return m.userRepo }
func (m *MockUnitOfWork) GuildRepository() GuildRepository                 { return m.guildRepo }
func (m *MockUnitOfWork) GuildMemberRepository() GuildMemberRepository     { return m.guildMemberRepo }
func (m *MockUnitOfWork) WarningRepository() WarningRepository             { return m.warningRepo }
func (m *MockUnitOfWork) CustomCommandRepository() CustomCommandRepository { return m.customCommandRepo }
func (m *MockUnitOfWork) GiveawayRepository() GiveawayRepository           { return m.giveawayRepo }

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return &noopPublisher{}
	}
	return m.eventBus
}

type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
