package service

import (
	"context"
	"errors"
	"time"

	"cerealbot/events"
	"cerealbot/models"
)

var (
	// ErrDuplicateCustomCommand is returned when a guild already has a command with the same name
	ErrDuplicateCustomCommand = errors.New("custom command already exists in this guild")
	// ErrCustomCommandNotFound is returned when no command with the name exists in the guild
	ErrCustomCommandNotFound = errors.New("custom command not found")
	// ErrInvalidCustomCommand is returned for names or responses that fail validation
	ErrInvalidCustomCommand = errors.New("invalid custom command")
	// ErrGiveawayNotFound is returned when the giveaway id is unknown
	ErrGiveawayNotFound = errors.New("giveaway not found")
	// ErrGiveawayNotActive is returned when a giveaway has already ended
	ErrGiveawayNotActive = errors.New("giveaway is not active")
	// ErrGiveawayStillActive is returned when rerolling a giveaway that has not ended
	ErrGiveawayStillActive = errors.New("giveaway is still active")
	// ErrInvalidGiveaway is returned for giveaway parameters that fail validation
	ErrInvalidGiveaway = errors.New("invalid giveaway")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by platform id, returning nil when unknown
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// RecordActivity creates the user on first sight, refreshes the profile and bumps one activity counter
	RecordActivity(ctx context.Context, user *models.User, kind models.ActivityKind) (*models.User, error)

	// GetActiveUsers returns users active since the given time, most recent first
	GetActiveUsers(ctx context.Context, since time.Time) ([]*models.User, error)

	// Count returns the number of known users
	Count(ctx context.Context) (int64, error)
}

// GuildRepository defines the interface for guild data access
type GuildRepository interface {
	// GetByID retrieves a guild, returning nil when unknown
	GetByID(ctx context.Context, id int64) (*models.Guild, error)

	// Upsert creates the guild or refreshes its name, owner and member count; settings are preserved
	Upsert(ctx context.Context, guild *models.Guild) (*models.Guild, error)

	// UpdateMemberCount sets the member count
	UpdateMemberCount(ctx context.Context, id int64, memberCount int) error

	// UpdateSettings applies the non-nil fields of update, returning nil when the guild is unknown
	UpdateSettings(ctx context.Context, id int64, update models.GuildSettingsUpdate) (*models.Guild, error)

	// GetAll returns all guilds
	GetAll(ctx context.Context) ([]*models.Guild, error)
}

// GuildMemberRepository defines the interface for guild membership data access
type GuildMemberRepository interface {
	// Get retrieves a membership, returning nil when unknown
	Get(ctx context.Context, guildID, userID int64) (*models.GuildMember, error)

	// Exists reports whether a membership is recorded
	Exists(ctx context.Context, guildID, userID int64) (bool, error)

	// Upsert creates or refreshes a membership
	Upsert(ctx context.Context, member *models.GuildMember) error

	// Delete removes a membership and reports whether it existed
	Delete(ctx context.Context, guildID, userID int64) (bool, error)

	// CountByGuild returns the number of tracked members of a guild
	CountByGuild(ctx context.Context, guildID int64) (int64, error)
}

// WarningRepository defines the interface for warning data access
type WarningRepository interface {
	// Create appends a warning
	Create(ctx context.Context, warning *models.Warning) (*models.Warning, error)

	// ListByUser returns all warnings for a user in a guild, oldest first
	ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)

	// CountByUser returns the number of warnings for a user in a guild
	CountByUser(ctx context.Context, guildID, userID int64) (int64, error)

	// DeleteByUser removes every warning for a user in a guild and returns how many were removed
	DeleteByUser(ctx context.Context, guildID, userID int64) (int64, error)
}

// CustomCommandRepository defines the interface for custom command data access
type CustomCommandRepository interface {
	// Create stores a new command; returns ErrDuplicateCustomCommand when the name is taken in the guild
	Create(ctx context.Context, cmd *models.CustomCommand) (*models.CustomCommand, error)

	// GetByName retrieves a command, returning nil when unknown
	GetByName(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error)

	// ListByGuild returns the guild's commands ordered by name
	ListByGuild(ctx context.Context, guildID int64) ([]*models.CustomCommand, error)

	// Delete removes a command and reports whether it existed
	Delete(ctx context.Context, guildID int64, name string) (bool, error)

	// IncrementUsage bumps the usage counter and returns the command, or nil when unknown
	IncrementUsage(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error)
}

// GiveawayRepository defines the interface for giveaway data access
type GiveawayRepository interface {
	// Create stores a new active giveaway
	Create(ctx context.Context, giveaway *models.Giveaway) (*models.Giveaway, error)

	// GetByID retrieves a giveaway, returning nil when unknown
	GetByID(ctx context.Context, id int64) (*models.Giveaway, error)

	// SetMessageID records the announcement message of a giveaway
	SetMessageID(ctx context.Context, id int64, messageID int64) error

	// GetActiveByGuild returns the guild's active giveaways ordered by end time
	GetActiveByGuild(ctx context.Context, guildID int64) ([]*models.Giveaway, error)

	// GetExpired returns active giveaways whose end time is at or before now
	GetExpired(ctx context.Context, now time.Time) ([]*models.Giveaway, error)

	// AddParticipant adds the user while the giveaway is active; false when it was not added
	AddParticipant(ctx context.Context, id int64, userID int64) (bool, error)

	// End marks an active giveaway inactive with its winners; returns nil when it was not active
	End(ctx context.Context, id int64, winners []int64, endedAt time.Time) (*models.Giveaway, error)

	// SetWinners replaces the winners of an ended giveaway
	SetWinners(ctx context.Context, id int64, winners []int64) error
}

// EventPublisher publishes domain events; events are delivered after the unit of work commits
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups the repositories of one transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	GuildRepository() GuildRepository
	GuildMemberRepository() GuildMemberRepository
	WarningRepository() WarningRepository
	CustomCommandRepository() CustomCommandRepository
	GiveawayRepository() GiveawayRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService defines user activity tracking
type UserService interface {
	// RecordActivity upserts the user and increments the counter for kind
	RecordActivity(ctx context.Context, userID int64, username string, bot bool, kind models.ActivityKind) error

	// GetUser returns the stored user, or nil when unknown
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// CountUsers returns the number of stored users
	CountUsers(ctx context.Context) (int64, error)
}

// GuildService defines guild and membership bookkeeping
type GuildService interface {
	// SyncGuild records the guild when the bot joins or reconnects
	SyncGuild(ctx context.Context, guild *models.Guild) (*models.Guild, error)

	// GetSettings returns the stored guild, or defaults when the guild is unknown
	GetSettings(ctx context.Context, guildID int64) (*models.Guild, error)

	// UpdateSettings validates and applies a settings change
	UpdateSettings(ctx context.Context, guildID int64, update models.GuildSettingsUpdate) (*models.Guild, error)

	// MemberJoined records a membership and the new member count
	MemberJoined(ctx context.Context, member *models.GuildMember, memberCount int) error

	// MemberUpdated refreshes a membership's nickname and roles
	MemberUpdated(ctx context.Context, member *models.GuildMember) error

	// MemberLeft removes a membership and records the new member count
	MemberLeft(ctx context.Context, guildID, userID int64, memberCount int) error
}

// WarningService defines persisted warnings
type WarningService interface {
	// Warn appends a warning and returns it with the user's new total
	Warn(ctx context.Context, guildID, userID, moderatorID int64, reason string) (*models.WarningResult, error)

	// ListWarnings returns the user's warnings in the guild, oldest first
	ListWarnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)

	// ClearWarnings deletes all of the user's warnings in the guild and returns how many were removed
	ClearWarnings(ctx context.Context, guildID, userID, moderatorID int64) (int64, error)
}

// CustomCommandService defines guild custom commands
type CustomCommandService interface {
	Create(ctx context.Context, guildID int64, name, response string, createdBy int64) (*models.CustomCommand, error)
	Remove(ctx context.Context, guildID int64, name string) error
	List(ctx context.Context, guildID int64) ([]*models.CustomCommand, error)
	Get(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error)

	// Invoke returns the command and increments its usage counter; nil when unknown
	Invoke(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error)
}

// StartGiveawayParams describes a new giveaway
type StartGiveawayParams struct {
	GuildID     int64
	ChannelID   int64
	CreatedBy   int64
	Title       string
	Description string
	Prize       string
	WinnerCount int
	Duration    time.Duration
}

// JoinResult describes the outcome of entering a giveaway
type JoinResult int

const (
	JoinResultJoined JoinResult = iota
	JoinResultAlreadyJoined
	JoinResultNotActive
)

// GiveawayService defines giveaway lifecycle operations
type GiveawayService interface {
	Start(ctx context.Context, params StartGiveawayParams) (*models.Giveaway, error)
	AttachMessage(ctx context.Context, giveawayID, messageID int64) error
	Join(ctx context.Context, giveawayID, userID int64) (JoinResult, error)
	End(ctx context.Context, giveawayID int64) (*models.Giveaway, error)
	EndExpired(ctx context.Context, now time.Time) ([]*models.Giveaway, error)
	Reroll(ctx context.Context, giveawayID int64) (*models.Giveaway, error)
	ListActive(ctx context.Context, guildID int64) ([]*models.Giveaway, error)
	Get(ctx context.Context, giveawayID int64) (*models.Giveaway, error)
}
