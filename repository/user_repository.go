package repository

import (
	"context"
	"fmt"
	"time"

	"cerealbot/database"
	"cerealbot/models"
)

var userColumns = []string{
	"id", "username", "global_name", "avatar_hash", "bot",
	"message_count", "command_count", "joined_at", "last_active",
}

// UserRepository implements the UserRepository interface
type UserRepository struct {
	users table[models.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return newUserRepositoryWithTx(db.Pool)
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{
		users: newTable[models.User](tx, "users", userColumns, []string{"id"},
			[]string{"username", "global_name", "avatar_hash", "bot", "last_active"}, "id"),
	}
}

// GetByID retrieves a user by their platform ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.users.get(ctx, id)
}

// RecordActivity inserts the user on first sight, refreshes the profile and bumps the counter for kind
func (r *UserRepository) RecordActivity(ctx context.Context, user *models.User, kind models.ActivityKind) (*models.User, error) {
	var messages, commands int64
	switch kind {
	case models.ActivityMessage:
		messages = 1
	case models.ActivityCommand:
		commands = 1
	default:
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}

	query := fmt.Sprintf(`
		INSERT INTO users (id, username, global_name, avatar_hash, bot, message_count, command_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			global_name = COALESCE(EXCLUDED.global_name, users.global_name),
			avatar_hash = COALESCE(EXCLUDED.avatar_hash, users.avatar_hash),
			bot = EXCLUDED.bot,
			message_count = users.message_count + EXCLUDED.message_count,
			command_count = users.command_count + EXCLUDED.command_count,
			last_active = NOW()
		RETURNING %s`, r.users.selectList())

	updated, err := r.users.collectOne(ctx, query,
		user.ID, user.Username, user.GlobalName, user.AvatarHash, user.Bot, messages, commands)
	if err != nil {
		return nil, fmt.Errorf("failed to record activity for user %d: %w", user.ID, err)
	}
	return updated, nil
}

// GetActiveUsers returns users seen since the given time, most recently active first
func (r *UserRepository) GetActiveUsers(ctx context.Context, since time.Time) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE last_active >= $1 ORDER BY last_active DESC`, r.users.selectList())
	users, err := r.users.collect(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get active users: %w", err)
	}
	return users, nil
}

// Count returns the number of stored users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.users.count(ctx, "")
}

// ListPage returns one page of users ordered by id
func (r *UserRepository) ListPage(ctx context.Context, page, pageSize int) (*Page[models.User], error) {
	return r.users.paginate(ctx, page, pageSize, "")
}
