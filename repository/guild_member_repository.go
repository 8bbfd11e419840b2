package repository

import (
	"context"
	"fmt"

	"cerealbot/database"
	"cerealbot/models"
)

var guildMemberColumns = []string{"guild_id", "user_id", "nickname", "roles", "joined_at", "updated_at"}

// GuildMemberRepository implements the GuildMemberRepository interface
type GuildMemberRepository struct {
	members table[models.GuildMember]
}

// NewGuildMemberRepository creates a new guild member repository
func NewGuildMemberRepository(db *database.DB) *GuildMemberRepository {
	return newGuildMemberRepositoryWithTx(db.Pool)
}

func newGuildMemberRepositoryWithTx(tx queryable) *GuildMemberRepository {
	return &GuildMemberRepository{
		members: newTable[models.GuildMember](tx, "guild_members", guildMemberColumns,
			[]string{"guild_id", "user_id"}, nil, "guild_id, user_id"),
	}
}

// Get retrieves a single membership
func (r *GuildMemberRepository) Get(ctx context.Context, guildID, userID int64) (*models.GuildMember, error) {
	return r.members.get(ctx, guildID, userID)
}

// Exists reports whether the user is already a tracked member of the guild
func (r *GuildMemberRepository) Exists(ctx context.Context, guildID, userID int64) (bool, error) {
	return r.members.exists(ctx, guildID, userID)
}

// Upsert creates the membership or refreshes nickname and roles.
// The guild row must already exist.
func (r *GuildMemberRepository) Upsert(ctx context.Context, member *models.GuildMember) error {
	roles := member.Roles
	if roles == nil {
		roles = []int64{}
	}

	joinedAt := member.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = timeNow()
	}

	_, err := r.members.q.Exec(ctx, `
		INSERT INTO guild_members (guild_id, user_id, nickname, roles, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			roles = EXCLUDED.roles,
			updated_at = NOW()`,
		member.GuildID, member.UserID, member.Nickname, roles, joinedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert member %d in guild %d: %w", member.UserID, member.GuildID, err)
	}
	return nil
}

// Delete removes a membership
func (r *GuildMemberRepository) Delete(ctx context.Context, guildID, userID int64) (bool, error) {
	return r.members.delete(ctx, guildID, userID)
}

// CountByGuild returns how many members are tracked for a guild
func (r *GuildMemberRepository) CountByGuild(ctx context.Context, guildID int64) (int64, error) {
	return r.members.count(ctx, "guild_id = $1", guildID)
}
