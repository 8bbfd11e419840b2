package repository

import (
	"context"
	"fmt"

	"cerealbot/database"
	"cerealbot/models"
)

var guildColumns = []string{
	"id", "name", "owner_id", "member_count", "prefix", "timezone",
	"welcome_enabled", "welcome_channel_id", "welcome_message", "log_channel_id",
	"joined_at", "updated_at",
}

// GuildRepository implements the GuildRepository interface
type GuildRepository struct {
	guilds table[models.Guild]
}

// NewGuildRepository creates a new guild repository
func NewGuildRepository(db *database.DB) *GuildRepository {
	return newGuildRepositoryWithTx(db.Pool)
}

func newGuildRepositoryWithTx(tx queryable) *GuildRepository {
	return &GuildRepository{
		guilds: newTable[models.Guild](tx, "guilds", guildColumns, []string{"id"},
			[]string{
				"member_count", "prefix", "timezone", "welcome_enabled",
				"welcome_channel_id", "welcome_message", "log_channel_id", "updated_at",
			}, "id"),
	}
}

// GetByID retrieves a guild by ID
func (r *GuildRepository) GetByID(ctx context.Context, id int64) (*models.Guild, error) {
	return r.guilds.get(ctx, id)
}

// Upsert creates the guild or refreshes name, owner and member count without touching settings
func (r *GuildRepository) Upsert(ctx context.Context, guild *models.Guild) (*models.Guild, error) {
	query := fmt.Sprintf(`
		INSERT INTO guilds (id, name, owner_id, member_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			owner_id = EXCLUDED.owner_id,
			member_count = EXCLUDED.member_count,
			updated_at = NOW()
		RETURNING %s`, r.guilds.selectList())

	saved, err := r.guilds.collectOne(ctx, query, guild.ID, guild.Name, guild.OwnerID, guild.MemberCount)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert guild %d: %w", guild.ID, err)
	}
	return saved, nil
}

// UpdateMemberCount sets the stored member count
func (r *GuildRepository) UpdateMemberCount(ctx context.Context, id int64, memberCount int) error {
	_, err := r.guilds.q.Exec(ctx,
		`UPDATE guilds SET member_count = $2, updated_at = NOW() WHERE id = $1`, id, memberCount)
	if err != nil {
		return fmt.Errorf("failed to update member count for guild %d: %w", id, err)
	}
	return nil
}

// UpdateSettings applies the non-nil settings; returns nil when the guild is unknown
func (r *GuildRepository) UpdateSettings(ctx context.Context, id int64, update models.GuildSettingsUpdate) (*models.Guild, error) {
	values := map[string]any{}
	if update.Prefix != nil {
		values["prefix"] = *update.Prefix
	}
	if update.Timezone != nil {
		values["timezone"] = *update.Timezone
	}
	if update.WelcomeEnabled != nil {
		values["welcome_enabled"] = *update.WelcomeEnabled
	}
	if update.WelcomeChannelID != nil {
		values["welcome_channel_id"] = nullableID(*update.WelcomeChannelID)
	}
	if update.WelcomeMessage != nil {
		values["welcome_message"] = *update.WelcomeMessage
	}
	if update.LogChannelID != nil {
		values["log_channel_id"] = nullableID(*update.LogChannelID)
	}

	if len(values) == 0 {
		return r.GetByID(ctx, id)
	}
	values["updated_at"] = timeNow()
	return r.guilds.update(ctx, values, id)
}

// nullableID stores a zero channel id as NULL
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// GetAll returns every guild the bot has recorded
func (r *GuildRepository) GetAll(ctx context.Context) ([]*models.Guild, error) {
	return r.guilds.getAll(ctx, 0)
}
