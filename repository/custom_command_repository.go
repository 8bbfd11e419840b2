package repository

import (
	"context"
	"fmt"

	"cerealbot/database"
	"cerealbot/models"
	"cerealbot/service"
)

var customCommandColumns = []string{
	"id", "guild_id", "name", "response", "created_by", "usage_count", "created_at", "updated_at",
}

// CustomCommandRepository implements the CustomCommandRepository interface
type CustomCommandRepository struct {
	commands table[models.CustomCommand]
}

// NewCustomCommandRepository creates a new custom command repository
func NewCustomCommandRepository(db *database.DB) *CustomCommandRepository {
	return newCustomCommandRepositoryWithTx(db.Pool)
}

func newCustomCommandRepositoryWithTx(tx queryable) *CustomCommandRepository {
	return &CustomCommandRepository{
		commands: newTable[models.CustomCommand](tx, "custom_commands", customCommandColumns,
			[]string{"guild_id", "name"},
			[]string{"guild_id", "name", "response", "created_by"}, "name"),
	}
}

// Create stores a new custom command. Names are unique per guild.
func (r *CustomCommandRepository) Create(ctx context.Context, cmd *models.CustomCommand) (*models.CustomCommand, error) {
	created, err := r.commands.insert(ctx, map[string]any{
		"guild_id":   cmd.GuildID,
		"name":       cmd.Name,
		"response":   cmd.Response,
		"created_by": cmd.CreatedBy,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("command %q in guild %d: %w", cmd.Name, cmd.GuildID, service.ErrDuplicateCustomCommand)
		}
		return nil, err
	}
	return created, nil
}

// GetByName retrieves a guild's command by name
func (r *CustomCommandRepository) GetByName(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error) {
	return r.commands.get(ctx, guildID, name)
}

// ListByGuild returns the guild's commands ordered by name
func (r *CustomCommandRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.CustomCommand, error) {
	return r.commands.find(ctx, "guild_id = $1", guildID)
}

// Delete removes a guild's command
func (r *CustomCommandRepository) Delete(ctx context.Context, guildID int64, name string) (bool, error) {
	return r.commands.delete(ctx, guildID, name)
}

// IncrementUsage bumps the usage counter and returns the updated command
func (r *CustomCommandRepository) IncrementUsage(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error) {
	query := fmt.Sprintf(`
		UPDATE custom_commands SET usage_count = usage_count + 1
		WHERE guild_id = $1 AND name = $2
		RETURNING %s`, r.commands.selectList())

	cmd, err := r.commands.collectOne(ctx, query, guildID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to increment usage of command %q: %w", name, err)
	}
	return cmd, nil
}
