package repository

import (
	"context"

	"cerealbot/database"
	"cerealbot/models"
)

var warningColumns = []string{"id", "guild_id", "user_id", "moderator_id", "reason", "created_at"}

// WarningRepository implements the WarningRepository interface
type WarningRepository struct {
	warnings table[models.Warning]
}

// NewWarningRepository creates a new warning repository
func NewWarningRepository(db *database.DB) *WarningRepository {
	return newWarningRepositoryWithTx(db.Pool)
}

func newWarningRepositoryWithTx(tx queryable) *WarningRepository {
	return &WarningRepository{
		warnings: newTable[models.Warning](tx, "warnings", warningColumns, []string{"id"},
			[]string{"guild_id", "user_id", "moderator_id", "reason"}, "created_at, id"),
	}
}

// Create appends a warning record
func (r *WarningRepository) Create(ctx context.Context, warning *models.Warning) (*models.Warning, error) {
	reason := warning.Reason
	if reason == "" {
		reason = models.DefaultWarningReason
	}
	return r.warnings.insert(ctx, map[string]any{
		"guild_id":     warning.GuildID,
		"user_id":      warning.UserID,
		"moderator_id": warning.ModeratorID,
		"reason":       reason,
	})
}

// ListByUser returns the user's warnings in a guild, oldest first
func (r *WarningRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	return r.warnings.find(ctx, "guild_id = $1 AND user_id = $2", guildID, userID)
}

// CountByUser returns the number of warnings the user has in a guild
func (r *WarningRepository) CountByUser(ctx context.Context, guildID, userID int64) (int64, error) {
	return r.warnings.count(ctx, "guild_id = $1 AND user_id = $2", guildID, userID)
}

// DeleteByUser clears the user's warnings in a guild
func (r *WarningRepository) DeleteByUser(ctx context.Context, guildID, userID int64) (int64, error) {
	return r.warnings.deleteWhere(ctx, "guild_id = $1 AND user_id = $2", guildID, userID)
}
