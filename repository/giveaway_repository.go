package repository

import (
	"context"
	"fmt"
	"time"

	"cerealbot/database"
	"cerealbot/models"
)

var giveawayColumns = []string{
	"id", "guild_id", "channel_id", "message_id", "title", "description", "prize",
	"winner_count", "created_by", "ends_at", "active", "participants", "winners",
	"created_at", "ended_at",
}

// GiveawayRepository implements the GiveawayRepository interface
type GiveawayRepository struct {
	giveaways table[models.Giveaway]
}

// NewGiveawayRepository creates a new giveaway repository
func NewGiveawayRepository(db *database.DB) *GiveawayRepository {
	return newGiveawayRepositoryWithTx(db.Pool)
}

func newGiveawayRepositoryWithTx(tx queryable) *GiveawayRepository {
	return &GiveawayRepository{
		giveaways: newTable[models.Giveaway](tx, "giveaways", giveawayColumns, []string{"id"},
			[]string{
				"guild_id", "channel_id", "message_id", "title", "description", "prize",
				"winner_count", "created_by", "ends_at", "winners",
			}, "ends_at, id"),
	}
}

// Create stores a new active giveaway with no participants
func (r *GiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) (*models.Giveaway, error) {
	return r.giveaways.insert(ctx, map[string]any{
		"guild_id":     giveaway.GuildID,
		"channel_id":   giveaway.ChannelID,
		"title":        giveaway.Title,
		"description":  giveaway.Description,
		"prize":        giveaway.Prize,
		"winner_count": giveaway.WinnerCount,
		"created_by":   giveaway.CreatedBy,
		"ends_at":      giveaway.EndsAt,
	})
}

// GetByID retrieves a giveaway
func (r *GiveawayRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	return r.giveaways.get(ctx, id)
}

// SetMessageID records the announcement message
func (r *GiveawayRepository) SetMessageID(ctx context.Context, id int64, messageID int64) error {
	updated, err := r.giveaways.update(ctx, map[string]any{"message_id": messageID}, id)
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("giveaway %d not found", id)
	}
	return nil
}

// GetActiveByGuild returns a guild's running giveaways, soonest ending first
func (r *GiveawayRepository) GetActiveByGuild(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	return r.giveaways.find(ctx, "guild_id = $1 AND active", guildID)
}

// GetExpired returns running giveaways whose end time has passed
func (r *GiveawayRepository) GetExpired(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	return r.giveaways.find(ctx, "active AND ends_at <= $1", now)
}

// AddParticipant appends the user only while the giveaway is active, before its end time,
// and the user has not entered
func (r *GiveawayRepository) AddParticipant(ctx context.Context, id int64, userID int64) (bool, error) {
	tag, err := r.giveaways.q.Exec(ctx, `
		UPDATE giveaways SET participants = array_append(participants, $2::BIGINT)
		WHERE id = $1 AND active AND ends_at > now() AND NOT ($2::BIGINT = ANY(participants))`,
		id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add participant %d to giveaway %d: %w", userID, id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// End closes an active giveaway. Returns nil when the giveaway was already inactive,
// which makes ending idempotent under concurrent sweeps.
func (r *GiveawayRepository) End(ctx context.Context, id int64, winners []int64, endedAt time.Time) (*models.Giveaway, error) {
	if winners == nil {
		winners = []int64{}
	}

	query := fmt.Sprintf(`
		UPDATE giveaways SET active = FALSE, winners = $2, ended_at = $3
		WHERE id = $1 AND active
		RETURNING %s`, r.giveaways.selectList())

	ended, err := r.giveaways.collectOne(ctx, query, id, winners, endedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to end giveaway %d: %w", id, err)
	}
	return ended, nil
}

// SetWinners replaces the winners of an ended giveaway
func (r *GiveawayRepository) SetWinners(ctx context.Context, id int64, winners []int64) error {
	if winners == nil {
		winners = []int64{}
	}
	tag, err := r.giveaways.q.Exec(ctx,
		`UPDATE giveaways SET winners = $2 WHERE id = $1 AND NOT active`, id, winners)
	if err != nil {
		return fmt.Errorf("failed to set winners for giveaway %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("giveaway %d is not ended", id)
	}
	return nil
}

// ListByGuild returns one page of a guild's giveaways, active or not
func (r *GiveawayRepository) ListByGuild(ctx context.Context, guildID int64, page, pageSize int) (*Page[models.Giveaway], error) {
	return r.giveaways.paginate(ctx, page, pageSize, "guild_id = $1", guildID)
}
