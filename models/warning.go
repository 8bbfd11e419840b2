package models

import (
	"time"
)

const DefaultWarningReason = "No reason provided"

// Warning is an append-only moderation record
type Warning struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	UserID      int64     `db:"user_id"`
	ModeratorID int64     `db:"moderator_id"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`
}

// WarningResult is returned after issuing a warning
type WarningResult struct {
	Warning *Warning
	Count   int64
	// LimitReached is set when the count reaches the configured warn limit
	LimitReached bool
}
