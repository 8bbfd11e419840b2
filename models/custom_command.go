package models

import (
	"time"
)

// CustomCommand is a guild-scoped canned response
type CustomCommand struct {
	ID         int64     `db:"id"`
	GuildID    int64     `db:"guild_id"`
	Name       string    `db:"name"`
	Response   string    `db:"response"`
	CreatedBy  int64     `db:"created_by"`
	UsageCount int64     `db:"usage_count"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
