package models

import (
	"time"
)

// GuildMember is a user's membership in a guild, keyed by (guild id, user id)
type GuildMember struct {
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	Nickname  *string   `db:"nickname"`
	Roles     []int64   `db:"roles"`
	JoinedAt  time.Time `db:"joined_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
