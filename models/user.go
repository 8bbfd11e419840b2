package models

import (
	"time"
)

// User represents a platform user the bot has observed
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	GlobalName   *string   `db:"global_name"`
	AvatarHash   *string   `db:"avatar_hash"`
	Bot          bool      `db:"bot"`
	MessageCount int64     `db:"message_count"`
	CommandCount int64     `db:"command_count"`
	JoinedAt     time.Time `db:"joined_at"`
	LastActive   time.Time `db:"last_active"`
}

// ActivityKind selects which activity counter an interaction increments
type ActivityKind string

const (
	ActivityMessage ActivityKind = "message"
	ActivityCommand ActivityKind = "command"
)
