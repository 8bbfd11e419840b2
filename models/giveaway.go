package models

import (
	"time"
)

// Giveaway is a prize draw; it moves from active to inactive exactly once
type Giveaway struct {
	ID           int64      `db:"id"`
	GuildID      int64      `db:"guild_id"`
	ChannelID    int64      `db:"channel_id"`
	MessageID    *int64     `db:"message_id"`
	Title        string     `db:"title"`
	Description  string     `db:"description"`
	Prize        string     `db:"prize"`
	WinnerCount  int        `db:"winner_count"`
	CreatedBy    int64      `db:"created_by"`
	EndsAt       time.Time  `db:"ends_at"`
	Active       bool       `db:"active"`
	Participants []int64    `db:"participants"`
	Winners      []int64    `db:"winners"`
	CreatedAt    time.Time  `db:"created_at"`
	EndedAt      *time.Time `db:"ended_at"`
}

// HasParticipant reports whether the user already entered
func (g *Giveaway) HasParticipant(userID int64) bool {
	for _, id := range g.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// IsExpired reports whether the end time has passed
func (g *Giveaway) IsExpired(now time.Time) bool {
	return !now.Before(g.EndsAt)
}
