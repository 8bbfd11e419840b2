package models

import (
	"strings"
	"time"
)

const (
	DefaultPrefix         = "!"
	DefaultTimezone       = "UTC"
	DefaultWelcomeMessage = "Welcome {user} to {guild}!"
)

// Guild represents a community the bot is a member of, together with its settings
type Guild struct {
	ID               int64     `db:"id"`
	Name             string    `db:"name"`
	OwnerID          int64     `db:"owner_id"`
	MemberCount      int       `db:"member_count"`
	Prefix           string    `db:"prefix"`
	Timezone         string    `db:"timezone"`
	WelcomeEnabled   bool      `db:"welcome_enabled"`
	WelcomeChannelID *int64    `db:"welcome_channel_id"`
	WelcomeMessage   string    `db:"welcome_message"`
	LogChannelID     *int64    `db:"log_channel_id"`
	JoinedAt         time.Time `db:"joined_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// RenderWelcome substitutes the {user} and {guild} placeholders of the welcome template
func (g *Guild) RenderWelcome(userMention string) string {
	template := g.WelcomeMessage
	if template == "" {
		template = DefaultWelcomeMessage
	}
	return strings.NewReplacer("{user}", userMention, "{guild}", g.Name).Replace(template)
}

// GuildSettingsUpdate carries the settings columns a moderator may change.
// Nil fields are left untouched; a zero channel id clears the channel.
type GuildSettingsUpdate struct {
	Prefix           *string
	Timezone         *string
	WelcomeEnabled   *bool
	WelcomeChannelID *int64
	WelcomeMessage   *string
	LogChannelID     *int64
}
