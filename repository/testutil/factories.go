package testutil

import (
	"time"

	"cerealbot/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(id int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		ID:         id,
		Username:   username,
		JoinedAt:   now,
		LastActive: now,
	}
}

// CreateTestGuild creates a test guild with default settings
func CreateTestGuild(id int64, name string) *models.Guild {
	return &models.Guild{
		ID:             id,
		Name:           name,
		OwnerID:        id * 10,
		MemberCount:    25,
		Prefix:         models.DefaultPrefix,
		Timezone:       models.DefaultTimezone,
		WelcomeMessage: models.DefaultWelcomeMessage,
	}
}

// CreateTestGuildMember creates a membership with the given roles
func CreateTestGuildMember(guildID, userID int64, roles ...int64) *models.GuildMember {
	return &models.GuildMember{
		GuildID:  guildID,
		UserID:   userID,
		Roles:    roles,
		JoinedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestWarning creates a warning issued by moderatorID
func CreateTestWarning(guildID, userID, moderatorID int64, reason string) *models.Warning {
	return &models.Warning{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
	}
}

// CreateTestCustomCommand creates a custom command
func CreateTestCustomCommand(guildID int64, name, response string) *models.CustomCommand {
	return &models.CustomCommand{
		GuildID:   guildID,
		Name:      name,
		Response:  response,
		CreatedBy: 1,
	}
}

// CreateTestGiveaway creates an active giveaway ending after the given duration
func CreateTestGiveaway(guildID int64, prize string, endsIn time.Duration) *models.Giveaway {
	return &models.Giveaway{
		GuildID:     guildID,
		ChannelID:   guildID + 1,
		Title:       "Giveaway",
		Prize:       prize,
		WinnerCount: 1,
		CreatedBy:   1,
		EndsAt:      time.Now().UTC().Add(endsIn),
		Active:      true,
	}
}
