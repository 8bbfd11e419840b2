package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cerealbot/models"

	log "github.com/sirupsen/logrus"
)

const (
	maxPrefixLength         = 10
	maxWelcomeMessageLength = 1000
)

// ErrInvalidSettings is returned when a settings change fails validation
var ErrInvalidSettings = errors.New("invalid guild settings")

// guildService implements the GuildService interface
type guildService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildService creates a new guild service
func NewGuildService(uowFactory UnitOfWorkFactory) GuildService {
	return &guildService{uowFactory: uowFactory}
}

// SyncGuild records the guild when the bot joins or reconnects. Settings are preserved.
func (s *guildService) SyncGuild(ctx context.Context, guild *models.Guild) (*models.Guild, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	saved, err := uow.GuildRepository().Upsert(ctx, guild)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":     guild.ID,
		"guildName":   guild.Name,
		"memberCount": guild.MemberCount,
	}).Debug("Guild synced")

	return saved, nil
}

// GetSettings returns the stored guild or, for guilds not yet recorded, the defaults
func (s *guildService) GetSettings(ctx context.Context, guildID int64) (*models.Guild, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	guild, err := uow.GuildRepository().GetByID(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if guild == nil {
		return defaultGuild(guildID), nil
	}
	return guild, nil
}

func defaultGuild(guildID int64) *models.Guild {
	return &models.Guild{
		ID:             guildID,
		Prefix:         models.DefaultPrefix,
		Timezone:       models.DefaultTimezone,
		WelcomeMessage: models.DefaultWelcomeMessage,
	}
}

// UpdateSettings validates and applies a settings change
func (s *guildService) UpdateSettings(ctx context.Context, guildID int64, update models.GuildSettingsUpdate) (*models.Guild, error) {
	if err := validateSettings(&update); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	guild, err := uow.GuildRepository().UpdateSettings(ctx, guildID, update)
	if err != nil {
		return nil, err
	}
	if guild == nil {
		return nil, fmt.Errorf("guild %d is not registered yet: %w", guildID, ErrInvalidSettings)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"prefix":  guild.Prefix,
		"tz":      guild.Timezone,
	}).Info("Guild settings updated")

	return guild, nil
}

func validateSettings(update *models.GuildSettingsUpdate) error {
	if update.Prefix != nil {
		p := strings.TrimSpace(*update.Prefix)
		if p == "" || len(p) > maxPrefixLength || strings.ContainsAny(p, " \t\n") {
			return fmt.Errorf("prefix must be 1-%d characters without spaces: %w", maxPrefixLength, ErrInvalidSettings)
		}
		update.Prefix = &p
	}
	if update.Timezone != nil {
		if _, err := time.LoadLocation(*update.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", *update.Timezone, ErrInvalidSettings)
		}
	}
	if update.WelcomeMessage != nil {
		msg := strings.TrimSpace(*update.WelcomeMessage)
		if msg == "" || len(msg) > maxWelcomeMessageLength {
			return fmt.Errorf("welcome message must be 1-%d characters: %w", maxWelcomeMessageLength, ErrInvalidSettings)
		}
		update.WelcomeMessage = &msg
	}
	return nil
}

// MemberJoined records a membership and the new member count
func (s *guildService) MemberJoined(ctx context.Context, member *models.GuildMember, memberCount int) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	guild, err := uow.GuildRepository().GetByID(ctx, member.GuildID)
	if err != nil {
		return err
	}
	if guild == nil {
		// Membership rows reference the guild; it will be recorded on the next guild sync
		log.WithField("guildID", member.GuildID).Debug("Skipping member join for unrecorded guild")
		return nil
	}

	rejoined, err := uow.GuildMemberRepository().Exists(ctx, member.GuildID, member.UserID)
	if err != nil {
		return err
	}
	if err := uow.GuildMemberRepository().Upsert(ctx, member); err != nil {
		return err
	}
	if err := uow.GuildRepository().UpdateMemberCount(ctx, member.GuildID, memberCount); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":  member.GuildID,
		"userID":   member.UserID,
		"members":  memberCount,
		"rejoined": rejoined,
	}).Info("Member joined")
	return nil
}

// MemberUpdated refreshes a membership's nickname and roles
func (s *guildService) MemberUpdated(ctx context.Context, member *models.GuildMember) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	guild, err := uow.GuildRepository().GetByID(ctx, member.GuildID)
	if err != nil {
		return err
	}
	if guild == nil {
		return nil
	}

	if err := uow.GuildMemberRepository().Upsert(ctx, member); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MemberLeft removes a membership and records the new member count
func (s *guildService) MemberLeft(ctx context.Context, guildID, userID int64, memberCount int) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.GuildMemberRepository().Delete(ctx, guildID, userID); err != nil {
		return err
	}
	if err := uow.GuildRepository().UpdateMemberCount(ctx, guildID, memberCount); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
