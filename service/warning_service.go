package service

import (
	"context"
	"fmt"
	"strings"

	"cerealbot/events"
	"cerealbot/models"

	log "github.com/sirupsen/logrus"
)

// warningService implements the WarningService interface
type warningService struct {
	uowFactory UnitOfWorkFactory
	warnLimit  int
}

// NewWarningService creates a new warning service. warnLimit is the count at which
// WarningResult.LimitReached is set.
func NewWarningService(uowFactory UnitOfWorkFactory, warnLimit int) WarningService {
	return &warningService{
		uowFactory: uowFactory,
		warnLimit:  warnLimit,
	}
}

// Warn appends a warning and returns it with the user's new total
func (s *warningService) Warn(ctx context.Context, guildID, userID, moderatorID int64, reason string) (*models.WarningResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = models.DefaultWarningReason
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	warning, err := uow.WarningRepository().Create(ctx, &models.Warning{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create warning: %w", err)
	}

	count, err := uow.WarningRepository().CountByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count warnings: %w", err)
	}

	result := &models.WarningResult{
		Warning:      warning,
		Count:        count,
		LimitReached: s.warnLimit > 0 && count >= int64(s.warnLimit),
	}

	uow.EventBus().Publish(events.WarningIssuedEvent{
		WarningID:    warning.ID,
		GuildID:      guildID,
		UserID:       userID,
		ModeratorID:  moderatorID,
		Reason:       reason,
		Count:        count,
		LimitReached: result.LimitReached,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":     guildID,
		"userID":      userID,
		"moderatorID": moderatorID,
		"count":       count,
	}).Info("Warning issued")

	return result, nil
}

// ListWarnings returns the user's warnings in the guild, oldest first
func (s *warningService) ListWarnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.WarningRepository().ListByUser(ctx, guildID, userID)
}

// ClearWarnings deletes all of the user's warnings in the guild on behalf of moderatorID
func (s *warningService) ClearWarnings(ctx context.Context, guildID, userID, moderatorID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	removed, err := uow.WarningRepository().DeleteByUser(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear warnings: %w", err)
	}

	if removed > 0 {
		uow.EventBus().Publish(events.WarningsClearedEvent{
			GuildID:     guildID,
			UserID:      userID,
			ModeratorID: moderatorID,
			Removed:     removed,
		})
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return removed, nil
}
