package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"cerealbot/models"

	log "github.com/sirupsen/logrus"
)

const maxCustomResponseLength = 2000

var customCommandName = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// NormalizeCommandName lowercases and trims a custom command name
func NormalizeCommandName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// customCommandService implements the CustomCommandService interface
type customCommandService struct {
	uowFactory UnitOfWorkFactory
}

// NewCustomCommandService creates a new custom command service
func NewCustomCommandService(uowFactory UnitOfWorkFactory) CustomCommandService {
	return &customCommandService{uowFactory: uowFactory}
}

// Create stores a new guild command after validating name and response
func (s *customCommandService) Create(ctx context.Context, guildID int64, name, response string, createdBy int64) (*models.CustomCommand, error) {
	name = NormalizeCommandName(name)
	if !customCommandName.MatchString(name) {
		return nil, fmt.Errorf("name must be 1-32 characters of a-z, 0-9, _ or -: %w", ErrInvalidCustomCommand)
	}
	response = strings.TrimSpace(response)
	if response == "" || len(response) > maxCustomResponseLength {
		return nil, fmt.Errorf("response must be 1-%d characters: %w", maxCustomResponseLength, ErrInvalidCustomCommand)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	cmd, err := uow.CustomCommandRepository().Create(ctx, &models.CustomCommand{
		GuildID:   guildID,
		Name:      name,
		Response:  response,
		CreatedBy: createdBy,
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"name":    name,
		"author":  createdBy,
	}).Info("Custom command created")

	return cmd, nil
}

// Remove deletes a guild command
func (s *customCommandService) Remove(ctx context.Context, guildID int64, name string) error {
	name = NormalizeCommandName(name)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.CustomCommandRepository().Delete(ctx, guildID, name)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCustomCommandNotFound
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List returns a guild's commands ordered by name
func (s *customCommandService) List(ctx context.Context, guildID int64) ([]*models.CustomCommand, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.CustomCommandRepository().ListByGuild(ctx, guildID)
}

// Get returns a command without counting a use
func (s *customCommandService) Get(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	cmd, err := uow.CustomCommandRepository().GetByName(ctx, guildID, NormalizeCommandName(name))
	if err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, ErrCustomCommandNotFound
	}
	return cmd, nil
}

// Invoke returns the command and counts the use; nil when no such command exists
func (s *customCommandService) Invoke(ctx context.Context, guildID int64, name string) (*models.CustomCommand, error) {
	name = NormalizeCommandName(name)
	if !customCommandName.MatchString(name) {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	cmd, err := uow.CustomCommandRepository().IncrementUsage(ctx, guildID, name)
	if err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, nil
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return cmd, nil
}
