package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"cerealbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCustomCommandMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockCustomCommandRepository) {
	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockRepo := new(MockCustomCommandRepository)

	mockUoW.SetRepositories(MockRepositories{CustomCommands: mockRepo})
	mockFactory.On("Create").Return(mockUoW)
	return mockFactory, mockUoW, mockRepo
}

func TestCustomCommandService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes name", func(t *testing.T) {
		mockFactory, mockUoW, mockRepo := setupCustomCommandMocks()
		service := NewCustomCommandService(mockFactory)

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *models.CustomCommand) bool {
			return c.Name == "rules" && c.Response == "Be nice" && c.GuildID == 1 && c.CreatedBy == 7
		})).Return(&models.CustomCommand{ID: 1, GuildID: 1, Name: "rules", Response: "Be nice"}, nil)

		cmd, err := service.Create(ctx, 1, "  Rules ", " Be nice ", 7)
		require.NoError(t, err)
		assert.Equal(t, "rules", cmd.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate in guild", func(t *testing.T) {
		mockFactory, mockUoW, mockRepo := setupCustomCommandMocks()
		service := NewCustomCommandService(mockFactory)

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRepo.On("Create", ctx, mock.Anything).
			Return(nil, fmt.Errorf("command %q: %w", "rules", ErrDuplicateCustomCommand))

		_, err := service.Create(ctx, 1, "rules", "again", 7)
		require.ErrorIs(t, err, ErrDuplicateCustomCommand)
		mockUoW.AssertNotCalled(t, "Commit")
	})

	invalid := []struct {
		name, cmdName, response string
	}{
		{"empty name", "", "x"},
		{"space in name", "two words", "x"},
		{"name too long", strings.Repeat("a", 33), "x"},
		{"symbols", "hi!", "x"},
		{"empty response", "ok", "   "},
		{"response too long", "ok", strings.Repeat("a", 2001)},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			mockFactory := new(MockUnitOfWorkFactory)
			service := NewCustomCommandService(mockFactory)

			_, err := service.Create(ctx, 1, tt.cmdName, tt.response, 7)
			require.ErrorIs(t, err, ErrInvalidCustomCommand)
			mockFactory.AssertNotCalled(t, "Create")
		})
	}
}

func TestCustomCommandService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("missing command", func(t *testing.T) {
		mockFactory, mockUoW, mockRepo := setupCustomCommandMocks()
		service := NewCustomCommandService(mockFactory)

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRepo.On("Delete", ctx, int64(1), "ghost").Return(false, nil)

		err := service.Remove(ctx, 1, "Ghost")
		require.ErrorIs(t, err, ErrCustomCommandNotFound)
	})

	t.Run("removed", func(t *testing.T) {
		mockFactory, mockUoW, mockRepo := setupCustomCommandMocks()
		service := NewCustomCommandService(mockFactory)

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRepo.On("Delete", ctx, int64(1), "rules").Return(true, nil)

		require.NoError(t, service.Remove(ctx, 1, "rules"))
		mockUoW.AssertCalled(t, "Commit")
	})
}

func TestCustomCommandService_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown command returns nil", func(t *testing.T) {
		mockFactory, mockUoW, mockRepo := setupCustomCommandMocks()
		service := NewCustomCommandService(mockFactory)

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRepo.On("IncrementUsage", ctx, int64(1), "nope").Return(nil, nil)

		cmd, err := service.Invoke(ctx, 1, "nope")
		require.NoError(t, err)
		assert.Nil(t, cmd)
	})

	t.Run("invalid name never hits the database", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewCustomCommandService(mockFactory)

		cmd, err := service.Invoke(ctx, 1, "not a command")
		require.NoError(t, err)
		assert.Nil(t, cmd)
		mockFactory.AssertNotCalled(t, "Create")
	})

	t.Run("counts usage", func(t *testing.T) {
		mockFactory, mockUoW, mockRepo := setupCustomCommandMocks()
		service := NewCustomCommandService(mockFactory)

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRepo.On("IncrementUsage", ctx, int64(1), "rules").
			Return(&models.CustomCommand{Name: "rules", Response: "Be nice", UsageCount: 4}, nil)

		cmd, err := service.Invoke(ctx, 1, "RULES")
		require.NoError(t, err)
		assert.Equal(t, "Be nice", cmd.Response)
		assert.Equal(t, int64(4), cmd.UsageCount)
	})
}
