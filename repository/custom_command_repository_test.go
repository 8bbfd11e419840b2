package repository

import (
	"context"
	"testing"

	"cerealbot/repository/testutil"
	"cerealbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomCommandRepository_UniquePerGuild(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewCustomCommandRepository(testDB.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, testutil.CreateTestCustomCommand(1, "rules", "Be nice"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Zero(t, created.UsageCount)

	_, err = repo.Create(ctx, testutil.CreateTestCustomCommand(1, "rules", "Be mean"))
	require.ErrorIs(t, err, service.ErrDuplicateCustomCommand)

	// Same name in another guild is allowed
	_, err = repo.Create(ctx, testutil.CreateTestCustomCommand(2, "rules", "Different rules"))
	require.NoError(t, err)

	cmd, err := repo.GetByName(ctx, 1, "rules")
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.Equal(t, "Be nice", cmd.Response)
}

func TestCustomCommandRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewCustomCommandRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown command", func(t *testing.T) {
		cmd, err := repo.GetByName(ctx, 1, "missing")
		require.NoError(t, err)
		assert.Nil(t, cmd)

		cmd, err = repo.IncrementUsage(ctx, 1, "missing")
		require.NoError(t, err)
		assert.Nil(t, cmd)

		deleted, err := repo.Delete(ctx, 1, "missing")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("list increment delete", func(t *testing.T) {
		for _, name := range []string{"zeta", "alpha", "mid"} {
			_, err := repo.Create(ctx, testutil.CreateTestCustomCommand(5, name, name+"!"))
			require.NoError(t, err)
		}

		list, err := repo.ListByGuild(ctx, 5)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "alpha", list[0].Name)
		assert.Equal(t, "zeta", list[2].Name)

		cmd, err := repo.IncrementUsage(ctx, 5, "mid")
		require.NoError(t, err)
		assert.Equal(t, int64(1), cmd.UsageCount)
		cmd, err = repo.IncrementUsage(ctx, 5, "mid")
		require.NoError(t, err)
		assert.Equal(t, int64(2), cmd.UsageCount)

		deleted, err := repo.Delete(ctx, 5, "mid")
		require.NoError(t, err)
		assert.True(t, deleted)

		list, err = repo.ListByGuild(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
