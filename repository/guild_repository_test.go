package repository

import (
	"context"
	"testing"
	"time"

	"cerealbot/models"
	"cerealbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildRepository_UpsertPreservesSettings(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewGuildRepository(testDB.DB)
	ctx := context.Background()

	missing, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	g, err := repo.Upsert(ctx, testutil.CreateTestGuild(1, "Cereal Club"))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPrefix, g.Prefix)
	assert.Equal(t, models.DefaultTimezone, g.Timezone)

	prefix := "?"
	tz := "Europe/London"
	channel := int64(55)
	updated, err := repo.UpdateSettings(ctx, 1, models.GuildSettingsUpdate{
		Prefix:       &prefix,
		Timezone:     &tz,
		LogChannelID: &channel,
	})
	require.NoError(t, err)
	assert.Equal(t, "?", updated.Prefix)
	assert.Equal(t, "Europe/London", updated.Timezone)
	require.NotNil(t, updated.LogChannelID)
	assert.Equal(t, int64(55), *updated.LogChannelID)

	renamed := testutil.CreateTestGuild(1, "Cereal Club 2")
	renamed.MemberCount = 99
	g, err = repo.Upsert(ctx, renamed)
	require.NoError(t, err)
	assert.Equal(t, "Cereal Club 2", g.Name)
	assert.Equal(t, 99, g.MemberCount)
	assert.Equal(t, "?", g.Prefix, "settings survive a resync")

	require.NoError(t, repo.UpdateMemberCount(ctx, 1, 100))
	g, err = repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, g.MemberCount)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGuildRepository_UpdateSettingsUnknownGuild(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewGuildRepository(testDB.DB)

	prefix := "$"
	g, err := repo.UpdateSettings(context.Background(), 404, models.GuildSettingsUpdate{Prefix: &prefix})
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestGuildMemberRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	guilds := NewGuildRepository(testDB.DB)
	members := NewGuildMemberRepository(testDB.DB)
	ctx := context.Background()

	_, err := guilds.Upsert(ctx, testutil.CreateTestGuild(1, "Guild"))
	require.NoError(t, err)

	exists, err := members.Exists(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, members.Upsert(ctx, testutil.CreateTestGuildMember(1, 10)))
	exists, err = members.Exists(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, exists)

	m, err := members.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Empty(t, m.Roles)

	nick := "cornflake"
	updated := testutil.CreateTestGuildMember(1, 10, 7, 8)
	updated.Nickname = &nick
	updated.JoinedAt = time.Now().Add(time.Hour)
	require.NoError(t, members.Upsert(ctx, updated))

	m, err = members.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, m.Roles)
	require.NotNil(t, m.Nickname)
	assert.Equal(t, "cornflake", *m.Nickname)
	assert.True(t, m.JoinedAt.Before(updated.JoinedAt), "join time is kept from the first sighting")

	count, err := members.CountByGuild(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	deleted, err := members.Delete(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, deleted)

	m, err = members.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Nil(t, m)
}
