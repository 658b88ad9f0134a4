package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"lc_stat/internal/common"
	"lc_stat/internal/domain/repository"
	"lc_stat/internal/platform/docstore"
)

func setupRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := docstore.NewSQLiteStore(db)
	require.NoError(t, store.InitTable(context.Background()))
	return repository.NewDocUserRepository(store, "users")
}

func TestUserRepository_FindByIDNotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUserRepository_UpsertAndFind(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	err := repo.Upsert(ctx, "u1", repository.UserFields{
		Email:            lo.ToPtr("alice@example.com"),
		LeetcodeUsername: lo.ToPtr("alice_lc"),
		HashedPassword:   lo.ToPtr("hash"),
		SetFriends:       true,
		CreatedAt:        &created,
	})
	require.NoError(t, err)

	user, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice_lc", user.LeetcodeUsername)
	assert.Equal(t, "hash", user.HashedPassword)
	assert.Empty(t, user.Friends)
	require.NotNil(t, user.CreatedAt)
	assert.True(t, created.Equal(*user.CreatedAt))

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	byName, err := repo.FindByLeetcodeUsername(ctx, "alice_lc")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	_, err = repo.FindByLeetcodeUsername(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUserRepository_UpsertMergesFields(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "u1", repository.UserFields{
		DisplayName: lo.ToPtr("Alice"),
		Friends:     []string{"bob"},
		SetFriends:  true,
	}))
	require.NoError(t, repo.Upsert(ctx, "u1", repository.UserFields{
		LeetcodeUsername: lo.ToPtr("alice_lc"),
	}))

	user, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.Equal(t, "alice_lc", user.LeetcodeUsername)
	assert.Equal(t, []string{"bob"}, user.Friends)
}

func TestUserRepository_Friends(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "u1", repository.UserFields{SetFriends: true}))

	require.NoError(t, repo.AddFriend(ctx, "u1", "bob"))
	require.NoError(t, repo.AddFriend(ctx, "u1", "carol"))
	require.NoError(t, repo.AddFriend(ctx, "u1", "bob"))

	user, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, user.Friends)

	require.NoError(t, repo.RemoveFriend(ctx, "u1", "bob"))
	user, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, user.Friends)

	assert.ErrorIs(t, repo.AddFriend(ctx, "ghost", "bob"), common.ErrNotFound)
}
