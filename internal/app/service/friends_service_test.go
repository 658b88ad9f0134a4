package service

import (
	"context"
	"errors"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lc_stat/internal/common"
	"lc_stat/internal/domain/model"
	"lc_stat/internal/domain/repository"
)

func seedUser(t *testing.T, repo repository.UserRepository, id string, fields repository.UserFields) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), id, fields))
}

func TestFriendUsernames(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", repository.UserFields{
		LeetcodeUsername: lo.ToPtr("me"),
		Friends:          []string{"carol", "dave", "alice"},
		SetFriends:       true,
	})
	seedUser(t, repo, "u2", repository.UserFields{LeetcodeUsername: lo.ToPtr("lonely")})

	friends := NewFriendsService(repo)
	ctx := context.Background()

	got, err := friends.FriendUsernames(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "dave", "alice"}, got)

	for _, uid := range []string{"u2", "missing", ""} {
		got, err := friends.FriendUsernames(ctx, uid)
		require.NoError(t, err, uid)
		assert.NotNil(t, got, uid)
		assert.Empty(t, got, uid)
	}
}

func TestResolveFriends(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", repository.UserFields{
		Friends:    []string{"carol", "dave"},
		SetFriends: true,
	})
	seedUser(t, repo, "u3", repository.UserFields{
		LeetcodeUsername: lo.ToPtr("carol"),
		DisplayName:      lo.ToPtr("Carol"),
	})

	records, err := NewFriendsService(repo).ResolveFriends(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []model.FriendRecord{
		{ID: "u3", LeetcodeUsername: "carol", DisplayName: "Carol"},
		{LeetcodeUsername: "dave"},
	}, records)

	placeholder, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(records[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"leetcodeUsername":"dave"}`, string(placeholder))
}

func TestResolveFriends_NoFriends(t *testing.T) {
	records, err := NewFriendsService(newTestRepo(t)).ResolveFriends(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

type failingRepo struct {
	repository.UserRepository
	err error
}

func (f failingRepo) FindByID(context.Context, string) (*model.User, error) {
	return nil, f.err
}

func TestFriendUsernames_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")

	_, err := NewFriendsService(failingRepo{err: storeErr}).FriendUsernames(context.Background(), "u1")
	assert.ErrorIs(t, err, storeErr)
}

type lookupRepo struct {
	repository.UserRepository
	friends []string
	byName  map[string]*model.User
}

func (l lookupRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Friends: l.friends}, nil
}

func (l lookupRepo) FindByLeetcodeUsername(_ context.Context, name string) (*model.User, error) {
	if u, ok := l.byName[name]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func TestResolveFriends_ReturnsStoredRecord(t *testing.T) {
	repo := lookupRepo{
		friends: []string{"carol", "erin"},
		byName: map[string]*model.User{
			"carol": {ID: "u9", LeetcodeUsername: "carol123", DisplayName: "Carol"},
		},
	}

	records, err := NewFriendsService(repo).ResolveFriends(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []model.FriendRecord{
		{ID: "u9", LeetcodeUsername: "carol123", DisplayName: "Carol"},
		{LeetcodeUsername: "erin"},
	}, records)
}
