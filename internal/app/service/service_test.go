package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"lc_stat/internal/domain/repository"
	"lc_stat/internal/platform/docstore"
	"lc_stat/internal/platform/leetcode"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeLeetCode struct {
	mu       sync.Mutex
	subs     map[string][]leetcode.AcSubmission
	counts   map[string][]leetcode.DifficultyCount
	subsErr  map[string]error
	countErr map[string]error
	calls    []string
	limits   []int
}

func newFakeLeetCode() *fakeLeetCode {
	return &fakeLeetCode{
		subs:     map[string][]leetcode.AcSubmission{},
		counts:   map[string][]leetcode.DifficultyCount{},
		subsErr:  map[string]error{},
		countErr: map[string]error{},
	}
}

func (f *fakeLeetCode) RecentAcSubmissions(_ context.Context, username string, limit int) ([]leetcode.AcSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, username)
	f.limits = append(f.limits, limit)
	if err := f.subsErr[username]; err != nil {
		return nil, err
	}
	return f.subs[username], nil
}

func (f *fakeLeetCode) AcceptedQuestionCounts(_ context.Context, userSlug string) ([]leetcode.DifficultyCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.countErr[userSlug]; err != nil {
		return nil, err
	}
	return f.counts[userSlug], nil
}

func (f *fakeLeetCode) calledUsernames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var errUpstream = errors.New("upstream unavailable")

func at(hour, minute, second int) leetcode.Unix {
	return leetcode.Unix(time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), hour, minute, second, 0, time.UTC).Unix())
}

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := docstore.NewSQLiteStore(db)
	require.NoError(t, store.InitTable(context.Background()))
	return repository.NewDocUserRepository(store, "users")
}
