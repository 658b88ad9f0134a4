package service

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lc_stat/internal/common"
	"lc_stat/internal/domain/model"
	"lc_stat/internal/domain/repository"
)

func newTestReports(t *testing.T, repo repository.UserRepository, defaults ...string) (*ReportService, *fakeLeetCode) {
	t.Helper()
	fake := newFakeLeetCode()
	svc := NewReportService(newTestStats(fake), NewFriendsService(repo), defaults)
	svc.now = clock
	return svc, fake
}

func usernames(r *model.Report) []string {
	return lo.Map(r.Data, func(u model.UserReport, _ int) string { return u.Username })
}

func TestReportForUser(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", repository.UserFields{Friends: []string{"alice", "bob"}, SetFriends: true})
	seedUser(t, repo, "u2", repository.UserFields{SetFriends: true})

	svc, _ := newTestReports(t, repo, "d1", " ", "d2")
	ctx := context.Background()

	tests := []struct {
		name      string
		uid       string
		usernames []string
		source    string
	}{
		{name: "friends", uid: "u1", usernames: []string{"alice", "bob"}, source: model.SourceUserFriends},
		{name: "no friends", uid: "u2", usernames: []string{"d1", "d2"}, source: model.SourceUserFriends},
		{name: "unknown user", uid: "ghost", usernames: []string{"d1", "d2"}, source: model.SourceUserFriends},
		{name: "no uid", uid: "", usernames: []string{"d1", "d2"}, source: model.SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := svc.ReportForUser(ctx, tt.uid)
			assert.Equal(t, tt.usernames, usernames(report))
			assert.Equal(t, tt.source, report.Source)
			assert.NotEmpty(t, report.ID)
			assert.Equal(t, fixedNow, report.ReportGeneratedAt)
		})
	}
}

func TestReportForUser_StoreErrorFallsBack(t *testing.T) {
	svc, _ := newTestReports(t, failingRepo{err: errors.New("boom")}, "d1")

	report := svc.ReportForUser(context.Background(), "u1")
	assert.Equal(t, []string{"d1"}, usernames(report))
}

func TestReportForRequest(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "u1", repository.UserFields{Friends: []string{"alice", "bob"}, SetFriends: true})
	seedUser(t, repo, "u2", repository.UserFields{SetFriends: true})

	svc, _ := newTestReports(t, repo, "d1")
	ctx := context.Background()

	tests := []struct {
		name      string
		req       UserReportRequest
		usernames []string
		source    string
	}{
		{name: "friends win", req: UserReportRequest{UserID: "u1", LeetcodeUsername: "me"}, usernames: []string{"alice", "bob"}, source: model.SourceUserFriends},
		{name: "own username when no friends", req: UserReportRequest{UserID: "u2", LeetcodeUsername: "me"}, usernames: []string{"me"}, source: model.SourceUser},
		{name: "defaults when nothing resolves", req: UserReportRequest{UserID: "u2"}, usernames: []string{"d1"}, source: model.SourceDefault},
		{name: "username only", req: UserReportRequest{LeetcodeUsername: " me "}, usernames: []string{"me"}, source: model.SourceUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.ReportForRequest(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.usernames, usernames(report))
			assert.Equal(t, tt.source, report.Source)
		})
	}
}

func TestReportForRequest_MissingInput(t *testing.T) {
	svc, fake := newTestReports(t, newTestRepo(t), "d1")

	_, err := svc.ReportForRequest(context.Background(), UserReportRequest{UserID: "  "})
	assert.ErrorIs(t, err, common.ErrBadRequest)
	assert.Empty(t, fake.calledUsernames())
}

func TestReportForRequest_StoreErrorUsesUsername(t *testing.T) {
	svc, _ := newTestReports(t, failingRepo{err: errors.New("boom")}, "d1")

	report, err := svc.ReportForRequest(context.Background(), UserReportRequest{UserID: "u1", LeetcodeUsername: "me"})
	require.NoError(t, err)
	assert.Equal(t, []string{"me"}, usernames(report))
}

func TestDefaultUsernames_ReturnsCopy(t *testing.T) {
	svc, _ := newTestReports(t, newTestRepo(t), "d1", "d2")

	got := svc.DefaultUsernames()
	got[0] = "changed"
	assert.Equal(t, []string{"d1", "d2"}, svc.DefaultUsernames())
}
