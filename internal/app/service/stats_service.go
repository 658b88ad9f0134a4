package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lc_stat/internal/domain/model"
	"lc_stat/internal/platform/leetcode"
	"lc_stat/internal/platform/logger"

	"github.com/gosimple/slug"
	"github.com/samber/lo"
)

const (
	DefaultSubmissionLimit = 15
	DefaultRequestDelay    = 100 * time.Millisecond

	timeOfDayLayout = "15:04:05"
)

var errEmptyUsername = errors.New("username is required")

// LeetCodeClient is the part of the GraphQL client the aggregator needs.
type LeetCodeClient interface {
	RecentAcSubmissions(ctx context.Context, username string, limit int) ([]leetcode.AcSubmission, error)
	AcceptedQuestionCounts(ctx context.Context, userSlug string) ([]leetcode.DifficultyCount, error)
}

type StatsOptions struct {
	SubmissionLimit int
	// RequestDelay is slept between two usernames, not before the first.
	RequestDelay time.Duration
	Now          func() time.Time
}

// StatsService collects per-user LeetCode statistics, one username at a time.
type StatsService struct {
	client LeetCodeClient
	limit  int
	delay  time.Duration
	now    func() time.Time
}

func NewStatsService(client LeetCodeClient, opts StatsOptions) *StatsService {
	if opts.SubmissionLimit <= 0 {
		opts.SubmissionLimit = DefaultSubmissionLimit
	}
	if opts.RequestDelay < 0 {
		opts.RequestDelay = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &StatsService{
		client: client,
		limit:  opts.SubmissionLimit,
		delay:  opts.RequestDelay,
		now:    opts.Now,
	}
}

// Collect returns one report per username, in input order. Failures never
// abort the batch; they are reported on the affected entry.
func (s *StatsService) Collect(ctx context.Context, usernames []string) []model.UserReport {
	reports := make([]model.UserReport, 0, len(usernames))
	for i, username := range usernames {
		if i > 0 {
			if err := sleepContext(ctx, s.delay); err != nil {
				reports = append(reports, failedReport(username, err))
				continue
			}
		}
		reports = append(reports, s.collectUser(ctx, username))
	}
	return reports
}

func (s *StatsService) collectUser(ctx context.Context, username string) model.UserReport {
	log := logger.FromContext(ctx).With(slog.String("username", username))

	if strings.TrimSpace(username) == "" {
		return failedReport(username, errEmptyUsername)
	}
	if err := ctx.Err(); err != nil {
		return failedReport(username, err)
	}

	var problems []string

	subs, err := s.TodaySubmissions(ctx, username)
	if err != nil {
		log.Warn("fetch today's submissions failed", slog.Any("error", err))
		problems = append(problems, "submissions: "+err.Error())
		subs = []model.Submission{}
	}

	totals, err := s.SolvedTotals(ctx, username)
	if err != nil {
		log.Warn("fetch solved counts failed", slog.Any("error", err))
		problems = append(problems, "totals: "+err.Error())
		totals = model.Totals{}
	}

	log.Debug("collected stats", slog.Int("today", len(subs)), slog.Int("total", totals.Total))

	return model.UserReport{
		Username:  username,
		TodaySubs: subs,
		Totals:    totals,
		Error:     strings.Join(problems, "; "),
	}
}

// TodaySubmissions returns the recent accepted submissions made at or after
// the start of the current UTC day. There is no upper bound, so upstream
// timestamps slightly ahead of the local clock are kept.
func (s *StatsService) TodaySubmissions(ctx context.Context, username string) ([]model.Submission, error) {
	recent, err := s.client.RecentAcSubmissions(ctx, username, s.limit)
	if err != nil {
		return nil, fmt.Errorf("recent accepted submissions of %s: %w", username, err)
	}

	dayStart := startOfUTCDay(s.now())

	today := lo.Filter(recent, func(sub leetcode.AcSubmission, _ int) bool {
		return !sub.Timestamp.Time().Before(dayStart)
	})
	return lo.Map(today, func(sub leetcode.AcSubmission, _ int) model.Submission {
		return toSubmission(sub)
	}), nil
}

// SolvedTotals returns accepted question counts by difficulty.
func (s *StatsService) SolvedTotals(ctx context.Context, username string) (model.Totals, error) {
	counts, err := s.client.AcceptedQuestionCounts(ctx, username)
	if err != nil {
		return model.Totals{}, fmt.Errorf("accepted question counts of %s: %w", username, err)
	}

	var totals model.Totals
	for _, c := range counts {
		if d, ok := model.ParseDifficulty(c.Difficulty); ok {
			totals.Add(d, c.Count)
		}
	}
	return totals, nil
}

func toSubmission(sub leetcode.AcSubmission) model.Submission {
	titleSlug := sub.TitleSlug
	if titleSlug == "" {
		titleSlug = slug.Make(sub.Title)
	}
	return model.Submission{
		Title:        sub.Title,
		Time:         sub.Timestamp.Time().Format(timeOfDayLayout),
		SubmissionID: sub.ID,
		TitleSlug:    titleSlug,
	}
}

func failedReport(username string, err error) model.UserReport {
	return model.UserReport{
		Username:  username,
		TodaySubs: []model.Submission{},
		Totals:    model.Totals{},
		Error:     err.Error(),
	}
}

func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
