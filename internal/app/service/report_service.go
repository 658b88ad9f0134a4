package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"lc_stat/internal/common"
	"lc_stat/internal/domain/model"
	"lc_stat/internal/platform/logger"

	"github.com/rs/xid"
)

// ReportService decides which usernames a report covers and runs the stats
// collection for them.
type ReportService struct {
	stats    *StatsService
	friends  *FriendsService
	defaults []string
	now      func() time.Time
}

func NewReportService(stats *StatsService, friends *FriendsService, defaultUsernames []string) *ReportService {
	defaults := make([]string, 0, len(defaultUsernames))
	for _, u := range defaultUsernames {
		if u = strings.TrimSpace(u); u != "" {
			defaults = append(defaults, u)
		}
	}
	return &ReportService{
		stats:    stats,
		friends:  friends,
		defaults: defaults,
		now:      time.Now,
	}
}

type UserReportRequest struct {
	UserID           string `json:"userId"`
	LeetcodeUsername string `json:"leetcodeUsername"`
}

func (s *ReportService) DefaultUsernames() []string {
	out := make([]string, len(s.defaults))
	copy(out, s.defaults)
	return out
}

func (s *ReportService) DefaultReport(ctx context.Context) *model.Report {
	return s.build(ctx, s.DefaultUsernames(), model.SourceDefault)
}

// ReportForUser covers the friends of uid. Without uid, or when the friend
// list is empty or cannot be read, the default usernames are used.
func (s *ReportService) ReportForUser(ctx context.Context, uid string) *model.Report {
	log := logger.FromContext(ctx)

	if uid == "" {
		log.Info("no uid provided, using default usernames")
		return s.DefaultReport(ctx)
	}

	usernames, err := s.friends.FriendUsernames(ctx, uid)
	switch {
	case err != nil:
		log.Error("error getting friends, using default usernames", slog.String("uid", uid), slog.Any("error", err))
		usernames = s.DefaultUsernames()
	case len(usernames) == 0:
		log.Info("no friends found, using default usernames", slog.String("uid", uid))
		usernames = s.DefaultUsernames()
	}
	return s.build(ctx, usernames, model.SourceUserFriends)
}

// ReportForRequest serves an explicit report request: the friends of
// UserID, else LeetcodeUsername alone, else the defaults.
func (s *ReportService) ReportForRequest(ctx context.Context, req UserReportRequest) (*model.Report, error) {
	log := logger.FromContext(ctx)

	req.UserID = strings.TrimSpace(req.UserID)
	req.LeetcodeUsername = strings.TrimSpace(req.LeetcodeUsername)
	if req.UserID == "" && req.LeetcodeUsername == "" {
		return nil, common.Errorf("either userId or leetcodeUsername is required: %w", common.ErrBadRequest)
	}

	if req.UserID == "" {
		return s.build(ctx, []string{req.LeetcodeUsername}, model.SourceUser), nil
	}

	usernames, err := s.friends.FriendUsernames(ctx, req.UserID)
	if err != nil {
		log.Error("error fetching friends", slog.String("uid", req.UserID), slog.Any("error", err))
	}
	if len(usernames) > 0 {
		return s.build(ctx, usernames, model.SourceUserFriends), nil
	}
	if req.LeetcodeUsername != "" {
		return s.build(ctx, []string{req.LeetcodeUsername}, model.SourceUser), nil
	}
	return s.DefaultReport(ctx), nil
}

func (s *ReportService) build(ctx context.Context, usernames []string, source string) *model.Report {
	logger.FromContext(ctx).Info("generating report",
		slog.String("source", source),
		slog.Int("usernames", len(usernames)),
	)

	return &model.Report{
		ID:                xid.New().String(),
		Data:              s.stats.Collect(ctx, usernames),
		ReportGeneratedAt: s.now().UTC(),
		Source:            source,
	}
}
