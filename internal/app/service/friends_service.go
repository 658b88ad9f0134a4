package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lc_stat/internal/common"
	"lc_stat/internal/domain/model"
	"lc_stat/internal/domain/repository"
	"lc_stat/internal/platform/logger"
)

type FriendsService struct {
	userRepo repository.UserRepository
}

func NewFriendsService(userRepo repository.UserRepository) *FriendsService {
	return &FriendsService{userRepo: userRepo}
}

// FriendUsernames returns the stored friend list of uid in stored order. An
// unknown user or an empty list yields an empty, non-nil slice.
func (s *FriendsService) FriendUsernames(ctx context.Context, uid string) ([]string, error) {
	log := logger.FromContext(ctx).With(slog.String("uid", uid))

	if uid == "" {
		return []string{}, nil
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Warn("no user found for friends lookup")
			return []string{}, nil
		}
		return nil, fmt.Errorf("get friends of %s: %w", uid, err)
	}

	if len(user.Friends) == 0 {
		log.Info("user has no friends stored")
		return []string{}, nil
	}

	friends := make([]string, len(user.Friends))
	copy(friends, user.Friends)
	log.Debug("friends found", slog.Int("count", len(friends)))
	return friends, nil
}

// ResolveFriends looks every stored friend up by LeetCode username. Friends
// without a local account come back as placeholders.
func (s *FriendsService) ResolveFriends(ctx context.Context, uid string) ([]model.FriendRecord, error) {
	usernames, err := s.FriendUsernames(ctx, uid)
	if err != nil {
		return nil, err
	}

	records := make([]model.FriendRecord, 0, len(usernames))
	for _, name := range usernames {
		user, err := s.userRepo.FindByLeetcodeUsername(ctx, name)
		switch {
		case errors.Is(err, common.ErrNotFound):
			records = append(records, model.PlaceholderFriend(name))
		case err != nil:
			return nil, fmt.Errorf("resolve friend %s: %w", name, err)
		default:
			records = append(records, user.FriendRecord())
		}
	}
	return records, nil
}
