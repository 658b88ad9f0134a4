package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lc_stat/internal/common"
	"lc_stat/internal/domain/model"
	"lc_stat/internal/domain/repository"
	"lc_stat/internal/platform/logger"
)

type UserService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, now: time.Now}
}

type UpdateProfileRequest struct {
	DisplayName      *string  `json:"displayName" validate:"omitempty,max=100"`
	LeetcodeUsername *string  `json:"leetcodeUsername" validate:"omitempty,max=64"`
	Email            *string  `json:"email" validate:"omitempty,email"`
	Friends          []string `json:"friends" validate:"omitempty,dive,required,max=64"`
	// ReplaceFriends lets Friends overwrite a non-empty stored list.
	ReplaceFriends bool `json:"replaceFriends"`
}

type FriendRequest struct {
	LeetcodeUsername string `json:"leetcodeUsername" validate:"required,max=64"`
}

// DebugUser is the diagnostic view of a stored user.
type DebugUser struct {
	User         *model.User `json:"user"`
	HasFriends   bool        `json:"hasFriends"`
	FriendsCount int         `json:"friendsCount"`
	Friends      []string    `json:"friends"`
}

func (s *UserService) GetProfile(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, fmt.Errorf("uid is required: %w", common.ErrBadRequest)
	}
	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user.Friends == nil {
		user.Friends = []string{}
	}
	return user, nil
}

func (s *UserService) Debug(ctx context.Context, uid string) (*DebugUser, error) {
	user, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &DebugUser{
		User:         user,
		HasFriends:   len(user.Friends) > 0,
		FriendsCount: len(user.Friends),
		Friends:      user.Friends,
	}, nil
}

// UpdateProfile creates the profile of uid or merges req into it. A stored
// non-empty friend list is kept unless req.ReplaceFriends is set.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*model.User, error) {
	log := logger.FromContext(ctx).With(slog.String("uid", uid))

	if uid == "" {
		return nil, fmt.Errorf("uid is required: %w", common.ErrBadRequest)
	}
	if req.LeetcodeUsername != nil {
		trimmed := strings.TrimSpace(*req.LeetcodeUsername)
		req.LeetcodeUsername = &trimmed
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByID(ctx, uid)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if req.Email != nil && (existing == nil || existing.Email != *req.Email) {
		if err := s.ensureEmailFree(ctx, uid, *req.Email); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	fields := repository.UserFields{
		Email:            req.Email,
		DisplayName:      req.DisplayName,
		LeetcodeUsername: req.LeetcodeUsername,
		UpdatedAt:        &now,
	}

	switch {
	case existing == nil:
		log.Info("creating new user profile")
		fields.CreatedAt = &now
		fields.SetFriends = true
		fields.Friends = req.Friends
	case req.Friends == nil:
	case len(existing.Friends) > 0 && !req.ReplaceFriends:
		log.Info("keeping stored friends", slog.Int("count", len(existing.Friends)))
	default:
		fields.SetFriends = true
		fields.Friends = req.Friends
	}

	if err := s.userRepo.Upsert(ctx, uid, fields); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return s.GetProfile(ctx, uid)
}

// ensureEmailFree fails with ErrConflict when email belongs to another user.
func (s *UserService) ensureEmailFree(ctx context.Context, uid, email string) error {
	owner, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check email: %w", err)
	case owner.ID != uid:
		return fmt.Errorf("email %s already registered: %w", email, common.ErrConflict)
	default:
		return nil
	}
}

func (s *UserService) AddFriend(ctx context.Context, uid string, req FriendRequest) (*model.User, error) {
	req.LeetcodeUsername = strings.TrimSpace(req.LeetcodeUsername)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.userRepo.AddFriend(ctx, uid, req.LeetcodeUsername); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, uid)
}

func (s *UserService) RemoveFriend(ctx context.Context, uid, leetcodeUsername string) (*model.User, error) {
	leetcodeUsername = strings.TrimSpace(leetcodeUsername)
	if leetcodeUsername == "" {
		return nil, fmt.Errorf("leetcodeUsername is required: %w", common.ErrBadRequest)
	}
	if err := s.userRepo.RemoveFriend(ctx, uid, leetcodeUsername); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, uid)
}
