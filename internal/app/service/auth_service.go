package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lc_stat/internal/common"
	"lc_stat/internal/common/security"
	"lc_stat/internal/domain/model"
	"lc_stat/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenIssuer
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, now: time.Now}
}

type SignupRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6,max=72"`
	DisplayName      string `json:"displayName" validate:"omitempty,max=100"`
	LeetcodeUsername string `json:"leetcodeUsername" validate:"omitempty,max=64"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.LeetcodeUsername = strings.TrimSpace(req.LeetcodeUsername)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("email %s already registered: %w", req.Email, common.ErrConflict)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.NewString()
	now := s.now().UTC()
	fields := repository.UserFields{
		Email:          &req.Email,
		DisplayName:    &req.DisplayName,
		HashedPassword: &hashedPassword,
		SetFriends:     true,
		CreatedAt:      &now,
		UpdatedAt:      &now,
	}
	if req.LeetcodeUsername != "" {
		fields.LeetcodeUsername = &req.LeetcodeUsername
	}
	if err := s.userRepo.Upsert(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load created user: %w", err)
	}
	return s.authResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}
	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *model.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}
