package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Tomlord1122/dashboard-backend/internal/auth"
	"github.com/Tomlord1122/dashboard-backend/internal/config"
	"github.com/Tomlord1122/dashboard-backend/internal/domain"
	"github.com/Tomlord1122/dashboard-backend/internal/repository"
)

const msgInvalidCredentials = "Invalid username or password"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Admin       bool   `json:"admin"`
}

type UserResponse struct {
	ID                      uint   `json:"id"`
	Username                string `json:"username"`
	DisplayName             string `json:"displayName"`
	Admin                   bool   `json:"admin"`
	ChangePasswordRequested bool   `json:"changePasswordRequested"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserService authenticates dashboard users and manages their accounts.
type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Me(ctx context.Context, userID uint) (*UserResponse, error)
	// EnsureAdmin creates the administrator from cfg when no user exists yet.
	// It reports whether an account was created.
	EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error)
}

type userService struct {
	repo     repository.UserRepository
	issuer   *auth.Issuer
	hashCost int
	logger   *slog.Logger
}

func NewUserService(repo repository.UserRepository, issuer *auth.Issuer, hashCost int, logger *slog.Logger) UserService {
	return &userService{
		repo:     repo,
		issuer:   issuer,
		hashCost: hashCost,
		logger:   logger.With("component", "user"),
	}
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, s.internal("find user", err)
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if !auth.CheckPassword(hash, req.Password) {
		s.logger.Info("login rejected", "username", req.Username)
		return nil, unauthorizedError(msgInvalidCredentials)
	}

	token, expires, err := s.issuer.Sign(*user)
	if err != nil {
		return nil, s.internal("sign token", err)
	}
	return &LoginResponse{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		User:      toUserResponse(*user),
	}, nil
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	user, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "admin", user.Admin)
	resp := toUserResponse(*user)
	return &resp, nil
}

func (s *userService) Me(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthorizedError("Unauthorized")
		}
		return nil, s.internal("find user", err)
	}
	resp := toUserResponse(*user)
	return &resp, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if cfg.Username == "" {
		s.logger.Warn("no users exist; set ADMIN_USERNAME and ADMIN_PASSWORD to create an administrator")
		return false, nil
	}

	user, err := s.create(ctx, RegisterRequest{
		Username:    cfg.Username,
		Password:    cfg.Password,
		DisplayName: cfg.DisplayName,
		Admin:       true,
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("administrator account created", "username", user.Username)
	return true, nil
}

func (s *userService) create(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return nil, validationError("username and password are required")
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	hash, err := auth.HashPassword(req.Password, s.hashCost)
	if err != nil {
		return nil, s.internal("hash password", err)
	}
	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Admin:        req.Admin,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("A user with that username already exists")
		}
		return nil, s.internal("create user", err)
	}
	return user, nil
}

func (s *userService) internal(op string, err error) error {
	s.logger.Error(op+" failed", "err", err)
	return fmt.Errorf("%s: %w", op, err)
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:                      u.ID,
		Username:                u.Username,
		DisplayName:             u.DisplayName,
		Admin:                   u.Admin,
		ChangePasswordRequested: u.ChangePasswordRequested,
	}
}
