package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Puru-codes/parking-lot/internal/apperr"
	"github.com/Puru-codes/parking-lot/internal/auth"
	"github.com/Puru-codes/parking-lot/internal/logger"
)

var (
	ErrInvalidCredentials = apperr.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	ErrInvalidRefresh     = apperr.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
	ErrPasswordMismatch   = fmt.Errorf("%w: passwords do not match", apperr.ErrValidation)
	ErrWrongPassword      = fmt.Errorf("%w: current password is incorrect", apperr.ErrValidation)
	ErrPasswordTooShort   = fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
)

const minPasswordLength = 6

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	if req.Password != req.ConfirmPassword {
		return nil, "", "", ErrPasswordMismatch
	}
	if len(req.Password) < minPasswordLength {
		return nil, "", "", ErrPasswordTooShort
	}

	taken, err := s.repo.UsernameExists(ctx, req.Username, 0)
	if err != nil {
		return nil, "", "", err
	}
	if taken {
		return nil, "", "", ErrUsernameTaken
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailTaken
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	user, err := s.repo.Create(ctx, req.Username, req.Name, req.Email, passwordHash, false)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := s.tokensFor(user)
	if err != nil {
		return nil, "", "", err
	}

	logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.tokensFor(user)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, ErrInvalidRefresh
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.Username, auth.RoleFor(user.IsAdmin), s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return accessToken, user, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*User, error) {
	if len(req.NewPassword) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return nil, ErrWrongPassword
	}

	if req.Username != user.Username {
		taken, err := s.repo.UsernameExists(ctx, req.Username, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, err
	}

	return s.repo.UpdateCredentials(ctx, user.ID, req.Username, passwordHash)
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// EnsureAdmin creates the admin account when no admin exists yet. It reports
// whether an account was created.
func (s *service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	if _, err := s.repo.Create(ctx, username, "", "", passwordHash, true); err != nil {
		return false, err
	}

	logger.Warn("default admin account created, change its password", "username", username)
	return true, nil
}

func (s *service) tokensFor(user *User) (string, string, error) {
	return auth.GenerateTokens(
		user.ID,
		user.Username,
		auth.RoleFor(user.IsAdmin),
		s.jwtSecret,
		s.jwtSecret,
	)
}
