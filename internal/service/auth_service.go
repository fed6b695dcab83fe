package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nihal711/noah/config"
	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/repository"
	pkgerrors "github.com/nihal711/noah/pkg/errors"
	"github.com/nihal711/noah/pkg/jwt"
)

// ── auth errors ──

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.KindUnauthorized, 11001, "incorrect username or password")
	ErrUserInactive       = pkgerrors.New(pkgerrors.KindForbidden, 11002, "inactive user")
	ErrWrongPassword      = pkgerrors.New(pkgerrors.KindValidation, 11003, "old password is incorrect")
)

// AuthService authentication
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		logger: logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// burn a comparison so unknown usernames take as long as wrong passwords
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("sign access token failed", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.UserID))

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
	}, nil
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}
	user.PasswordHash = hash

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update password failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// dummyHash is compared against when the username does not exist
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("noah-timing-equaliser"), bcrypt.DefaultCost)

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
