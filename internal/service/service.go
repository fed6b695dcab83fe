package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nihal711/noah/config"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/repository"
	pkgerrors "github.com/nihal711/noah/pkg/errors"
	"github.com/nihal711/noah/pkg/jwt"
)

// ── common business errors ──

var (
	ErrForbidden = pkgerrors.New(pkgerrors.KindForbidden, 10003, "not enough permissions")
)

// Service aggregates every service
type Service struct {
	Auth       AuthService
	User       UserService
	Leave      LeaveService
	BankLetter BankLetterService
	VisaLetter VisaLetterService
	Request    RequestService
	Export     ExportService
}

// NewService wires the services on one repository aggregate
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, logger),
		User:       NewUserService(repo, logger),
		Leave:      NewLeaveService(repo, logger),
		BankLetter: NewBankLetterService(repo, logger),
		VisaLetter: NewVisaLetterService(repo, logger),
		Request:    NewRequestService(repo, logger),
		Export:     NewExportService(repo, logger),
	}
}

// Caller is the authenticated user a request runs on behalf of.
// Role comes from the stored user row, not from the token.
type Caller struct {
	UserID string
	Role   string
}

// IsHR global visibility
func (c Caller) IsHR() bool { return c.Role == model.RoleHR }

// CanManage manager-tier operations (managers and HR)
func (c Caller) CanManage() bool {
	return c.Role == model.RoleManager || c.Role == model.RoleHR
}

// withTx runs fn on a transaction-bound repository aggregate and commits when
// fn returns nil. Mock aggregates have no database; fn then runs on repo as is.
func withTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		logger.Error("begin transaction failed", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			logger.Error("commit transaction failed", zap.Error(err))
			return err
		}
	}
	return nil
}
