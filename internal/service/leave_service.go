package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/repository"
	pkgerrors "github.com/nihal711/noah/pkg/errors"
	"github.com/nihal711/noah/pkg/validator"
)

// ── leave errors ──

var (
	ErrLeaveNotFound        = pkgerrors.New(pkgerrors.KindNotFound, 13001, "leave request not found")
	ErrLeaveDateRange       = pkgerrors.New(pkgerrors.KindValidation, 13002, "end_date must not be before start_date")
	ErrLeaveNotEligible     = pkgerrors.New(pkgerrors.KindValidation, 13003, "user is not eligible for this leave type")
	ErrLeaveNotPending      = pkgerrors.New(pkgerrors.KindConflict, 13004, "leave request has already been decided")
	ErrLeaveBalanceMissing  = pkgerrors.New(pkgerrors.KindConflict, 13005, "no leave balance for this leave type and year")
	ErrLeaveBalanceExceeded = pkgerrors.New(pkgerrors.KindConflict, 13006, "insufficient leave balance")
	ErrLeaveDeleteForbidden = pkgerrors.New(pkgerrors.KindForbidden, 13007, "not authorized to delete this request")
	ErrLeaveSelfDecision    = pkgerrors.New(pkgerrors.KindForbidden, 13008, "cannot decide your own leave request")
	ErrLeaveBalanceBelowUse = pkgerrors.New(pkgerrors.KindConflict, 13009, "total_days cannot be lower than used_days")
	ErrLeaveBalanceRace     = pkgerrors.New(pkgerrors.KindConflict, 13010, "leave balance was created concurrently, retry")
)

// LeaveService leave requests and balances
type LeaveService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateLeaveRequest) (*dto.LeaveRequestResponse, error)
	ListMine(ctx context.Context, caller Caller) ([]dto.LeaveRequestResponse, error)
	ListAll(ctx context.Context, caller Caller, q *dto.RequestListQuery) ([]dto.LeaveRequestResponse, int64, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.LeaveRequestResponse, error)
	UpdateStatus(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.LeaveRequestResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error

	MyBalances(ctx context.Context, caller Caller) ([]dto.LeaveBalanceResponse, error)
	UserBalances(ctx context.Context, caller Caller, userID string) ([]dto.LeaveBalanceResponse, error)
	SetBalance(ctx context.Context, caller Caller, userID string, req *dto.SetLeaveBalanceRequest) (*dto.LeaveBalanceResponse, error)
}

type leaveService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLeaveService creates a LeaveService
func NewLeaveService(repo *repository.Repository, logger *zap.Logger) LeaveService {
	return &leaveService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *leaveService) Create(ctx context.Context, caller Caller, req *dto.CreateLeaveRequest) (*dto.LeaveRequestResponse, error) {
	start, err := validator.ParseDate(req.StartDate)
	if err != nil {
		return nil, pkgerrors.Validation(err.Error())
	}
	end, err := validator.ParseDate(req.EndDate)
	if err != nil {
		return nil, pkgerrors.Validation(err.Error())
	}
	if end.Before(start) {
		return nil, ErrLeaveDateRange
	}
	// stored as numeric(6,2); a value that rounds to zero is not a request
	days := decimal.NewFromFloat(req.DaysRequested).Round(2)
	if !days.IsPositive() {
		return nil, pkgerrors.Validation("days_requested must be at least 0.01")
	}

	owner, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	if !IsLeaveTypeEligible(owner, req.LeaveType) {
		return nil, ErrLeaveNotEligible
	}

	lr := &model.LeaveRequest{
		UserID:        caller.UserID,
		LeaveType:     strings.TrimSpace(req.LeaveType),
		StartDate:     start,
		EndDate:       end,
		DaysRequested: days,
		Reason:        req.Reason,
		Decision:      model.Decision{Status: model.StatusPending},
	}
	if err := s.repo.LeaveRequest.Create(ctx, lr); err != nil {
		s.logger.Error("create leave request failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("leave request created",
		zap.String("id", lr.LeaveRequestID),
		zap.String("user_id", caller.UserID),
		zap.String("leave_type", lr.LeaveType),
	)
	return toLeaveRequestResponse(lr), nil
}

// IsLeaveTypeEligible maternity leave is for women, paternity leave for men and
// hajj leave for muslims. Every other leave type is open to everyone.
func IsLeaveTypeEligible(u *model.User, leaveType string) bool {
	gender := strings.ToLower(strings.TrimSpace(u.Gender))
	religion := strings.ToLower(strings.TrimSpace(u.Religion))
	switch strings.ToLower(strings.TrimSpace(leaveType)) {
	case "maternity":
		return gender == "female"
	case "paternity":
		return gender == "male"
	case "hajj":
		return religion == "muslim"
	}
	return true
}

// ────────────────────── ListMine ──────────────────────

func (s *leaveService) ListMine(ctx context.Context, caller Caller) ([]dto.LeaveRequestResponse, error) {
	items, _, err := s.repo.LeaveRequest.List(ctx, &repository.RequestFilter{UserID: caller.UserID})
	if err != nil {
		s.logger.Error("list leave requests failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	return toLeaveRequestResponses(items), nil
}

// ────────────────────── ListAll ──────────────────────

// ListAll managers see their direct reports' requests, HR sees everything
func (s *leaveService) ListAll(ctx context.Context, caller Caller, q *dto.RequestListQuery) ([]dto.LeaveRequestResponse, int64, error) {
	if !caller.CanManage() {
		return nil, 0, ErrForbidden
	}

	filter := &repository.RequestFilter{
		Status: q.Status,
		Offset: q.GetOffset(),
		Limit:  q.GetPageSize(),
	}
	if !caller.IsHR() {
		filter.ManagerID = caller.UserID
	}

	items, total, err := s.repo.LeaveRequest.List(ctx, filter)
	if err != nil {
		s.logger.Error("list leave requests failed", zap.Error(err))
		return nil, 0, err
	}
	return toLeaveRequestResponses(items), total, nil
}

func toLeaveRequestResponses(items []model.LeaveRequest) []dto.LeaveRequestResponse {
	result := make([]dto.LeaveRequestResponse, 0, len(items))
	for i := range items {
		result = append(result, *toLeaveRequestResponse(&items[i]))
	}
	return result
}

// ────────────────────── Get ──────────────────────

func (s *leaveService) Get(ctx context.Context, caller Caller, id string) (*dto.LeaveRequestResponse, error) {
	lr, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return toLeaveRequestResponse(lr), nil
}

// loadVisible returns the request when the caller owns it, manages its owner
// or is HR. Anything else looks like a missing request.
func (s *leaveService) loadVisible(ctx context.Context, caller Caller, id string) (*model.LeaveRequest, error) {
	lr, err := s.repo.LeaveRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("load leave request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if lr.UserID == caller.UserID || caller.IsHR() {
		return lr, nil
	}
	if caller.CanManage() {
		ok, err := s.manages(ctx, caller.UserID, lr.UserID)
		if err != nil {
			return nil, err
		}
		if ok {
			return lr, nil
		}
	}
	return nil, ErrLeaveNotFound
}

// manages reports whether managerID is the direct manager of userID
func (s *leaveService) manages(ctx context.Context, managerID, userID string) (bool, error) {
	u, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}
	return u.ManagerID != nil && *u.ManagerID == managerID, nil
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus decides a pending request. Approval consumes the owner's balance
// for the leave type and the year of start_date; the status change and the
// balance update commit together or not at all.
func (s *leaveService) UpdateStatus(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.LeaveRequestResponse, error) {
	if !caller.CanManage() {
		return nil, ErrForbidden
	}
	lr, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if lr.UserID == caller.UserID {
		return nil, ErrLeaveSelfDecision
	}
	if _, err := newDecision(lr, req.Status, caller.UserID, req.Comments, ErrLeaveNotPending); err != nil {
		return nil, err
	}

	err = withTx(ctx, s.repo, s.logger, func(tx *repository.Repository) error {
		locked, err := tx.LeaveRequest.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeaveNotFound
			}
			return err
		}
		decision, err := newDecision(locked, req.Status, caller.UserID, req.Comments, ErrLeaveNotPending)
		if err != nil {
			return err
		}

		if decision.Status == model.StatusApproved {
			if err := consumeBalance(ctx, tx, locked); err != nil {
				return err
			}
		}

		n, err := tx.LeaveRequest.Decide(ctx, id, decision)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLeaveNotPending
		}
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("decide leave request failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("leave request decided",
		zap.String("id", id),
		zap.String("status", req.Status),
		zap.String("by", caller.UserID),
	)

	updated, err := s.repo.LeaveRequest.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("reload leave request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toLeaveRequestResponse(updated), nil
}

// consumeBalance charges lr against its balance row, which is locked first.
// The conditional update is what guarantees used_days never exceeds total_days.
func consumeBalance(ctx context.Context, tx *repository.Repository, lr *model.LeaveRequest) error {
	bal, err := tx.LeaveBalance.GetForUpdate(ctx, lr.UserID, lr.LeaveType, lr.StartDate.Year())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeaveBalanceMissing
		}
		return err
	}
	if !bal.CanConsume(lr.DaysRequested) {
		return ErrLeaveBalanceExceeded
	}
	n, err := tx.LeaveBalance.Consume(ctx, bal.LeaveBalanceID, lr.DaysRequested)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLeaveBalanceExceeded
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

// Delete owners may withdraw pending requests; HR may delete any request, and
// deleting an approved one gives the days back to the balance.
func (s *leaveService) Delete(ctx context.Context, caller Caller, id string) error {
	lr, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := canDelete(lr, caller, ErrLeaveDeleteForbidden, ErrLeaveNotPending); err != nil {
		return err
	}

	err = withTx(ctx, s.repo, s.logger, func(tx *repository.Repository) error {
		locked, err := tx.LeaveRequest.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeaveNotFound
			}
			return err
		}
		if err := canDelete(locked, caller, ErrLeaveDeleteForbidden, ErrLeaveNotPending); err != nil {
			return err
		}
		if locked.Status == model.StatusApproved {
			bal, err := tx.LeaveBalance.GetForUpdate(ctx, locked.UserID, locked.LeaveType, locked.StartDate.Year())
			switch {
			case err == nil:
				if err := tx.LeaveBalance.Release(ctx, bal.LeaveBalanceID, locked.DaysRequested); err != nil {
					return err
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		return tx.LeaveRequest.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeaveNotFound
		}
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("delete leave request failed", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("leave request deleted", zap.String("id", id), zap.String("by", caller.UserID))
	return nil
}

// ────────────────────── Balances ──────────────────────

func (s *leaveService) MyBalances(ctx context.Context, caller Caller) ([]dto.LeaveBalanceResponse, error) {
	return s.listBalances(ctx, caller.UserID)
}

func (s *leaveService) UserBalances(ctx context.Context, caller Caller, userID string) ([]dto.LeaveBalanceResponse, error) {
	if userID != caller.UserID {
		if err := s.checkBalanceAccess(ctx, caller, userID); err != nil {
			return nil, err
		}
	}
	return s.listBalances(ctx, userID)
}

// checkBalanceAccess HR sees everyone, managers their direct reports
func (s *leaveService) checkBalanceAccess(ctx context.Context, caller Caller, userID string) error {
	if !caller.CanManage() {
		return ErrForbidden
	}
	u, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if caller.IsHR() || (u.ManagerID != nil && *u.ManagerID == caller.UserID) {
		return nil
	}
	return ErrForbidden
}

func (s *leaveService) listBalances(ctx context.Context, userID string) ([]dto.LeaveBalanceResponse, error) {
	balances, err := s.repo.LeaveBalance.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list leave balances failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.LeaveBalanceResponse, 0, len(balances))
	for i := range balances {
		result = append(result, *toLeaveBalanceResponse(&balances[i]))
	}
	return result, nil
}

// SetBalance creates or resizes an entitlement. Used days are kept.
func (s *leaveService) SetBalance(ctx context.Context, caller Caller, userID string, req *dto.SetLeaveBalanceRequest) (*dto.LeaveBalanceResponse, error) {
	if !caller.IsHR() {
		return nil, ErrForbidden
	}
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}
	total := decimal.NewFromFloat(req.TotalDays).Round(2)
	leaveType := strings.TrimSpace(req.LeaveType)

	var result *model.LeaveBalance
	err := withTx(ctx, s.repo, s.logger, func(tx *repository.Repository) error {
		bal, err := tx.LeaveBalance.GetForUpdate(ctx, userID, leaveType, year)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bal = &model.LeaveBalance{
				UserID:    userID,
				LeaveType: leaveType,
				Year:      year,
				TotalDays: total,
				UsedDays:  decimal.Zero,
			}
			result = bal
			return tx.LeaveBalance.Create(ctx, bal)
		}
		if err != nil {
			return err
		}
		if total.LessThan(bal.UsedDays) {
			return ErrLeaveBalanceBelowUse
		}
		bal.TotalDays = total
		result = bal
		return tx.LeaveBalance.Update(ctx, bal)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLeaveBalanceRace
		}
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("set leave balance failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("leave balance set",
		zap.String("user_id", userID),
		zap.String("leave_type", leaveType),
		zap.Int("year", year),
		zap.String("total_days", total.String()),
	)
	return toLeaveBalanceResponse(result), nil
}
