package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/repository"
	pkgerrors "github.com/nihal711/noah/pkg/errors"
	"github.com/nihal711/noah/pkg/validator"
)

// ── user errors ──

var (
	ErrUserNotFound       = pkgerrors.New(pkgerrors.KindNotFound, 12001, "user not found")
	ErrUsernameExists     = pkgerrors.New(pkgerrors.KindConflict, 12002, "username already registered")
	ErrEmailExists        = pkgerrors.New(pkgerrors.KindConflict, 12003, "email already registered")
	ErrEmployeeIDExists   = pkgerrors.New(pkgerrors.KindConflict, 12004, "employee id already registered")
	ErrUserConflict       = pkgerrors.New(pkgerrors.KindConflict, 12005, "user already exists")
	ErrManagerNotFound    = pkgerrors.New(pkgerrors.KindValidation, 12006, "manager not found")
	ErrManagerSelf        = pkgerrors.New(pkgerrors.KindValidation, 12007, "a user cannot be their own manager")
	ErrUserSelfDelete     = pkgerrors.New(pkgerrors.KindConflict, 12008, "cannot delete your own account")
	ErrUserSelfRoleChange = pkgerrors.New(pkgerrors.KindConflict, 12009, "cannot change your own role")
	ErrRestrictedField    = pkgerrors.New(pkgerrors.KindForbidden, 12010, "only HR can change organisational fields")
	ErrUserSelfDeactivate = pkgerrors.New(pkgerrors.KindConflict, 12011, "cannot deactivate your own account")
)

// UserService credential store and employee records
type UserService interface {
	Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.UserResponse, error)
	List(ctx context.Context, caller Caller, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	ListTeam(ctx context.Context, caller Caller) ([]dto.UserResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	AssignRole(ctx context.Context, caller Caller, id string, req *dto.AssignRoleRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Register ──────────────────────

func (s *userService) Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := s.checkUnique(ctx, req.Username, req.Email, req.EmployeeID); err != nil {
		return nil, err
	}

	if req.ManagerID != nil {
		if err := s.checkManager(ctx, *req.ManagerID, ""); err != nil {
			return nil, err
		}
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		EmployeeID:   strings.TrimSpace(req.EmployeeID),
		FullName:     req.FullName,
		Department:   req.Department,
		Position:     req.Position,
		Gender:       req.Gender,
		Religion:     req.Religion,
		Grade:        req.Grade,
		ManagerID:    req.ManagerID,
		LineManager:  req.LineManager,
		MobilePhone:  req.MobilePhone,
		BankName:     req.BankName,
		BranchName:   req.BranchName,
		SBU:          req.SBU,
		Categories:   model.StringArray(req.Categories),
		Role:         model.RoleEmployee,
		PasswordHash: hash,
		IsActive:     true,
	}
	if req.DOJ != nil {
		doj, err := validator.ParseDate(*req.DOJ)
		if err != nil {
			return nil, pkgerrors.Validation(err.Error())
		}
		user.DOJ = &doj
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserConflict
		}
		s.logger.Error("create user failed", zap.String("username", user.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.UserID), zap.String("username", user.Username))
	return toUserResponse(user), nil
}

func (s *userService) checkUnique(ctx context.Context, username, email, employeeID string) error {
	checks := []struct {
		lookup func(context.Context, string) (*model.User, error)
		value  string
		err    error
	}{
		{s.repo.User.GetByUsername, username, ErrUsernameExists},
		{s.repo.User.GetByEmployeeID, employeeID, ErrEmployeeIDExists},
		{s.repo.User.GetByEmail, email, ErrEmailExists},
	}
	for _, c := range checks {
		_, err := c.lookup(ctx, strings.TrimSpace(c.value))
		if err == nil {
			return c.err
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("uniqueness check failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// checkManager managerID must exist and differ from userID
func (s *userService) checkManager(ctx context.Context, managerID, userID string) error {
	if managerID == userID {
		return ErrManagerSelf
	}
	if _, err := s.repo.User.GetByID(ctx, managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrManagerNotFound
		}
		s.logger.Error("load manager failed", zap.String("manager_id", managerID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, caller Caller, id string) (*dto.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.UserID != id && !caller.IsHR() {
		// managers may look up their direct reports
		if !(caller.CanManage() && user.ManagerID != nil && *user.ManagerID == caller.UserID) {
			return nil, ErrForbidden
		}
	}
	return toUserResponse(user), nil
}

func (s *userService) load(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, caller Caller, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	if !caller.IsHR() {
		return nil, 0, ErrForbidden
	}

	filters := &repository.UserListFilters{
		Department: req.Department,
		Role:       req.Role,
		Keyword:    req.Keyword,
	}
	users, total, err := s.repo.User.ListWithFilters(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── ListTeam ──────────────────────

func (s *userService) ListTeam(ctx context.Context, caller Caller) ([]dto.UserResponse, error) {
	if !caller.CanManage() {
		return nil, ErrForbidden
	}
	users, err := s.repo.User.ListByManager(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("list team failed", zap.String("manager_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if caller.UserID != id && !caller.IsHR() {
		return nil, ErrForbidden
	}
	if req.HasRestrictedFields() && !caller.IsHR() {
		return nil, ErrRestrictedField
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		existing, err := s.repo.User.GetByEmail(ctx, *req.Email)
		if err == nil && existing.UserID != user.UserID {
			return nil, ErrEmailExists
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("uniqueness check failed", zap.Error(err))
			return nil, err
		}
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.ManagerID != nil {
		if err := s.checkManager(ctx, *req.ManagerID, user.UserID); err != nil {
			return nil, err
		}
		user.ManagerID = req.ManagerID
	}
	if req.DOJ != nil {
		doj, err := validator.ParseDate(*req.DOJ)
		if err != nil {
			return nil, pkgerrors.Validation(err.Error())
		}
		user.DOJ = &doj
	}

	applyString(&user.FullName, req.FullName)
	applyString(&user.Department, req.Department)
	applyString(&user.Position, req.Position)
	applyOptional(&user.MobilePhone, req.MobilePhone)
	applyOptional(&user.BankName, req.BankName)
	applyOptional(&user.BranchName, req.BranchName)
	applyOptional(&user.Grade, req.Grade)
	applyOptional(&user.LineManager, req.LineManager)
	applyOptional(&user.SBU, req.SBU)
	if req.Categories != nil {
		user.Categories = model.StringArray(req.Categories)
	}
	if req.IsActive != nil {
		if caller.UserID == id && !*req.IsActive {
			return nil, ErrUserSelfDeactivate
		}
		user.IsActive = *req.IsActive
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserConflict
		}
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyOptional(dst **string, v *string) {
	if v != nil {
		val := *v
		*dst = &val
	}
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, caller Caller, id string, req *dto.AssignRoleRequest) (*dto.UserResponse, error) {
	if !caller.IsHR() {
		return nil, ErrForbidden
	}
	if caller.UserID == id {
		return nil, ErrUserSelfRoleChange
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = req.Role

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("assign role failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("role assigned",
		zap.String("user_id", id),
		zap.String("role", req.Role),
		zap.String("by", caller.UserID),
	)
	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

// Delete removes the user together with every request, balance and attachment
// they own. Direct reports keep their records and lose their manager link.
func (s *userService) Delete(ctx context.Context, caller Caller, id string) error {
	if !caller.IsHR() {
		return ErrForbidden
	}
	if caller.UserID == id {
		return ErrUserSelfDelete
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	err := withTx(ctx, s.repo, s.logger, func(tx *repository.Repository) error {
		steps := []func(context.Context, string) error{
			tx.Attachment.DeleteByUser,
			tx.BankLetter.DeleteByUser,
			tx.VisaLetter.DeleteByUser,
			tx.LeaveRequest.DeleteByUser,
			tx.LeaveBalance.DeleteByUser,
			tx.User.ClearManager,
			tx.User.Delete,
		}
		for _, step := range steps {
			if err := step(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("delete user failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("by", caller.UserID))
	return nil
}
