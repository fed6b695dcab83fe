package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nihal711/noah/internal/model"
)

// UserRepository user data access
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListWithFilters(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error)
	ListByManager(ctx context.Context, managerID string) ([]model.User, error)
	ClearManager(ctx context.Context, managerID string) error
	Delete(ctx context.Context, id string) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a UserRepository
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "user_id = ?", id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *userRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*model.User, error) {
	return r.first(ctx, "employee_id = ?", employeeID)
}

func (r *userRepo) first(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) ListWithFilters(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if filters != nil {
		if filters.Department != "" {
			db = db.Where("department = ?", filters.Department)
		}
		if filters.Role != "" {
			db = db.Where("role = ?", filters.Role)
		}
		if filters.Keyword != "" {
			kw := "%" + filters.Keyword + "%"
			db = db.Where("full_name ILIKE ? OR username ILIKE ? OR employee_id ILIKE ?", kw, kw, kw)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		db = db.Offset(offset).Limit(limit)
	}
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) ListByManager(ctx context.Context, managerID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("full_name").
		Find(&users).Error
	return users, err
}

// ClearManager detaches the direct reports of managerID
func (r *userRepo) ClearManager(ctx context.Context, managerID string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("manager_id = ?", managerID).
		Update("manager_id", nil).Error
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
