package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nihal711/noah/internal/model"
)

// LeaveBalanceRepository leave entitlement data access.
// Leave types are matched case-insensitively.
type LeaveBalanceRepository interface {
	Create(ctx context.Context, b *model.LeaveBalance) error
	Update(ctx context.Context, b *model.LeaveBalance) error
	ListByUser(ctx context.Context, userID string) ([]model.LeaveBalance, error)
	Get(ctx context.Context, userID, leaveType string, year int) (*model.LeaveBalance, error)
	// GetForUpdate locks the balance row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, userID, leaveType string, year int) (*model.LeaveBalance, error)
	// Consume adds days to used_days only while the result stays within
	// total_days. Returns the affected row count.
	Consume(ctx context.Context, id string, days decimal.Decimal) (int64, error)
	// Release gives days back, never taking used_days below zero
	Release(ctx context.Context, id string, days decimal.Decimal) error
	DeleteByUser(ctx context.Context, userID string) error
}

type leaveBalanceRepo struct {
	db *gorm.DB
}

// NewLeaveBalanceRepo creates a LeaveBalanceRepository
func NewLeaveBalanceRepo(db *gorm.DB) LeaveBalanceRepository {
	return &leaveBalanceRepo{db: db}
}

func (r *leaveBalanceRepo) Create(ctx context.Context, b *model.LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *leaveBalanceRepo) Update(ctx context.Context, b *model.LeaveBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *leaveBalanceRepo) ListByUser(ctx context.Context, userID string) ([]model.LeaveBalance, error) {
	var balances []model.LeaveBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year DESC").Order("leave_type").
		Find(&balances).Error
	return balances, err
}

func (r *leaveBalanceRepo) Get(ctx context.Context, userID, leaveType string, year int) (*model.LeaveBalance, error) {
	return r.get(r.db.WithContext(ctx), userID, leaveType, year)
}

func (r *leaveBalanceRepo) GetForUpdate(ctx context.Context, userID, leaveType string, year int) (*model.LeaveBalance, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID, leaveType, year)
}

func (r *leaveBalanceRepo) get(db *gorm.DB, userID, leaveType string, year int) (*model.LeaveBalance, error) {
	var b model.LeaveBalance
	err := db.
		Where("user_id = ? AND LOWER(leave_type) = LOWER(?) AND year = ?", userID, leaveType, year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *leaveBalanceRepo) Consume(ctx context.Context, id string, days decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.LeaveBalance{}).
		Where("leave_balance_id = ? AND used_days + ? <= total_days", id, days).
		Updates(map[string]interface{}{
			"used_days":  gorm.Expr("used_days + ?", days),
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *leaveBalanceRepo) Release(ctx context.Context, id string, days decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&model.LeaveBalance{}).
		Where("leave_balance_id = ?", id).
		Updates(map[string]interface{}{
			"used_days":  gorm.Expr("GREATEST(used_days - ?, 0)", days),
			"updated_at": time.Now(),
		}).Error
}

func (r *leaveBalanceRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.LeaveBalance{}).Error
}
