package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nihal711/noah/internal/model"
)

// RequestRepository data access shared by leave, bank letter and visa letter
// requests. M is the row type; every table has user_id, status and the
// decision columns.
type RequestRepository[M any] interface {
	Create(ctx context.Context, m *M) error
	GetByID(ctx context.Context, id string) (*M, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*M, error)
	List(ctx context.Context, filter *RequestFilter) ([]M, int64, error)
	// Decide moves a pending row to d.Status. Returns the affected row count,
	// 0 when the row is gone or no longer pending.
	Decide(ctx context.Context, id string, d model.Decision) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type requestRepo[M any] struct {
	db       *gorm.DB
	idColumn string
}

// NewRequestRepo creates a RequestRepository for the table of M
func NewRequestRepo[M any](db *gorm.DB, idColumn string) RequestRepository[M] {
	return &requestRepo[M]{db: db, idColumn: idColumn}
}

func (r *requestRepo[M]) Create(ctx context.Context, m *M) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *requestRepo[M]) GetByID(ctx context.Context, id string) (*M, error) {
	var m M
	if err := r.db.WithContext(ctx).Where(r.idColumn+" = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *requestRepo[M]) GetByIDForUpdate(ctx context.Context, id string) (*M, error) {
	var m M
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(r.idColumn+" = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *requestRepo[M]) List(ctx context.Context, filter *RequestFilter) ([]M, int64, error) {
	var items []M
	var total int64

	db := r.db.WithContext(ctx).Model(new(M))
	if filter == nil {
		filter = &RequestFilter{}
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.ManagerID != "" {
		db = db.Where("user_id IN (?)",
			r.db.Model(&model.User{}).Select("user_id").Where("manager_id = ?", filter.ManagerID))
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithUser {
		db = db.Preload("User")
	}
	if filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}
	order := "created_at DESC"
	if filter.OldestFirst {
		order = "created_at ASC"
	}
	if err := db.Order(order).Order(r.idColumn).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *requestRepo[M]) Decide(ctx context.Context, id string, d model.Decision) (int64, error) {
	decidedAt := time.Now()
	if d.DecidedAt != nil {
		decidedAt = *d.DecidedAt
	}
	res := r.db.WithContext(ctx).
		Model(new(M)).
		Where(r.idColumn+" = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":            d.Status,
			"approver_id":       d.ApproverID,
			"approver_comments": d.ApproverComments,
			"decided_at":        decidedAt,
			"updated_at":        decidedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *requestRepo[M]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where(r.idColumn+" = ?", id).Delete(new(M))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *requestRepo[M]) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(new(M)).Error
}
