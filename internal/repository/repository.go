package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nihal711/noah/internal/model"
)

// Repository aggregates every repository
type Repository struct {
	db *gorm.DB

	User         UserRepository
	LeaveRequest RequestRepository[model.LeaveRequest]
	LeaveBalance LeaveBalanceRepository
	BankLetter   RequestRepository[model.BankLetterRequest]
	VisaLetter   RequestRepository[model.VisaLetterRequest]
	Attachment   AttachmentRepository
}

// NewRepository builds the aggregate on a connection pool or a transaction
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		LeaveRequest: NewRequestRepo[model.LeaveRequest](db, "leave_request_id"),
		LeaveBalance: NewLeaveBalanceRepo(db),
		BankLetter:   NewRequestRepo[model.BankLetterRequest](db, "bank_letter_request_id"),
		VisaLetter:   NewRequestRepo[model.VisaLetterRequest](db, "visa_letter_request_id"),
		Attachment:   NewAttachmentRepo(db),
	}
}

// BeginTx starts a transaction. Returns a nil tx when the aggregate was
// assembled without a database (unit tests with mock repositories).
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate bound to tx; with a nil tx it returns r itself.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// ── list filters ──

// RequestFilter narrows request listings. Zero values mean "no filter".
type RequestFilter struct {
	UserID      string // owner
	ManagerID   string // owners whose manager_id is this user
	Status      string
	OldestFirst bool
	WithUser    bool // preload the owner (leave requests only)
	Offset      int
	Limit       int // 0 = no limit
}

// UserListFilters narrows GET /users/
type UserListFilters struct {
	Department string
	Role       string
	Keyword    string
}
