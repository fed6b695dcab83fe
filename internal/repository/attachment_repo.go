package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nihal711/noah/internal/model"
)

// AttachmentRepository attachment data access. Listings leave file_data out.
type AttachmentRepository interface {
	Create(ctx context.Context, a *model.Attachment) error
	ListByOwner(ctx context.Context, ownerType, ownerID string) ([]model.Attachment, error)
	GetByID(ctx context.Context, ownerType, ownerID, id string) (*model.Attachment, error)
	DeleteByOwner(ctx context.Context, ownerType, ownerID string) error
	// DeleteByUser removes attachments of every letter owned by userID
	DeleteByUser(ctx context.Context, userID string) error
}

type attachmentRepo struct {
	db *gorm.DB
}

// NewAttachmentRepo creates an AttachmentRepository
func NewAttachmentRepo(db *gorm.DB) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) Create(ctx context.Context, a *model.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *attachmentRepo) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]model.Attachment, error) {
	var items []model.Attachment
	err := r.db.WithContext(ctx).
		Select("attachment_id", "owner_type", "owner_id", "file_name", "file_type", "file_desc",
			"octet_length(file_data) AS file_size", "created_at").
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at").
		Find(&items).Error
	return items, err
}

func (r *attachmentRepo) GetByID(ctx context.Context, ownerType, ownerID, id string) (*model.Attachment, error) {
	var a model.Attachment
	err := r.db.WithContext(ctx).
		Where("attachment_id = ? AND owner_type = ? AND owner_id = ?", id, ownerType, ownerID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attachmentRepo) DeleteByOwner(ctx context.Context, ownerType, ownerID string) error {
	return r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&model.Attachment{}).Error
}

func (r *attachmentRepo) DeleteByUser(ctx context.Context, userID string) error {
	bank := r.db.Model(&model.BankLetterRequest{}).Select("bank_letter_request_id").Where("user_id = ?", userID)
	visa := r.db.Model(&model.VisaLetterRequest{}).Select("visa_letter_request_id").Where("user_id = ?", userID)
	return r.db.WithContext(ctx).
		Where("(owner_type = ? AND owner_id IN (?)) OR (owner_type = ? AND owner_id IN (?))",
			model.OwnerBankLetter, bank, model.OwnerVisaLetter, visa).
		Delete(&model.Attachment{}).Error
}
