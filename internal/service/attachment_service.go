package service

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/repository"
	pkgerrors "github.com/nihal711/noah/pkg/errors"
)

// MaxAttachmentBytes upper bound of a single decoded attachment
const MaxAttachmentBytes = 5 << 20

// ── attachment errors ──

var (
	ErrAttachmentNotFound = pkgerrors.New(pkgerrors.KindNotFound, 15001, "attachment not found")
	ErrAttachmentEncoding = pkgerrors.New(pkgerrors.KindValidation, 15002, "file_data must be base64 encoded")
	ErrAttachmentTooLarge = pkgerrors.New(pkgerrors.KindValidation, 15003, "attachment exceeds 5 MiB")
	ErrAttachmentEmpty    = pkgerrors.New(pkgerrors.KindValidation, 15004, "attachment is empty")
)

// AttachmentUpload a decoded file ready to be stored
type AttachmentUpload struct {
	FileName string
	FileType string
	FileDesc *string
	Data     []byte
}

// DecodeAttachment turns a JSON upload into an AttachmentUpload
func DecodeAttachment(req *dto.CreateAttachmentRequest) (AttachmentUpload, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.FileData))
	if err != nil {
		return AttachmentUpload{}, ErrAttachmentEncoding
	}
	up := AttachmentUpload{
		FileName: req.FileName,
		FileType: req.FileType,
		FileDesc: req.FileDesc,
		Data:     data,
	}
	return up, up.validate()
}

func (u AttachmentUpload) validate() error {
	if len(u.Data) == 0 {
		return ErrAttachmentEmpty
	}
	if len(u.Data) > MaxAttachmentBytes {
		return ErrAttachmentTooLarge
	}
	return nil
}

func decodeAll(reqs []dto.CreateAttachmentRequest) ([]AttachmentUpload, error) {
	uploads := make([]AttachmentUpload, 0, len(reqs))
	for i := range reqs {
		up, err := DecodeAttachment(&reqs[i])
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

// storeAttachments binds uploads to one letter; run inside the letter's transaction
func storeAttachments(ctx context.Context, tx *repository.Repository, ownerType, ownerID string, uploads []AttachmentUpload) ([]model.Attachment, error) {
	stored := make([]model.Attachment, 0, len(uploads))
	for _, up := range uploads {
		a := model.Attachment{
			OwnerType: ownerType,
			OwnerID:   ownerID,
			FileName:  up.FileName,
			FileType:  up.FileType,
			FileDesc:  up.FileDesc,
			FileData:  up.Data,
		}
		if err := tx.Attachment.Create(ctx, &a); err != nil {
			return nil, err
		}
		stored = append(stored, a)
	}
	return stored, nil
}
