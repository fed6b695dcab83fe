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
)

// ── letter errors ──

var (
	ErrBankLetterNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 14001, "bank letter request not found")
	ErrVisaLetterNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 14002, "visa letter request not found")
	ErrLetterNotPending      = pkgerrors.New(pkgerrors.KindConflict, 14003, "letter request has already been decided")
	ErrLetterDeleteForbidden = pkgerrors.New(pkgerrors.KindForbidden, 14004, "not authorized to delete this request")
)

// LetterService is the approvable-request workflow shared by bank and visa
// letters: C is the create body, R the response. Letters are decided by HR only.
type LetterService[C any, R any] interface {
	Create(ctx context.Context, caller Caller, req *C) (*R, error)
	ListMine(ctx context.Context, caller Caller) ([]R, error)
	ListAll(ctx context.Context, caller Caller, q *dto.RequestListQuery) ([]R, int64, error)
	Get(ctx context.Context, caller Caller, id string) (*R, error)
	UpdateStatus(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*R, error)
	Delete(ctx context.Context, caller Caller, id string) error

	AddAttachment(ctx context.Context, caller Caller, id string, up AttachmentUpload) (*dto.AttachmentResponse, error)
	ListAttachments(ctx context.Context, caller Caller, id string) ([]dto.AttachmentResponse, error)
	GetAttachment(ctx context.Context, caller Caller, id, attachmentID string) (*dto.AttachmentResponse, error)
}

type (
	BankLetterService = LetterService[dto.CreateBankLetterRequest, dto.BankLetterResponse]
	VisaLetterService = LetterService[dto.CreateVisaLetterRequest, dto.VisaLetterResponse]
)

// letterKind everything that differs between letter types
type letterKind[M model.Approvable, C any, R any] struct {
	ownerType  string
	notFound   error
	repo       func(*repository.Repository) repository.RequestRepository[M]
	build      func(userID string, req *C) *M
	uploads    func(req *C) []dto.CreateAttachmentRequest
	toResponse func(m *M, atts []model.Attachment) *R
}

type letterService[M model.Approvable, C any, R any] struct {
	kind   letterKind[M, C, R]
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBankLetterService creates the bank letter workflow
func NewBankLetterService(repo *repository.Repository, logger *zap.Logger) BankLetterService {
	kind := letterKind[model.BankLetterRequest, dto.CreateBankLetterRequest, dto.BankLetterResponse]{
		ownerType: model.OwnerBankLetter,
		notFound:  ErrBankLetterNotFound,
		repo: func(r *repository.Repository) repository.RequestRepository[model.BankLetterRequest] {
			return r.BankLetter
		},
		build: func(userID string, req *dto.CreateBankLetterRequest) *model.BankLetterRequest {
			return &model.BankLetterRequest{
				UserID:            userID,
				BankName:          strings.TrimSpace(req.BankName),
				Purpose:           strings.TrimSpace(req.Purpose),
				AdditionalDetails: req.AdditionalDetails,
				Decision:          model.Decision{Status: model.StatusPending},
			}
		},
		uploads:    func(req *dto.CreateBankLetterRequest) []dto.CreateAttachmentRequest { return req.Attachments },
		toResponse: toBankLetterResponse,
	}
	return &letterService[model.BankLetterRequest, dto.CreateBankLetterRequest, dto.BankLetterResponse]{
		kind:   kind,
		repo:   repo,
		logger: logger.With(zap.String("letter", model.OwnerBankLetter)),
	}
}

// NewVisaLetterService creates the visa letter workflow
func NewVisaLetterService(repo *repository.Repository, logger *zap.Logger) VisaLetterService {
	kind := letterKind[model.VisaLetterRequest, dto.CreateVisaLetterRequest, dto.VisaLetterResponse]{
		ownerType: model.OwnerVisaLetter,
		notFound:  ErrVisaLetterNotFound,
		repo: func(r *repository.Repository) repository.RequestRepository[model.VisaLetterRequest] {
			return r.VisaLetter
		},
		build: func(userID string, req *dto.CreateVisaLetterRequest) *model.VisaLetterRequest {
			language := strings.TrimSpace(req.Language)
			if language == "" {
				language = "English"
			}
			return &model.VisaLetterRequest{
				UserID:      userID,
				Type:        strings.TrimSpace(req.Type),
				Comment:     req.Comment,
				Language:    language,
				AddressedTo: strings.TrimSpace(req.AddressedTo),
				Country:     strings.TrimSpace(req.Country),
				Decision:    model.Decision{Status: model.StatusPending},
			}
		},
		uploads:    func(req *dto.CreateVisaLetterRequest) []dto.CreateAttachmentRequest { return req.Attachments },
		toResponse: toVisaLetterResponse,
	}
	return &letterService[model.VisaLetterRequest, dto.CreateVisaLetterRequest, dto.VisaLetterResponse]{
		kind:   kind,
		repo:   repo,
		logger: logger.With(zap.String("letter", model.OwnerVisaLetter)),
	}
}

// ────────────────────── Create ──────────────────────

// Create stores the letter and its initial attachments in one transaction
func (s *letterService[M, C, R]) Create(ctx context.Context, caller Caller, req *C) (*R, error) {
	uploads, err := decodeAll(s.kind.uploads(req))
	if err != nil {
		return nil, err
	}

	letter := s.kind.build(caller.UserID, req)
	var stored []model.Attachment

	err = withTx(ctx, s.repo, s.logger, func(tx *repository.Repository) error {
		if err := s.kind.repo(tx).Create(ctx, letter); err != nil {
			return err
		}
		stored, err = storeAttachments(ctx, tx, s.kind.ownerType, (*letter).RecordID(), uploads)
		return err
	})
	if err != nil {
		s.logger.Error("create letter request failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("letter request created",
		zap.String("id", (*letter).RecordID()),
		zap.String("user_id", caller.UserID),
		zap.Int("attachments", len(stored)),
	)
	return s.kind.toResponse(letter, stored), nil
}

// ────────────────────── ListMine / ListAll ──────────────────────

func (s *letterService[M, C, R]) ListMine(ctx context.Context, caller Caller) ([]R, error) {
	items, _, err := s.kind.repo(s.repo).List(ctx, &repository.RequestFilter{UserID: caller.UserID})
	if err != nil {
		s.logger.Error("list letter requests failed", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	return s.toResponses(ctx, items)
}

// ListAll HR only; there is no manager tier for letters
func (s *letterService[M, C, R]) ListAll(ctx context.Context, caller Caller, q *dto.RequestListQuery) ([]R, int64, error) {
	if !caller.IsHR() {
		return nil, 0, ErrForbidden
	}
	items, total, err := s.kind.repo(s.repo).List(ctx, &repository.RequestFilter{
		Status: q.Status,
		Offset: q.GetOffset(),
		Limit:  q.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("list letter requests failed", zap.Error(err))
		return nil, 0, err
	}
	result, err := s.toResponses(ctx, items)
	return result, total, err
}

func (s *letterService[M, C, R]) toResponses(ctx context.Context, items []M) ([]R, error) {
	result := make([]R, 0, len(items))
	for i := range items {
		resp, err := s.respond(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

// respond loads attachment metadata and maps the letter
func (s *letterService[M, C, R]) respond(ctx context.Context, letter *M) (*R, error) {
	atts, err := s.repo.Attachment.ListByOwner(ctx, s.kind.ownerType, (*letter).RecordID())
	if err != nil {
		s.logger.Error("list attachments failed", zap.String("id", (*letter).RecordID()), zap.Error(err))
		return nil, err
	}
	return s.kind.toResponse(letter, atts), nil
}

// ────────────────────── Get ──────────────────────

func (s *letterService[M, C, R]) Get(ctx context.Context, caller Caller, id string) (*R, error) {
	letter, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, letter)
}

// loadVisible owner or HR; anyone else gets the kind's not-found error
func (s *letterService[M, C, R]) loadVisible(ctx context.Context, caller Caller, id string) (*M, error) {
	letter, err := s.kind.repo(s.repo).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.kind.notFound
		}
		s.logger.Error("load letter request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if (*letter).OwnerID() != caller.UserID && !caller.IsHR() {
		return nil, s.kind.notFound
	}
	return letter, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *letterService[M, C, R]) UpdateStatus(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*R, error) {
	if !caller.IsHR() {
		return nil, ErrForbidden
	}

	err := withTx(ctx, s.repo, s.logger, func(tx *repository.Repository) error {
		repo := s.kind.repo(tx)
		locked, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return s.kind.notFound
			}
			return err
		}
		decision, err := newDecision(*locked, req.Status, caller.UserID, req.Comments, ErrLetterNotPending)
		if err != nil {
			return err
		}
		n, err := repo.Decide(ctx, id, decision)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrLetterNotPending
		}
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("decide letter request failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("letter request decided",
		zap.String("id", id),
		zap.String("status", req.Status),
		zap.String("by", caller.UserID),
	)
	return s.Get(ctx, caller, id)
}

// ────────────────────── Delete ──────────────────────

// Delete removes the letter and its attachments together
func (s *letterService[M, C, R]) Delete(ctx context.Context, caller Caller, id string) error {
	letter, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := canDelete(*letter, caller, ErrLetterDeleteForbidden, ErrLetterNotPending); err != nil {
		return err
	}

	err = withTx(ctx, s.repo, s.logger, func(tx *repository.Repository) error {
		locked, err := s.kind.repo(tx).GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// a decision may have landed since the unlocked read
		if err := canDelete(*locked, caller, ErrLetterDeleteForbidden, ErrLetterNotPending); err != nil {
			return err
		}
		if err := tx.Attachment.DeleteByOwner(ctx, s.kind.ownerType, id); err != nil {
			return err
		}
		return s.kind.repo(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.kind.notFound
		}
		if pkgerrors.KindOf(err) != pkgerrors.KindInternal {
			return err
		}
		s.logger.Error("delete letter request failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("letter request deleted", zap.String("id", id), zap.String("by", caller.UserID))
	return nil
}

// ────────────────────── Attachments ──────────────────────

// AddAttachment only the letter's owner may attach files
func (s *letterService[M, C, R]) AddAttachment(ctx context.Context, caller Caller, id string, up AttachmentUpload) (*dto.AttachmentResponse, error) {
	if err := up.validate(); err != nil {
		return nil, err
	}
	letter, err := s.kind.repo(s.repo).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.kind.notFound
		}
		s.logger.Error("load letter request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if (*letter).OwnerID() != caller.UserID {
		return nil, s.kind.notFound
	}

	stored, err := storeAttachments(ctx, s.repo, s.kind.ownerType, id, []AttachmentUpload{up})
	if err != nil {
		s.logger.Error("store attachment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("attachment added",
		zap.String("id", id),
		zap.String("attachment_id", stored[0].AttachmentID),
		zap.Int("bytes", len(up.Data)),
	)
	return toAttachmentResponse(&stored[0], false), nil
}

func (s *letterService[M, C, R]) ListAttachments(ctx context.Context, caller Caller, id string) ([]dto.AttachmentResponse, error) {
	if _, err := s.loadVisible(ctx, caller, id); err != nil {
		return nil, err
	}
	atts, err := s.repo.Attachment.ListByOwner(ctx, s.kind.ownerType, id)
	if err != nil {
		s.logger.Error("list attachments failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAttachmentResponses(atts), nil
}

// GetAttachment returns metadata and the base64 payload
func (s *letterService[M, C, R]) GetAttachment(ctx context.Context, caller Caller, id, attachmentID string) (*dto.AttachmentResponse, error) {
	if _, err := s.loadVisible(ctx, caller, id); err != nil {
		return nil, err
	}
	a, err := s.repo.Attachment.GetByID(ctx, s.kind.ownerType, id, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		s.logger.Error("load attachment failed", zap.String("attachment_id", attachmentID), zap.Error(err))
		return nil, err
	}
	return toAttachmentResponse(a, true), nil
}
