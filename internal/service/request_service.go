package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/repository"
)

// RequestService combined view over leave, bank letter and visa letter requests
type RequestService interface {
	// MyRequests everything the caller filed, newest first
	MyRequests(ctx context.Context, caller Caller) ([]dto.RequestSummary, error)
	// AllRequests managers see their team's leave requests, HR sees every request
	AllRequests(ctx context.Context, caller Caller) ([]dto.RequestSummary, error)
	// Pending what is waiting for the caller's decision, oldest first
	Pending(ctx context.Context, caller Caller) ([]dto.RequestSummary, error)
}

type requestService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRequestService creates a RequestService
func NewRequestService(repo *repository.Repository, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, logger: logger}
}

func (s *requestService) MyRequests(ctx context.Context, caller Caller) ([]dto.RequestSummary, error) {
	filter := &repository.RequestFilter{UserID: caller.UserID}
	result, err := s.collect(ctx, filter, true)
	if err != nil {
		return nil, err
	}
	sortSummaries(result, false)
	return result, nil
}

func (s *requestService) AllRequests(ctx context.Context, caller Caller) ([]dto.RequestSummary, error) {
	return s.scoped(ctx, caller, "", false)
}

func (s *requestService) Pending(ctx context.Context, caller Caller) ([]dto.RequestSummary, error) {
	return s.scoped(ctx, caller, model.StatusPending, true)
}

// scoped letters are decided by HR only, so managers get their team's leave requests alone
func (s *requestService) scoped(ctx context.Context, caller Caller, status string, oldestFirst bool) ([]dto.RequestSummary, error) {
	if !caller.CanManage() {
		return nil, ErrForbidden
	}
	filter := &repository.RequestFilter{Status: status}
	if !caller.IsHR() {
		filter.ManagerID = caller.UserID
	}
	result, err := s.collect(ctx, filter, caller.IsHR())
	if err != nil {
		return nil, err
	}
	sortSummaries(result, oldestFirst)
	return result, nil
}

func (s *requestService) collect(ctx context.Context, filter *repository.RequestFilter, withLetters bool) ([]dto.RequestSummary, error) {
	leaves, _, err := s.repo.LeaveRequest.List(ctx, filter)
	if err != nil {
		s.logger.Error("list leave requests failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.RequestSummary, 0, len(leaves))
	for i := range leaves {
		result = append(result, leaveSummary(&leaves[i]))
	}
	if !withLetters {
		return result, nil
	}

	banks, _, err := s.repo.BankLetter.List(ctx, filter)
	if err != nil {
		s.logger.Error("list bank letters failed", zap.Error(err))
		return nil, err
	}
	for i := range banks {
		result = append(result, bankLetterSummary(&banks[i]))
	}

	visas, _, err := s.repo.VisaLetter.List(ctx, filter)
	if err != nil {
		s.logger.Error("list visa letters failed", zap.Error(err))
		return nil, err
	}
	for i := range visas {
		result = append(result, visaLetterSummary(&visas[i]))
	}
	return result, nil
}

// sortSummaries orders by created_at; RFC 3339 UTC strings sort chronologically
func sortSummaries(items []dto.RequestSummary, oldestFirst bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if oldestFirst {
			return items[i].CreatedAt < items[j].CreatedAt
		}
		return items[i].CreatedAt > items[j].CreatedAt
	})
}
