package handler

import (
	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/service"
)

// Handler aggregates every HTTP handler
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Leave      *LeaveHandler
	BankLetter *LetterHandler[dto.CreateBankLetterRequest, dto.BankLetterResponse]
	VisaLetter *LetterHandler[dto.CreateVisaLetterRequest, dto.VisaLetterResponse]
	Request    *RequestHandler
	Health     *HealthHandler
}

// NewHandler wires handlers on the service aggregate
func NewHandler(svc *service.Service, health *HealthHandler) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Leave:      NewLeaveHandler(svc.Leave, svc.Export),
		BankLetter: NewLetterHandler(svc.BankLetter, service.ErrBankLetterNotFound),
		VisaLetter: NewLetterHandler(svc.VisaLetter, service.ErrVisaLetterNotFound),
		Request:    NewRequestHandler(svc.Request),
		Health:     health,
	}
}
