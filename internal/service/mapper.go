package service

import (
	"encoding/base64"
	"time"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/pkg/validator"
)

// Every API field is mapped explicitly from its column here and nowhere else.
// mapper_test.go pins the JSON keys each response exposes.

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func formatDate(t time.Time) string { return t.Format(validator.DateLayout) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func toUserResponse(u *model.User) *dto.UserResponse {
	categories := []string(u.Categories)
	if categories == nil {
		categories = []string{}
	}
	return &dto.UserResponse{
		ID:          u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		EmployeeID:  u.EmployeeID,
		FullName:    u.FullName,
		Department:  u.Department,
		Position:    u.Position,
		Gender:      u.Gender,
		Religion:    u.Religion,
		Grade:       u.Grade,
		ManagerID:   u.ManagerID,
		DOJ:         formatDatePtr(u.DOJ),
		LineManager: u.LineManager,
		MobilePhone: u.MobilePhone,
		BankName:    u.BankName,
		BranchName:  u.BranchName,
		SBU:         u.SBU,
		Categories:  categories,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   formatTime(u.CreatedAt),
		UpdatedAt:   formatTime(u.UpdatedAt),
	}
}

func toLeaveRequestResponse(r *model.LeaveRequest) *dto.LeaveRequestResponse {
	days, _ := r.DaysRequested.Float64()
	return &dto.LeaveRequestResponse{
		ID:               r.LeaveRequestID,
		UserID:           r.UserID,
		LeaveType:        r.LeaveType,
		StartDate:        formatDate(r.StartDate),
		EndDate:          formatDate(r.EndDate),
		DaysRequested:    days,
		Reason:           r.Reason,
		Status:           r.Status,
		ApproverID:       r.ApproverID,
		ApproverComments: r.ApproverComments,
		DecidedAt:        formatTimePtr(r.DecidedAt),
		CreatedAt:        formatTime(r.CreatedAt),
		UpdatedAt:        formatTime(r.UpdatedAt),
	}
}

func toLeaveBalanceResponse(b *model.LeaveBalance) *dto.LeaveBalanceResponse {
	total, _ := b.TotalDays.Float64()
	used, _ := b.UsedDays.Float64()
	remaining, _ := b.Remaining().Float64()
	return &dto.LeaveBalanceResponse{
		ID:            b.LeaveBalanceID,
		UserID:        b.UserID,
		LeaveType:     b.LeaveType,
		Year:          b.Year,
		TotalDays:     total,
		UsedDays:      used,
		RemainingDays: remaining,
	}
}

func toBankLetterResponse(r *model.BankLetterRequest, atts []model.Attachment) *dto.BankLetterResponse {
	return &dto.BankLetterResponse{
		ID:                r.BankLetterRequestID,
		UserID:            r.UserID,
		BankName:          r.BankName,
		Purpose:           r.Purpose,
		AdditionalDetails: r.AdditionalDetails,
		Status:            r.Status,
		ApproverID:        r.ApproverID,
		ApproverComments:  r.ApproverComments,
		DecidedAt:         formatTimePtr(r.DecidedAt),
		CreatedAt:         formatTime(r.CreatedAt),
		UpdatedAt:         formatTime(r.UpdatedAt),
		Attachments:       toAttachmentResponses(atts),
	}
}

func toVisaLetterResponse(r *model.VisaLetterRequest, atts []model.Attachment) *dto.VisaLetterResponse {
	return &dto.VisaLetterResponse{
		ID:               r.VisaLetterRequestID,
		UserID:           r.UserID,
		Type:             r.Type,
		Comment:          r.Comment,
		Language:         r.Language,
		AddressedTo:      r.AddressedTo,
		Country:          r.Country,
		Status:           r.Status,
		ApproverID:       r.ApproverID,
		ApproverComments: r.ApproverComments,
		DecidedAt:        formatTimePtr(r.DecidedAt),
		CreatedAt:        formatTime(r.CreatedAt),
		UpdatedAt:        formatTime(r.UpdatedAt),
		Attachments:      toAttachmentResponses(atts),
	}
}

// toAttachmentResponse includes the payload only when withData is set
func toAttachmentResponse(a *model.Attachment, withData bool) *dto.AttachmentResponse {
	resp := &dto.AttachmentResponse{
		ID:        a.AttachmentID,
		OwnerType: a.OwnerType,
		OwnerID:   a.OwnerID,
		FileName:  a.FileName,
		FileType:  a.FileType,
		FileDesc:  a.FileDesc,
		FileSize:  a.Size(),
		CreatedAt: formatTime(a.CreatedAt),
	}
	if withData {
		resp.FileData = base64.StdEncoding.EncodeToString(a.FileData)
	}
	return resp
}

func toAttachmentResponses(atts []model.Attachment) []dto.AttachmentResponse {
	result := make([]dto.AttachmentResponse, 0, len(atts))
	for i := range atts {
		result = append(result, *toAttachmentResponse(&atts[i], false))
	}
	return result
}

// ── request overview ──

func leaveSummary(r *model.LeaveRequest) dto.RequestSummary {
	return dto.RequestSummary{
		ID:          r.LeaveRequestID,
		Type:        r.LeaveType,
		RequestType: "leave",
		Status:      r.Status,
		UserID:      r.UserID,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
	}
}

func bankLetterSummary(r *model.BankLetterRequest) dto.RequestSummary {
	return dto.RequestSummary{
		ID:          r.BankLetterRequestID,
		Type:        r.Purpose,
		RequestType: model.OwnerBankLetter,
		Status:      r.Status,
		UserID:      r.UserID,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
	}
}

func visaLetterSummary(r *model.VisaLetterRequest) dto.RequestSummary {
	return dto.RequestSummary{
		ID:          r.VisaLetterRequestID,
		Type:        r.Type,
		RequestType: model.OwnerVisaLetter,
		Status:      r.Status,
		UserID:      r.UserID,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
	}
}
