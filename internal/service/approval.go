package service

import (
	"time"

	"github.com/nihal711/noah/internal/model"
	pkgerrors "github.com/nihal711/noah/pkg/errors"
)

var ErrInvalidDecision = pkgerrors.New(pkgerrors.KindValidation, 10006, "status must be 'approved' or 'rejected'")

// newDecision builds the decision columns for the pending → approved | rejected
// transition of r. notPending is returned when r has already been decided.
func newDecision(r model.Approvable, status, approverID string, comments *string, notPending error) (model.Decision, error) {
	if status != model.StatusApproved && status != model.StatusRejected {
		return model.Decision{}, ErrInvalidDecision
	}
	if r.CurrentStatus() != model.StatusPending {
		return model.Decision{}, notPending
	}
	now := time.Now()
	approver := approverID
	return model.Decision{
		Status:           status,
		ApproverID:       &approver,
		ApproverComments: comments,
		DecidedAt:        &now,
	}, nil
}

// canDelete applies the delete rule shared by every request kind:
// HR always, the owner only while pending, anyone else never.
func canDelete(r model.Approvable, caller Caller, forbidden, notPending error) error {
	if caller.IsHR() {
		return nil
	}
	if r.OwnerID() != caller.UserID {
		return forbidden
	}
	if r.CurrentStatus() != model.StatusPending {
		return notPending
	}
	return nil
}
