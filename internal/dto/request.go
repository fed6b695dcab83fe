package dto

// ── shared by every approvable request ──

// DecisionRequest moves a pending request to approved or rejected
type DecisionRequest struct {
	Status   string  `json:"status"            binding:"required,decision"`
	Comments *string `json:"approver_comments" binding:"omitempty,max=1000"`
}

// ReviewRequest optional body of the approve / reject shortcuts
type ReviewRequest struct {
	Comments *string `json:"approver_comments" binding:"omitempty,max=1000"`
}

// RequestListQuery filters for the scoped "all" listings
type RequestListQuery struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}
