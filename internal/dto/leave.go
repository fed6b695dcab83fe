package dto

// ── leave ──

// CreateLeaveRequest body of POST /leave/requests
type CreateLeaveRequest struct {
	LeaveType     string  `json:"leave_type"     binding:"required,max=50"`
	StartDate     string  `json:"start_date"     binding:"required,isodate"`
	EndDate       string  `json:"end_date"       binding:"required,isodate"`
	DaysRequested float64 `json:"days_requested" binding:"required,gt=0,max=365"`
	Reason        string  `json:"reason"         binding:"omitempty,max=1000"`
}

// SetLeaveBalanceRequest HR sets a user's entitlement for one leave type and year.
// Year 0 means the current year.
type SetLeaveBalanceRequest struct {
	LeaveType string  `json:"leave_type" binding:"required,max=50"`
	Year      int     `json:"year"       binding:"omitempty,min=2000,max=2100"`
	TotalDays float64 `json:"total_days" binding:"gte=0,max=365"`
}
