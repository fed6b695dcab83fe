package dto

// ── auth ──

// TokenResponse login result
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// ── users ──

// UserResponse public view of a user, never carries the password hash
type UserResponse struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	EmployeeID  string   `json:"employee_id"`
	FullName    string   `json:"full_name"`
	Department  string   `json:"department"`
	Position    string   `json:"position"`
	Gender      string   `json:"gender"`
	Religion    string   `json:"religion"`
	Grade       *string  `json:"grade"`
	ManagerID   *string  `json:"manager_id"`
	DOJ         *string  `json:"doj"`
	LineManager *string  `json:"linemanager"`
	MobilePhone *string  `json:"mobilephone"`
	BankName    *string  `json:"bankname"`
	BranchName  *string  `json:"branchname"`
	SBU         *string  `json:"sbu"`
	Categories  []string `json:"categories"`
	Role        string   `json:"role"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// ── leave ──

// LeaveRequestResponse leave request view
type LeaveRequestResponse struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	LeaveType        string  `json:"leave_type"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	DaysRequested    float64 `json:"days_requested"`
	Reason           string  `json:"reason"`
	Status           string  `json:"status"`
	ApproverID       *string `json:"approver_id"`
	ApproverComments *string `json:"approver_comments"`
	DecidedAt        *string `json:"decided_at"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// LeaveBalanceResponse remaining_days is computed, never stored
type LeaveBalanceResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	LeaveType     string  `json:"leave_type"`
	Year          int     `json:"year"`
	TotalDays     float64 `json:"total_days"`
	UsedDays      float64 `json:"used_days"`
	RemainingDays float64 `json:"remaining_days"`
}

// ── letters ──

// BankLetterResponse bank letter request view
type BankLetterResponse struct {
	ID                string               `json:"id"`
	UserID            string               `json:"user_id"`
	BankName          string               `json:"bank_name"`
	Purpose           string               `json:"purpose"`
	AdditionalDetails *string              `json:"additional_details"`
	Status            string               `json:"status"`
	ApproverID        *string              `json:"approver_id"`
	ApproverComments  *string              `json:"approver_comments"`
	DecidedAt         *string              `json:"decided_at"`
	CreatedAt         string               `json:"created_at"`
	UpdatedAt         string               `json:"updated_at"`
	Attachments       []AttachmentResponse `json:"attachments"`
}

// VisaLetterResponse visa letter request view
type VisaLetterResponse struct {
	ID               string               `json:"id"`
	UserID           string               `json:"user_id"`
	Type             string               `json:"type"`
	Comment          *string              `json:"comment"`
	Language         string               `json:"language"`
	AddressedTo      string               `json:"addressed_to"`
	Country          string               `json:"country"`
	Status           string               `json:"status"`
	ApproverID       *string              `json:"approver_id"`
	ApproverComments *string              `json:"approver_comments"`
	DecidedAt        *string              `json:"decided_at"`
	CreatedAt        string               `json:"created_at"`
	UpdatedAt        string               `json:"updated_at"`
	Attachments      []AttachmentResponse `json:"attachments"`
}

// AttachmentResponse metadata; FileData (base64) is only filled when a single
// attachment is fetched
type AttachmentResponse struct {
	ID        string  `json:"id"`
	OwnerType string  `json:"owner_type"`
	OwnerID   string  `json:"owner_id"`
	FileName  string  `json:"file_name"`
	FileType  string  `json:"file_type"`
	FileDesc  *string `json:"file_desc"`
	FileSize  int     `json:"file_size"`
	FileData  string  `json:"file_data,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ── overview ──

// RequestSummary one row of the combined request views
type RequestSummary struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	RequestType string `json:"request_type"` // leave | bank_letter | visa_letter
	Status      string `json:"status"`
	UserID      string `json:"user_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ── health ──

// HealthResponse body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

// ── pagination ──

// PaginationRequest common page parameters
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number with default
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
