package dto

// ── users ──

// CreateUserRequest registration body. New accounts always start as employees;
// HR promotes them with AssignRoleRequest.
type CreateUserRequest struct {
	Username    string   `json:"username"     binding:"required,min=3,max=50"`
	Email       string   `json:"email"        binding:"required,email,max=255"`
	FullName    string   `json:"full_name"    binding:"required,max=150"`
	EmployeeID  string   `json:"employee_id"  binding:"required,max=50"`
	Department  string   `json:"department"   binding:"required,max=100"`
	Position    string   `json:"position"     binding:"required,max=100"`
	Password    string   `json:"password"     binding:"required,min=8,max=72"`
	Gender      string   `json:"gender"       binding:"required,max=20"`
	Religion    string   `json:"religion"     binding:"required,max=50"`
	ManagerID   *string  `json:"manager_id"   binding:"omitempty,uuid"`
	Grade       *string  `json:"grade"        binding:"omitempty,max=20"`
	DOJ         *string  `json:"doj"          binding:"omitempty,isodate"`
	LineManager *string  `json:"linemanager"  binding:"omitempty,max=150"`
	MobilePhone *string  `json:"mobilephone"  binding:"omitempty,max=30"`
	BankName    *string  `json:"bankname"     binding:"omitempty,max=100"`
	BranchName  *string  `json:"branchname"   binding:"omitempty,max=100"`
	SBU         *string  `json:"sbu"          binding:"omitempty,max=100"`
	Categories  []string `json:"categories"   binding:"omitempty,max=20,dive,max=50"`
}

// UpdateUserRequest partial update; nil fields are left alone.
// Fields below the blank line are HR-only.
type UpdateUserRequest struct {
	FullName    *string `json:"full_name"   binding:"omitempty,max=150"`
	Email       *string `json:"email"       binding:"omitempty,email,max=255"`
	MobilePhone *string `json:"mobilephone" binding:"omitempty,max=30"`
	BankName    *string `json:"bankname"    binding:"omitempty,max=100"`
	BranchName  *string `json:"branchname"  binding:"omitempty,max=100"`

	Department  *string  `json:"department"  binding:"omitempty,max=100"`
	Position    *string  `json:"position"    binding:"omitempty,max=100"`
	Grade       *string  `json:"grade"       binding:"omitempty,max=20"`
	ManagerID   *string  `json:"manager_id"  binding:"omitempty,uuid"`
	DOJ         *string  `json:"doj"         binding:"omitempty,isodate"`
	LineManager *string  `json:"linemanager" binding:"omitempty,max=150"`
	SBU         *string  `json:"sbu"         binding:"omitempty,max=100"`
	Categories  []string `json:"categories"  binding:"omitempty,max=20,dive,max=50"`
	IsActive    *bool    `json:"is_active"`
}

// HasRestrictedFields reports whether the update touches HR-only fields
func (r *UpdateUserRequest) HasRestrictedFields() bool {
	return r.Department != nil || r.Position != nil || r.Grade != nil ||
		r.ManagerID != nil || r.DOJ != nil || r.LineManager != nil ||
		r.SBU != nil || r.Categories != nil || r.IsActive != nil
}

// AssignRoleRequest HR role assignment
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=employee manager hr"`
}

// UserListRequest query parameters of GET /users/
type UserListRequest struct {
	PaginationRequest
	Department string `form:"department" binding:"omitempty,max=100"`
	Role       string `form:"role"       binding:"omitempty,oneof=employee manager hr"`
	Keyword    string `form:"keyword"    binding:"omitempty,max=50"`
}
