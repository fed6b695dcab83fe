package model

import "time"

// Roles
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
)

// User employee record and credentials, table users
type User struct {
	UserID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string      `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	Email        string      `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	EmployeeID   string      `gorm:"type:varchar(50);not null;uniqueIndex"          json:"employee_id"`
	FullName     string      `gorm:"type:varchar(150);not null"                     json:"full_name"`
	Department   string      `gorm:"type:varchar(100);not null"                     json:"department"`
	Position     string      `gorm:"type:varchar(100);not null"                     json:"position"`
	Gender       string      `gorm:"type:varchar(20);not null"                      json:"gender"`
	Religion     string      `gorm:"type:varchar(50);not null"                      json:"religion"`
	Grade        *string     `gorm:"type:varchar(20)"                               json:"grade,omitempty"`
	ManagerID    *string     `gorm:"type:uuid"                                      json:"manager_id,omitempty"`
	DOJ          *time.Time  `gorm:"column:doj;type:date"                           json:"doj,omitempty"`
	LineManager  *string     `gorm:"column:linemanager;type:varchar(150)"           json:"linemanager,omitempty"`
	MobilePhone  *string     `gorm:"column:mobilephone;type:varchar(30)"            json:"mobilephone,omitempty"`
	BankName     *string     `gorm:"column:bankname;type:varchar(100)"              json:"bankname,omitempty"`
	BranchName   *string     `gorm:"column:branchname;type:varchar(100)"            json:"branchname,omitempty"`
	SBU          *string     `gorm:"column:sbu;type:varchar(100)"                   json:"sbu,omitempty"`
	Categories   StringArray `gorm:"type:text[];not null;default:'{}'"              json:"categories"`
	Role         string      `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"`
	PasswordHash string      `gorm:"type:varchar(255);not null"                     json:"-"`
	IsActive     bool        `gorm:"not null;default:true"                          json:"is_active"`
	Timestamps
}

// TableName table name
func (User) TableName() string { return "users" }

// IsHR reports whether the user has global visibility
func (u *User) IsHR() bool { return u.Role == RoleHR }

// Manages reports whether u is the direct manager of other
func (u *User) Manages(other *User) bool {
	return other != nil && other.ManagerID != nil && *other.ManagerID == u.UserID
}
