package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveRequest table leave_requests
type LeaveRequest struct {
	LeaveRequestID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"leave_request_id"`
	UserID         string          `gorm:"type:uuid;not null;index"                       json:"user_id"`
	LeaveType      string          `gorm:"type:varchar(50);not null"                      json:"leave_type"`
	StartDate      time.Time       `gorm:"type:date;not null"                             json:"start_date"`
	EndDate        time.Time       `gorm:"type:date;not null"                             json:"end_date"`
	DaysRequested  decimal.Decimal `gorm:"type:numeric(6,2);not null"                     json:"days_requested"`
	Reason         string          `gorm:"type:text;not null;default:''"                  json:"reason"`
	Decision
	Timestamps

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName table name
func (LeaveRequest) TableName() string { return "leave_requests" }

func (r LeaveRequest) RecordID() string      { return r.LeaveRequestID }
func (r LeaveRequest) OwnerID() string       { return r.UserID }
func (r LeaveRequest) CurrentStatus() string { return r.Status }

// LeaveBalance per user, leave type and year, table leave_balances.
// Remaining days are derived and never stored.
type LeaveBalance struct {
	LeaveBalanceID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"leave_balance_id"`
	UserID         string          `gorm:"type:uuid;not null"                             json:"user_id"`
	LeaveType      string          `gorm:"type:varchar(50);not null"                      json:"leave_type"`
	Year           int             `gorm:"not null"                                       json:"year"`
	TotalDays      decimal.Decimal `gorm:"type:numeric(6,2);not null"                     json:"total_days"`
	UsedDays       decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"           json:"used_days"`
	Timestamps
}

// TableName table name
func (LeaveBalance) TableName() string { return "leave_balances" }

// Remaining total - used
func (b *LeaveBalance) Remaining() decimal.Decimal {
	return b.TotalDays.Sub(b.UsedDays)
}

// CanConsume reports whether days fit in the remaining entitlement
func (b *LeaveBalance) CanConsume(days decimal.Decimal) bool {
	return b.UsedDays.Add(days).LessThanOrEqual(b.TotalDays)
}
