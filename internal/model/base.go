package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ── PostgreSQL TEXT[] ──

// StringArray maps a PostgreSQL TEXT[] column and implements the GORM Scanner/Valuer pair.
type StringArray []string

// Scan parses the {a,"b c"} text form returned by PostgreSQL.
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("StringArray.Scan: unsupported type %T", src)
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
	if s == "" {
		*a = StringArray{}
		return nil
	}

	var (
		out     StringArray
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	out = append(out, cur.String())
	*a = out
	return nil
}

// Value serialises to {"a","b"}; every element is quoted so commas and spaces survive.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	parts := make([]string, len(a))
	for i, s := range a {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		parts[i] = `"` + s + `"`
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Timestamps audit columns shared by every table
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── request status ──

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Decision fields shared by every approvable request
type Decision struct {
	Status           string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending | approved | rejected
	ApproverID       *string    `gorm:"type:uuid"                                   json:"approver_id,omitempty"`
	ApproverComments *string    `gorm:"type:text"                                   json:"approver_comments,omitempty"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
}

// Approvable is implemented by every request type that goes through
// pending → approved | rejected.
type Approvable interface {
	RecordID() string
	OwnerID() string
	CurrentStatus() string
}
