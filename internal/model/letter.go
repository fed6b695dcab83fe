package model

import "time"

// Attachment owner types
const (
	OwnerBankLetter = "bank_letter"
	OwnerVisaLetter = "visa_letter"
)

// BankLetterRequest table bank_letter_requests
type BankLetterRequest struct {
	BankLetterRequestID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"bank_letter_request_id"`
	UserID              string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	BankName            string  `gorm:"type:varchar(150);not null"                     json:"bank_name"`
	Purpose             string  `gorm:"type:varchar(255);not null"                     json:"purpose"`
	AdditionalDetails   *string `gorm:"type:text"                                      json:"additional_details,omitempty"`
	Decision
	Timestamps
}

// TableName table name
func (BankLetterRequest) TableName() string { return "bank_letter_requests" }

func (r BankLetterRequest) RecordID() string      { return r.BankLetterRequestID }
func (r BankLetterRequest) OwnerID() string       { return r.UserID }
func (r BankLetterRequest) CurrentStatus() string { return r.Status }

// VisaLetterRequest table visa_letter_requests
type VisaLetterRequest struct {
	VisaLetterRequestID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"visa_letter_request_id"`
	UserID              string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type                string  `gorm:"type:varchar(100);not null"                     json:"type"`
	Comment             *string `gorm:"type:text"                                      json:"comment,omitempty"`
	Language            string  `gorm:"type:varchar(50);not null;default:'English'"    json:"language"`
	AddressedTo         string  `gorm:"type:varchar(255);not null"                     json:"addressed_to"`
	Country             string  `gorm:"type:varchar(100);not null"                     json:"country"`
	Decision
	Timestamps
}

// TableName table name
func (VisaLetterRequest) TableName() string { return "visa_letter_requests" }

func (r VisaLetterRequest) RecordID() string      { return r.VisaLetterRequestID }
func (r VisaLetterRequest) OwnerID() string       { return r.UserID }
func (r VisaLetterRequest) CurrentStatus() string { return r.Status }

// Attachment file bound to a bank or visa letter, table attachments.
// OwnerID has no foreign key; the letter workflow deletes attachments with their parent.
type Attachment struct {
	AttachmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attachment_id"`
	OwnerType    string    `gorm:"type:varchar(20);not null"                      json:"owner_type"`
	OwnerID      string    `gorm:"type:uuid;not null"                             json:"owner_id"`
	FileName     string    `gorm:"type:varchar(255);not null"                     json:"file_name"`
	FileType     string    `gorm:"type:varchar(100);not null"                     json:"file_type"`
	FileDesc     *string   `gorm:"type:varchar(500)"                              json:"file_desc,omitempty"`
	FileData     []byte    `gorm:"type:bytea;not null"                            json:"-"`
	FileSize     int       `gorm:"->;-:migration"                                 json:"file_size"` // listings only
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName table name
func (Attachment) TableName() string { return "attachments" }

// Size payload size in bytes
func (a *Attachment) Size() int {
	if a.FileData != nil {
		return len(a.FileData)
	}
	return a.FileSize
}
