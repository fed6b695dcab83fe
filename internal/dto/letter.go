package dto

// ── bank / visa letters ──

// CreateBankLetterRequest body of POST /bank-letter/
type CreateBankLetterRequest struct {
	BankName          string                    `json:"bank_name"          binding:"required,max=150"`
	Purpose           string                    `json:"purpose"            binding:"required,max=255"`
	AdditionalDetails *string                   `json:"additional_details" binding:"omitempty,max=2000"`
	Attachments       []CreateAttachmentRequest `json:"attachments"        binding:"omitempty,max=10,dive"`
}

// CreateVisaLetterRequest body of POST /visa-letter/. Language defaults to English.
type CreateVisaLetterRequest struct {
	Type        string                    `json:"type"         binding:"required,max=100"`
	Comment     *string                   `json:"comment"      binding:"omitempty,max=2000"`
	Language    string                    `json:"language"     binding:"omitempty,max=50"`
	AddressedTo string                    `json:"addressed_to" binding:"required,max=255"`
	Country     string                    `json:"country"      binding:"required,max=100"`
	Attachments []CreateAttachmentRequest `json:"attachments"  binding:"omitempty,max=10,dive"`
}

// CreateAttachmentRequest JSON upload; FileData is standard base64
type CreateAttachmentRequest struct {
	FileName string  `json:"file_name" form:"file_name" binding:"required,max=255"`
	FileType string  `json:"file_type" form:"file_type" binding:"required,max=100"`
	FileDesc *string `json:"file_desc" form:"file_desc" binding:"omitempty,max=500"`
	FileData string  `json:"file_data" form:"-"         binding:"required,base64"`
}
