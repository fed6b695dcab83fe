package dto

// ── auth ──

// LoginRequest accepts a form post (OAuth2 password style) or a JSON body
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=50"`
	Password string `json:"password" form:"password" binding:"required,max=72"`
}

// ChangePasswordRequest self-service password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
