package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/service"
	"github.com/nihal711/noah/pkg/response"
)

// AuthHandler login and session endpoints
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login accepts an OAuth2 style form post or a JSON body
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, result)
}

// Me current user profile
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), caller.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, user)
}

// Logout tokens are stateless; the client drops its copy
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}
	response.Message(c, "Successfully logged out")
}

// ChangePassword
// POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), caller.UserID, &req); err != nil {
		response.Fail(c, err)
		return
	}

	response.Message(c, "Password updated")
}
