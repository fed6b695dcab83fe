package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/service"
	"github.com/nihal711/noah/pkg/response"
)

// UserHandler user endpoints
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler creates a UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Register public self registration
// POST /users/
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.userSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, user)
}

// ListUsers HR only, paginated
// GET /users/
func (h *UserHandler) ListUsers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// ListTeam the caller's direct reports
// GET /users/team
func (h *UserHandler) ListTeam(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	users, err := h.userSvc.ListTeam(c.Request.Context(), caller)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, users)
}

// GetUser
// GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser self or HR; the service decides which fields are allowed
// PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, user)
}

// AssignRole
// PUT /users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.userSvc.AssignRole(c.Request.Context(), caller, id, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, user)
}

// DeleteUser removes the user and everything they filed
// DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), caller, id); err != nil {
		response.Fail(c, err)
		return
	}

	response.Message(c, "User deleted successfully")
}
