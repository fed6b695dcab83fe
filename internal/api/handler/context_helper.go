package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nihal711/noah/internal/api/middleware"
	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/service"
	"github.com/nihal711/noah/pkg/response"
	"github.com/nihal711/noah/pkg/validator"
)

// MustGetCaller reads the identity JWTAuth put on the context.
// It writes a 401 and returns false when the identity is missing; the caller
// should return right away.
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID := c.GetString(middleware.CtxUserID)
	role := c.GetString(middleware.CtxRole)
	if userID == "" || role == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return service.Caller{}, false
	}
	return service.Caller{UserID: userID, Role: role}, true
}

// pathID reads a UUID path parameter. A value that is not a UUID cannot name a
// stored row, so it is answered with notFound before reaching the database.
func pathID(c *gin.Context, key string, notFound error) (string, bool) {
	id := c.Param(key)
	if len(id) != 36 {
		response.Fail(c, notFound)
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, notFound)
		return "", false
	}
	return id, true
}

// bindFailed answers a binding error: 413 for an oversized body, 422 otherwise
func bindFailed(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
		return
	}
	response.Unprocessable(c, 10001, validator.Describe(err))
}

// reviewDecision builds the decision of the approve / reject shortcuts.
// The body is optional and only carries approver_comments.
func reviewDecision(c *gin.Context, status string) (*dto.DecisionRequest, bool) {
	var req dto.ReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			bindFailed(c, err)
			return nil, false
		}
	}
	return &dto.DecisionRequest{Status: status, Comments: req.Comments}, true
}
