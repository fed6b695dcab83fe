package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nihal711/noah/internal/service"
	"github.com/nihal711/noah/pkg/response"
)

// RequestHandler combined request overview
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler creates a RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// MyRequests
// GET /requests/my-requests
func (h *RequestHandler) MyRequests(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.requestSvc.MyRequests(c.Request.Context(), caller)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, items)
}

// AllRequests
// GET /requests/all-requests
func (h *RequestHandler) AllRequests(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.requestSvc.AllRequests(c.Request.Context(), caller)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, items)
}

// Pending
// GET /requests/pending
func (h *RequestHandler) Pending(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.requestSvc.Pending(c.Request.Context(), caller)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, items)
}
