package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/service"
	"github.com/nihal711/noah/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaveHandler leave requests, balances and the HR export
type LeaveHandler struct {
	leaveSvc  service.LeaveService
	exportSvc service.ExportService
}

// NewLeaveHandler creates a LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService, exportSvc service.ExportService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc, exportSvc: exportSvc}
}

// ────────────────────── requests ──────────────────────

// CreateRequest
// POST /leave/requests
func (h *LeaveHandler) CreateRequest(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	lr, err := h.leaveSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, lr)
}

// ListMyRequests newest first
// GET /leave/requests
func (h *LeaveHandler) ListMyRequests(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.leaveSvc.ListMine(c.Request.Context(), caller)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, items)
}

// ListAllRequests team scope for managers, everything for HR
// GET /leave/requests/all?status=&page=&page_size=
func (h *LeaveHandler) ListAllRequests(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.RequestListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	items, total, err := h.leaveSvc.ListAll(c.Request.Context(), caller, &q)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OKPage(c, items, total, q.GetPage(), q.GetPageSize())
}

// GetRequest
// GET /leave/requests/:id
func (h *LeaveHandler) GetRequest(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrLeaveNotFound)
	if !ok {
		return
	}

	lr, err := h.leaveSvc.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, lr)
}

// UpdateStatus
// PUT /leave/requests/:id
func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	h.decide(c, &req)
}

// Approve
// PUT /leave/requests/:id/approve
func (h *LeaveHandler) Approve(c *gin.Context) {
	if req, ok := reviewDecision(c, model.StatusApproved); ok {
		h.decide(c, req)
	}
}

// Reject
// PUT /leave/requests/:id/reject
func (h *LeaveHandler) Reject(c *gin.Context) {
	if req, ok := reviewDecision(c, model.StatusRejected); ok {
		h.decide(c, req)
	}
}

func (h *LeaveHandler) decide(c *gin.Context, req *dto.DecisionRequest) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrLeaveNotFound)
	if !ok {
		return
	}

	lr, err := h.leaveSvc.UpdateStatus(c.Request.Context(), caller, id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, lr)
}

// DeleteRequest
// DELETE /leave/requests/:id
func (h *LeaveHandler) DeleteRequest(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrLeaveNotFound)
	if !ok {
		return
	}

	if err := h.leaveSvc.Delete(c.Request.Context(), caller, id); err != nil {
		response.Fail(c, err)
		return
	}

	response.Message(c, "Leave request deleted successfully")
}

// ExportRequests spreadsheet download
// GET /leave/requests/export?status=
func (h *LeaveHandler) ExportRequests(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.RequestListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportLeaveRequests(c.Request.Context(), caller, q.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ────────────────────── balances ──────────────────────

// MyBalances
// GET /leave/balance
func (h *LeaveHandler) MyBalances(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.leaveSvc.MyBalances(c.Request.Context(), caller)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, items)
}

// UserBalances the user's manager or HR
// GET /leave/balance/:user_id
func (h *LeaveHandler) UserBalances(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	userID, ok := pathID(c, "user_id", service.ErrUserNotFound)
	if !ok {
		return
	}

	items, err := h.leaveSvc.UserBalances(c.Request.Context(), caller, userID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, items)
}

// SetBalance HR sets an entitlement
// PUT /leave/balance/:user_id
func (h *LeaveHandler) SetBalance(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	userID, ok := pathID(c, "user_id", service.ErrUserNotFound)
	if !ok {
		return
	}

	var req dto.SetLeaveBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	bal, err := h.leaveSvc.SetBalance(c.Request.Context(), caller, userID, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, bal)
}
