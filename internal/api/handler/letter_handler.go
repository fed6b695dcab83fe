package handler

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/nihal711/noah/internal/dto"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/service"
	"github.com/nihal711/noah/pkg/response"
)

// multipart field limits, kept equal to dto.CreateAttachmentRequest
const (
	maxFileNameLen = 255
	maxFileTypeLen = 100
	maxFileDescLen = 500
)

// LetterHandler serves one letter kind; C is its create body, R its response
type LetterHandler[C any, R any] struct {
	letterSvc service.LetterService[C, R]
	notFound  error // the kind's not-found error, used for malformed ids
}

// NewLetterHandler creates a LetterHandler
func NewLetterHandler[C any, R any](letterSvc service.LetterService[C, R], notFound error) *LetterHandler[C, R] {
	return &LetterHandler[C, R]{letterSvc: letterSvc, notFound: notFound}
}

// Create
// POST /{kind}/
func (h *LetterHandler[C, R]) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	letter, err := h.letterSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, letter)
}

// ListMine
// GET /{kind}/
func (h *LetterHandler[C, R]) ListMine(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.letterSvc.ListMine(c.Request.Context(), caller)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, items)
}

// ListAll HR only
// GET /{kind}/all?status=&page=&page_size=
func (h *LetterHandler[C, R]) ListAll(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.RequestListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	items, total, err := h.letterSvc.ListAll(c.Request.Context(), caller, &q)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OKPage(c, items, total, q.GetPage(), q.GetPageSize())
}

// Get
// GET /{kind}/:id
func (h *LetterHandler[C, R]) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", h.notFound)
	if !ok {
		return
	}

	letter, err := h.letterSvc.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, letter)
}

// UpdateStatus
// PUT /{kind}/:id
func (h *LetterHandler[C, R]) UpdateStatus(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	h.decide(c, &req)
}

// Approve
// PUT /{kind}/:id/approve
func (h *LetterHandler[C, R]) Approve(c *gin.Context) {
	if req, ok := reviewDecision(c, model.StatusApproved); ok {
		h.decide(c, req)
	}
}

// Reject
// PUT /{kind}/:id/reject
func (h *LetterHandler[C, R]) Reject(c *gin.Context) {
	if req, ok := reviewDecision(c, model.StatusRejected); ok {
		h.decide(c, req)
	}
}

func (h *LetterHandler[C, R]) decide(c *gin.Context, req *dto.DecisionRequest) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", h.notFound)
	if !ok {
		return
	}

	letter, err := h.letterSvc.UpdateStatus(c.Request.Context(), caller, id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, letter)
}

// Delete
// DELETE /{kind}/:id
func (h *LetterHandler[C, R]) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", h.notFound)
	if !ok {
		return
	}

	if err := h.letterSvc.Delete(c.Request.Context(), caller, id); err != nil {
		response.Fail(c, err)
		return
	}

	response.Message(c, "Letter request deleted successfully")
}

// ────────────────────── attachments ──────────────────────

// AddAttachment accepts a multipart "file" part or a JSON body with base64 file_data
// POST /{kind}/:id/attachments
func (h *LetterHandler[C, R]) AddAttachment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", h.notFound)
	if !ok {
		return
	}

	var (
		up  service.AttachmentUpload
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		up, ok = readMultipartAttachment(c)
		if !ok {
			return
		}
	} else {
		var req dto.CreateAttachmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
		if up, err = service.DecodeAttachment(&req); err != nil {
			response.Fail(c, err)
			return
		}
	}

	att, err := h.letterSvc.AddAttachment(c.Request.Context(), caller, id, up)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, att)
}

// readMultipartAttachment file_name and file_type default to the part's own headers
func readMultipartAttachment(c *gin.Context) (service.AttachmentUpload, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		bindFailed(c, err)
		return service.AttachmentUpload{}, false
	}
	if fh.Size > service.MaxAttachmentBytes {
		response.Fail(c, service.ErrAttachmentTooLarge)
		return service.AttachmentUpload{}, false
	}

	f, err := fh.Open()
	if err != nil {
		response.Fail(c, err)
		return service.AttachmentUpload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxAttachmentBytes+1))
	if err != nil {
		response.Fail(c, err)
		return service.AttachmentUpload{}, false
	}

	up := service.AttachmentUpload{
		FileName: c.DefaultPostForm("file_name", fh.Filename),
		FileType: c.DefaultPostForm("file_type", fh.Header.Get("Content-Type")),
		Data:     data,
	}
	if desc, ok := c.GetPostForm("file_desc"); ok {
		up.FileDesc = &desc
	}
	if up.FileType == "" {
		up.FileType = "application/octet-stream"
	}
	if msg := checkUploadFields(up); msg != "" {
		response.Unprocessable(c, 10001, msg)
		return service.AttachmentUpload{}, false
	}
	return up, true
}

// ListAttachments metadata only
// GET /{kind}/:id/attachments
func (h *LetterHandler[C, R]) ListAttachments(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", h.notFound)
	if !ok {
		return
	}

	items, err := h.letterSvc.ListAttachments(c.Request.Context(), caller, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, items)
}

// GetAttachment metadata plus base64 file_data
// GET /{kind}/:id/attachments/:attachment_id
func (h *LetterHandler[C, R]) GetAttachment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", h.notFound)
	if !ok {
		return
	}

	attachmentID, ok := pathID(c, "attachment_id", service.ErrAttachmentNotFound)
	if !ok {
		return
	}

	att, err := h.letterSvc.GetAttachment(c.Request.Context(), caller, id, attachmentID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, att)
}

// checkUploadFields applies the limits the JSON body gets from its binding tags
func checkUploadFields(up service.AttachmentUpload) string {
	switch {
	case up.FileName == "":
		return "field 'file_name' is required"
	case utf8.RuneCountInString(up.FileName) > maxFileNameLen:
		return fmt.Sprintf("field 'file_name' must be at most %d", maxFileNameLen)
	case utf8.RuneCountInString(up.FileType) > maxFileTypeLen:
		return fmt.Sprintf("field 'file_type' must be at most %d", maxFileTypeLen)
	case up.FileDesc != nil && utf8.RuneCountInString(*up.FileDesc) > maxFileDescLen:
		return fmt.Sprintf("field 'file_desc' must be at most %d", maxFileDescLen)
	}
	return ""
}
