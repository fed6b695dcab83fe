package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/nihal711/noah/pkg/errors"
)

// ErrorBody is the body of every failed request.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   int    `json:"code,omitempty"`
}

// MessageBody is returned by operations that have no resource to show (delete, logout).
type MessageBody struct {
	Message string `json:"message"`
}

// Pagination page metadata
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData paginated list body
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── success ──

// OK 200 with the resource as body
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message 200 with {"message": ...}
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageBody{Message: message})
}

// OKPage 200 paginated list
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, PageData{
		List: list,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// ── errors ──

// Error writes {"detail": ...} with the given status
func Error(c *gin.Context, httpStatus int, code int, detail string) {
	c.JSON(httpStatus, ErrorBody{Detail: detail, Code: code})
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, http.StatusUnauthorized, code, detail)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, detail string) {
	Error(c, http.StatusForbidden, code, detail)
}

// Unprocessable 422
func Unprocessable(c *gin.Context, code int, detail string) {
	Error(c, http.StatusUnprocessableEntity, code, detail)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "internal server error")
}

// StatusOf maps a business error kind to its HTTP status.
func StatusOf(kind pkgerrors.Kind) int {
	switch kind {
	case pkgerrors.KindUnauthorized:
		return http.StatusUnauthorized
	case pkgerrors.KindForbidden:
		return http.StatusForbidden
	case pkgerrors.KindNotFound:
		return http.StatusNotFound
	case pkgerrors.KindConflict:
		return http.StatusConflict
	case pkgerrors.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as a response. Business errors keep their message; anything
// else is recorded on the context for the request logger and hidden behind a 500.
func Fail(c *gin.Context, err error) {
	e, ok := pkgerrors.As(err)
	if !ok || e.Kind == pkgerrors.KindInternal {
		_ = c.Error(err)
		InternalError(c)
		return
	}
	if e.Kind == pkgerrors.KindUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	Error(c, StatusOf(e.Kind), e.Code, e.Message)
}
