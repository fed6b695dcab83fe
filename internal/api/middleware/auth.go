package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/pkg/jwt"
	"github.com/nihal711/noah/pkg/response"
)

// Context keys set by JWTAuth
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxManagerID = "manager_id"
)

// UserLoader resolves the token subject against the credential store
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// JWTAuth authenticates Authorization: Bearer <token>.
// The token only names the user; role and manager come from the stored row,
// so role changes and deactivation take effect on the next request.
func JWTAuth(jwtMgr *jwt.Manager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, 10002, "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			detail := "could not validate credentials"
			if errors.Is(err, jwt.ErrTokenExpired) {
				detail = "token expired"
			}
			response.Unauthorized(c, 10002, detail)
			c.Abort()
			return
		}

		if _, err := uuid.Parse(claims.UserID); err != nil {
			response.Unauthorized(c, 10002, "could not validate credentials")
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			_ = c.Error(err)
			response.InternalError(c)
			c.Abort()
			return
		}
		if err != nil || !user.IsActive {
			response.Unauthorized(c, 10002, "could not validate credentials")
			c.Abort()
			return
		}

		c.Set(CtxUserID, user.UserID)
		c.Set(CtxRole, user.Role)
		if user.ManagerID != nil {
			c.Set(CtxManagerID, *user.ManagerID)
		}

		c.Next()
	}
}

// RoleAuth allows only the listed roles; runs after JWTAuth
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "not enough permissions")
		c.Abort()
	}
}
