package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nihal711/noah/config"
	"github.com/nihal711/noah/internal/api/handler"
	"github.com/nihal711/noah/internal/api/middleware"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/pkg/jwt"
)

// Deps what the router needs besides the handlers
type Deps struct {
	JWT     *jwt.Manager
	Users   middleware.UserLoader
	Limiter middleware.RateLimiter // nil disables login rate limiting
	Logger  *zap.Logger
}

// Setup builds the gin engine with every route
func Setup(cfg *config.Config, h *handler.Handler, deps Deps) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── public ──
	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)

	loginLimit := middleware.RateLimit(deps.Limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
	r.POST("/auth/login", loginLimit, h.Auth.Login)
	r.POST("/users/", h.User.Register)

	// ── authenticated ──
	authorized := r.Group("")
	authorized.Use(middleware.JWTAuth(deps.JWT, deps.Users))

	managerTier := middleware.RoleAuth(model.RoleManager, model.RoleHR)
	hrOnly := middleware.RoleAuth(model.RoleHR)

	auth := authorized.Group("/auth")
	{
		auth.GET("/me", h.Auth.Me)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/change-password", h.Auth.ChangePassword)
	}

	users := authorized.Group("/users")
	{
		users.GET("/", hrOnly, h.User.ListUsers)
		users.GET("/team", managerTier, h.User.ListTeam)
		users.GET("/:id", h.User.GetUser) // self, the user's manager or HR (service)
		users.PUT("/:id", h.User.UpdateUser)
		users.PUT("/:id/role", hrOnly, h.User.AssignRole)
		users.DELETE("/:id", hrOnly, h.User.DeleteUser)
	}

	leave := authorized.Group("/leave")
	{
		leave.POST("/requests", h.Leave.CreateRequest)
		leave.GET("/requests", h.Leave.ListMyRequests)
		leave.GET("/requests/all", managerTier, h.Leave.ListAllRequests)
		leave.GET("/requests/export", hrOnly, h.Leave.ExportRequests)
		leave.GET("/requests/:id", h.Leave.GetRequest)
		leave.PUT("/requests/:id", managerTier, h.Leave.UpdateStatus)
		leave.PUT("/requests/:id/approve", managerTier, h.Leave.Approve)
		leave.PUT("/requests/:id/reject", managerTier, h.Leave.Reject)
		leave.DELETE("/requests/:id", h.Leave.DeleteRequest)

		leave.GET("/balance", h.Leave.MyBalances)
		leave.GET("/balance/:user_id", managerTier, h.Leave.UserBalances)
		leave.PUT("/balance/:user_id", hrOnly, h.Leave.SetBalance)
	}

	bank := authorized.Group("/bank-letter")
	registerLetterRoutes(bank, h.BankLetter, hrOnly)

	visa := authorized.Group("/visa-letter")
	registerLetterRoutes(visa, h.VisaLetter, hrOnly)

	requests := authorized.Group("/requests")
	{
		requests.GET("/my-requests", h.Request.MyRequests)
		requests.GET("/all-requests", managerTier, h.Request.AllRequests)
		requests.GET("/pending", managerTier, h.Request.Pending)
	}

	return r
}

// registerLetterRoutes the same route shape for every letter kind
func registerLetterRoutes[C any, R any](g *gin.RouterGroup, h *handler.LetterHandler[C, R], hrOnly gin.HandlerFunc) {
	g.POST("/", h.Create)
	g.GET("/", h.ListMine)
	g.GET("/all", hrOnly, h.ListAll)
	g.GET("/:id", h.Get)
	g.PUT("/:id", hrOnly, h.UpdateStatus)
	g.PUT("/:id/approve", hrOnly, h.Approve)
	g.PUT("/:id/reject", hrOnly, h.Reject)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/attachments", h.AddAttachment)
	g.GET("/:id/attachments", h.ListAttachments)
	g.GET("/:id/attachments/:attachment_id", h.GetAttachment)
}
