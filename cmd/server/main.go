package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nihal711/noah/config"
	"github.com/nihal711/noah/internal/api/handler"
	"github.com/nihal711/noah/internal/api/middleware"
	"github.com/nihal711/noah/internal/api/router"
	"github.com/nihal711/noah/internal/repository"
	"github.com/nihal711/noah/internal/service"
	"github.com/nihal711/noah/pkg/database"
	"github.com/nihal711/noah/pkg/jwt"
	applogger "github.com/nihal711/noah/pkg/logger"
	"github.com/nihal711/noah/pkg/redis"
	"github.com/nihal711/noah/pkg/validator"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("NOAH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validator.Register(); err != nil {
		logger.Fatal("register validators failed", zap.Error(err))
	}

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrate database failed", zap.Error(err))
	}

	// 4. Redis is optional; without it login is not rate limited
	var (
		rdb       *redis.Client
		limiter   middleware.RateLimiter
		pingRedis handler.PingFunc
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, login rate limiting disabled", zap.Error(err))
		} else {
			limiter = rdb
			pingRedis = rdb.Ping
		}
	}

	// 5. tokens
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, logger)
	health := handler.NewHealthHandler(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}, pingRedis)
	h := handler.NewHandler(svc, health)

	// 7. routes
	engine := router.Setup(cfg, h, router.Deps{
		JWT:     jwtMgr,
		Users:   repo.User,
		Limiter: limiter,
		Logger:  logger,
	})

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
