package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/config"
	"github.com/tdiorio2323/cabana/internal/handler"
	"github.com/tdiorio2323/cabana/internal/handler/middleware"
	"github.com/tdiorio2323/cabana/internal/model"
	"github.com/tdiorio2323/cabana/internal/repository"
	"github.com/tdiorio2323/cabana/internal/service"
	jwtpkg "github.com/tdiorio2323/cabana/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Initialize repositories: Postgres in production, in-memory fixtures
	// in demo mode (no real credentials needed).
	var (
		inviteRepo    repository.InviteRepository
		vipRepo       repository.VipCodeRepository
		webhookRepo   repository.WebhookEventRepository
		rateLimitRepo repository.RateLimitRepository
		bookingRepo   repository.BookingRepository
	)
	if cfg.Demo.Enabled {
		logger.Info("demo mode enabled, using in-memory fixtures")
		inviteRepo = repository.NewMemoryInviteRepository()
		vipRepo = repository.NewMemoryVipCodeRepository()
		webhookRepo = repository.NewMemoryWebhookEventRepository()
		rateLimitRepo = repository.NewMemoryRateLimitRepository()
		bookingRepo = repository.NewMemoryBookingRepository()
	} else {
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		inviteRepo = repository.NewPGInviteRepository(db)
		vipRepo = repository.NewPGVipCodeRepository(db)
		webhookRepo = repository.NewPGWebhookEventRepository(db)
		rateLimitRepo = repository.NewPGRateLimitRepository(db)
		bookingRepo = repository.NewPGBookingRepository(db)
	}

	// 4. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 5. Initialize mail sender
	var mailSender service.MailSender
	if cfg.Mail.Enabled && !cfg.Demo.Enabled {
		mailSender, err = service.NewSMTPSender(cfg.Mail)
		if err != nil {
			logger.Fatal("failed to init mail sender", zap.Error(err))
		}
	} else {
		mailSender = service.NewNoopSender()
		logger.Info("mail disabled, invite notifications will be dropped")
	}

	// 6. Initialize JWT manager (validates tokens minted by the platform auth layer)
	jwtManager := jwtpkg.NewManager(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	// 7. Initialize services
	inviteService := service.NewInviteService(inviteRepo, mailSender, cfg.Invite, logger)
	vipService := service.NewVipService(vipRepo, logger)
	rateLimitService := service.NewRateLimitService(rateLimitRepo)
	webhookService := service.NewWebhookService(webhookRepo, bookingRepo, stateStore, logger)

	// 8. Initialize handlers
	inviteHandler := handler.NewInviteHandler(inviteService)
	vipHandler := handler.NewVipHandler(vipService)
	webhookHandler := handler.NewWebhookHandler(webhookService, cfg.Webhooks, logger)

	// 9. Admin authorization policy (email allowlist)
	adminPolicy := middleware.NewEmailAllowlist(cfg.Admin.Emails)

	// 10. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, adminPolicy, rateLimitService, inviteHandler, vipHandler, webhookHandler)

	// 11. Periodic rate-limit log cleanup
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.RateLimit.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				removed, err := rateLimitService.Cleanup(cleanupCtx, cfg.RateLimit.Retention)
				if err != nil {
					logger.Warn("rate limit cleanup failed", zap.Error(err))
					continue
				}
				logger.Debug("rate limit cleanup completed", zap.Int64("removed", removed))
			}
		}
	}()

	// 12. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 13. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	stopCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
