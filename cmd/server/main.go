package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/akotolabs/waflow/api/swagger"
	"github.com/akotolabs/waflow/internal/dto"
	"github.com/akotolabs/waflow/internal/handler"
	"github.com/akotolabs/waflow/internal/middleware"
	"github.com/akotolabs/waflow/internal/openai"
	"github.com/akotolabs/waflow/internal/paystack"
	"github.com/akotolabs/waflow/internal/repository"
	"github.com/akotolabs/waflow/internal/service"
	"github.com/akotolabs/waflow/internal/whatsapp"
	"github.com/akotolabs/waflow/pkg/cache"
	"github.com/akotolabs/waflow/pkg/config"
	"github.com/akotolabs/waflow/pkg/database"
	"github.com/akotolabs/waflow/pkg/jobs"
	"github.com/akotolabs/waflow/pkg/logger"
	corsmiddleware "github.com/akotolabs/waflow/pkg/middleware/cors"
	reqidmiddleware "github.com/akotolabs/waflow/pkg/middleware/requestid"
	"github.com/akotolabs/waflow/pkg/storage"
)

// @title Waflow API
// @version 0.1.0
// @description WhatsApp business automation backend: availability, bookings, FAQ and payments
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	defer cacheRepo.Close() //nolint:errcheck

	// Repositories.
	tenantRepo := repository.NewTenantRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	faqRepo := repository.NewFAQRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Outbound integrations.
	provider, err := whatsapp.New(cfg.WhatsApp)
	if err != nil {
		logr.Sugar().Fatalw("failed to configure whatsapp provider", "error", err)
	}
	aiClient := openai.NewClient(cfg.OpenAI)
	paystackClient := paystack.NewClient(cfg.Paystack)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, nil, logr)
	tenantSvc := service.NewTenantService(tenantRepo, nil, logr)
	availabilitySvc := service.NewAvailabilityService(
		availabilityRepo, bookingRepo, tenantRepo, cacheRepo,
		cfg.Slots.CacheTTL, cfg.Slots.DefaultTimezone, nil, logr,
	)
	availabilitySvc.SetMetrics(metricsSvc)
	bookingSvc := service.NewBookingService(
		bookingRepo, availabilitySvc,
		cfg.Bookings.ConflictGuard, cfg.Bookings.ExpireAfter, nil, logr,
	)
	faqSvc := service.NewFAQService(faqRepo, aiClient, nil, logr)
	intentSvc := service.NewIntentService(aiClient, logr)
	paymentSvc := service.NewPaymentService(paystackClient, bookingRepo, availabilitySvc, nil, logr)
	conversationSvc := service.NewConversationService(
		tenantRepo, messageRepo, intentSvc, faqSvc, availabilitySvc, provider, logr,
	)
	conversationSvc.SetMetrics(metricsSvc)
	exportSvc := service.NewExportService(
		bookingRepo, messageRepo, exportStore, signer, cfg.Exports.SignedURLTTL, logr,
	)

	// Inbound messages are acked at the webhook and processed here.
	inboundQueue := jobs.NewQueue("inbound-messages", func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(dto.InboundMessage)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		return conversationSvc.HandleInbound(ctx, msg)
	}, jobs.QueueConfig{
		Workers:    cfg.Webhooks.WorkerConcurrency,
		BufferSize: cfg.Webhooks.QueueBuffer,
		MaxRetries: cfg.Webhooks.MaxRetries,
		Logger:     logr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inboundQueue.Start(ctx)
	defer inboundQueue.Stop()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Exports.CleanupCron, exportSvc.Cleanup); err != nil {
		logr.Sugar().Fatalw("invalid exports cleanup schedule", "error", err)
	}
	if cfg.Bookings.ExpireEnabled {
		if _, err := scheduler.AddFunc(cfg.Bookings.ExpireCron, func() {
			bookingSvc.ExpireStalePending(context.Background())
		}); err != nil {
			logr.Sugar().Fatalw("invalid booking expiry schedule", "error", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	faqHandler := handler.NewFAQHandler(faqSvc)
	messageHandler := handler.NewMessageLogHandler(conversationSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	webhookHandler := handler.NewWebhookHandler(cfg.WhatsApp, inboundQueue, paymentSvc, metricsSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Provider callbacks authenticate via their own signatures.
	r.GET("/webhooks/whatsapp", webhookHandler.VerifyWhatsApp)
	r.POST("/webhooks/whatsapp", webhookHandler.ReceiveWhatsApp)
	r.POST("/webhooks/paystack", webhookHandler.ReceivePaystack)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	// Signed token is the credential here.
	api.GET("/exports/download", exportHandler.Download)

	secured := api.Group("", middleware.JWT(authSvc))
	{
		secured.GET("/auth/me", authHandler.Me)

		secured.POST("/tenants", tenantHandler.Create)
		secured.GET("/tenants", tenantHandler.List)
		secured.GET("/tenants/:id", tenantHandler.Get)

		secured.GET("/tenants/:id/slots", availabilityHandler.GetSlots)
		secured.GET("/tenants/:id/availability/rules", availabilityHandler.ListRules)
		secured.PUT("/tenants/:id/availability/rules", availabilityHandler.SetRules)
		secured.GET("/tenants/:id/availability/closed-dates", availabilityHandler.ListClosedDates)
		secured.POST("/tenants/:id/availability/closed-dates", availabilityHandler.CloseDate)
		secured.DELETE("/tenants/:id/availability/closed-dates/:date", availabilityHandler.ReopenDate)

		secured.POST("/bookings", bookingHandler.Create)
		secured.GET("/bookings", bookingHandler.List)
		secured.POST("/bookings/payment-ref", bookingHandler.AttachPaymentRef)

		secured.POST("/tenants/:id/faqs", faqHandler.Upload)
		secured.GET("/tenants/:id/faqs", faqHandler.List)
		secured.GET("/tenants/:id/faqs/search", faqHandler.Search)

		secured.GET("/tenants/:id/messages", messageHandler.List)

		secured.POST("/payments/initiate", paymentHandler.Initiate)

		secured.POST("/tenants/:id/exports/bookings", exportHandler.Bookings)
		secured.POST("/tenants/:id/exports/messages", exportHandler.MessageLogs)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
