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

	"gbtravel/internal/config"
	"gbtravel/internal/handlers"
	"gbtravel/internal/middleware"
	"gbtravel/internal/repositories/mongodb"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"
	"gbtravel/pkg/cache"
	"gbtravel/pkg/database"
	"gbtravel/pkg/logger"
	"gbtravel/pkg/mailer"
	"gbtravel/pkg/maps"
	"gbtravel/pkg/oauth"
	"gbtravel/pkg/payment"
	"gbtravel/pkg/sms"
	"gbtravel/pkg/storage"
	"gbtravel/pkg/websocket"
	"gbtravel/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		Caller:     cfg.IsDevelopment(),
		Colors:     cfg.IsDevelopment(),
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}

	utils.SetErrorDetail(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:             cfg.Database.URI,
		Database:        cfg.Database.Database,
		MaxPoolSize:     cfg.Database.MaxPoolSize,
		MinPoolSize:     cfg.Database.MinPoolSize,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
		SocketTimeout:   cfg.Database.SocketTimeout,
		UseTransactions: cfg.Database.UseTransactions,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongoDB.Close()
	appLogger.WithField("database", cfg.Database.Database).Info("Connected to MongoDB")

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(mongoDB.Database, appLogger).Up(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	var tx services.TxRunner = services.DirectRunner{}
	if cfg.Database.UseTransactions {
		tx = mongoDB
	}

	checks := map[string]handlers.Pinger{"database": mongoDB}

	var (
		catalogCache services.CacheService
		counter      cache.Counter = cache.NewMemoryCounter()
	)
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			appLogger.WithError(err).Warn("Redis unavailable, using in-process rate limiting and no catalog cache")
		} else {
			defer redisCache.Close()
			catalogCache = redisCache
			counter = redisCache
			checks["cache"] = redisCache
		}
	}

	gateway := payment.NewStripeGateway(cfg.Payment.Stripe.SecretKey, cfg.Payment.Stripe.WebhookSecret, cfg.Payment.CheckoutExpiry)

	emailSender, err := newMailer(ctx, cfg.SMTP)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to configure mailer")
	}

	smsProvider, err := newSMSProvider(ctx, cfg.SMS)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to configure SMS provider")
	}

	storageProvider, err := newStorageProvider(ctx, cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Warn("Image storage unavailable, uploads are disabled")
	}

	var geocoder maps.Geocoder
	if cfg.Maps.Enabled() {
		g, err := maps.NewGoogleGeocoder(cfg.Maps.GoogleMapsAPIKey)
		if err != nil {
			appLogger.WithError(err).Warn("Geocoding disabled")
		} else {
			geocoder = g
		}
	}

	renderer, err := services.NewRenderer(cfg.App.Name)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to parse notification templates")
	}

	db := mongoDB.Database
	userRepo := mongodb.NewUserRepository(db)
	destinationRepo := mongodb.NewDestinationRepository(db)
	tripRepo := mongodb.NewTripRepository(db)
	bookingRepo := mongodb.NewBookingRepository(db)
	paymentRepo := mongodb.NewPaymentRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)
	inquiryRepo := mongodb.NewInquiryRepository(db)
	outboxRepo := mongodb.NewOutboxRepository(db)
	eventRepo := mongodb.NewProcessedEventRepository(db)

	jwtManager := utils.NewJWTManager(
		cfg.Security.JWTSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.JWTAccessTokenTTL,
		cfg.Security.JWTRefreshTokenTTL,
	)

	notifications := services.NewNotificationService(outboxRepo, cfg.SMS.Enabled(), appLogger)
	authService := services.NewAuthService(userRepo, jwtManager, notifications, services.AuthConfig{
		BcryptCost:           cfg.Security.BcryptCost,
		PasswordMinLength:    cfg.Security.PasswordMinLength,
		VerificationTokenTTL: cfg.Security.VerificationTokenTTL,
		ResetTokenTTL:        cfg.Security.ResetTokenTTL,
		FrontendURL:          cfg.App.FrontendURL,
	}, appLogger, socialProviders(cfg.OAuth)...)
	userService := services.NewUserService(userRepo, bookingRepo, destinationRepo, appLogger)
	destinationService := services.NewDestinationService(destinationRepo, tripRepo, geocoder, catalogCache, appLogger)
	tripService := services.NewTripService(tripRepo, destinationRepo, catalogCache, appLogger)
	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)
	liveAvailability := services.NewLiveAvailability(hub, tripService, appLogger)

	bookingService := services.NewBookingService(bookingRepo, tripRepo, userRepo, paymentRepo, gateway, notifications, liveAvailability, tx, cfg.App.FrontendURL, appLogger)
	paymentService := services.NewPaymentService(bookingRepo, tripRepo, paymentRepo, eventRepo, gateway, notifications, tx, cfg.App.FrontendURL, appLogger)
	reviewService := services.NewReviewService(reviewRepo, tripRepo, bookingRepo, appLogger)
	inquiryService := services.NewInquiryService(inquiryRepo, notifications, appLogger)
	imageService := services.NewImageService(storageProvider, tripService, destinationService, cfg.Storage.MaxImageSize, appLogger)

	h := &routes.Handlers{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.App.Environment, checks),
		Auth:        handlers.NewAuthHandler(authService),
		User:        handlers.NewUserHandler(userService),
		Destination: handlers.NewDestinationHandler(destinationService, imageService),
		Trip:        handlers.NewTripHandler(tripService, imageService),
		Booking:     handlers.NewBookingHandler(bookingService),
		Review:      handlers.NewReviewHandler(reviewService),
		Payment:     handlers.NewPaymentHandler(paymentService),
		Inquiry:     handlers.NewInquiryHandler(inquiryService),
		Live:        handlers.NewLiveHandler(tripService, websocket.NewHandler(hub, cfg.Security.CORSAllowedOrigins)),
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxy list")
	}
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.BodyLimit(cfg.App.MaxBodySize))
	router.Use(middleware.RequestLogger(appLogger))

	if cfg.Storage.Provider == "local" && storageProvider != nil {
		router.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	routes.Setup(router, h, authService, routes.RateLimitConfig{
		Counter: counter,
		Max:     cfg.Security.RateLimitMaxRequests,
		Window:  cfg.Security.RateLimitWindow,
	}, appLogger)

	var scheduler *services.Scheduler
	if cfg.Worker.Enabled {
		dispatcher := services.NewOutboxDispatcher(outboxRepo, emailSender, smsProvider, renderer, services.DispatcherConfig{
			BatchSize:   cfg.Worker.OutboxBatchSize,
			MaxAttempts: cfg.Worker.OutboxMaxAttempts,
		}, appLogger)
		reminders := services.NewTripReminderJob(bookingRepo, tripRepo, notifications, cfg.Worker.ReminderLeadTime, appLogger)

		scheduler, err = services.NewScheduler(dispatcher, reminders, services.SchedulerConfig{
			OutboxPollInterval: cfg.Worker.OutboxPollInterval,
			ReminderInterval:   cfg.Worker.ReminderInterval,
		}, appLogger)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create scheduler")
		}
		if err := scheduler.Start(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to start scheduler")
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		appLogger.WithFields(map[string]interface{}{
			"addr":        server.Addr,
			"environment": cfg.App.Environment,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shut down")
	}
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			appLogger.WithError(err).Error("Scheduler shutdown failed")
		}
	}

	appLogger.Info("Server exited")
}

func socialProviders(cfg *config.OAuthConfig) []oauth.Provider {
	var providers []oauth.Provider
	if cfg.Google.Enabled() {
		providers = append(providers, oauth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL))
	}
	if cfg.Facebook.Enabled() {
		providers = append(providers, oauth.NewFacebookProvider(cfg.Facebook.ClientID, cfg.Facebook.ClientSecret, cfg.Facebook.RedirectURL))
	}
	return providers
}

func newMailer(ctx context.Context, cfg *config.SMTPConfig) (mailer.Mailer, error) {
	if cfg.Provider == "ses" {
		m, err := mailer.NewSESMailer(ctx, cfg.SESRegion, cfg.FromName, cfg.FromEmail)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	m, err := mailer.NewSMTPMailer(&mailer.SMTPConfig{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Username:   cfg.Username,
		Password:   cfg.Password,
		FromEmail:  cfg.FromEmail,
		FromName:   cfg.FromName,
		SSL:        cfg.SSL,
		TLS:        cfg.TLS,
		AuthMethod: cfg.AuthMethod,
		Timeout:    15 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newSMSProvider(ctx context.Context, cfg *config.SMSConfig) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case "sns":
		provider, err := sms.NewAWSSNSProvider(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "twilio":
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	default:
		return nil, nil
	}
}

func newStorageProvider(ctx context.Context, cfg *config.StorageConfig) (storage.StorageProvider, error) {
	var (
		provider storage.StorageProvider
		err      error
	)
	switch cfg.Provider {
	case "s3":
		var s3 *storage.AWSS3Storage
		if s3, err = storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain); err == nil {
			provider = s3
		}
	case "gcs":
		var gcs *storage.GCPStorage
		if gcs, err = storage.NewGCPStorage(ctx, cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain); err == nil {
			provider = gcs
		}
	case "local":
		var local *storage.LocalStorage
		if local, err = storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL); err == nil {
			provider = local
		}
	default:
		err = fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
	return provider, err
}
