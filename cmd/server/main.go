package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifeline/internal/config"
	handlers "lifeline/internal/handlers/shared"
	"lifeline/internal/middleware"
	"lifeline/internal/repositories/mongodb"
	"lifeline/internal/services"
	"lifeline/pkg/ai"
	"lifeline/pkg/cache"
	"lifeline/pkg/database"
	"lifeline/pkg/geo"
	"lifeline/pkg/logger"
	"lifeline/pkg/push"
	"lifeline/pkg/sms"
	"lifeline/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Database
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancelIndexes()

	// Redis is optional: without it the geo fan-out falls back to all
	// responders and rate limiting is disabled.
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(&cache.RedisConfig{
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
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Repositories
	alertRepo := mongodb.NewAlertRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database)

	// Outbound providers
	smsProvider, snsProvider := buildSMSProviders(cfg, log)
	pushProviders := buildPushProviders(cfg, log)
	aiProviders := buildAIProviders(cfg, log)

	var geocoder geo.Geocoder
	if cfg.Maps.GoogleMapsAPIKey != "" {
		mapsGeocoder, err := geo.NewGoogleMapsGeocoder(cfg.Maps.GoogleMapsAPIKey)
		if err != nil {
			log.WithError(err).Warn("Google Maps unavailable, addresses will not be backfilled")
		} else {
			geocoder = mapsGeocoder
		}
	}

	var locator services.ResponderLocator
	if redisCache != nil {
		locator = redisCache
	}
	var publisher services.TopicPublisher
	if snsProvider != nil {
		publisher = snsProvider
	}

	// Services
	notificationService := services.NewNotificationService(
		userRepo, smsProvider, pushProviders, locator,
		publisher, cfg.SMS.AWS.EmergencyTopicARN, log,
	)
	alertService := services.NewAlertService(alertRepo, userRepo, notificationService, geocoder, log)
	chatbotService := services.NewChatbotService(aiProviders, alertRepo, cfg.AI.RequestTimeout, log)

	var geoWriter services.GeoWriter
	if redisCache != nil {
		geoWriter = redisCache
	}
	responderService := services.NewResponderService(userRepo, geoWriter, log)

	// Handlers
	alertHandler := handlers.NewAlertHandler(alertService)
	chatbotHandler := handlers.NewChatbotHandler(chatbotService)
	responderHandler := handlers.NewResponderHandler(responderService)

	// Router
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))

	v1 := router.Group("/api/v1")
	{
		routes.SetupAlertRoutes(v1, alertHandler, cfg.Security.JWTSecret)
		routes.SetupChatbotRoutes(v1, chatbotHandler, redisCache, cfg.Security.ChatRatePerMinute)
		routes.SetupResponderRoutes(v1, responderHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	notificationService.Wait()
}

func buildSMSProviders(cfg *config.Config, log *logger.Logger) (sms.SMSProvider, *sms.AWSSNSProvider) {
	snsProvider, err := sms.NewAWSSNSProvider(cfg.SMS.AWS.Region)
	if err != nil {
		log.WithError(err).Warn("AWS SNS unavailable")
		snsProvider = nil
	}

	if cfg.SMS.Provider == "aws" && snsProvider != nil {
		return snsProvider, snsProvider
	}

	twilioProvider := sms.NewTwilioProvider(
		cfg.SMS.Twilio.AccountSID,
		cfg.SMS.Twilio.AuthToken,
		cfg.SMS.Twilio.FromNumber,
	)
	return twilioProvider, snsProvider
}

func buildPushProviders(cfg *config.Config, log *logger.Logger) map[string]push.PushProvider {
	providers := make(map[string]push.PushProvider)

	if cfg.Push.FCM.CredentialsFile != "" {
		fcmProvider, err := push.NewFCMProvider(cfg.Push.FCM.CredentialsFile)
		if err != nil {
			log.WithError(err).Warn("FCM unavailable")
		} else {
			providers["fcm"] = fcmProvider
		}
	}

	if cfg.Push.APNS.KeyFile != "" {
		apnsProvider, err := push.NewAPNSProvider(
			cfg.Push.APNS.KeyFile,
			cfg.Push.APNS.KeyID,
			cfg.Push.APNS.TeamID,
			cfg.Push.APNS.Topic,
			!cfg.Push.APNS.Sandbox,
		)
		if err != nil {
			log.WithError(err).Warn("APNS unavailable")
		} else {
			providers["apns"] = apnsProvider
		}
	}

	return providers
}

// buildAIProviders assembles the escalation chain in configured order.
func buildAIProviders(cfg *config.Config, log *logger.Logger) []ai.Provider {
	var providers []ai.Provider
	for _, name := range cfg.AI.Providers {
		switch name {
		case "groq":
			if cfg.AI.Groq.APIKey == "" {
				log.Warn("Groq API key missing, provider skipped")
				continue
			}
			providers = append(providers, ai.NewGroqProvider(cfg.AI.Groq.APIKey, cfg.AI.Groq.Model, cfg.AI.Groq.BaseURL))
		case "anthropic":
			if cfg.AI.Anthropic.APIKey == "" {
				log.Warn("Anthropic API key missing, provider skipped")
				continue
			}
			providers = append(providers, ai.NewAnthropicProvider(cfg.AI.Anthropic.APIKey, cfg.AI.Anthropic.Model))
		default:
			log.WithField("provider", name).Warn("Unknown AI provider in config")
		}
	}
	return providers
}
