package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/spenly/backend/docs"
	"github.com/spenly/backend/internal/audit"
	"github.com/spenly/backend/internal/config"
	"github.com/spenly/backend/internal/database"
	"github.com/spenly/backend/internal/handlers"
	"github.com/spenly/backend/internal/logger"
	mW "github.com/spenly/backend/internal/middleware"
	"github.com/spenly/backend/internal/oracle"
	"github.com/spenly/backend/internal/services"
)

// @title Spenly Chat Intake API
// @version 1.0
// @description WhatsApp expense intake and companion app sync
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	log := logger.New()

	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.driver", "DATABASE_DRIVER")
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	viper.BindEnv("twilio.account_sid", "TWILIO_ACCOUNT_SID")
	viper.BindEnv("twilio.auth_token", "TWILIO_AUTH_TOKEN")
	viper.BindEnv("twilio.whatsapp_number", "TWILIO_WHATSAPP_NUMBER")
	viper.BindEnv("twilio.public_url", "PUBLIC_URL")
	viper.BindEnv("twilio.validate_signature", "TWILIO_VALIDATE_SIGNATURE")

	viper.BindEnv("ai.provider", "AI_PROVIDER")
	viper.BindEnv("ai.model", "AI_MODEL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")

	viper.BindEnv("gcs.receipts_bucket", "RECEIPTS_BUCKET")

	if err := viper.ReadInConfig(); err != nil {
		log.Info().Err(err).Msg("config file not found, using environment")
	}

	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	ctx := context.Background()
	chatCfg := config.LoadChatConfig()
	relayCfg := config.LoadRelayConfig()
	auditLogger := audit.NewLogger()

	db := database.InitDatabase()
	defer db.Close()

	if err := database.NewSchema(db).Ensure(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	store := services.NewPostgresStore(db)
	linkService := services.NewLinkService(db, redisClient, chatCfg, auditLogger)

	deps := services.AssemblerDeps{
		Linker:       linkService,
		Transactions: store,
		Categories:   store,
		Audit:        auditLogger,
		Config:       chatCfg,
	}

	aiCfg := config.LoadAIConfig()
	if aiCfg.APIKey == "" {
		log.Warn().Msg("AI_API_KEY not set, using rule-based parsing only")
	} else if completer, err := oracle.New(ctx, aiCfg); err != nil {
		log.Error().Err(err).Msg("completion client unavailable, using rule-based parsing only")
	} else {
		ai := services.NewAIClient(completer)
		deps.Extractor = ai
		deps.Composer = ai
		deps.Classifier = services.NewIntentClassifier(ai, chatCfg)
		deps.Resolver = services.NewCategoryResolver(ai, chatCfg.OracleTimeout)
		log.Info().Str("provider", completer.Name()).Msg("completion client ready")
	}

	var relay *services.TwilioRelay
	if err := relayCfg.Validate(); err != nil {
		if relayCfg.ValidateHooks {
			log.Error().Err(err).Msg("twilio not configured, webhook will answer 503")
		} else {
			log.Warn().Err(err).Msg("twilio not configured and signature validation disabled, replies are returned inline")
		}
	} else {
		relay = services.NewTwilioRelay(relayCfg)
		deps.Notifier = relay
	}
	deps.Media = services.NewRelayMediaFetcher(relayCfg.AccountSID, relayCfg.AuthToken, chatCfg.MaxMediaBytes, chatCfg.MediaFetchTimeout)

	if transcriber := services.NewSpeechTranscriber(ctx, chatCfg.SpeechLanguage); transcriber != nil {
		defer transcriber.Close()
		deps.Transcriber = transcriber
	}

	if bucket := viper.GetString("gcs.receipts_bucket"); bucket != "" {
		archiver, err := services.NewGCSReceiptArchiver(ctx, bucket)
		if err != nil {
			log.Warn().Err(err).Msg("receipt archiving disabled")
		} else {
			defer archiver.Close()
			deps.Archiver = archiver
		}
	}

	assembler := services.NewTransactionAssembler(deps)

	webhookHandler := handlers.NewWebhookHandler(assembler, notifierOrNil(relay), signerOrNil(relay), redisClient, relayCfg, chatCfg.DedupTTL)
	linkHandler := handlers.NewLinkHandler(linkService, relayCfg.BareNumber())
	syncHandler := handlers.NewSyncHandler(store, store, auditLogger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/whatsapp/webhook", webhookHandler.Receive)

		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Post("/link/codes", linkHandler.IssueCode)
			r.Get("/link/status", linkHandler.Status)
			r.Delete("/link", linkHandler.Unlink)

			r.Get("/categories", syncHandler.GetCategories)
			r.Put("/categories", syncHandler.PutCategories)

			r.Get("/transactions/pending", syncHandler.PendingTransactions)
			r.Post("/transactions/sync", syncHandler.MarkSynced)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// notifierOrNil keeps a nil relay from becoming a non-nil interface
func notifierOrNil(relay *services.TwilioRelay) services.Notifier {
	if relay == nil {
		return nil
	}
	return relay
}

func signerOrNil(relay *services.TwilioRelay) handlers.SignatureValidator {
	if relay == nil {
		return nil
	}
	return relay
}
