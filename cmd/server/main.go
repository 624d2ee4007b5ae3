package main

import (
	"context"
	"encoding/json"
	"log"
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

	"github.com/clashpoint/deltacoin/docs"
	"github.com/clashpoint/deltacoin/internal/config"
	"github.com/clashpoint/deltacoin/internal/database"
	"github.com/clashpoint/deltacoin/internal/handlers"
	mW "github.com/clashpoint/deltacoin/internal/middleware"
	"github.com/clashpoint/deltacoin/internal/services"
)

// @title DeltaCoin Ledger API
// @version 1.0
// @description Virtual currency ledger for the ClashPoint tournament platform
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	// Set environment variable prefix
	viper.SetEnvPrefix("")

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
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "DeltaCoin Ledger API"
	docs.SwaggerInfo.Description = "Virtual currency ledger for the ClashPoint tournament platform"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize storage
	db := database.InitDatabase()
	defer db.Close()

	if err := database.RunMigrations(db, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	cfg := config.LoadLedgerConfig()

	// Initialize services
	ledgerService := services.NewLedgerService(db)
	catalogService := services.NewCatalogService(db)
	holdService := services.NewHoldService(db, ledgerService, cfg.HoldTTL)
	reconciliationService := services.NewReconciliationService(db)
	exportService := services.NewExportService(db)
	awardConsumer := services.NewAwardConsumer(redisClient, ledgerService)

	ledgerHandler := handlers.NewLedgerHandler(ledgerService, holdService, exportService)
	holdsHandler := handlers.NewHoldsHandler(holdService, catalogService)
	adminHandler := handlers.NewAdminHandler(ledgerService, reconciliationService, catalogService, awardConsumer)

	// Background jobs
	scheduler := services.NewScheduler(holdService, reconciliationService, cfg)
	scheduler.Start()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if redisClient != nil && cfg.AwardConsumerEnabled {
		go awardConsumer.Start(consumerCtx)
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(mW.Metrics)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// All ledger endpoints require auth; there is no public surface.
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			// Wallet endpoints
			r.Post("/wallets/{ownerId}/credit", ledgerHandler.CreditWallet)
			r.Post("/wallets/{ownerId}/debit", ledgerHandler.DebitWallet)
			r.Get("/wallets/{ownerId}/balance", ledgerHandler.GetBalance)
			r.Get("/wallets/{ownerId}/entries", ledgerHandler.GetHistory)
			r.Get("/wallets/{ownerId}/export", ledgerHandler.ExportHistory)
			r.Post("/transfers", ledgerHandler.TransferCoins)

			// Reservation hold endpoints
			r.Post("/holds", holdsHandler.AuthorizeHold)
			r.Get("/holds/{holdId}", holdsHandler.GetHold)
			r.Post("/holds/{holdId}/capture", holdsHandler.CaptureHold)
			r.Post("/holds/{holdId}/release", holdsHandler.ReleaseHold)
			r.Post("/refunds", holdsHandler.RefundPurchase)

			// Shop catalog endpoints
			r.Get("/shop/items", holdsHandler.ListItems)
			r.Get("/shop/items/{sku}", holdsHandler.GetItem)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(mW.RequireAdmin)

				r.Post("/admin/adjustments", adminHandler.ManualAdjust)
				r.Put("/admin/wallets/{ownerId}/overdraft", adminHandler.SetOverdraft)
				r.Post("/admin/reconciliation/wallets/{ownerId}", adminHandler.ReconcileWallet)
				r.Post("/admin/reconciliation/sweep", adminHandler.SweepReconciliation)
				r.Put("/admin/shop/items/{sku}", adminHandler.UpsertItem)
				r.Patch("/admin/shop/items/{sku}/active", adminHandler.SetItemActive)
				r.Post("/admin/awards", adminHandler.EnqueueAward)
				r.Get("/admin/awards/queue", adminHandler.AwardQueueStats)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	stopConsumer()
	scheduler.Stop()

	log.Println("Server stopped")
}
