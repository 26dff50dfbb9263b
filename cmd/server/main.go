package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "gearbook-backend/internal/api/http"
	"gearbook-backend/internal/cache"
	"gearbook-backend/internal/config"
	"gearbook-backend/internal/logger"
	"gearbook-backend/internal/repository/postgres"
	"gearbook-backend/internal/security"
	"gearbook-backend/internal/service"
	"gearbook-backend/internal/storage"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply the database schema on startup")
	flag.Parse()

	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Gearbook Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if *migrate {
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			logger.Error("Failed to apply schema", "error", err)
			log.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}

	store := postgres.NewStore(db)

	// Availability cache is optional; without redis every calendar request
	// hits postgres.
	var calendarCache *cache.AvailabilityCache
	if cfg.Redis.Addr != "" {
		calendarCache = cache.NewAvailabilityCache(cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
		logger.Info("Availability cache enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("Availability cache disabled, no redis address configured")
	}

	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	permChecker := security.NewPermissionChecker(store)
	qrCodec := security.NewQRCodec(cfg.JWT.QRSecret)

	var blobs storage.BlobStore
	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		logger.Info("Using local photo storage", "upload_dir", cfg.Storage.UploadDir)
		localStore, err := storage.NewLocalStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir, cfg.JWT.Secret)
		if err != nil {
			logger.Error("Failed to initialize local storage", "error", err)
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		blobs = localStore
	} else {
		logger.Error("Unsupported storage type", "type", cfg.Storage.Type)
		log.Fatalf("Storage type '%s' not yet implemented", cfg.Storage.Type)
	}

	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	auditSink := service.NewAuditSink(store)
	notificationSvc := service.NewNotificationService(store, emailSvc)
	availabilitySvc := service.NewAvailabilityService(store, calendarCache)
	ledgerSvc := service.NewCreditLedger(store)
	movementSvc := service.NewMovementRecorder(store)
	reservationSvc := service.NewReservationService(
		store,
		availabilitySvc,
		ledgerSvc,
		movementSvc,
		qrCodec,
		calendarCache,
		auditSink,
		notificationSvc,
	)
	sectionSvc := service.NewSectionService(store, auditSink)
	productSvc := service.NewProductService(store, auditSink)

	server := httpapi.NewServer(httpapi.Deps{
		Tokens:          tokenManager,
		Perms:           permChecker,
		Reservations:    reservationSvc,
		Availability:    availabilitySvc,
		Ledger:          ledgerSvc,
		Movements:       movementSvc,
		Sections:        sectionSvc,
		Products:        productSvc,
		Notifications:   notificationSvc,
		Audit:           auditSink,
		Blobs:           blobs,
		MaxUploadSizeMB: cfg.Storage.MaxFileSize,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), server.Router()); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
