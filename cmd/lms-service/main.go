package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/openlms/lms-service/docs"
	"github.com/openlms/lms-service/internal/auth"
	"github.com/openlms/lms-service/internal/config"
	"github.com/openlms/lms-service/internal/handlers"
	"github.com/openlms/lms-service/internal/logger"
	"github.com/openlms/lms-service/internal/middlewares"
	"github.com/openlms/lms-service/internal/repositories"
	"github.com/openlms/lms-service/internal/services"
	"github.com/openlms/lms-service/internal/store"
	"github.com/openlms/lms-service/internal/store/memory"
	"github.com/openlms/lms-service/internal/store/mysqlstore"
)

// @title LMS Service API
// @version 1.0
// @description Courses, lessons and user profiles over a hierarchical entity store

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting LMS Service", zap.String("store", cfg.Store.Driver))

	// Open the entity store
	client, err := openStore(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to open entity store", zap.Error(err))
	}
	defer client.Close()

	// Initialize token generator and password hasher
	tokenGenerator := auth.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	hasher := auth.NewPasswordHasher(cfg.PasswordSalt)

	// Initialize repositories
	courseRepo := repositories.NewCourseRepository(client, logger.Logger)
	userRepo := repositories.NewUserRepository(client, logger.Logger)

	// Initialize services
	catalogService := services.NewCatalogService(courseRepo)
	accountService := services.NewAccountService(userRepo, hasher, tokenGenerator, logger.Logger)

	// Initialize handlers
	courseHandler := handlers.NewCourseHandler(catalogService, logger.Logger)
	authHandler := handlers.NewAuthHandler(accountService, logger.Logger)
	profileHandler := handlers.NewProfileHandler(accountService, logger.Logger)

	// Initialize auth middleware
	authMiddleware := auth.Middleware(tokenGenerator)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestID)
	r.Use(middlewares.Logging(logger.Logger))
	r.Use(middlewares.Recovery(logger.Logger))
	r.Use(middlewares.CORS(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimit(1 * 1024 * 1024)) // 1MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		courseHandler.RegisterRoutes(r)
		authHandler.RegisterRoutes(r)
		profileHandler.RegisterRoutes(r, authMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// openStore builds the store client for the configured driver.
func openStore(cfg *config.Config) (store.Client, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return memory.New(), nil
	case config.StoreDriverMySQL:
		db, err := connectDB(cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := runMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		return mysqlstore.New(db, logger.Logger), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
	}
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "lms_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
