package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	shopwrenchhttp "github.com/dukerupert/shopwrench/http"
	"github.com/dukerupert/shopwrench/internal/audit"
	"github.com/dukerupert/shopwrench/internal/authz"
	"github.com/dukerupert/shopwrench/internal/config"
	"github.com/dukerupert/shopwrench/internal/migrations"
	"github.com/dukerupert/shopwrench/internal/workflow"
	"github.com/dukerupert/shopwrench/postgres"
)

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Stdout, os.Stderr, os.Args, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point for the application, designed for testability.
// It accepts all external dependencies (IO, args, env) as parameters.
func run(
	ctx context.Context,
	stdout, stderr io.Writer,
	args []string,
	getenv func(string) string,
) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	srvCfg := LoadServerConfig(getenv)

	// Configure logger
	logger := slog.New(cfg.GetLogger())
	slog.SetDefault(logger)
	logger.Debug("application configuration",
		slog.String("environment", cfg.App.Env),
		slog.String("host", cfg.App.Host),
		slog.Int("port", cfg.App.Port))

	// Create database connection pool
	pool, err := newDatabasePool(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating database pool: %w", err)
	}
	defer pool.Close()

	// Run migrations
	if err := runMigrations(pool, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Initialize services
	db := postgres.NewDB(pool)
	checker := authz.NewChecker(db.PermissionService, logger, cfg.Authz.CacheTTL)
	denialLog := audit.NewDenialLog(pool, logger)
	engine := workflow.NewEngine(
		postgres.NewWorkflowStore(db),
		db.RuleService,
		checker,
		denialLog,
		logger,
		workflow.Config{
			MaxAutoHops:   cfg.Workflow.MaxAutoHops,
			RetryAttempts: cfg.Workflow.RetryAttempts,
			RetryBackoff:  cfg.Workflow.RetryBackoff,
		},
	)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	server := shopwrenchhttp.NewServer(shopwrenchhttp.Config{
		Addr:              addr,
		Logger:            logger,
		SessionDuration:   srvCfg.SessionDuration,
		SessionSecure:     srvCfg.SessionSecure,
		ShopService:       db.ShopService,
		UserService:       db.UserService,
		CustomerService:   db.CustomerService,
		VehicleService:    db.VehicleService,
		InspectionService: db.InspectionService,
		ItemService:       db.ItemService,
		RuleService:       db.RuleService,
		PermissionService: db.PermissionService,
		TransitionService: db.TransitionRecordService,
		SessionService:    db.SessionService,
		WorkflowService:   engine,
		Authz:             checker,
		Denials:           denialLog,
	})

	// Create channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", addr))
		if err := server.Open(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	// Graceful shutdown
	logger.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, srvCfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Close(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}

// newDatabasePool creates a configured pgxpool connection pool.
func newDatabasePool(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Debug("connecting to database")

	poolConfig, err := pgxpool.ParseConfig(cfg.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("database connection pool established")
	return pool, nil
}

// runMigrations runs database migrations using goose.
func runMigrations(pool *pgxpool.Pool, logger *slog.Logger) error {
	logger.Info("running database migrations...")

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("database migrations completed")
	return nil
}
