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
	"github.com/spf13/cobra"
	"github.com/studymate/server/ai"
	apirest "github.com/studymate/server/api/rest"
	"github.com/studymate/server/audit"
	"github.com/studymate/server/cache"
	"github.com/studymate/server/config"
	dbadapter "github.com/studymate/server/db"
	"github.com/studymate/server/model"
	"github.com/studymate/server/scheduler"
	"github.com/studymate/server/social"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var (
	envName   string
	configDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "studymate",
	Short: "StudyMate API server",
	Long: `studymate serves the StudyMate study platform API: students, decks,
friendships, groups, events, discussions, study plans and chat logs.

ENVIRONMENT=development (or --env development) selects
config.development.yaml and .env.development; anything else selects
config.yaml and .env.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment name (development|production), defaults to $ENVIRONMENT")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "config", "directory holding the YAML config files")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE:  runMigrate,
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openDB opens the configured store and migrates the schema.
func openDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))
	return db, nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir, envName)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir, envName)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// ---- Logger ----
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		if cfg.Environment == config.EnvProduction {
			return errors.New("security.jwt_secret must be set in production")
		}
		logger.Warn("security.jwt_secret is empty; tokens are signed with an empty key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		auditSvc.Stop(stopCtx)
	}()

	// ---- Cache ----
	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	if cfg.Audit.Retention > 0 && cfg.Audit.PruneInterval > 0 {
		retention := cfg.Audit.Retention
		sched.AddTicker("audit_retention", cfg.Audit.PruneInterval, func(ctx context.Context) error {
			_, err := auditSvc.Prune(ctx, time.Now().Add(-retention))
			return err
		})
	}

	// ---- Services ----
	gen, err := ai.NewGenerator(cfg.AI)
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if cfg.AI.APIKey == "" {
		logger.Warn("ai.api_key is not set; study plan and wellness generation will fail")
	}
	aiClient := ai.NewClient(gen, logger)
	socialSvc := social.NewService(db, logger)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := apirest.NewRouter(ctx, apirest.Deps{
		Config:  cfg,
		DB:      db,
		Cache:   c,
		Social:  socialSvc,
		AI:      aiClient,
		Auditor: auditSvc,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	return nil
}
