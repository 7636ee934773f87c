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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/rounds/internal/config"
	"github.com/ehr/rounds/internal/domain/rounding"
	"github.com/ehr/rounds/internal/domain/smartphrase"
	"github.com/ehr/rounds/internal/platform/auth"
	"github.com/ehr/rounds/internal/platform/db"
	"github.com/ehr/rounds/internal/platform/middleware"
	"github.com/ehr/rounds/internal/platform/websocket"
)

const version = "0.1.0"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the rounding API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// openRepository builds the workspace store for cfg. The returned pool is
// nil for the file backend.
func openRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (rounding.WorkspaceRepository, *pgxpool.Pool, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, logger)
		if err != nil {
			return nil, nil, err
		}
		return rounding.NewWorkspaceRepoPG(pool), pool, nil
	case config.BackendFile:
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		return rounding.NewFileRepository(cfg.DataDir), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// loadCatalog returns the built-in templates merged with TEMPLATES_FILE.
func loadCatalog(cfg *config.Config) (*smartphrase.Catalog, error) {
	catalog, err := smartphrase.Builtin()
	if err != nil {
		return nil, err
	}
	if cfg.TemplatesFile != "" {
		if err := catalog.LoadFile(cfg.TemplatesFile); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// newServer wires middleware and routes and attaches hub to svc. pool may be
// nil.
func newServer(cfg *config.Config, svc *rounding.Service, catalog *smartphrase.Catalog, hub *websocket.Hub, pool *pgxpool.Pool, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.BodyLimit(cfg.BodyLimit, "4M", "/smartphrase/render"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
			"storage": cfg.StorageBackend,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	apiV1 := e.Group("/api/v1")
	if cfg.AuthSecret == "" {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.AuthSecret),
		}))
	}
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	apiV1.Use(middleware.RequestTimeout(15 * time.Second))

	rounding.NewHandler(svc).RegisterRoutes(apiV1)
	smartphrase.NewHandler(smartphrase.NewEngine(), catalog, svc).RegisterRoutes(apiV1)

	svc.SetNotifier(rounding.NewHubNotifier(hub, logger))
	live := apiV1.Group("", auth.Require(auth.PermViewSheets))
	websocket.NewHandler(hub, cfg.CORSOrigins, []string{rounding.TopicWorkspace}, logger).RegisterRoutes(live)
	return e
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	if cfg.AuthSecret == "" {
		logger.Warn().Msg("AUTH_SECRET is not set: every API request runs as an admin dev-user")
	}

	ctx := context.Background()
	repo, pool, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open workspace storage")
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	svc := rounding.NewService(repo, cfg.WorkspaceKey, logger)
	if err := svc.Load(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to load workspace")
		return err
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load templates")
		return err
	}

	hub := websocket.NewHub(logger)
	defer hub.Close()
	e := newServer(cfg, svc, catalog, hub, pool, logger)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("storage", cfg.StorageBackend).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
