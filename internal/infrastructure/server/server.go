// Package server assembles the hub: backend registry, dispatcher, and
// the gin HTTP surface.
package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bridgefs/bridgefs/internal/adapters/archive"
	"github.com/bridgefs/bridgefs/internal/adapters/chat"
	"github.com/bridgefs/bridgefs/internal/adapters/docs"
	"github.com/bridgefs/bridgefs/internal/adapters/local"
	apihttp "github.com/bridgefs/bridgefs/internal/api/http"
	"github.com/bridgefs/bridgefs/internal/api/middleware"
	"github.com/bridgefs/bridgefs/internal/creds"
	"github.com/bridgefs/bridgefs/internal/dispatch"
	"github.com/bridgefs/bridgefs/internal/infrastructure/config"
	"github.com/bridgefs/bridgefs/internal/infrastructure/logging"
	"github.com/bridgefs/bridgefs/internal/infrastructure/monitoring"
	"github.com/bridgefs/bridgefs/internal/registry"
	"github.com/bridgefs/bridgefs/internal/shared/paths"
	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router     *gin.Engine
	backends   *registry.Manager
	dispatcher *dispatch.Dispatcher
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a server instance and loads every configured
// backend. Backends that fail to construct are logged and skipped; the
// hub serves whatever loaded.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing bridgefs hub",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
	)

	metrics := monitoring.NewMetrics()

	store := creds.StoreFunc(os.Getenv)

	factories, err := backendFactories(cfg, store)
	if err != nil {
		return nil, fmt.Errorf("build backend factories: %w", err)
	}

	backends := registry.NewManager(factories, logger)
	backends.LoadAll(context.Background())
	metrics.SetBackendCounts(len(backends.All()), len(backends.Enabled()))

	dispatcher := dispatch.New(func() []dispatch.Target {
		var targets []dispatch.Target
		for _, adapter := range backends.Enabled() {
			if t, ok := adapter.(dispatch.Target); ok {
				targets = append(targets, t)
			}
		}
		return targets
	}, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(nil))
	if limiter := middleware.RateLimit(cfg.RateLimit); limiter != nil {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(limiter)
	}

	handlers := apihttp.NewHandlers(backends, dispatcher, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/backends", handlers.ListBackends)
	router.POST("/backends/:name/enable", handlers.EnableBackend)
	router.POST("/backends/:name/disable", handlers.DisableBackend)
	router.POST("/backends/:name/reload", handlers.ReloadBackend)
	router.POST("/backends/:name/test", handlers.TestBackend)

	router.GET("/vfs/:backend/list", handlers.ListEntries)
	router.GET("/vfs/:backend/read", handlers.ReadFile)
	router.GET("/vfs/:backend/size", handlers.FileSize)
	router.GET("/vfs/:backend/search", handlers.SearchFiles)
	router.POST("/vfs/:backend/write", handlers.WriteFile)
	router.POST("/vfs/:backend/append", handlers.AppendFile)
	router.DELETE("/vfs/:backend", handlers.DeleteEntry)

	router.POST("/chat/send", handlers.SendMessage)
	router.POST("/chat/retry", handlers.RetryMessage)

	logger.Info("Server initialized",
		zap.Int("backends", len(backends.All())),
		zap.Int("enabled", len(backends.Enabled())),
	)

	return &Server{
		router:     router,
		backends:   backends,
		dispatcher: dispatcher,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close disposes every backend and flushes the logger.
func (s *Server) Close() error {
	s.logger.Info("Shutting down hub...")
	s.backends.DisposeAll()
	s.logger.Sync()
	return nil
}

// backendFactories is the explicit registration table. Adding a backend
// means adding a row here; the registry never discovers adapters by
// scanning or reflection.
func backendFactories(cfg *config.Config, store creds.Store) ([]registry.Factory, error) {
	storageRoot := cfg.Storage.Root
	if storageRoot == "" {
		storageRoot = filepath.Join(paths.StorageRoot(), paths.Notes)
	}
	sandboxRoot, err := paths.SandboxRoot(cfg.Storage.SandboxApp)
	if err != nil {
		return nil, err
	}
	cacheDir := cfg.Cache.Dir
	if cacheDir == "" {
		cacheDir = paths.CacheDir("docs")
	}

	factories := []registry.Factory{
		{
			Name: "Local Storage",
			New: func(ctx context.Context) (vfs.Adapter, error) {
				return local.New("Local Storage", "Files under the storage root", storageRoot), nil
			},
		},
		{
			Name: "Sandbox",
			New: func(ctx context.Context) (vfs.Adapter, error) {
				return local.New("Sandbox", "Per-app sandboxed storage", sandboxRoot), nil
			},
		},
		{
			Name: "Anthropic",
			New: func(ctx context.Context) (vfs.Adapter, error) {
				completer := chat.NewAnthropicCompleter(cfg.Anthropic.APIKey, store, cfg.Anthropic.Model)
				return chat.NewBackend("Anthropic", "Anthropic chat conversations", completer), nil
			},
		},
		{
			Name: "OpenAI",
			New: func(ctx context.Context) (vfs.Adapter, error) {
				completer := chat.NewOpenAICompleter(cfg.OpenAI.APIKey, store, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
				return chat.NewBackend("OpenAI", "OpenAI-compatible chat conversations", completer), nil
			},
		},
		{
			Name: "Documents",
			New: func(ctx context.Context) (vfs.Adapter, error) {
				return docs.New("Documents", "Remote document workspace", cfg.Docs.BaseURL, cfg.Docs.Token, store, cacheDir)
			},
		},
	}

	// The archive root must already exist; on hosts without one the
	// factory fails Initialize and LoadAll skips it.
	archiveRoot := cfg.Storage.ArchiveRoot
	if archiveRoot == "" {
		archiveRoot = filepath.Join(paths.StorageRoot(), paths.Archive)
	}
	factories = append(factories, registry.Factory{
		Name: "Mail Archive",
		New: func(ctx context.Context) (vfs.Adapter, error) {
			return archive.New("Mail Archive", "Read-only message archive", archiveRoot), nil
		},
	})

	return factories, nil
}
