// Package server exposes the HTTP API: works and chapters CRUD, job
// submission and inspection, glossary browsing, and translated chapter
// reads.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hoanglong/serica/internal/config"
	"github.com/hoanglong/serica/internal/glossary"
	"github.com/hoanglong/serica/internal/jobs"
	"github.com/hoanglong/serica/internal/library"
	"github.com/hoanglong/serica/internal/pipeline"
	"github.com/hoanglong/serica/internal/providers"
	"github.com/hoanglong/serica/internal/report"
)

// Config holds server dependencies and settings.
type Config struct {
	// Listen is the address to bind to (default: :8080)
	Listen string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Library stores works, chapters, and translations
	Library library.Store
	// Glossary stores entities and their per-language translations
	Glossary glossary.Store
	// Jobs executes pipeline work on ordered lanes
	Jobs *jobs.Manager
	// Registry resolves LLM providers by name
	Registry *providers.Registry
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// Server is the serica HTTP server.
type Server struct {
	httpServer *http.Server
	library    library.Store
	glossary   glossary.Store
	jobs       *jobs.Manager
	registry   *providers.Registry
	configMgr  *config.Manager
	formatter  *report.Formatter
	logger     *slog.Logger

	mu      sync.RWMutex
	running bool
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Library == nil || cfg.Glossary == nil || cfg.Jobs == nil {
		return nil, fmt.Errorf("library, glossary, and jobs dependencies are required")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = providers.NewRegistry()
	}

	// Hot reload: provider changes in the config file take effect on the
	// running server.
	if cfg.ConfigManager != nil {
		registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	s := &Server{
		library:   cfg.Library,
		glossary:  cfg.Glossary,
		jobs:      cfg.Jobs,
		registry:  registry,
		configMgr: cfg.ConfigManager,
		formatter: report.NewFormatter(report.DefaultLimits()),
		logger:    cfg.Logger,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start begins serving. Blocks until the listener fails or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.jobs.Start(ctx)
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains the HTTP server and the job manager.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.jobs.Stop()
	return nil
}

// pipelineConfig returns the current pipeline settings, falling back to
// defaults when no config manager is wired (tests).
func (s *Server) pipelineConfig() config.PipelineCfg {
	if s.configMgr != nil {
		return s.configMgr.Get().Pipeline
	}
	def := config.DefaultConfig()
	return def.Pipeline
}

// extractor builds an extraction client on the named provider. Built per
// request so provider hot reloads apply immediately.
func (s *Server) extractor(provider string) (*pipeline.Extractor, error) {
	client, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}
	cfg := s.pipelineConfig()
	return pipeline.NewExtractor(client, s.formatter, pipeline.ExtractorConfig{
		MaxTokens:   cfg.AnalysisMaxTokens,
		Temperature: cfg.Temperature,
	}), nil
}

func (s *Server) translator(provider string) (*pipeline.Translator, error) {
	client, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}
	cfg := s.pipelineConfig()
	return pipeline.NewTranslator(client, s.formatter, pipeline.TranslatorConfig{
		MaxTokens:           cfg.TranslationMax,
		Temperature:         cfg.Temperature,
		ContextChapters:     cfg.ContextChapters,
		ContextExcerptRunes: cfg.ContextExcerptRunes,
	}), nil
}
