package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cvscore/internal/config"
	"cvscore/internal/lexicon"
	"cvscore/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const shutdownTimeout = 30 * time.Second

// Start runs the HTTP server until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	if err := s.initializeVault(); err != nil {
		return err
	}

	if err := s.startLexiconWatcher(om); err != nil {
		s.stopBackgroundTasks()
		return err
	}

	httpServer := s.setupHTTPServer(om)

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	om, err := observability.NewObservabilityManager(
		observability.GetObservabilityConfig(s.AppConfig, s.Version), s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	s.om = om
	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// initializeVault loads API keys from Vault and starts polling for new versions
func (s *Server) initializeVault() error {
	client, err := config.ApplyVaultSecrets(s.AppConfig, s.Logger)
	if err != nil {
		return err
	}
	if client == nil {
		return nil
	}
	s.VaultClient = client
	s.apiKeys.Replace(s.AppConfig.Server.APIKeys)

	path := s.AppConfig.Vault.Secrets.APIKeys
	if path == "" || s.AppConfig.Vault.PollInterval <= 0 {
		return nil
	}

	var initialVersion int64
	if secret, err := client.GetSecretV2(path); err == nil {
		initialVersion = secret.Version
	}

	s.KeyWatcher = NewAPIKeyWatcher(client, path, s.AppConfig.Vault.PollInterval, initialVersion, s.applyAPIKeys, s.Logger)
	return s.KeyWatcher.Start()
}

// applyAPIKeys installs a refreshed key list; empty lists keep the current keys
func (s *Server) applyAPIKeys(keys []string, err error) {
	if err != nil {
		return
	}
	if len(keys) == 0 {
		s.Logger.Warn("Vault API key secret is empty, keeping current keys")
		return
	}
	s.apiKeys.Replace(keys)
	s.Logger.Info("API keys refreshed from Vault", "count", s.apiKeys.Len())
}

// startLexiconWatcher hot-reloads the external lexicon file when enabled
func (s *Server) startLexiconWatcher(om *observability.ObservabilityManager) error {
	analysisCfg := s.AppConfig.Analysis
	if !analysisCfg.WatchLexicon || analysisCfg.LexiconFile == "" {
		return nil
	}

	onReload := func(lex *lexicon.Lexicon, err error) {
		attrs := []attribute.KeyValue{attribute.String("file", analysisCfg.LexiconFile)}
		if lex != nil {
			attrs = append(attrs, attribute.String("version", lex.Version))
		}
		om.GetMetrics().RecordBusinessMetric(context.Background(), observability.MetricLexiconReloaded, err == nil, om, attrs...)
	}

	watcher, err := lexicon.NewWatcher(analysisCfg.LexiconFile, s.Lexicons, analysisCfg.WatchDebounce, onReload, s.Logger)
	if err != nil {
		return fmt.Errorf("failed to create lexicon watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start lexicon watcher: %w", err)
	}
	s.LexiconWatcher = watcher
	return nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler(om *observability.ObservabilityManager) http.Handler {
	return om.HTTPMiddleware()(s.setupRoutes(om))
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:           s.Handler(om),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}
}

// startWithGracefulShutdown serves until ctx is done or the listener fails
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.stopBackgroundTasks()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.stopBackgroundTasks()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// stopBackgroundTasks stops the watchers and the rate limiter sweeper
func (s *Server) stopBackgroundTasks() {
	if s.LexiconWatcher != nil {
		if err := s.LexiconWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop lexicon watcher")
		}
	}
	if s.KeyWatcher != nil {
		if err := s.KeyWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop API key watcher")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
