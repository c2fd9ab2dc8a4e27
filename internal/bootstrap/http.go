package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/classpilot/classauth/config"
	httpx "github.com/classpilot/classauth/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config *config.AppConfig
	Stack  *AuthStack
	Logger *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil || cfg.Stack == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	secure := appCfg.HTTP.SecureCookies && !appCfg.IsDev
	handler := httpx.NewRouter(httpx.RouterServices{
		Issuer:   cfg.Stack.Issuer,
		Verifier: cfg.Stack.Verifier,
		Revoker:  cfg.Stack.Revoker,
		Flow:     cfg.Stack.Flow,
		Jar:      httpx.CookieJar{Domain: appCfg.HTTP.CookieDomain, Secure: secure},
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              appCfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer drains the server with a bounded grace period.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) {
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		if logger != nil {
			logger.Error("http server shutdown failed", "error", err)
		}
	}
}
