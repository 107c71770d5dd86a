package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/config"
	"github.com/jnitin/flask-catalog/internal/handlers"
	"github.com/jnitin/flask-catalog/internal/middleware"
)

type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	log    zerolog.Logger
	cfg    *config.AppConfig
}

func NewHTTPServer(cfg *config.AppConfig, log zerolog.Logger, handlerSet handlers.HandlerSet) *HTTPServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	s := &HTTPServer{
		engine: NewEngine(cfg, log, handlerSet),
		server: srv,
		log:    log,
		cfg:    cfg,
	}
	srv.Handler = s.engine
	return s
}

// NewEngine builds the router with the shared middleware chain. Trailing
// slashes are significant for collection routes, so no redirects happen.
func NewEngine(cfg *config.AppConfig, log zerolog.Logger, handlerSet handlers.HandlerSet) *gin.Engine {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.AllowCORSOrigins),
	)
	engine.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, http.StatusNotFound, "Resource not found")
	})
	engine.NoMethod(func(c *gin.Context) {
		middleware.Abort(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	handlerSet.Register(engine)
	return engine
}

// Start serves until Shutdown. With tls.enabled the server terminates TLS
// itself using the configured certificate pair.
func (s *HTTPServer) Start() error {
	s.log.Info().
		Str("addr", s.server.Addr).
		Bool("tls", s.cfg.TLS.Enabled).
		Msg("http server starting")

	var err error
	if s.cfg.TLS.Enabled {
		err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	} else {
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}
