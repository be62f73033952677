package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/agent"
	"github.com/akarpov/telescout/internal/config"
)

// run starts the pollers, serves the demo endpoints, and blocks until the
// context is cancelled by a signal.
func run(ctx context.Context, cfg config.AgentConfig, a *agent.Agent, logger *zap.Logger) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(a *agent.Agent) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(correlation())
	r.Use(a.Middleware())

	r.GET("/ping", func(c *gin.Context) {
		if err := a.Ping(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "storage unreachable")
			return
		}
		c.String(http.StatusOK, "pong")
	})
	r.GET("/fail", func(c *gin.Context) {
		// Demonstrates the alert path end to end.
		c.String(http.StatusInternalServerError, "deliberate failure")
	})

	return r
}
