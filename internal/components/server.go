package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ServerComponent exposes /metrics and /health while the pipeline runs.
type ServerComponent struct {
	addr    string
	metrics *MetricsComponent
	logger  *slog.Logger
	server  *http.Server
	bound   string
}

func NewServerComponent(addr string, metrics *MetricsComponent, logger *slog.Logger) *ServerComponent {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServerComponent{
		addr:    addr,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *ServerComponent) Name() string {
	return ServerComponentName
}

func (c *ServerComponent) Dependencies() []string {
	return []string{MetricsComponentName}
}

func (c *ServerComponent) Validate() error {
	if c.addr == "" {
		return fmt.Errorf("server: listen address is required")
	}
	if c.metrics == nil {
		return fmt.Errorf("server: metrics component is required")
	}
	return nil
}

func (c *ServerComponent) Initialize(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.metrics.Metrics().Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	ln, err := net.Listen("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("server: failed to listen on %s: %w", c.addr, err)
	}
	c.bound = ln.Addr().String()

	c.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := c.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("Metrics server stopped", "error", err)
		}
	}()

	c.logger.Info("Metrics server listening", "addr", c.bound)
	return nil
}

// Addr is the bound listen address, useful when configured with port 0.
func (c *ServerComponent) Addr() string {
	return c.bound
}

func (c *ServerComponent) Close(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.server.Shutdown(shutdownCtx)
}
