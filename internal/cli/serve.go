package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/gateway"
)

// ServeHandler runs the Lambda gateway handler on a local HTTP listener
type ServeHandler struct {
	logger zerolog.Logger
}

// NewServeHandler creates a new serve command handler
func NewServeHandler(logger zerolog.Logger) *ServeHandler {
	return &ServeHandler{
		logger: logger.With().Str("handler", "serve").Logger(),
	}
}

// Execute listens on --addr until the command context is cancelled. Metrics
// are served from a private registry on /metrics.
func (h *ServeHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		var err error
		cfg, err = config.LoadFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	handler, err := gateway.NewHandler(h.logger, cfg, gateway.WithMetrics(gateway.NewMetrics(reg)))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           gateway.Router(handler, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := cmd.Context()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	h.logger.Info().Str("addr", addr).Msg("serving gateway over HTTP")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
