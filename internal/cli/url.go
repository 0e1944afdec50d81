package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/internal/logger"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// URLHandler handles the parse, stringify and update commands
type URLHandler struct {
	logger zerolog.Logger
}

// NewURLHandler creates a new URL command handler
func NewURLHandler(logger zerolog.Logger) *URLHandler {
	return &URLHandler{
		logger: logger.With().Str("handler", "url").Logger(),
	}
}

// prepare loads and validates configuration and builds the instance
func (h *URLHandler) prepare(cmd *cobra.Command, args []string, operation string) (*config.Config, *urlquery.Instance, zerolog.Logger, error) {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		var err error
		cfg, err = config.LoadFromFlags(cmd.Flags())
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to load configuration")
			return nil, nil, h.logger, err
		}
	}

	if err := cfg.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("configuration validation failed")
		return nil, nil, h.logger, err
	}

	if len(args) == 0 {
		return nil, nil, h.logger, errors.New(errors.ErrorTypeValidation, "a URL argument is required").
			WithContext("field", "url").
			WithContext("suggestion", fmt.Sprintf("urlq %s 'https://example.com/path?a=1'", operation))
	}

	log := logger.ForOperation(h.logger, operation, args[0])
	log.Debug().
		Str("format", cfg.Format).
		Str("merge", cfg.Merge).
		Bool("remove_trailing_slash", cfg.RemoveTrailingSlash).
		Msg("processing URL command")

	return cfg, cfg.Instance(log), log, nil
}

// ExecuteParse handles the parse command
func (h *URLHandler) ExecuteParse(cmd *cobra.Command, args []string) error {
	cfg, inst, log, err := h.prepare(cmd, args, "parse")
	if err != nil {
		return err
	}

	parsed, err := inst.Parse(args[0])
	if err != nil {
		log.Error().Err(err).Msg("failed to parse URL")
		return err
	}

	return writeURL(cmd.OutOrStdout(), cfg, inst, "parse", parsed)
}

// ExecuteStringify handles the stringify command
func (h *URLHandler) ExecuteStringify(cmd *cobra.Command, args []string) error {
	cfg, inst, log, err := h.prepare(cmd, args, "stringify")
	if err != nil {
		return err
	}

	query, err := BuildQuery(cfg.Query, cfg.JSON)
	if err != nil {
		return err
	}

	out, err := inst.Stringify(args[0], query)
	if err != nil {
		log.Error().Err(err).Msg("failed to stringify URL")
		return err
	}

	if cfg.Output == config.OutputJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"url": out})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// ExecuteUpdate handles the update command
func (h *URLHandler) ExecuteUpdate(cmd *cobra.Command, args []string) error {
	cfg, inst, log, err := h.prepare(cmd, args, "update")
	if err != nil {
		return err
	}

	query, err := BuildQuery(cfg.Query, cfg.JSON)
	if err != nil {
		return err
	}

	updated, err := inst.Update(args[0], query)
	if err != nil {
		log.Error().Err(err).Msg("failed to update URL")
		return err
	}

	return writeURL(cmd.OutOrStdout(), cfg, inst, "update", updated)
}
