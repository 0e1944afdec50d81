package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/mcp"
)

// MCPHandler handles MCP server commands
type MCPHandler struct {
	logger zerolog.Logger
}

// NewMCPHandler creates a new MCP command handler
func NewMCPHandler(logger zerolog.Logger) *MCPHandler {
	return &MCPHandler{
		logger: logger.With().Str("handler", "mcp").Logger(),
	}
}

// Execute handles the MCP server command
func (h *MCPHandler) Execute(cmd *cobra.Command, args []string) error {
	// Get config from context (already loaded in main.go)
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		// Fallback to loading from flags
		var err error
		cfg, err = config.LoadFromFlags(cmd.Flags())
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to load configuration")
			return err
		}
	}

	h.logger.Debug().
		Str("format", cfg.Format).
		Str("merge", cfg.Merge).
		Bool("description", cfg.MCP.Description != "").
		Msg("starting MCP server")

	server, err := mcp.NewServer(h.logger, cfg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create MCP server")
		return err
	}

	h.logger.Debug().Msg("MCP server created, starting message loop")

	return server.Start()
}
