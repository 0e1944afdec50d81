package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/internal/values"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

const (
	serverName    = "urlq"
	serverVersion = "1.0.0"
)

// Server exposes parse, stringify and update as MCP tools over stdio
type Server struct {
	logger zerolog.Logger
	config *config.Config
	inst   *urlquery.Instance
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server
func NewServer(logger zerolog.Logger, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMCP, "invalid configuration for MCP server")
	}

	s := &Server{
		logger: logger.With().Str("component", "mcp_server").Logger(),
		config: cfg,
	}
	s.inst = cfg.Instance(s.logger)

	opts := []server.ServerOption{server.WithToolCapabilities(false)}
	if cfg.MCP.Description != "" {
		opts = append(opts, server.WithInstructions(cfg.MCP.Description))
	}
	s.mcp = server.NewMCPServer(serverName, serverVersion, opts...)
	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	urlArg := mcp.WithString("url",
		mcp.Required(),
		mcp.Description("URL or path, optionally with a query string"),
	)
	slashArg := mcp.WithBoolean("remove_trailing_slash",
		mcp.Description("Strip a trailing '/' from the base URL"),
	)

	s.mcp.AddTool(mcp.NewTool("parse_url",
		mcp.WithDescription("Split a URL into its base and its decoded query parameters."),
		urlArg,
		slashArg,
	), s.handleParse)

	s.mcp.AddTool(mcp.NewTool("stringify_url",
		mcp.WithDescription("Replace the query of a URL with the given parameters. Existing parameters are dropped; empty parameters produce a URL with no '?'."),
		urlArg,
		mcp.WithObject("query", mcp.Description("Query parameters; values may be strings, numbers, booleans, null, arrays or objects")),
		slashArg,
	), s.handleStringify)

	s.mcp.AddTool(mcp.NewTool("update_url",
		mcp.WithDescription("Merge parameters into the query of a URL. Returns the base URL, the merged parameters and the recomposed URL. A null value keeps the key with a null value."),
		urlArg,
		mcp.WithObject("query", mcp.Description("Query parameters to merge over the existing ones")),
		slashArg,
	), s.handleUpdate)
}

// Start serves MCP requests on stdin/stdout until stdin closes
func (s *Server) Start() error {
	s.logger.Debug().Msg("MCP server started, reading from stdin")
	if err := server.ServeStdio(s.mcp); err != nil {
		return errors.Wrap(err, errors.ErrorTypeMCP, "MCP server stopped with error")
	}
	s.logger.Debug().Msg("MCP server stopped")
	return nil
}

// callOptions maps optional tool arguments onto per-call options
func callOptions(request mcp.CallToolRequest) []urlquery.Option {
	var opts []urlquery.Option
	if _, ok := request.GetArguments()["remove_trailing_slash"]; ok {
		opts = append(opts, urlquery.RemoveTrailingSlash(request.GetBool("remove_trailing_slash", false)))
	}
	return opts
}

// queryArgument reads the optional "query" object
func queryArgument(request mcp.CallToolRequest) (urlquery.Query, error) {
	raw, ok := request.GetArguments()["query"]
	if !ok || raw == nil {
		return urlquery.Query{}, nil
	}
	m, ok := values.AsMap(raw)
	if !ok {
		return nil, errors.New(errors.ErrorTypeValidation, "query must be an object").
			WithContext("field", "query")
	}
	return urlquery.Query(m), nil
}

func (s *Server) handleParse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	parsed, err := s.inst.Parse(rawURL, callOptions(request)...)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", rawURL).Msg("parse_url failed")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}
	return jsonResult(parsed)
}

func (s *Server) handleStringify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := queryArgument(request)
	if err != nil {
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	out, err := s.inst.Stringify(rawURL, query, callOptions(request)...)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", rawURL).Msg("stringify_url failed")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}
	return jsonResult(map[string]string{"url": out})
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := queryArgument(request)
	if err != nil {
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	opts := callOptions(request)
	updated, err := s.inst.Update(rawURL, query, opts...)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", rawURL).Msg("update_url failed")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}
	out, err := s.inst.Stringify(updated.BaseURL, updated.QueryParams, opts...)
	if err != nil {
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	return jsonResult(struct {
		urlquery.URLWithQueryParams
		URL string `json:"url"`
	}{updated, out})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMCP, "failed to encode tool result")
	}
	return mcp.NewToolResultText(string(body)), nil
}
