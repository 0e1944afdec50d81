package config

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/pkg/codec"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// Codec formats
const (
	FormatFlat     = "flat"
	FormatBrackets = "brackets"
)

// Merge strategies for update
const (
	MergeDeep    = "deep"
	MergeKeep    = "keep"
	MergeReplace = "replace"
)

// Output formats
const (
	OutputJSON   = "json"
	OutputPretty = "pretty"
	OutputURL    = "url"
)

var (
	validFormats      = []string{FormatFlat, FormatBrackets}
	validArrayFormats = []string{
		string(codec.ArrayBrackets),
		string(codec.ArrayIndices),
		string(codec.ArrayRepeat),
		string(codec.ArrayComma),
	}
	validMerges  = []string{MergeDeep, MergeKeep, MergeReplace}
	validOutputs = []string{OutputJSON, OutputPretty, OutputURL}
)

// Config holds all application configuration
type Config struct {
	// Codec settings
	Format      string
	ArrayFormat string
	AllowDots   bool
	SkipNulls   bool
	Encode      bool
	DecodeInput bool // percent-decode the whole query before parsing

	// URL policy
	RemoveTrailingSlash bool
	Merge               string

	// Query input
	Query []string // key=value pairs from -q
	JSON  string   // JSON object from --json

	Output  string
	Verbose bool
	Debug   bool

	MCP MCPConfig
}

// MCPConfig holds MCP-specific configuration
type MCPConfig struct {
	Description string // Server description for LLM context
}

// contextKey is a custom type for context keys
type contextKey string

// configKey is the context key for storing config
const configKey contextKey = "config"

// WithConfig adds config to context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) (*Config, bool) {
	if ctx == nil {
		return nil, false
	}
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok
}

// NewConfig creates a Config with default values
func NewConfig() *Config {
	return &Config{
		Format:      FormatBrackets,
		ArrayFormat: string(codec.ArrayBrackets),
		Encode:      true,
		Merge:       MergeDeep,
		Output:      OutputJSON,
	}
}

// RegisterFlags declares every flag LoadFromFlags reads
func RegisterFlags(flags *pflag.FlagSet) {
	d := NewConfig()
	flags.String("format", d.Format, "Query codec (flat, brackets)")
	flags.String("array-format", d.ArrayFormat, "Array format for the brackets codec (brackets, indices, repeat, comma)")
	flags.Bool("allow-dots", false, "Read and write nested keys with dot notation (brackets codec)")
	flags.Bool("skip-nulls", false, "Omit null values when stringifying")
	flags.Bool("encode", d.Encode, "Percent-encode keys and values when stringifying (brackets codec)")
	flags.Bool("decode", false, "Percent-decode the whole query string before parsing")
	flags.Bool("remove-trailing-slash", false, "Strip a trailing '/' from the base URL")
	flags.String("merge", d.Merge, "Merge strategy for update (deep, keep, replace)")
	flags.StringArrayP("query", "q", []string{}, "Query parameter as key=value; 'key' alone sets null (can be used multiple times)")
	flags.String("json", "", "Query parameters as a JSON object")
	flags.StringP("output", "o", d.Output, "Output format (json, pretty, url)")
	flags.BoolP("verbose", "v", false, "Verbose logging")
	flags.Bool("debug", false, "Debug logging with caller information")
	flags.String("mcp-desc", "", "Server description for the MCP server")
}

// LoadFromFlags creates a Config from command line flags
func LoadFromFlags(flags *pflag.FlagSet) (*Config, error) {
	config := NewConfig()

	var err error

	if config.Format, err = flags.GetString("format"); err != nil {
		return nil, flagError(err, "format")
	}
	if !flags.Changed("format") {
		if v := os.Getenv("URLQ_FORMAT"); v != "" {
			config.Format = v
		}
	}

	if config.ArrayFormat, err = flags.GetString("array-format"); err != nil {
		return nil, flagError(err, "array-format")
	}
	if !flags.Changed("array-format") {
		if v := os.Getenv("URLQ_ARRAY_FORMAT"); v != "" {
			config.ArrayFormat = v
		}
	}

	if config.AllowDots, err = flags.GetBool("allow-dots"); err != nil {
		return nil, flagError(err, "allow-dots")
	}

	if config.SkipNulls, err = flags.GetBool("skip-nulls"); err != nil {
		return nil, flagError(err, "skip-nulls")
	}

	if config.Encode, err = flags.GetBool("encode"); err != nil {
		return nil, flagError(err, "encode")
	}

	if config.DecodeInput, err = flags.GetBool("decode"); err != nil {
		return nil, flagError(err, "decode")
	}

	if config.RemoveTrailingSlash, err = flags.GetBool("remove-trailing-slash"); err != nil {
		return nil, flagError(err, "remove-trailing-slash")
	}

	if config.Merge, err = flags.GetString("merge"); err != nil {
		return nil, flagError(err, "merge")
	}
	if !flags.Changed("merge") {
		if v := os.Getenv("URLQ_MERGE"); v != "" {
			config.Merge = v
		}
	}

	if config.Query, err = flags.GetStringArray("query"); err != nil {
		return nil, flagError(err, "query")
	}

	if config.JSON, err = flags.GetString("json"); err != nil {
		return nil, flagError(err, "json")
	}

	if config.Output, err = flags.GetString("output"); err != nil {
		return nil, flagError(err, "output")
	}

	if config.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, flagError(err, "verbose")
	}

	if config.Debug, err = flags.GetBool("debug"); err != nil {
		return nil, flagError(err, "debug")
	}

	if config.MCP.Description, err = flags.GetString("mcp-desc"); err != nil {
		return nil, flagError(err, "mcp-desc")
	}
	if config.MCP.Description == "" {
		config.MCP.Description = os.Getenv("URLQ_MCP_DESCRIPTION")
	}

	config.Format = strings.ToLower(strings.TrimSpace(config.Format))
	config.ArrayFormat = strings.ToLower(strings.TrimSpace(config.ArrayFormat))
	config.Merge = strings.ToLower(strings.TrimSpace(config.Merge))
	config.Output = strings.ToLower(strings.TrimSpace(config.Output))

	return config, nil
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if !slices.Contains(validFormats, c.Format) {
		return errors.New(errors.ErrorTypeConfig, "unknown query format").
			WithContext("flag", "format").
			WithContext("value", c.Format).
			WithContext("valid", validFormats)
	}

	if !slices.Contains(validArrayFormats, c.ArrayFormat) {
		return errors.New(errors.ErrorTypeConfig, "unknown array format").
			WithContext("flag", "array-format").
			WithContext("value", c.ArrayFormat).
			WithContext("valid", validArrayFormats)
	}

	if c.AllowDots && c.Format != FormatBrackets {
		return errors.New(errors.ErrorTypeConfig, "dot notation requires the brackets format").
			WithContext("flag", "allow-dots").
			WithContext("suggestion", "add --format brackets")
	}

	if !slices.Contains(validMerges, c.Merge) {
		return errors.New(errors.ErrorTypeConfig, "unknown merge strategy").
			WithContext("flag", "merge").
			WithContext("value", c.Merge).
			WithContext("valid", validMerges)
	}

	if !slices.Contains(validOutputs, c.Output) {
		return errors.New(errors.ErrorTypeConfig, "unknown output format").
			WithContext("flag", "output").
			WithContext("value", c.Output).
			WithContext("valid", validOutputs)
	}

	return nil
}

// flagError reports a flag that could not be read from the flag set
func flagError(err error, name string) error {
	return errors.Wrapf(err, errors.ErrorTypeConfig, "failed to get %s flag", name).
		WithContext("flag", name)
}

// Codec builds the query codec described by the configuration
func (c *Config) Codec() urlquery.Codec {
	var qc urlquery.Codec
	switch c.Format {
	case FormatFlat:
		qc = codec.Flat{SkipNulls: c.SkipNulls}
	default:
		qc = codec.Brackets{
			ArrayFormat: codec.ArrayFormat(c.ArrayFormat),
			AllowDots:   c.AllowDots,
			SkipNulls:   c.SkipNulls,
			Encode:      c.Encode,
		}
	}

	if c.DecodeInput {
		qc = codec.Decoded(qc)
	}
	return qc
}

// MergeFunc returns the merge policy selected by Merge
func (c *Config) MergeFunc() urlquery.MergeFunc {
	switch c.Merge {
	case MergeKeep:
		return urlquery.Reverse(urlquery.DeepMerge)
	case MergeReplace:
		return urlquery.ShallowMerge
	default:
		return urlquery.DeepMerge
	}
}

// Instance builds a urlquery instance from the configuration
func (c *Config) Instance(logger zerolog.Logger) *urlquery.Instance {
	return urlquery.New(c.Codec(),
		urlquery.RemoveTrailingSlash(c.RemoveTrailingSlash),
		urlquery.WithMergeQuery(c.MergeFunc()),
		urlquery.WithLogger(logger),
	)
}
