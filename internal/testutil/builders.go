package testutil

import (
	"github.com/brendan.keane/urlquery/internal/config"
)

// ConfigBuilder provides a fluent interface for building test configurations
type ConfigBuilder struct {
	config *config.Config
}

// NewConfigBuilder creates a new config builder starting from the defaults
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: config.NewConfig()}
}

// WithFormat sets the codec format
func (b *ConfigBuilder) WithFormat(format string) *ConfigBuilder {
	b.config.Format = format
	return b
}

// WithArrayFormat sets the array format of the brackets codec
func (b *ConfigBuilder) WithArrayFormat(format string) *ConfigBuilder {
	b.config.ArrayFormat = format
	return b
}

// WithAllowDots enables dot notation
func (b *ConfigBuilder) WithAllowDots() *ConfigBuilder {
	b.config.AllowDots = true
	return b
}

// WithSkipNulls drops nil values when stringifying
func (b *ConfigBuilder) WithSkipNulls() *ConfigBuilder {
	b.config.SkipNulls = true
	return b
}

// WithoutEncoding disables percent-encoding of output
func (b *ConfigBuilder) WithoutEncoding() *ConfigBuilder {
	b.config.Encode = false
	return b
}

// WithDecodeInput percent-decodes the whole query before parsing
func (b *ConfigBuilder) WithDecodeInput() *ConfigBuilder {
	b.config.DecodeInput = true
	return b
}

// WithRemoveTrailingSlash strips a trailing slash from base URLs
func (b *ConfigBuilder) WithRemoveTrailingSlash() *ConfigBuilder {
	b.config.RemoveTrailingSlash = true
	return b
}

// WithMerge sets the merge strategy
func (b *ConfigBuilder) WithMerge(strategy string) *ConfigBuilder {
	b.config.Merge = strategy
	return b
}

// WithQuery sets key=value query input
func (b *ConfigBuilder) WithQuery(pairs ...string) *ConfigBuilder {
	b.config.Query = pairs
	return b
}

// WithJSON sets JSON query input
func (b *ConfigBuilder) WithJSON(body string) *ConfigBuilder {
	b.config.JSON = body
	return b
}

// WithOutput sets the output format
func (b *ConfigBuilder) WithOutput(output string) *ConfigBuilder {
	b.config.Output = output
	return b
}

// Build returns a copy of the configured Config
func (b *ConfigBuilder) Build() *config.Config {
	cfg := *b.config
	cfg.Query = append([]string(nil), b.config.Query...)
	return &cfg
}

// Common pre-built configs for frequent test scenarios

// FlatConfig returns a configuration using the flat codec
func FlatConfig() *config.Config {
	return NewConfigBuilder().WithFormat(config.FormatFlat).Build()
}

// RawBracketsConfig returns a brackets configuration with unencoded output
func RawBracketsConfig() *config.Config {
	return NewConfigBuilder().WithoutEncoding().Build()
}
