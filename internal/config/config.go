// Package config holds the tvmerge settings shared by the CLI and the MCP
// server: a YAML file layered over built-in defaults, then TVMERGE_*
// environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/tvmerge/aggregator"
	"github.com/erraggy/tvmerge/consolidator"
	"github.com/erraggy/tvmerge/exporter"
	"github.com/erraggy/tvmerge/merger"
	"github.com/erraggy/tvmerge/mergeerrors"
	"github.com/erraggy/tvmerge/pipeline"
	"github.com/erraggy/tvmerge/sanitizer"
)

// Config is the complete tvmerge configuration.
type Config struct {
	Merge       MergeConfig       `yaml:"merge"`
	Aggregate   AggregateConfig   `yaml:"aggregate"`
	Sanitize    SanitizeConfig    `yaml:"sanitize"`
	Consolidate ConsolidateConfig `yaml:"consolidate"`
	Export      ExportConfig      `yaml:"export"`
	Fetch       FetchConfig       `yaml:"fetch"`
	MCP         MCPConfig         `yaml:"mcp"`
}

// MergeConfig controls list reconciliation.
type MergeConfig struct {
	IdentityFields []string `yaml:"identity_fields"`
	IdentityMatch  string   `yaml:"identity_match"`
}

// AggregateConfig controls how sources are folded.
type AggregateConfig struct {
	ReplaceFields      []string `yaml:"replace_fields"`
	ProvenanceField    string   `yaml:"provenance_field"`
	RelativeRoots      []string `yaml:"relative_roots"`
	PruneFields        []string `yaml:"prune_fields"`
	RequiredSiteFields []string `yaml:"required_site_fields"`
	RepositoryMarkers  []string `yaml:"repository_markers"`
	LivesField         string   `yaml:"lives_field"`
}

// SanitizeConfig lists the label noise tokens.
type SanitizeConfig struct {
	GroupTokens   []string `yaml:"group_tokens"`
	ChannelTokens []string `yaml:"channel_tokens"`
	Placeholder   string   `yaml:"placeholder"`
	WidthFold     bool     `yaml:"width_fold"`
}

// ConsolidateConfig controls channel consolidation.
type ConsolidateConfig struct {
	Disabled            bool          `yaml:"disabled"`
	CatchAllGroup       string        `yaml:"catch_all_group"`
	LargeGroupThreshold int           `yaml:"large_group_threshold"`
	Workers             int           `yaml:"workers"`
	UnifyChannels       bool          `yaml:"unify_channels"`
	Exclude             ExcludeConfig `yaml:"exclude"`
}

// ExcludeConfig selects channels that keep their original pairing.
type ExcludeConfig struct {
	Enabled bool     `yaml:"enabled"`
	Numeric bool     `yaml:"numeric"`
	Markers []string `yaml:"markers"`
}

// ExportConfig sets the default export format.
type ExportConfig struct {
	Format string `yaml:"format"`
}

// FetchConfig controls remote playlist and source retrieval.
type FetchConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	UserAgent       string        `yaml:"user_agent"`
	MaxBytes        int64         `yaml:"max_bytes"`
	AllowPrivateIPs bool          `yaml:"allow_private_ips"`
}

// MCPConfig bounds what MCP clients may submit and how decoded inputs
// are cached between calls.
type MCPConfig struct {
	MaxInlineBytes int64         `yaml:"max_inline_bytes"`
	MaxSources     int           `yaml:"max_sources"`
	CacheEnabled   bool          `yaml:"cache_enabled"`
	CacheEntries   int           `yaml:"cache_entries"`
	FileTTL        time.Duration `yaml:"file_ttl"`
	URLTTL         time.Duration `yaml:"url_ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Merge: MergeConfig{
			IdentityFields: append([]string(nil), merger.DefaultIdentityFields...),
			IdentityMatch:  string(merger.MatchFieldScoped),
		},
		Aggregate: AggregateConfig{
			ReplaceFields:      append([]string(nil), aggregator.DefaultReplaceFields...),
			ProvenanceField:    "originalUrl",
			RelativeRoots:      []string{"sites"},
			PruneFields:        append([]string(nil), aggregator.DefaultPruneFields...),
			RequiredSiteFields: append([]string(nil), aggregator.DefaultRequiredSiteFields...),
			RepositoryMarkers:  append([]string(nil), aggregator.DefaultRepositoryMarkers...),
			LivesField:         pipeline.DefaultLivesField,
		},
		Sanitize: SanitizeConfig{
			GroupTokens:   append([]string(nil), sanitizer.DefaultGroupTokens...),
			ChannelTokens: append([]string(nil), sanitizer.DefaultChannelTokens...),
			Placeholder:   sanitizer.DefaultPlaceholder,
		},
		Consolidate: ConsolidateConfig{
			CatchAllGroup:       consolidator.DefaultCatchAllGroup,
			LargeGroupThreshold: consolidator.DefaultLargeGroupThreshold,
			Workers:             1,
			Exclude: ExcludeConfig{
				Numeric: true,
				Markers: []string{"第"},
			},
		},
		Export: ExportConfig{Format: string(exporter.FormatJSON)},
		Fetch: FetchConfig{
			Timeout:  30 * time.Second,
			MaxBytes: 10 << 20,
		},
		MCP: MCPConfig{
			MaxInlineBytes: 10 << 20,
			MaxSources:     50,
			CacheEnabled:   true,
			CacheEntries:   32,
			FileTTL:        15 * time.Minute,
			URLTTL:         5 * time.Minute,
			SweepInterval:  time.Minute,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown fields are rejected.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304 - path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.decode(data, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads YAML configuration from data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data, "config"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte, source string) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %w", &mergeerrors.ParseError{
			Source:  source,
			Format:  "yaml",
			Message: "invalid configuration",
			Cause:   err,
		})
	}
	return c.Validate()
}

// Validate checks values that the components would reject.
func (c *Config) Validate() error {
	switch {
	case len(c.Merge.IdentityFields) == 0:
		return configError("merge.identity_fields", c.Merge.IdentityFields, "at least one field is required")
	case !merger.IsValidIdentityMatch(c.Merge.IdentityMatch):
		return configError("merge.identity_match", c.Merge.IdentityMatch,
			fmt.Sprintf("expected one of %v", merger.ValidIdentityMatches()))
	case c.Sanitize.Placeholder == "":
		return configError("sanitize.placeholder", c.Sanitize.Placeholder, "must not be empty")
	case c.Consolidate.CatchAllGroup == "":
		return configError("consolidate.catch_all_group", c.Consolidate.CatchAllGroup, "must not be empty")
	case c.Consolidate.LargeGroupThreshold < 0:
		return configError("consolidate.large_group_threshold", c.Consolidate.LargeGroupThreshold, "must not be negative")
	case c.Consolidate.Workers < 0:
		return configError("consolidate.workers", c.Consolidate.Workers, "must not be negative")
	case c.Fetch.Timeout < 0:
		return configError("fetch.timeout", c.Fetch.Timeout, "must not be negative")
	case c.Fetch.MaxBytes < 0:
		return configError("fetch.max_bytes", c.Fetch.MaxBytes, "must not be negative")
	case c.MCP.MaxInlineBytes <= 0:
		return configError("mcp.max_inline_bytes", c.MCP.MaxInlineBytes, "must be positive")
	case c.MCP.MaxSources <= 0:
		return configError("mcp.max_sources", c.MCP.MaxSources, "must be positive")
	case c.MCP.CacheEnabled && c.MCP.CacheEntries <= 0:
		return configError("mcp.cache_entries", c.MCP.CacheEntries, "must be positive when the cache is enabled")
	}
	if _, err := exporter.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func configError(option string, value any, message string) error {
	return fmt.Errorf("config: %w", &mergeerrors.ConfigError{Option: option, Value: value, Message: message})
}
