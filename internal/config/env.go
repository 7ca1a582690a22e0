package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/tvmerge/exporter"
	"github.com/erraggy/tvmerge/merger"
)

// Environment variables read by ApplyEnv.
const (
	EnvIdentityFields      = "TVMERGE_IDENTITY_FIELDS"
	EnvIdentityMatch       = "TVMERGE_IDENTITY_MATCH"
	EnvProvenanceField     = "TVMERGE_PROVENANCE_FIELD"
	EnvReplaceFields       = "TVMERGE_REPLACE_FIELDS"
	EnvGroupTokens         = "TVMERGE_GROUP_TOKENS"
	EnvChannelTokens       = "TVMERGE_CHANNEL_TOKENS"
	EnvWidthFold           = "TVMERGE_WIDTH_FOLD"
	EnvConsolidate         = "TVMERGE_CONSOLIDATE"
	EnvCatchAllGroup       = "TVMERGE_CATCH_ALL_GROUP"
	EnvLargeGroupThreshold = "TVMERGE_LARGE_GROUP_THRESHOLD"
	EnvWorkers             = "TVMERGE_WORKERS"
	EnvExclude             = "TVMERGE_EXCLUDE"
	EnvUnifyChannels       = "TVMERGE_UNIFY_CHANNELS"
	EnvExportFormat        = "TVMERGE_EXPORT_FORMAT"
	EnvFetchTimeout        = "TVMERGE_FETCH_TIMEOUT"
	EnvMaxBytes            = "TVMERGE_MAX_BYTES"
	EnvAllowPrivateIPs     = "TVMERGE_ALLOW_PRIVATE_IPS"
	EnvMCPMaxInlineBytes   = "TVMERGE_MCP_MAX_INLINE_BYTES"
	EnvMCPMaxSources       = "TVMERGE_MCP_MAX_SOURCES"
	EnvMCPCacheEnabled     = "TVMERGE_MCP_CACHE_ENABLED"
	EnvMCPCacheEntries     = "TVMERGE_MCP_CACHE_ENTRIES"
	EnvMCPFileTTL          = "TVMERGE_MCP_FILE_TTL"
	EnvMCPURLTTL           = "TVMERGE_MCP_URL_TTL"
)

// ApplyEnv overrides c with TVMERGE_* environment variables. Invalid
// values log a warning and leave the current setting in place.
func (c *Config) ApplyEnv() {
	c.Merge.IdentityFields = envList(EnvIdentityFields, c.Merge.IdentityFields)
	c.Merge.IdentityMatch = envChoice(EnvIdentityMatch, c.Merge.IdentityMatch, merger.IsValidIdentityMatch)
	c.Aggregate.ProvenanceField = envString(EnvProvenanceField, c.Aggregate.ProvenanceField)
	c.Aggregate.ReplaceFields = envList(EnvReplaceFields, c.Aggregate.ReplaceFields)
	c.Sanitize.GroupTokens = envList(EnvGroupTokens, c.Sanitize.GroupTokens)
	c.Sanitize.ChannelTokens = envList(EnvChannelTokens, c.Sanitize.ChannelTokens)
	c.Sanitize.WidthFold = envBool(EnvWidthFold, c.Sanitize.WidthFold)
	c.Consolidate.Disabled = !envBool(EnvConsolidate, !c.Consolidate.Disabled)
	c.Consolidate.CatchAllGroup = envString(EnvCatchAllGroup, c.Consolidate.CatchAllGroup)
	c.Consolidate.LargeGroupThreshold = envInt(EnvLargeGroupThreshold, c.Consolidate.LargeGroupThreshold)
	c.Consolidate.Workers = envInt(EnvWorkers, c.Consolidate.Workers)
	c.Consolidate.Exclude.Enabled = envBool(EnvExclude, c.Consolidate.Exclude.Enabled)
	c.Consolidate.UnifyChannels = envBool(EnvUnifyChannels, c.Consolidate.UnifyChannels)
	c.Export.Format = envChoice(EnvExportFormat, c.Export.Format, func(v string) bool {
		_, err := exporter.ParseFormat(v)
		return err == nil
	})
	c.Fetch.Timeout = envDuration(EnvFetchTimeout, c.Fetch.Timeout)
	c.Fetch.MaxBytes = int64(envInt(EnvMaxBytes, int(c.Fetch.MaxBytes)))
	c.Fetch.AllowPrivateIPs = envBool(EnvAllowPrivateIPs, c.Fetch.AllowPrivateIPs)
	c.MCP.MaxInlineBytes = int64(envInt(EnvMCPMaxInlineBytes, int(c.MCP.MaxInlineBytes)))
	c.MCP.MaxSources = envInt(EnvMCPMaxSources, c.MCP.MaxSources)
	c.MCP.CacheEnabled = envBool(EnvMCPCacheEnabled, c.MCP.CacheEnabled)
	c.MCP.CacheEntries = envInt(EnvMCPCacheEntries, c.MCP.CacheEntries)
	c.MCP.FileTTL = envDuration(EnvMCPFileTTL, c.MCP.FileTTL)
	c.MCP.URLTTL = envDuration(EnvMCPURLTTL, c.MCP.URLTTL)
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}

// envList splits a comma-separated variable, dropping blank items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		slog.Warn("empty list env var, using default", "key", key, "value", v) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return out
}

func envChoice(key, fallback string, valid func(string) bool) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if !valid(v) {
		slog.Warn("invalid env var value, ignoring", "key", key, "value", v) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return v
}
