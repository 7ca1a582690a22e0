// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes the tvmerge merge, consolidate and export operations as
// tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/tvmerge"
	"github.com/erraggy/tvmerge/internal/config"
	"github.com/erraggy/tvmerge/internal/fetch"
)

const serverInstructions = `tvmerge MCP server: merges TV-box catalog documents and consolidates their live-channel directories.

Inputs: every document is given as exactly one of file (local path), url (http/https) or content (inline JSON, YAML, M3U or "#genre#" text).

Configuration comes from the --config file passed to "tvmerge mcp", then TVMERGE_* environment variables set in your MCP client config.

Key settings:
- TVMERGE_MCP_MAX_SOURCES (default: 50): most documents one merge call accepts
- TVMERGE_MCP_MAX_INLINE_BYTES (default: 10MiB): largest inline content
- TVMERGE_MCP_CACHE_ENABLED (default: true): cache fetched files and URLs per session
- TVMERGE_MCP_URL_TTL (default: 5m), TVMERGE_MCP_FILE_TTL (default: 15m)
- TVMERGE_ALLOW_PRIVATE_IPS (default: false): allow URLs on private networks
- TVMERGE_EXPORT_FORMAT (default: json): default directory format

Caching: file entries are keyed by path and modification time, URL entries by URL. A background sweeper removes expired entries.`

// toolServer carries the configuration shared by every tool handler.
type toolServer struct {
	cfg     *config.Config
	fetcher *fetch.Fetcher
	cache   *inputCache
}

func newToolServer(cfg *config.Config) *toolServer {
	s := &toolServer{
		cfg:     cfg,
		fetcher: cfg.Fetcher(true),
	}
	if cfg.MCP.CacheEnabled {
		s.cache = newInputCache(cfg.MCP.CacheEntries)
	}
	return s
}

// Run starts the MCP server over stdio and blocks until the client
// disconnects or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("mcpserver: %w", err)
	}
	s := newToolServer(cfg)
	if s.cache != nil {
		s.cache.startSweeper(ctx, cfg.MCP.SweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "tvmerge", Version: tvmerge.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server, s)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server, s *toolServer) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge",
		Description: "Merge TV-box catalog documents in order. Later sources win conflicting scalar fields; lists are unioned by element identity (key, id, name). An optional override is applied last and replaces its lives field outright. Sites missing key, name, api or type are dropped and noise fields are pruned. The live directory is then validated, referenced .m3u/.txt playlists optionally fetched (fetch_playlists), labels sanitized and URLs consolidated by majority vote. Index documents that only list other catalogs can be expanded with expand=true. Use output to write to a file instead of returning the document inline.",
	}, s.handleMerge)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "consolidate",
		Description: "Consolidate a live-channel directory so every stream URL appears under exactly one channel of one group. Each URL goes to the group and channel label it appears under most often (ties: shorter label, then lexicographic). Groups holding a single channel of the same name move to the catch-all group. Input may be a JSON/YAML group list, a catalog with a lives field, or an M3U/text playlist. Output format: json, yaml, m3u or txt.",
	}, s.handleConsolidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export",
		Description: "Convert a live-channel directory between formats (json, yaml, m3u, txt) without consolidating or reordering it. Input may be a JSON/YAML group list, a catalog with a lives field, or an M3U/text playlist.",
	}, s.handleExport)
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// pathPattern matches absolute filesystem paths, which are stripped from
// error messages so the server does not leak its directory layout.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
