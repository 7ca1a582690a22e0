package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/internal/config"
)

const (
	sourceA = `{
  "spider": "a.jar",
  "sites": [
    {"key": "s1", "name": "Site 1", "api": "csp_A", "type": 3},
    {"key": "broken", "name": "No API"}
  ],
  "lives": [
    {"group": "央视", "channels": [{"name": "CCTV1", "urls": ["http://a"]}]}
  ]
}`
	sourceB = `{
  "spider": "b.jar",
  "lives": [
    {"group": "央视频道", "channels": [{"name": "CCTV1", "urls": ["http://a", "http://b"]}]}
  ]
}`
	livesJSON = `[
  {"group": "央视", "channels": [
    {"name": "CCTV1", "urls": ["http://a"]},
    {"name": "CCTV2", "urls": ["http://b"]}
  ]},
  {"group": "卫视", "channels": [{"name": "CCTV1", "urls": ["http://a"]}]},
  {"group": "央视", "channels": [{"name": "CCTV1", "urls": ["http://a"]}]},
  {"group": "MovieX", "channels": [{"name": "MovieX", "urls": ["http://m"]}]}
]`
)

func TestIntegration_ListTools(t *testing.T) {
	session := startTestSession(t, testServer(t, nil))

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Tools, 3)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, "tool %q has empty description", tool.Name)
	}
	for _, name := range []string{"merge", "consolidate", "export"} {
		assert.True(t, slices.Contains(names, name), "missing tool: %s", name)
	}
}

func TestIntegration_Merge(t *testing.T) {
	session := startTestSession(t, testServer(t, nil))

	result := callTool(t, session, "merge", map[string]any{
		"sources": []any{
			map[string]any{"content": sourceA},
			map[string]any{"content": sourceB},
		},
	})
	require.False(t, result.IsError)

	out := unmarshalStructured(t, result)
	assert.Equal(t, float64(2), out["source_count"])
	assert.Equal(t, float64(2), out["merged"])
	assert.Equal(t, float64(1), out["groups"])
	assert.Equal(t, float64(1), out["channels"])
	assert.Equal(t, float64(2), out["urls"])
	assert.Positive(t, out["warning_count"])
	assert.Contains(t, out["summary"], "Merged 2 sources into 1 group, 1 channel and 2 URLs.")

	doc, err := document.Parse([]byte(out["document"].(string)))
	require.NoError(t, err)
	spider, _ := doc.GetString("spider")
	assert.Equal(t, "b.jar", spider)
	sites, _ := doc.Get("sites")
	assert.Equal(t, 1, sites.Len())
}

func TestIntegration_Merge_OverrideYAML(t *testing.T) {
	session := startTestSession(t, testServer(t, nil))

	result := callTool(t, session, "merge", map[string]any{
		"sources":  []any{map[string]any{"content": sourceA}},
		"override": map[string]any{"content": "lives:\n  - group: Local\n    channels:\n      - name: L1\n        urls: [http://l]\n"},
		"format":   "yaml",
	})
	require.False(t, result.IsError)

	out := unmarshalStructured(t, result)
	assert.Equal(t, []any{"lives"}, out["replaced"])
	assert.Equal(t, float64(1), out["groups"])
	assert.Contains(t, out["document"], "group: Local")
}

func TestIntegration_Merge_OutputFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", sourceA)
	outPath := filepath.Join(dir, "merged.json")
	session := startTestSession(t, testServer(t, nil))

	result := callTool(t, session, "merge", map[string]any{
		"sources": []any{map[string]any{"file": a}},
		"output":  outPath,
	})
	require.False(t, result.IsError)

	out := unmarshalStructured(t, result)
	assert.Equal(t, outPath, out["written_to"])
	assert.Nil(t, out["document"])

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	result = callTool(t, session, "merge", map[string]any{
		"sources": []any{map[string]any{"file": a}},
		"output":  a,
	})
	assert.Contains(t, errorText(t, result), "would overwrite input")
}

func TestIntegration_Merge_Expand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a.json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(sourceA)) })
	mux.HandleFunc("/b.json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(sourceB)) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	index := fmt.Sprintf(`{"urls": [{"url": "%s/a.json"}, {"url": "%s/b.json"}, {"url": "%s/missing.json"}]}`, srv.URL, srv.URL, srv.URL)
	session := startTestSession(t, testServer(t, func(c *config.Config) { c.Fetch.AllowPrivateIPs = true }))

	result := callTool(t, session, "merge", map[string]any{
		"sources": []any{map[string]any{"content": index}},
		"expand":  true,
	})
	require.False(t, result.IsError)

	out := unmarshalStructured(t, result)
	assert.Equal(t, float64(2), out["source_count"])
	warnings, _ := out["warnings"].([]any)
	found := slices.ContainsFunc(warnings, func(w any) bool {
		text, _ := w.(string)
		return strings.Contains(text, "missing.json") && strings.Contains(text, "404")
	})
	assert.True(t, found, "missing fetch warning in %v", warnings)
}

func TestIntegration_Merge_FetchPlaylists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("卫视,#genre#\n湖南卫视,http://hn\n"))
	}))
	defer srv.Close()

	catalog := fmt.Sprintf(`{"lives": [{"name": "remote", "url": "%s/lives.txt"}]}`, srv.URL)
	session := startTestSession(t, testServer(t, func(c *config.Config) { c.Fetch.AllowPrivateIPs = true }))

	result := callTool(t, session, "merge", map[string]any{
		"sources": []any{map[string]any{"content": catalog}},
	})
	require.False(t, result.IsError)
	out := unmarshalStructured(t, result)
	assert.Equal(t, []any{srv.URL + "/lives.txt"}, out["unresolved"])
	assert.Equal(t, float64(0), out["groups"])

	result = callTool(t, session, "merge", map[string]any{
		"sources":         []any{map[string]any{"content": catalog}},
		"fetch_playlists": true,
	})
	require.False(t, result.IsError)
	out = unmarshalStructured(t, result)
	assert.Nil(t, out["unresolved"])
	assert.Equal(t, float64(1), out["imported"])
	assert.Equal(t, float64(1), out["channels"])
}

func TestIntegration_Merge_Errors(t *testing.T) {
	session := startTestSession(t, testServer(t, func(c *config.Config) { c.MCP.MaxSources = 2 }))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "no sources",
			args: map[string]any{"sources": []any{}},
			want: "at least one source",
		},
		{
			name: "too many sources",
			args: map[string]any{"sources": []any{
				map[string]any{"content": "{}"},
				map[string]any{"content": "{}"},
				map[string]any{"content": "{}"},
			}},
			want: "too many sources",
		},
		{
			name: "bad format",
			args: map[string]any{"sources": []any{map[string]any{"content": "{}"}}, "format": "xml"},
			want: "invalid format",
		},
		{
			name: "empty source input",
			args: map[string]any{"sources": []any{map[string]any{}}},
			want: "exactly one of file, url, or content",
		},
		{
			name: "unparseable source",
			args: map[string]any{"sources": []any{map[string]any{"content": `{"spider": `}}},
			want: "source 0 (inline)",
		},
		{
			name: "missing file",
			args: map[string]any{"sources": []any{map[string]any{"file": "/tmp/tvmerge-does-not-exist.json"}}},
			want: "<path>",
		},
		{
			name: "bad override",
			args: map[string]any{
				"sources":  []any{map[string]any{"content": "{}"}},
				"override": map[string]any{"url": "file:///etc/passwd"},
			},
			want: "override: url must use http or https",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, session, "merge", tt.args)
			assert.Contains(t, errorText(t, result), tt.want)
		})
	}
}

func TestIntegration_Consolidate(t *testing.T) {
	session := startTestSession(t, testServer(t, nil))

	result := callTool(t, session, "consolidate", map[string]any{
		"lives":  map[string]any{"content": livesJSON},
		"format": "txt",
	})
	require.False(t, result.IsError)

	out := unmarshalStructured(t, result)
	assert.Equal(t, "text", out["format"])
	assert.Equal(t, "央视,#genre#\nCCTV1,http://a\nCCTV2,http://b\n\n单剧,#genre#\nMovieX,http://m\n", out["content"])
	assert.Equal(t, float64(2), out["groups"])
	assert.Equal(t, float64(3), out["channels"])
	assert.Equal(t, float64(1), out["regrouped"])
	assert.Equal(t, "Consolidated 2 groups, 3 channels and 3 URLs as text.", out["summary"])
}

func TestIntegration_Consolidate_SanitizeFromCatalog(t *testing.T) {
	session := startTestSession(t, testServer(t, nil))

	catalog := `{"spider": "x", "lives": [{"group": "📺央视频道", "channels": [{"name": "CCTV-1", "urls": ["http://a"]}]}]}`
	result := callTool(t, session, "consolidate", map[string]any{
		"lives":    map[string]any{"content": catalog},
		"format":   "m3u",
		"sanitize": true,
	})
	require.False(t, result.IsError)

	out := unmarshalStructured(t, result)
	assert.Equal(t, "#EXTM3U\n#EXTINF:-1 tvg-name=\"CCTV1\" group-title=\"央视\",CCTV1\nhttp://a", out["content"])
}

func TestIntegration_Export(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "lives.json", livesJSON)
	outPath := filepath.Join(dir, "lives.txt")
	session := startTestSession(t, testServer(t, nil))

	result := callTool(t, session, "export", map[string]any{
		"lives":  map[string]any{"file": in},
		"format": "txt",
		"output": outPath,
	})
	require.False(t, result.IsError)

	out := unmarshalStructured(t, result)
	assert.Equal(t, outPath, out["written_to"])
	assert.Nil(t, out["regrouped"])

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "央视,#genre#\nCCTV1,http://a\nCCTV2,http://b\n\n卫视,#genre#\nCCTV1,http://a\n\n央视,#genre#\nCCTV1,http://a\n\nMovieX,#genre#\nMovieX,http://m\n", string(data))
}

func TestIntegration_Export_DefaultFormat(t *testing.T) {
	session := startTestSession(t, testServer(t, func(c *config.Config) { c.Export.Format = "yaml" }))

	result := callTool(t, session, "export", map[string]any{
		"lives": map[string]any{"content": "#EXTM3U\n#EXTINF:-1 group-title=\"G\",C\nhttp://c\n"},
	})
	require.False(t, result.IsError)

	out := unmarshalStructured(t, result)
	assert.Equal(t, "yaml", out["format"])
	assert.Contains(t, out["content"], "group: G")
}

func TestIntegration_Directory_Errors(t *testing.T) {
	session := startTestSession(t, testServer(t, nil))

	result := callTool(t, session, "export", map[string]any{
		"lives":  map[string]any{"content": livesJSON},
		"format": "xml",
	})
	assert.Contains(t, errorText(t, result), "unknown export format")

	result = callTool(t, session, "consolidate", map[string]any{
		"lives": map[string]any{},
	})
	assert.Contains(t, errorText(t, result), "exactly one of file, url, or content")

	result = callTool(t, session, "consolidate", map[string]any{
		"lives": map[string]any{"content": `[{"group": `},
	})
	assert.Contains(t, errorText(t, result), "parse error in inline")
}
