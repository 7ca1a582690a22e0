package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/tvmerge/aggregator"
	"github.com/erraggy/tvmerge/internal/fetch"
	"github.com/erraggy/tvmerge/internal/options"
	"github.com/erraggy/tvmerge/live"
	"github.com/erraggy/tvmerge/mergeerrors"
)

// docInput represents the three ways a document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type docInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a catalog or playlist file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"http(s) URL to fetch the document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline document content (JSON, YAML, M3U or #genre# text)"`
}

var inputFields = []string{"file", "url", "content"}

// name identifies the input in provenance lists and messages.
func (d docInput) name() string {
	switch {
	case d.File != "":
		return d.File
	case d.URL != "":
		return d.URL
	default:
		return "inline"
	}
}

func (d docInput) validate(maxInline int64) error {
	if err := options.ExactlyOne(inputFields, d.File, d.URL, d.Content); err != nil {
		return err
	}
	if d.URL != "" && !aggregator.IsRemote(d.URL) {
		return fmt.Errorf("url must use http or https: %q", d.URL)
	}
	if int64(len(d.Content)) > maxInline {
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set TVMERGE_MCP_MAX_INLINE_BYTES to increase",
			len(d.Content), maxInline)
	}
	return nil
}

// read returns the raw bytes of d, using the cache for file and URL
// inputs.
func (s *toolServer) read(ctx context.Context, d docInput) ([]byte, error) {
	if err := d.validate(s.cfg.MCP.MaxInlineBytes); err != nil {
		return nil, err
	}
	if d.Content != "" {
		return []byte(d.Content), nil
	}

	key, ttl := s.cacheKey(d)
	if key != "" {
		if data, ok := s.cache.get(key); ok {
			return data, nil
		}
	}

	location := d.File
	if d.URL != "" {
		location = d.URL
	}
	data, err := s.fetcher.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	if key != "" {
		s.cache.putWithTTL(key, data, ttl)
	}
	return data, nil
}

// source reads and decodes d as a catalog document.
func (s *toolServer) source(ctx context.Context, d docInput) (aggregator.Source, error) {
	data, err := s.read(ctx, d)
	if err != nil {
		return aggregator.Source{}, err
	}
	return fetch.Decode(d.name(), data)
}

// groups reads and decodes d as a live directory.
func (s *toolServer) groups(ctx context.Context, d docInput) (live.Groups, live.DecodeStats, error) {
	data, err := s.read(ctx, d)
	if err != nil {
		return nil, live.DecodeStats{}, err
	}
	groups, stats, err := live.Decode(data, s.cfg.Aggregate.LivesField)
	if err != nil {
		var pe *mergeerrors.ParseError
		if errors.As(err, &pe) && pe.Source == "" {
			pe.Source = d.name()
		}
		return nil, live.DecodeStats{}, err
	}
	return groups, stats, nil
}

// cacheKey returns the cache key and TTL for d, or "" when d is not
// cacheable. File keys include the modification time so edits are seen.
func (s *toolServer) cacheKey(d docInput) (string, time.Duration) {
	if s.cache == nil {
		return "", 0
	}
	switch {
	case d.File != "":
		abs, err := filepath.Abs(d.File)
		if err != nil {
			return "", 0
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", 0
		}
		return fmt.Sprintf("file:%s:%d", abs, info.ModTime().UnixNano()), s.cfg.MCP.FileTTL
	case d.URL != "":
		return "url:" + d.URL, s.cfg.MCP.URLTTL
	default:
		return "", 0
	}
}

// cacheEntry holds fetched content with LRU ordering and TTL expiry.
type cacheEntry struct {
	data      []byte
	touchedAt time.Time
	expiresAt time.Time
}

// inputCache is a session-scoped cache of fetched file and URL content.
type inputCache struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

func newInputCache(maxSize int) *inputCache {
	return &inputCache{entries: make(map[string]*cacheEntry), maxSize: maxSize}
}

// get returns cached content. Expired entries are removed lazily.
func (c *inputCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	e.touchedAt = time.Now()
	return e.data, true
}

// putWithTTL stores content, evicting the least recently used entry when
// the cache is full.
func (c *inputCache) putWithTTL(key string, data []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{data: data, touchedAt: now}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.touchedAt.Before(oldest) {
				oldestKey, oldest = k, e.touchedAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = entry
}

// sweep removes all expired entries.
func (c *inputCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper runs sweep every interval until ctx is cancelled. Only the
// first call starts a goroutine.
func (c *inputCache) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *inputCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
