package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/tvmerge"
	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/mergeerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadURL(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"lives":[]}`))
	}))
	defer srv.Close()

	data, err := New().Read(context.Background(), srv.URL+"/a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lives":[]}`, string(data))
	assert.Equal(t, tvmerge.UserAgent(), gotUA)
}

func TestReadURLCustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	_, err := New(WithUserAgent("okhttp/3.12")).Read(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "okhttp/3.12", gotUA)
}

func TestReadURLStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Read(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestReadSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	f := New(WithMaxBytes(16))
	_, err := f.Read(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))

	data, err := New(WithMaxBytes(64)).Read(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, data, 64)
}

func TestReadCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Read(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spider: x\n"), 0o600))

	data, err := New().Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "spider: x\n", string(data))

	_, err = New().Read(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("央视,#genre#\nCCTV1,http://a\n"))
	}))
	defer srv.Close()

	text, err := New().Resolve(context.Background(), srv.URL+"/list.txt")
	require.NoError(t, err)
	assert.Equal(t, "央视,#genre#\nCCTV1,http://a\n", text)
}

func TestSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"spider":"x","sites":[]}`), 0o600))

	src, err := New().Source(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Name)
	v, ok := src.Document.GetString("spider")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestDecodeNamesParseErrors(t *testing.T) {
	_, err := Decode("bad.json", []byte(`{"a":`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mergeerrors.ErrParse))

	var pe *mergeerrors.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad.json", pe.Source)
	assert.Equal(t, "json", pe.Format)
}

func TestDecodeYAML(t *testing.T) {
	src, err := Decode("a.yaml", []byte("lives:\n  - group: 央视\n"))
	require.NoError(t, err)
	lives, ok := src.Document.Get("lives")
	require.True(t, ok)
	assert.Equal(t, document.KindList, lives.Kind())
}

func TestIsBlockedIP(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.1.1", true},
		{"::1", true},
		{"0.0.0.0", true},
		{"::", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			require.NotNil(t, ip)
			assert.Equal(t, tt.blocked, isBlockedIP(ip))
		})
	}
}

func TestSafeClientBlocksLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	client := NewSafeHTTPClient(0)
	assert.Equal(t, DefaultTimeout, client.Timeout)
	assert.NotNil(t, client.CheckRedirect)

	_, err := New(WithHTTPClient(client)).Read(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked request")
}
