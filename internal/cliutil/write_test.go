package cliutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	Writef(&buf, "%s: %d groups", "央视", 3)
	assert.Equal(t, "央视: 3 groups", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("simulated write error")
}

func TestWritefWriteError(t *testing.T) {
	assert.NotPanics(t, func() {
		Writef(failingWriter{}, "lost")
	})
}

func TestWriteOutputStdout(t *testing.T) {
	for _, output := range []string{"", "-"} {
		var buf bytes.Buffer
		require.NoError(t, WriteOutput(&buf, output, []byte("data"), nil))
		assert.Equal(t, "data", buf.String())
	}

	err := WriteOutput(failingWriter{}, "", []byte("data"), nil)
	require.Error(t, err)
}

func TestWriteOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(input, []byte("{}"), 0o600))

	var buf bytes.Buffer
	out := filepath.Join(dir, "out.json")
	require.NoError(t, WriteOutput(&buf, out, []byte(`{"x":1}`), []string{input}))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(data))

	err = WriteOutput(&buf, input, []byte("clobber"), []string{input})
	require.Error(t, err)
	data, err = os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
