package sanitizer

import (
	"testing"

	"github.com/erraggy/tvmerge/live"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		tokens []string
		want   string
	}{
		{"removes tokens", "📺央视频道", DefaultGroupTokens, "央视"},
		{"every occurrence", "a-b-c", []string{"-"}, "abc"},
		{"trims", "  News  ", nil, "News"},
		{"placeholder", "频道", DefaultGroupTokens, DefaultPlaceholder},
		{"blank", "   ", nil, DefaultPlaceholder},
		{"token order matters", "abc", []string{"ab", "bc"}, "c"},
		{"empty token ignored", "abc", []string{""}, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input, tt.tokens))
		})
	}
}

func TestSanitize_OverlappingTokensResolveByPosition(t *testing.T) {
	// "bc" removed first leaves "a", so "ab" never matches.
	assert.Equal(t, "a", Sanitize("abc", []string{"bc", "ab"}))
}

func TestSanitizer(t *testing.T) {
	s, err := New(WithTokens("-"), WithPlaceholder("?"))
	require.NoError(t, err)

	assert.Equal(t, "CCTV1", s.Sanitize("CCTV-1"))
	assert.Equal(t, "?", s.Sanitize("--"))
	assert.Equal(t, []string{"-"}, s.Tokens())
	assert.Equal(t, "?", s.Placeholder())
}

func TestSanitizer_WidthFold(t *testing.T) {
	plain, err := New(WithTokens("-"))
	require.NoError(t, err)
	folded, err := New(WithTokens("－"), WithWidthFold(true))
	require.NoError(t, err)

	assert.Equal(t, "ＣＣＴＶ１", plain.Sanitize("ＣＣＴＶ１"))
	assert.Equal(t, "CCTV1", folded.Sanitize("ＣＣＴＶ－１"))
	assert.Equal(t, "CCTV1", folded.Sanitize("CCTV-1"))
}

func TestNew_InvalidPlaceholder(t *testing.T) {
	_, err := New(WithPlaceholder(" "))
	assert.Error(t, err)
}

func TestSanitizer_SatisfiesLabelSanitizer(t *testing.T) {
	s, err := New(WithTokens(DefaultGroupTokens...))
	require.NoError(t, err)

	groups := live.Groups{{Group: "🔥体育频道", Channels: []live.Channel{{Name: "CCTV-5", URLs: []string{"u"}}}}}
	got := groups.Sanitize(s, nil)
	assert.Equal(t, "体育", got[0].Group)
}
