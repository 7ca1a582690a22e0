package live

import (
	"strings"
	"testing"

	"github.com/erraggy/tvmerge/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDocument(t *testing.T) {
	doc := document.MustParse(`[
		{"group":"News","channels":[
			{"name":"CCTV-1","urls":["http://a",5,"http://b"]},
			"bad",
			{"urls":["http://c"]}
		]},
		7,
		{"channels":[{"name":"X","urls":["http://x"]}]}
	]`)

	groups, stats := FromDocument(doc)

	require.Len(t, groups, 2)
	assert.Equal(t, "News", groups[0].Group)
	require.Len(t, groups[0].Channels, 2)
	assert.Equal(t, []string{"http://a", "http://b"}, groups[0].Channels[0].URLs)
	assert.Equal(t, DefaultChannelLabel, groups[0].Channels[1].Name)
	assert.Equal(t, DefaultGroupLabel, groups[1].Group)
	assert.Equal(t, DecodeStats{SkippedGroups: 1, SkippedChannels: 1, SkippedURLs: 1}, stats)
}

func TestFromDocument_NotAList(t *testing.T) {
	groups, stats := FromDocument(document.MustParse(`{"group":"x"}`))
	assert.Empty(t, groups)
	assert.Zero(t, stats)
}

func TestGroups_ToDocumentRoundTrip(t *testing.T) {
	groups := Groups{
		{Group: "A", Channels: []Channel{{Name: "a1", URLs: []string{"u1", "u2"}}}},
		{Group: "B", Channels: []Channel{}},
	}

	doc := groups.ToDocument()
	out, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`[{"group":"A","channels":[{"name":"a1","urls":["u1","u2"]}]},{"group":"B","channels":[]}]`,
		string(out))

	back, stats := FromDocument(doc)
	assert.Zero(t, stats)
	assert.Equal(t, groups[0], back[0])
}

func TestGroups_Stats(t *testing.T) {
	groups := Groups{
		{Group: "A", Channels: []Channel{{Name: "a1", URLs: []string{"u1", "u2"}}, {Name: "a2", URLs: []string{"u3"}}}},
		{Group: "B"},
	}
	assert.Equal(t, Stats{Groups: 2, Channels: 2, URLs: 3}, groups.Stats())
}

type upper struct{}

func (upper) Sanitize(s string) string { return strings.ToUpper(s) }

func TestGroups_Sanitize(t *testing.T) {
	groups := Groups{{Group: "news", Channels: []Channel{{Name: "cctv", URLs: []string{"u"}}}}}

	got := groups.Sanitize(upper{}, nil)
	assert.Equal(t, "NEWS", got[0].Group)
	assert.Equal(t, "cctv", got[0].Channels[0].Name)

	got = groups.Sanitize(nil, upper{})
	assert.Equal(t, "news", got[0].Group)
	assert.Equal(t, "CCTV", got[0].Channels[0].Name)

	got[0].Channels[0].URLs[0] = "changed"
	assert.Equal(t, "u", groups[0].Channels[0].URLs[0])
}
