package merger

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/erraggy/tvmerge/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	mergerLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func mustJSON(t *testing.T, d document.Document) string {
	t.Helper()
	out, err := d.MarshalJSON()
	require.NoError(t, err)
	return string(out)
}

func TestMerge_Maps(t *testing.T) {
	base := document.MustParse(`{"spider":"a.jar","wallpaper":"w1","rules":{"hosts":["x"],"timeout":5}}`)
	incoming := document.MustParse(`{"wallpaper":"w2","rules":{"timeout":9,"regex":"y"},"logo":"l"}`)

	got := Default().Merge(base, incoming)

	assert.Equal(t,
		`{"spider":"a.jar","wallpaper":"w2","rules":{"hosts":["x"],"timeout":9,"regex":"y"},"logo":"l"}`,
		mustJSON(t, got))
}

func TestMerge_TypeMismatchIncomingWins(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		incoming string
		want     string
	}{
		{"map over list", `{"a":[1]}`, `{"a":{"b":1}}`, `{"a":{"b":1}}`},
		{"scalar over map", `{"a":{"b":1}}`, `{"a":"s"}`, `{"a":"s"}`},
		{"null overrides", `{"a":1}`, `{"a":null}`, `{"a":null}`},
		{"top-level scalar", `[1]`, `"x"`, `"x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default().Merge(document.MustParse(tt.base), document.MustParse(tt.incoming))
			assert.Equal(t, tt.want, mustJSON(t, got))
		})
	}
}

func TestMerge_IdentityReconciliation(t *testing.T) {
	base := document.MustParse(`[
		{"key":"csp_a","name":"A","api":"a1","searchable":1},
		{"key":"csp_b","name":"B","api":"b1"}
	]`)
	incoming := document.MustParse(`[
		{"key":"csp_b","api":"b2","ext":{"x":1}},
		{"key":"csp_c","name":"C","api":"c1"},
		{"key":"csp_c","api":"c2"}
	]`)

	got := Default().Merge(base, incoming)

	assert.Equal(t,
		`[{"key":"csp_a","name":"A","api":"a1","searchable":1},`+
			`{"key":"csp_b","name":"B","api":"b2","ext":{"x":1}},`+
			`{"key":"csp_c","name":"C","api":"c2"}]`,
		mustJSON(t, got))
}

func TestMerge_ShallowOverwriteDoesNotRecurse(t *testing.T) {
	base := document.MustParse(`[{"id":"p","ext":{"a":1,"b":2}}]`)
	incoming := document.MustParse(`[{"id":"p","ext":{"c":3}}]`)

	got := Default().Merge(base, incoming)
	assert.Equal(t, `[{"id":"p","ext":{"c":3}}]`, mustJSON(t, got))
}

func TestMerge_IdentityFieldPrecedence(t *testing.T) {
	// "key" wins over "name" even when both are present.
	base := document.MustParse(`[{"key":"k1","name":"shared","v":1}]`)
	incoming := document.MustParse(`[{"key":"k2","name":"shared","v":2}]`)

	got := Default().Merge(base, incoming)
	assert.Equal(t, 2, got.Len())
}

func TestMerge_EmptyIdentityFallsThrough(t *testing.T) {
	base := document.MustParse(`[{"key":"","name":"Same","v":1}]`)
	incoming := document.MustParse(`[{"key":"","name":"Same","v":2}]`)

	got := Default().Merge(base, incoming)
	assert.Equal(t, `[{"key":"","name":"Same","v":2}]`, mustJSON(t, got))
}

func TestMerge_UnidentifiedElementsNeverCollide(t *testing.T) {
	base := document.MustParse(`[{"url":"http://a"},{"url":"http://a"}]`)
	incoming := document.MustParse(`[{"url":"http://a"}]`)

	got := Default().Merge(base, incoming)
	assert.Equal(t, 3, got.Len())
}

func TestMerge_DuplicateBaseIdentityCollapses(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		incoming string
		want     string
	}{
		{
			name:     "incoming updates the surviving entry",
			base:     `[{"name":"x","v":1},{"name":"x","v":2}]`,
			incoming: `[{"name":"x","v":3}]`,
			want:     `[{"name":"x","v":3}]`,
		},
		{
			name:     "later duplicate keeps first position",
			base:     `[{"key":"x","v":1},{"key":"x","v":2},{"key":"y"}]`,
			incoming: `[{"key":"x","w":3}]`,
			want:     `[{"key":"x","v":2,"w":3},{"key":"y"}]`,
		},
		{
			name:     "no incoming",
			base:     `[{"key":"a","v":1},{"key":"b"},{"key":"a","v":2}]`,
			incoming: `[]`,
			want:     `[{"key":"a","v":2},{"key":"b"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default().Merge(document.MustParse(tt.base), document.MustParse(tt.incoming))
			assert.Equal(t, tt.want, mustJSON(t, got))
		})
	}
}

func TestMerge_DuplicateBaseIdentityReported(t *testing.T) {
	base := document.MustParse(`{"sites":[{"key":"x","v":1},{"key":"y"},{"key":"x","v":2}]}`)

	got, warnings := Default().MergeWithReport(base, document.MustParse(`{"sites":[]}`))

	assert.Equal(t, `{"sites":[{"key":"x","v":2},{"key":"y"}]}`, mustJSON(t, got))
	dups := warnings.ByCategory(WarnDuplicateIdentity)
	require.Len(t, dups, 1)
	assert.Equal(t, "$.sites[2]", dups[0].Path)
	assert.Equal(t, 0, dups[0].Context["replaced"])
}

func TestMerge_IdentityKindsStayApart(t *testing.T) {
	tests := []struct {
		name  string
		match IdentityMatch
	}{
		{"field scoped", MatchFieldScoped},
		{"value only", MatchValueOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(WithIdentityMatch(tt.match))
			require.NoError(t, err)

			got := m.Merge(
				document.MustParse(`[{"id":"1","v":"s"}]`),
				document.MustParse(`[{"id":1,"v":"n"},{"id":"1","w":true}]`),
			)
			assert.Equal(t, `[{"id":"1","v":"s","w":true},{"id":1,"v":"n"}]`, mustJSON(t, got))
		})
	}
}

func TestMerge_SetUnion(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		incoming string
		want     string
	}{
		{"strings", `["a","b"]`, `["b","c"]`, `["a","b","c"]`},
		{"mixed kinds", `[{"k":1},"a"]`, `["a",{"k":1},2]`, `[{"k":1},"a",2]`},
		{"duplicates within base", `["a","a"]`, `[]`, `["a"]`},
		{"numbers by value", `[1]`, `[1.0]`, `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default().Merge(document.MustParse(tt.base), document.MustParse(tt.incoming))
			assert.Equal(t, tt.want, mustJSON(t, got))
		})
	}
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	base := document.MustParse(`{"sites":[{"key":"a","api":"1"}],"x":{"y":1}}`)
	incoming := document.MustParse(`{"sites":[{"key":"a","api":"2"}],"x":{"z":2}}`)
	baseBefore := mustJSON(t, base)
	incomingBefore := mustJSON(t, incoming)

	_ = Default().Merge(base, incoming)

	assert.Equal(t, baseBefore, mustJSON(t, base))
	assert.Equal(t, incomingBefore, mustJSON(t, incoming))
}

func TestMerge_AmbiguousIdentity(t *testing.T) {
	base := document.MustParse(`[{"key":"tv","api":"1"}]`)
	incoming := document.MustParse(`[{"name":"tv","api":"2"}]`)

	t.Run("field scoped keeps both and warns", func(t *testing.T) {
		got, warnings := Default().MergeWithReport(base, incoming)
		assert.Equal(t, 2, got.Len())
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnAmbiguousIdentity, warnings[0].Category)
		assert.Equal(t, "$[1]", warnings[0].Path)
		assert.Equal(t, "key", warnings[0].Context["base_field"])
		assert.Equal(t, "name", warnings[0].Context["incoming_field"])
	})

	t.Run("value only reconciles", func(t *testing.T) {
		m, err := New(WithIdentityMatch(MatchValueOnly))
		require.NoError(t, err)
		got, warnings := m.MergeWithReport(base, incoming)
		assert.Empty(t, warnings)
		assert.Equal(t, `[{"key":"tv","api":"2","name":"tv"}]`, mustJSON(t, got))
	})
}

func TestMerge_NonAssociative(t *testing.T) {
	a := document.MustParse(`{"v":"a"}`)
	b := document.MustParse(`{"v":{"n":1}}`)
	c := document.MustParse(`{"v":"c","w":1}`)
	m := Default()

	left := m.Merge(m.Merge(a, b), c)
	right := m.Merge(a, m.Merge(b, c))
	assert.Equal(t, `{"v":"c","w":1}`, mustJSON(t, left))
	assert.Equal(t, `{"v":"c","w":1}`, mustJSON(t, right))

	// Conflicting maps under one key: folding order changes the outcome.
	x := document.MustParse(`{"v":{"p":1}}`)
	y := document.MustParse(`{"v":"scalar"}`)
	z := document.MustParse(`{"v":{"q":2}}`)
	assert.Equal(t, `{"v":{"q":2}}`, mustJSON(t, m.Merge(m.Merge(x, y), z)))
	assert.Equal(t, `{"v":{"p":1,"q":2}}`, mustJSON(t, m.Merge(x, m.Merge(y, z))))
}

func TestNew_Options(t *testing.T) {
	_, err := New(WithIdentityMatch("fuzzy"))
	assert.Error(t, err)

	_, err = New(WithIdentityFields())
	assert.Error(t, err)

	_, err = New(WithIdentity(nil))
	assert.Error(t, err)

	custom := func(d document.Document) (Identity, bool) {
		v, ok := d.GetString("uid")
		return Identity{Field: "uid", Value: v}, ok && v != ""
	}
	m, err := New(WithIdentity(custom))
	require.NoError(t, err)
	got := m.Merge(document.MustParse(`[{"uid":"1","a":1}]`), document.MustParse(`[{"uid":"1","b":2}]`))
	assert.Equal(t, `[{"uid":"1","a":1,"b":2}]`, mustJSON(t, got))
}

func TestIsValidIdentityMatch(t *testing.T) {
	for _, mode := range ValidIdentityMatches() {
		assert.True(t, IsValidIdentityMatch(mode), mode)
	}
	assert.False(t, IsValidIdentityMatch(""))
}
