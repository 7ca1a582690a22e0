package consolidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally_AddMatchesSingleScan(t *testing.T) {
	whole := NewTally()
	whole.Vote("G1", "C1", "u1")
	whole.Vote("G2", "C1", "u2")
	whole.Vote("G2", "C2", "u1")
	whole.Pass("G3", "7", "p1")

	left := NewTally()
	left.Vote("G1", "C1", "u1")
	left.Vote("G2", "C1", "u2")
	right := NewTally()
	right.Vote("G2", "C2", "u1")
	right.Pass("G3", "7", "p1")

	sum := NewTally()
	sum.Add(left)
	sum.Add(right)

	assert.Equal(t, whole.URLs(), sum.URLs())
	assert.Equal(t, whole.passthrough, sum.passthrough)
	for _, u := range whole.URLs() {
		assert.Equal(t, whole.GroupVotes(u), sum.GroupVotes(u))
		assert.Equal(t, whole.ChannelVotes(u), sum.ChannelVotes(u))
	}
}

func TestTally_Winner(t *testing.T) {
	tally := NewTally()
	tally.Vote("央视频道", "CCTV-1", "u")
	tally.Vote("央视", "CCTV1", "u")
	tally.Vote("央视频道", "CCTV1", "u")

	group, channel, ok := tally.Winner("u")
	assert.True(t, ok)
	assert.Equal(t, "央视频道", group)
	assert.Equal(t, "CCTV1", channel)

	_, _, ok = tally.Winner("missing")
	assert.False(t, ok)
}

func TestTally_PassKeepsFirst(t *testing.T) {
	tally := NewTally()
	tally.Pass("A", "1", "u")
	tally.Pass("B", "2", "u")

	assert.Equal(t, []record{{group: "A", channel: "1", url: "u"}}, tally.passthrough)
}

func TestTally_VotesAreCopies(t *testing.T) {
	tally := NewTally()
	tally.Vote("G", "C", "u")

	votes := tally.GroupVotes("u")
	votes["G"] = 100

	assert.Equal(t, map[string]int{"G": 1}, tally.GroupVotes("u"))
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name  string
		votes map[string]int
		want  string
	}{
		{"count", map[string]int{"long label": 3, "a": 1}, "long label"},
		{"length", map[string]int{"News": 1, "NewsChannel": 1}, "News"},
		{"runes not bytes", map[string]int{"央视": 1, "abc": 1}, "央视"},
		{"lexicographic", map[string]int{"b": 2, "a": 2, "c": 2}, "a"},
		{"empty", map[string]int{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, winner(tt.votes))
		})
	}
}

func TestExclude(t *testing.T) {
	assert.True(t, ExcludeNumeric("123"))
	assert.False(t, ExcludeNumeric(""))
	assert.False(t, ExcludeNumeric("CCTV1"))

	episode := ExcludeContaining("第")
	assert.True(t, episode("第12集"))
	assert.False(t, episode("CCTV1"))
	assert.False(t, ExcludeContaining("")("anything"))

	either := AnyOf(nil, ExcludeNumeric, episode)
	assert.True(t, either("42"))
	assert.True(t, either("第1集"))
	assert.False(t, either("News"))
	assert.False(t, AnyOf()("x"))
}
