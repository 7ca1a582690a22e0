package consolidator

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/erraggy/tvmerge/live"
)

// sortGroups orders groups in place and sorts the channels of each group.
func sortGroups(groups live.Groups, threshold int) {
	for i := range groups {
		slices.SortFunc(groups[i].Channels, func(a, b live.Channel) int {
			return compareChannelLabels(a.Name, b.Name)
		})
	}
	slices.SortFunc(groups, func(a, b live.Group) int {
		return compareGroups(a, b, threshold)
	})
}

func urlCount(g live.Group) int {
	n := 0
	for _, ch := range g.Channels {
		n += len(ch.URLs)
	}
	return n
}

func compareGroups(a, b live.Group, threshold int) int {
	ca, cb := len(a.Channels), len(b.Channels)
	largeA, largeB := ca > threshold, cb > threshold
	if largeA != largeB {
		if largeA {
			return -1
		}
		return 1
	}
	if largeA {
		// URLs per channel, descending. Cross-multiplied to stay exact.
		ra, rb := urlCount(a)*cb, urlCount(b)*ca
		if c := cmp.Compare(rb, ra); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(cb, ca); c != 0 {
		return c
	}
	return compareLabels(a.Group, b.Group)
}

// compareLabels orders by rune length, then lexicographically.
func compareLabels(a, b string) int {
	if c := cmp.Compare(utf8.RuneCountInString(a), utf8.RuneCountInString(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// compareChannelLabels compares the non-numeric prefix, then the value of
// the trailing digits (zero when absent), then the whole label.
func compareChannelLabels(a, b string) int {
	pa, na := splitNumericSuffix(a)
	pb, nb := splitNumericSuffix(b)
	if c := strings.Compare(pa, pb); c != 0 {
		return c
	}
	if c := compareDigits(na, nb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func splitNumericSuffix(s string) (prefix, digits string) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	return s[:i], s[i:]
}

// compareDigits compares two unsigned decimal strings by value without
// parsing, so arbitrarily long suffixes cannot overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
