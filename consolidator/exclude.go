package consolidator

import (
	"strings"
	"unicode"
)

// ExcludeFunc reports whether a channel label should bypass voting.
type ExcludeFunc func(channel string) bool

// ExcludeNumeric matches labels made only of digits, such as "123".
func ExcludeNumeric(channel string) bool {
	if channel == "" {
		return false
	}
	for _, r := range channel {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ExcludeContaining matches labels containing any of markers. Episode
// style names such as "第3集" are the usual case.
func ExcludeContaining(markers ...string) ExcludeFunc {
	markers = append([]string(nil), markers...)
	return func(channel string) bool {
		for _, m := range markers {
			if m != "" && strings.Contains(channel, m) {
				return true
			}
		}
		return false
	}
}

// AnyOf matches when any of fns matches. Nil functions are ignored.
func AnyOf(fns ...ExcludeFunc) ExcludeFunc {
	fns = append([]ExcludeFunc(nil), fns...)
	return func(channel string) bool {
		for _, fn := range fns {
			if fn != nil && fn(channel) {
				return true
			}
		}
		return false
	}
}
