// Package options validates groups of mutually exclusive inputs.
package options

import (
	"fmt"
	"strings"
)

// ExactlyOne returns an error unless exactly one of values is non-empty.
// names label the values in the message, in the same order.
func ExactlyOne(names []string, values ...string) error {
	set := 0
	for _, v := range values {
		if v != "" {
			set++
		}
	}
	if set == 1 {
		return nil
	}
	return fmt.Errorf("exactly one of %s must be provided (got %d)", joinOr(names), set)
}

// joinOr renders names as "a, b, or c".
func joinOr(names []string) string {
	switch len(names) {
	case 0:
		return "the inputs"
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
