package merger

import (
	"fmt"

	"github.com/erraggy/tvmerge/internal/severity"
)

// WarningCategory identifies the type of warning.
type WarningCategory string

const (
	// WarnMalformedElement indicates an element of the wrong shape was
	// skipped.
	WarnMalformedElement WarningCategory = "malformed_element"
	// WarnAmbiguousIdentity indicates two list elements share an identity
	// value under different fields and were left separate.
	WarnAmbiguousIdentity WarningCategory = "ambiguous_identity"
	// WarnFieldReplaced indicates an override replaced a field wholesale.
	WarnFieldReplaced WarningCategory = "field_replaced"
	// WarnDuplicateIdentity indicates a base list held the same identity
	// twice and the later element took the earlier one's place.
	WarnDuplicateIdentity WarningCategory = "duplicate_identity"
	// WarnEntryDropped indicates a post-merge cleanup removed an entry.
	WarnEntryDropped WarningCategory = "entry_dropped"
)

// Warning is a non-fatal issue found while merging documents.
type Warning struct {
	// Category identifies the type of warning.
	Category WarningCategory
	// Path locates the affected element, e.g. "$.sites[3]".
	Path string
	// Message is a human-readable description.
	Message string
	// Severity indicates warning severity.
	Severity severity.Severity
	// Context provides additional details.
	Context map[string]any
}

// String returns the formatted warning message.
func (w *Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Warnings is a list of warnings in the order they were found.
type Warnings []*Warning

// Strings returns the formatted messages.
func (ws Warnings) Strings() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.String())
	}
	return out
}

// ByCategory returns the warnings of one category.
func (ws Warnings) ByCategory(category WarningCategory) Warnings {
	var out Warnings
	for _, w := range ws {
		if w.Category == category {
			out = append(out, w)
		}
	}
	return out
}

// AtLeast returns the warnings whose severity is min or higher.
func (ws Warnings) AtLeast(min severity.Severity) Warnings {
	var out Warnings
	for _, w := range ws {
		if w.Severity.AtLeast(min) {
			out = append(out, w)
		}
	}
	return out
}

// NewMalformedElementWarning creates a warning for a skipped element.
func NewMalformedElementWarning(path, expected, got string) *Warning {
	return &Warning{
		Category: WarnMalformedElement,
		Path:     path,
		Message:  fmt.Sprintf("expected %s, got %s; skipped", expected, got),
		Severity: severity.SeverityWarning,
		Context: map[string]any{
			"expected": expected,
			"got":      got,
		},
	}
}

// NewAmbiguousIdentityWarning creates a warning for an identity value seen
// under two different fields.
func NewAmbiguousIdentityWarning(path, value, baseField, incomingField string) *Warning {
	return &Warning{
		Category: WarnAmbiguousIdentity,
		Path:     path,
		Message: fmt.Sprintf("identity %q matched by %q on the base side and %q on the incoming side; kept as separate entries",
			value, baseField, incomingField),
		Severity: severity.SeverityWarning,
		Context: map[string]any{
			"value":          value,
			"base_field":     baseField,
			"incoming_field": incomingField,
		},
	}
}

// NewDuplicateIdentityWarning creates a notice for a base element that
// replaced an earlier element with the same identity.
func NewDuplicateIdentityWarning(path, value string, pos int) *Warning {
	return &Warning{
		Category: WarnDuplicateIdentity,
		Path:     path,
		Message:  fmt.Sprintf("identity %q already held by base entry %d; replaced it in place", value, pos),
		Severity: severity.SeverityInfo,
		Context: map[string]any{
			"value":    value,
			"replaced": pos,
		},
	}
}

// NewFieldReplacedWarning creates a notice for a field replaced by an
// override.
func NewFieldReplacedWarning(field string) *Warning {
	return &Warning{
		Category: WarnFieldReplaced,
		Path:     "$." + field,
		Message:  "replaced wholesale by override",
		Severity: severity.SeverityInfo,
		Context:  map[string]any{"field": field},
	}
}

// NewEntryDroppedWarning creates a warning for an entry removed by cleanup.
func NewEntryDroppedWarning(path, reason string) *Warning {
	return &Warning{
		Category: WarnEntryDropped,
		Path:     path,
		Message:  reason,
		Severity: severity.SeverityWarning,
	}
}
