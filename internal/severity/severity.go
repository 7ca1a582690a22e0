// Package severity provides the severity levels attached to warnings
// reported by the merger, aggregator, and live directory packages.
//
// Levels are ordered from least to most severe: Info < Warning < Error.
// Nothing in the consolidation core is fatal, so Error is reserved for
// adapters that want to escalate a warning category.
package severity

// Severity indicates how much attention a reported issue deserves.
type Severity int

const (
	// SeverityInfo marks informational notices about choices made.
	SeverityInfo Severity = iota
	// SeverityWarning marks input that was skipped, defaulted, or left
	// unreconciled.
	SeverityWarning
	// SeverityError marks an issue an adapter decided to treat as failure.
	SeverityError
)

// String returns the lowercase name of the level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s >= min
}
