// Package mergeerrors provides structured error types for the tvmerge library.
//
// Import path: github.com/erraggy/tvmerge/mergeerrors
//
// The consolidation core never fails: malformed elements are skipped and
// counted, empty inputs produce empty results. Errors only surface at the
// edges of the library, where raw bytes are decoded into documents and where
// user supplied configuration is validated. This package gives those edges a
// common vocabulary usable with [errors.Is] and [errors.As].
//
// # Error Types
//
//   - [ParseError]: JSON/YAML decoding failures of a source document
//   - [ConfigError]: Invalid configuration, options, or export formats
//
// # Sentinel Errors
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage Examples
//
//	doc, err := document.Parse(data)
//	if errors.Is(err, mergeerrors.ErrParse) {
//	    // skip this source and keep going
//	}
//
//	var cfgErr *mergeerrors.ConfigError
//	if errors.As(err, &cfgErr) {
//	    fmt.Printf("bad option %s: %v\n", cfgErr.Option, cfgErr.Value)
//	}
package mergeerrors
