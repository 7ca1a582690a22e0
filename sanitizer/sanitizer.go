// Package sanitizer strips decorative noise from group and channel labels
// so that variants of one label collapse into a single vote bucket.
package sanitizer

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/width"
)

// DefaultPlaceholder replaces labels that are empty after sanitizing.
const DefaultPlaceholder = "未命名"

// DefaultGroupTokens are removed from group labels.
var DefaultGroupTokens = []string{
	"频道", "丨", "｜", "·", "-", "_", ";", ".",
	"📺", "☘️", "🏀", "🏛", "🎬", "🪁", "🇨🇳", "👠", "💋", "💃", "💝", "💖",
	"🍱", "🛰", "🔥", "🤹🏼", "🎼", "📛", "🐷", "🐻", "💰", "🎵", "🎮", "📡",
	"🕘️", "📢", "🎞", "🌊", "🇭🇰", "🇹🇼", "🇰🇷", "🎰", "🇯🇵", "📻", "🇺🇸", "🙏",
	"🌏", "🖥", "📽", "🐬", "🆕",
}

// DefaultChannelTokens are removed from channel labels.
var DefaultChannelTokens = []string{"-"}

// Sanitize removes every occurrence of each token from name, in token
// order, trims surrounding whitespace and returns DefaultPlaceholder when
// nothing is left.
func Sanitize(name string, tokens []string) string {
	return sanitize(name, tokens, DefaultPlaceholder)
}

func sanitize(name string, tokens []string, placeholder string) string {
	for _, token := range tokens {
		if token == "" {
			continue
		}
		name = strings.ReplaceAll(name, token, "")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return placeholder
	}
	return name
}

// Sanitizer is a configured label cleaner. It is safe for concurrent use.
type Sanitizer struct {
	tokens      []string
	placeholder string
	fold        bool
}

// Option configures a Sanitizer.
type Option func(*Sanitizer) error

// WithTokens sets the noise tokens, applied in the given order.
func WithTokens(tokens ...string) Option {
	return func(s *Sanitizer) error {
		s.tokens = slices.Clone(tokens)
		return nil
	}
}

// WithPlaceholder sets the label used when sanitizing leaves nothing.
func WithPlaceholder(placeholder string) Option {
	return func(s *Sanitizer) error {
		if strings.TrimSpace(placeholder) == "" {
			return errors.New("placeholder must not be blank")
		}
		s.placeholder = placeholder
		return nil
	}
}

// WithWidthFold folds full-width and half-width forms to their canonical
// width before tokens are removed, so "ＣＣＴＶ１" and "CCTV1" sanitize
// alike. Tokens are folded the same way.
func WithWidthFold(enabled bool) Option {
	return func(s *Sanitizer) error {
		s.fold = enabled
		return nil
	}
}

// New creates a Sanitizer with no tokens and DefaultPlaceholder unless
// options say otherwise.
func New(opts ...Option) (*Sanitizer, error) {
	s := &Sanitizer{placeholder: DefaultPlaceholder}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.fold {
		for i, token := range s.tokens {
			s.tokens[i] = width.Fold.String(token)
		}
	}
	return s, nil
}

// Sanitize cleans label.
func (s *Sanitizer) Sanitize(label string) string {
	if s.fold {
		label = width.Fold.String(label)
	}
	return sanitize(label, s.tokens, s.placeholder)
}

// Tokens returns a copy of the configured tokens.
func (s *Sanitizer) Tokens() []string {
	return slices.Clone(s.tokens)
}

// Placeholder returns the configured placeholder.
func (s *Sanitizer) Placeholder() string {
	return s.placeholder
}
