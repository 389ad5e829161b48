package search

import "unicode/utf8"

// DefaultMaxQueryLength bounds the composed search-field text.
const DefaultMaxQueryLength = 500

// EditFilter is the keystroke-time guard on the search field. It is
// independent of the debounce timer and counts characters untrimmed.
type EditFilter struct {
	MaxLen int
}

// NewEditFilter returns a filter for maxLen characters; non-positive means the default.
func NewEditFilter(maxLen int) EditFilter {
	if maxLen <= 0 {
		maxLen = DefaultMaxQueryLength
	}
	return EditFilter{MaxLen: maxLen}
}

func (f EditFilter) limit() int {
	if f.MaxLen <= 0 {
		return DefaultMaxQueryLength
	}
	return f.MaxLen
}

// Allow reports whether proposed may become the field's text.
func (f EditFilter) Allow(proposed string) bool {
	return utf8.RuneCountInString(proposed) <= f.limit()
}

// AllowEdit reports whether replacing length characters at start of current
// with replacement keeps the text within bounds. Out-of-range edits are rejected.
func (f EditFilter) AllowEdit(current string, start, length int, replacement string) bool {
	runes := []rune(current)
	if start < 0 || length < 0 || start+length > len(runes) {
		return false
	}
	composed := len(runes) - length + utf8.RuneCountInString(replacement)
	return composed <= f.limit()
}

// Apply returns proposed when allowed and current otherwise.
func (f EditFilter) Apply(current, proposed string) string {
	if f.Allow(proposed) {
		return proposed
	}
	return current
}
