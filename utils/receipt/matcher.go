// Package receipt turns noisy OCR text from receipts and statements into
// transaction candidates.
package receipt

import "regexp"

// Match is a single pattern hit. Value holds the first capture group when the
// pattern has one, otherwise the whole match. Offset is the byte offset of the
// whole match in the scanned text.
type Match struct {
	Value   string
	Offset  int
	Pattern int
}

// PatternMatcher finds pattern hits in text. Matches are returned grouped by
// pattern, in pattern order, and in text order within a pattern.
type PatternMatcher interface {
	FindAll(text string) []Match
}

// RegexMatcher is a PatternMatcher backed by an ordered list of regexps.
type RegexMatcher struct {
	patterns []*regexp.Regexp
}

// NewRegexMatcher compiles patterns in order. It panics on an invalid
// pattern, so it is meant for package-level tables.
func NewRegexMatcher(patterns ...string) *RegexMatcher {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return &RegexMatcher{patterns: compiled}
}

func (m *RegexMatcher) FindAll(text string) []Match {
	var matches []Match
	for i, re := range m.patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			if len(loc) >= 4 && loc[2] >= 0 {
				value = text[loc[2]:loc[3]]
			}
			matches = append(matches, Match{Value: value, Offset: loc[0], Pattern: i})
		}
	}
	return matches
}
