package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinReceiptYear is the earliest year accepted for an extracted date. Older
// years are almost always misread digits.
const MinReceiptYear = 2020

// DefaultDateMatcher recognises, in order of preference, numeric day/month
// dates, ISO-like dates, "Mon DD, YYYY" and "DD Mon YYYY".
func DefaultDateMatcher() PatternMatcher {
	return NewRegexMatcher(
		`\b(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})\b`,
		`\b(\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2})\b`,
		`(?i)\b([a-z]{3}[a-z]*\.?\s+\d{1,2},?\s+\d{4})\b`,
		`(?i)\b(\d{1,2}\s+[a-z]{3}[a-z]*\.?\s+\d{4})\b`,
	)
}

var (
	dateSeparators = strings.NewReplacer("-", "/", ".", "/")

	// Month/day order is ambiguous on receipts; month-first is tried first.
	numericLayouts = []string{"1/2/2006", "2/1/2006", "1/2/06", "2/1/06", "2006/1/2"}

	monthDayYear = regexp.MustCompile(`(?i)^([a-z]{3})[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})$`)
	dayMonthYear = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]{3})[a-z]*\.?\s+(\d{4})$`)

	monthAbbrev = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

// DateExtractor resolves the transaction date of a document.
type DateExtractor struct {
	matcher PatternMatcher
	now     func() time.Time
}

// NewDateExtractor builds an extractor; now supplies the fallback date.
func NewDateExtractor(matcher PatternMatcher, now func() time.Time) *DateExtractor {
	return &DateExtractor{matcher: matcher, now: now}
}

// ExtractDate returns the first date token that parses and falls between
// MinReceiptYear and one year from now. Without one it returns now.
func (e *DateExtractor) ExtractDate(text string) time.Time {
	if d, ok := e.Find(text); ok {
		return d
	}
	return e.now()
}

// Find is ExtractDate without the fallback.
func (e *DateExtractor) Find(text string) (time.Time, bool) {
	latest := e.now().AddDate(1, 0, 0)
	for _, m := range e.matcher.FindAll(text) {
		d, ok := parseDateToken(m.Value)
		if !ok {
			continue
		}
		if d.Year() >= MinReceiptYear && !d.After(latest) {
			return d, true
		}
	}
	return time.Time{}, false
}

// Tokens returns every date-like token in text, plausible or not.
func (e *DateExtractor) Tokens(text string) []Match {
	return e.matcher.FindAll(text)
}

func parseDateToken(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)

	if m := monthDayYear.FindStringSubmatch(token); m != nil {
		return buildDate(m[3], m[1], m[2])
	}
	if m := dayMonthYear.FindStringSubmatch(token); m != nil {
		return buildDate(m[3], m[2], m[1])
	}

	numeric := dateSeparators.Replace(token)
	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, numeric); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func buildDate(year, month, day string) (time.Time, bool) {
	mon, ok := monthAbbrev[strings.ToLower(month)]
	if !ok {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, mon, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
