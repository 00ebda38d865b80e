package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const contextRadius = 50

var (
	minAmount = decimal.Zero
	maxAmount = decimal.NewFromInt(50000)
)

// AmountCandidate is a currency-like value found in receipt text.
type AmountCandidate struct {
	Value              decimal.Decimal
	SurroundingContext string
	SourceOffset       int
}

// KeywordGroup ranks amounts whose context mentions one of its keywords.
type KeywordGroup struct {
	Keywords []string
	Priority int
}

// DefaultKeywordGroups is the total-detection ranking, highest first.
func DefaultKeywordGroups() []KeywordGroup {
	return []KeywordGroup{
		{Keywords: []string{"total", "grand total", "final total"}, Priority: 10},
		{Keywords: []string{"amount due", "balance due"}, Priority: 9},
		{Keywords: []string{"subtotal", "sub total"}, Priority: 8},
		{Keywords: []string{"charge", "payment"}, Priority: 7},
		{Keywords: []string{"sum", "net"}, Priority: 6},
	}
}

// DefaultAmountMatcher recognises $XX.XX, XX.XX$, "total: XX.XX",
// "amount: XX.XX" and "XX.XX USD". A token that runs on into more digits
// ("1,234.56") is rejected rather than cut short.
func DefaultAmountMatcher() PatternMatcher {
	return NewRegexMatcher(
		`\$\s?(\d+[.,]\d{2})\b`,
		`(?:^|[^\d.,])(\d+[.,]\d{2})\s?\$`,
		`(?i)total[:\s]*\$?\s?(\d+[.,]\d{2})\b`,
		`(?i)amount[:\s]*\$?\s?(\d+[.,]\d{2})\b`,
		`(?i)(?:^|[^\d.,])(\d+[.,]\d{2})\s*(?:usd|dollars?)\b`,
	)
}

type keywordPattern struct {
	re       *regexp.Regexp
	priority int
}

// AmountExtractor finds amount candidates and picks the receipt total.
type AmountExtractor struct {
	matcher  PatternMatcher
	keywords []keywordPattern
}

// NewAmountExtractor builds an extractor from a matcher and a keyword ranking.
func NewAmountExtractor(matcher PatternMatcher, groups []KeywordGroup) *AmountExtractor {
	var keywords []keywordPattern
	for _, g := range groups {
		for _, kw := range g.Keywords {
			keywords = append(keywords, keywordPattern{
				re:       regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`),
				priority: g.Priority,
			})
		}
	}
	return &AmountExtractor{matcher: matcher, keywords: keywords}
}

// ExtractAmounts returns every parsable amount strictly between 0 and 50000.
// Tokens that fail to parse are skipped.
func (e *AmountExtractor) ExtractAmounts(text string) []AmountCandidate {
	var candidates []AmountCandidate
	for _, m := range e.matcher.FindAll(text) {
		value, err := parseAmountToken(m.Value)
		if err != nil {
			continue
		}
		if !value.GreaterThan(minAmount) || !value.LessThan(maxAmount) {
			continue
		}
		candidates = append(candidates, AmountCandidate{
			Value:              value,
			SurroundingContext: contextWindow(text, m.Offset),
			SourceOffset:       m.Offset,
		})
	}
	return candidates
}

// SelectTotal picks the candidate whose context carries the highest-priority
// keyword, keeping the earliest one on ties. Without any keyword hit the
// largest candidate wins. ok is false when there are no candidates.
func (e *AmountExtractor) SelectTotal(candidates []AmountCandidate, text string) (total decimal.Decimal, ok bool) {
	if len(candidates) == 0 {
		return decimal.Zero, false
	}

	type best struct {
		value    decimal.Decimal
		priority int
	}
	acc := best{}
	for _, c := range candidates {
		ctx := c.SurroundingContext
		if ctx == "" {
			ctx = contextWindow(text, c.SourceOffset)
		}
		if p := e.priority(ctx); p > acc.priority {
			acc = best{value: c.Value, priority: p}
		}
	}
	if acc.priority > 0 {
		return acc.value, true
	}

	largest := candidates[0].Value
	for _, c := range candidates[1:] {
		if c.Value.GreaterThan(largest) {
			largest = c.Value
		}
	}
	return largest, true
}

// priority returns the highest keyword priority found in ctx. A keyword hit
// lying inside a longer keyword hit ("total" in "sub total") does not count.
func (e *AmountExtractor) priority(ctx string) int {
	type hit struct{ start, end, priority int }
	var hits []hit
	for _, kw := range e.keywords {
		for _, loc := range kw.re.FindAllStringIndex(ctx, -1) {
			hits = append(hits, hit{loc[0], loc[1], kw.priority})
		}
	}

	highest := 0
	for i, h := range hits {
		covered := false
		for j, o := range hits {
			if i != j && o.start <= h.start && h.end <= o.end && o.end-o.start > h.end-h.start {
				covered = true
				break
			}
		}
		if !covered && h.priority > highest {
			highest = h.priority
		}
	}
	return highest
}

// contextWindow returns the lowercased text within contextRadius bytes of
// offset. The window reaches back across lines, so a keyword printed above
// its amount still counts, but stops forward at the end of the amount's line.
func contextWindow(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}
	start := max(0, offset-contextRadius)
	end := min(len(text), offset+contextRadius)

	if nl := strings.IndexByte(text[offset:end], '\n'); nl >= 0 {
		end = offset + nl
	}
	return strings.ToLower(text[start:end])
}

// parseAmountToken parses "12.50" or "12,50" into a value with at most two
// fractional digits.
func parseAmountToken(token string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(token), ",", ".", 1))
	if err != nil {
		return decimal.Zero, err
	}
	return v.Round(2), nil
}
