package receipt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxDescriptionLen = 100
	maxItems          = 5
)

// DefaultItemMatchers returns the per-category item vocabularies.
func DefaultItemMatchers() map[string]PatternMatcher {
	return map[string]PatternMatcher{
		CategoryFoodDining: NewRegexMatcher(
			`(?i)\b(pizza|burger|sandwich|coffee|tea|salad|soup|pasta|chicken|beef|fish|fries|drink|beer|wine|dessert|cake|ice cream)\b`,
			`(?i)\b(breakfast|lunch|dinner|brunch|appetizer|entree|side|beverage)\b`,
		),
		CategoryTransportation: NewRegexMatcher(
			`(?i)\b(gas|fuel|regular|premium|diesel|parking|toll|subway|bus|taxi|uber|lyft)\b`,
		),
		CategoryShopping: NewRegexMatcher(
			`(?i)\b(shirt|pants|shoes|dress|jacket|electronics|phone|laptop|book|magazine|gift)\b`,
		),
		CategoryHealthcare: NewRegexMatcher(
			`(?i)\b(prescription|medicine|consultation|checkup|vaccine|treatment|therapy)\b`,
		),
		CategoryEntertainment: NewRegexMatcher(
			`(?i)\b(movie|ticket|concert|show|game|subscription|streaming)\b`,
		),
	}
}

var categoryContexts = map[string]string{
	CategoryFoodDining:     "meal",
	CategoryTransportation: "travel",
	CategoryShopping:       "purchase",
	CategoryEntertainment:  "entertainment",
	CategoryHealthcare:     "medical",
	CategoryBillsUtilities: "bill payment",
	CategoryPersonalCare:   "personal care",
	CategoryEducation:      "education",
	CategoryTravel:         "travel",
	CategoryHomeGarden:     "home improvement",
	CategoryInsurance:      "insurance",
	CategoryTaxes:          "tax payment",
}

var (
	itemLine        = regexp.MustCompile(`^[a-z][a-z0-9\s-]*$`)
	itemBoilerplate = regexp.MustCompile(`\b(total|subtotal|tax|amount|cash|card|receipt|thank|you|store|location)\b`)
	leadingDigits   = regexp.MustCompile(`^\d+\s*`)
)

// ItemExtractor pulls purchased item names out of receipt text.
type ItemExtractor struct {
	matchers map[string]PatternMatcher
}

// NewItemExtractor builds an extractor from per-category matchers.
func NewItemExtractor(matchers map[string]PatternMatcher) *ItemExtractor {
	return &ItemExtractor{matchers: matchers}
}

// ExtractItems returns up to five item names for category. Category
// vocabulary wins; otherwise short plain lines are taken as item names.
// Lines equal to exclude (usually the merchant name) are skipped.
func (e *ItemExtractor) ExtractItems(text, category, exclude string) []string {
	items, _ := FirstSuccess(
		func() ([]string, bool) { return e.vocabularyItems(text, category) },
		func() ([]string, bool) { return genericItems(text, exclude) },
	)
	return items
}

func (e *ItemExtractor) vocabularyItems(text, category string) ([]string, bool) {
	matcher, ok := e.matchers[category]
	if !ok {
		return nil, false
	}
	var items []string
	seen := map[string]bool{}
	for _, m := range matcher.FindAll(text) {
		item := strings.ToLower(strings.TrimSpace(m.Value))
		if len(item) <= 2 || seen[item] {
			continue
		}
		seen[item] = true
		items = append(items, capitalize(item))
		if len(items) == maxItems {
			break
		}
	}
	return items, len(items) > 0
}

func genericItems(text, exclude string) ([]string, bool) {
	exclude = strings.ToLower(strings.TrimSpace(exclude))
	var items []string
	seen := map[string]bool{}
	for _, line := range strings.Split(strings.ToLower(text), "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 3 || len(line) >= 30 || line == exclude {
			continue
		}
		if !itemLine.MatchString(line) || itemBoilerplate.MatchString(line) {
			continue
		}
		item := leadingDigits.ReplaceAllString(line, "")
		if len(item) <= 2 || seen[item] {
			continue
		}
		seen[item] = true
		items = append(items, capitalize(item))
		if len(items) == maxItems {
			break
		}
	}
	return items, len(items) > 0
}

// DescriptionBuilder assembles human-readable transaction descriptions.
type DescriptionBuilder struct {
	items *ItemExtractor
}

// NewDescriptionBuilder builds descriptions using items for line items.
func NewDescriptionBuilder(items *ItemExtractor) *DescriptionBuilder {
	return &DescriptionBuilder{items: items}
}

// GenerateDescription joins the merchant with the purchased items, or with a
// phrase for the category when no items are found. The result is never
// blank, starts with an upper-case letter and is at most 100 characters.
func (b *DescriptionBuilder) GenerateDescription(merchant, text, category string) string {
	description := ""
	if merchant != UnknownMerchant {
		description = strings.TrimSpace(merchant)
	}

	items := b.items.ExtractItems(text, category, merchant)
	switch {
	case len(items) > 0:
		if description != "" {
			description += " - "
		}
		description += summarizeItems(items)
	case description != "":
		description += " - " + categoryContext(category)
	}

	description = strings.TrimSpace(description)
	if len(description) < 3 {
		description = strings.TrimSpace(category + " expense")
	}
	return truncate(capitalize(description), maxDescriptionLen)
}

func summarizeItems(items []string) string {
	if len(items) <= 3 {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d other items", strings.Join(items[:2], ", "), len(items)-2)
}

func categoryContext(category string) string {
	if c, ok := categoryContexts[category]; ok {
		return c
	}
	return "expense"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
