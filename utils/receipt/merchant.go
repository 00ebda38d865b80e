package receipt

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownMerchant is returned when no business name can be found.
const UnknownMerchant = "Unknown Merchant"

var (
	businessNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^([A-Z][A-Z \t&]{2,30})[ \t]*$`),
		regexp.MustCompile(`(?m)^([A-Z][a-zA-Z \t&]{2,30}(?:LLC|Inc|Corp|Ltd))$`),
		regexp.MustCompile(`(?im)^([A-Z][a-zA-Z \t&'.-]{2,30}(?:Restaurant|Cafe|Store|Shop|Market|Bar|Grill))$`),
		regexp.MustCompile(`(?m)^([A-Z][a-zA-Z \t&'.-]{5,30})$`),
	}

	merchantBoilerplate = []string{"RECEIPT", "THANK YOU", "CUSTOMER COPY", "CARD PAYMENT", "CASH PAYMENT", "TOTAL", "SUBTOTAL"}

	businessKeywords  = []string{"llc", "inc", "corp", "ltd", "restaurant", "store", "shop", "market", "cafe", "bar", "grill", "hotel", "gas", "station"}
	headerBoilerplate = []string{"receipt", "thank you", "customer", "copy", "store #", "reg #", "cashier", "card payment"}

	merchantLineChars = regexp.MustCompile(`^[A-Za-z0-9\s&'.-]+$`)
	digitsOnly        = regexp.MustCompile(`^\d+$`)

	locationPrefix = regexp.MustCompile(`(?i)^(?:STORE|LOCATION|REGISTER|REG)\b\s*#?\s*\d*\s*`)
	locationSuffix = regexp.MustCompile(`(?i)\s*\b(?:STORE|LOCATION|REGISTER|REG)\s*#?\s*\d*$`)
	edgePunct      = regexp.MustCompile(`^[^\w\s]+|[^\w\s]+$`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

const (
	keywordScanLines   = 8
	firstLineScanLines = 5
)

// MerchantResolver finds the business name on a receipt.
type MerchantResolver struct{}

// ResolveMerchant tries, in order: business-name patterns on the raw OCR
// text, header lines that look like a business, and the first meaningful
// line. lines are the normalized text lines.
func (r MerchantResolver) ResolveMerchant(rawText string, lines []string) string {
	raw := strings.ReplaceAll(rawText, "\r\n", "\n")

	name, ok := FirstSuccess(
		func() (string, bool) { return matchBusinessPattern(raw) },
		func() (string, bool) { return scanKeywordLines(lines) },
		func() (string, bool) { return firstMeaningfulLine(lines) },
	)
	if !ok {
		return UnknownMerchant
	}
	return CleanMerchantName(name)
}

func matchBusinessPattern(text string) (string, bool) {
	for _, re := range businessNamePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			if len(candidate) >= 3 && !containsAny(strings.ToUpper(candidate), merchantBoilerplate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func scanKeywordLines(lines []string) (string, bool) {
	for _, line := range lines[:min(len(lines), keywordScanLines)] {
		if len(line) < 3 || len(line) > 50 {
			continue
		}
		lower := strings.ToLower(line)
		hasKeyword := containsAny(lower, businessKeywords)
		allCaps := line == strings.ToUpper(line)
		if (hasKeyword || allCaps) &&
			!tooManyDigits(line) &&
			merchantLineChars.MatchString(line) &&
			!containsAny(lower, headerBoilerplate) {
			return line, true
		}
	}
	return "", false
}

func firstMeaningfulLine(lines []string) (string, bool) {
	for _, line := range lines[:min(len(lines), firstLineScanLines)] {
		if len(line) >= 3 && len(line) <= 40 && !digitsOnly.MatchString(line) {
			return line, true
		}
	}
	return "", false
}

// tooManyDigits reports whether more than 40% of line is digits.
func tooManyDigits(line string) bool {
	digits := 0
	for _, r := range line {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) > float64(len(line))*0.4
}

// CleanMerchantName strips store/register numbers and edge punctuation and
// title-cases the result.
func CleanMerchantName(name string) string {
	cleaned := strings.TrimSpace(name)
	cleaned = locationPrefix.ReplaceAllString(cleaned, "")
	cleaned = locationSuffix.ReplaceAllString(cleaned, "")
	cleaned = edgePunct.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(spaceRun.ReplaceAllString(cleaned, " "))
	cleaned = cases.Title(language.English).String(strings.ToLower(cleaned))

	if len([]rune(cleaned)) <= 1 {
		return UnknownMerchant
	}
	return cleaned
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
