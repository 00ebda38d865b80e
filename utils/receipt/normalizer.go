package receipt

import (
	"regexp"
	"strings"
)

var (
	artifactReplacer = strings.NewReplacer(
		"[", "", "]", "", "{", "", "}", "", "|", "", `\`, "",
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"—", "-", "–", "-",
	)

	symbolOnlyLine   = regexp.MustCompile(`^[^\w\s]*$`)
	repeatedRuleLine = regexp.MustCompile(`^[*_=\-+.]{3,}$`)
)

// misreads maps whole tokens OCR commonly gets wrong.
var misreads = map[string]string{
	"0": "O",
	"I": "1",
	"l": "1",
}

// Normalize cleans raw OCR text. Brackets, pipes and backslashes are removed,
// typographic quotes and dashes become ASCII, standalone misread tokens are
// corrected, whitespace inside each line is collapsed and lines with no
// meaningful content are dropped. The result keeps one text line per line.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := artifactReplacer.Replace(raw)

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		fields := strings.Fields(line)
		for i, f := range fields {
			if fix, ok := misreads[f]; ok {
				fields[i] = fix
			}
		}
		line = strings.Join(fields, " ")

		if line == "" || symbolOnlyLine.MatchString(line) || repeatedRuleLine.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// Lines splits normalized text into its non-empty lines.
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
