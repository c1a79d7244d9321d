package transform

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	htmlTagRE    = regexp.MustCompile(`<[^>]+>`)
	// Allow word characters, whitespace, the Thai block and basic punctuation.
	// Everything else is stripped.
	disallowedRE = regexp.MustCompile(`[^\w\s\x{0E00}-\x{0E7F}.,:!?()-]`)
)

// CleanText collapses whitespace, strips HTML markup, and drops characters
// outside the allow-list. Thai script and diacritics are preserved.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = htmlTagRE.ReplaceAllString(text, "")
	text = disallowedRE.ReplaceAllString(text, "")
	text = whitespaceRE.ReplaceAllString(strings.TrimSpace(text), " ")
	return text
}

// datePatterns are tried in order. dayFirst marks patterns where the day
// precedes the month.
var datePatterns = []struct {
	re       *regexp.Regexp
	dayFirst bool
}{
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`), true},
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})`), true},
	{regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})`), true},
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`), false},
	{regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})`), false},
}

// NormalizeDate parses the accepted date layouts (dd/mm/yyyy, dd-mm-yyyy,
// dd.mm.yyyy, yyyy-mm-dd, yyyy/mm/dd). Invalid or ambiguous input yields nil
// rather than an error.
func NormalizeDate(dateStr string) *time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil
	}

	for _, pattern := range datePatterns {
		match := pattern.re.FindStringSubmatch(dateStr)
		if match == nil {
			continue
		}

		var year, month, day int
		if pattern.dayFirst {
			day, _ = strconv.Atoi(match[1])
			month, _ = strconv.Atoi(match[2])
			year, _ = strconv.Atoi(match[3])
		} else {
			year, _ = strconv.Atoi(match[1])
			month, _ = strconv.Atoi(match[2])
			day, _ = strconv.Atoi(match[3])
		}

		if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) {
			continue
		}

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return &t
	}

	return nil
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
