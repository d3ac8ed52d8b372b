package normalize

import "strings"

// Header aliases, highest priority first. Matching is by substring so that
// spreadsheet wording like "SJSU Email Address (required)" still resolves.
var (
	EmailHeaderAliases = []string{
		"sjsu email",
		"email address",
		"email (sjsu)",
		"email",
		"sjsu email address",
	}

	MajorHeaderAliases = []string{
		"degree(s) pursuing",
		"major",
		"major/ program",
		"major / program",
		"major /program",
		"what's your major?",
	}

	// The "year" column holds class year (Freshman..Grad), not the degree program itself.
	ClassYearHeaderAliases = []string{
		"what year are you?",
		"year",
	}

	CheckInHeaderAliases = []string{
		"timestamp",
	}
)

// FindHeader returns the first header whose trimmed, lowercased form contains
// one of aliases. Aliases are tried in order and, for each alias, headers are
// scanned in file order. The original (unmodified) header is returned.
func FindHeader(headers, aliases []string) (string, bool) {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, alias := range aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		if a == "" {
			continue
		}
		for i, h := range lowered {
			if strings.Contains(h, a) {
				return headers[i], true
			}
		}
	}
	return "", false
}
