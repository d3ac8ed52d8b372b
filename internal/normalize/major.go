package normalize

import (
	"regexp"
	"strings"
)

// Category is the five-way major taxonomy used by the dashboard.
type Category string

const (
	CategoryTechnical      Category = "Technical"
	CategoryBusiness       Category = "Business"
	CategoryHumanitiesArts Category = "Humanities & Arts"
	CategoryHealthSciences Category = "Health Sciences"
	CategoryOtherUnknown   Category = "Other/Unknown"
)

// UnknownMajor is the label recorded when no major can be determined.
const UnknownMajor = "Unknown"

type majorAlias struct {
	keys     []string
	label    string
	category Category
}

// Tried top to bottom; the first key found in the canonical major wins.
// Keys of three letters or fewer must match a whole word ("cs" must not hit "physics").
var majorAliases = []majorAlias{
	// Technical
	{[]string{"computer science", "comp sci", "cs", "bscs"}, "Computer Science", CategoryTechnical},
	{[]string{"software engineering", "software eng", "swe", "se"}, "Software Engineering", CategoryTechnical},
	{[]string{"data science", "data sci", "ds"}, "Data Science", CategoryTechnical},
	{[]string{"artificial intelligence", "ai"}, "Artificial Intelligence", CategoryTechnical},
	{[]string{"computer engineering"}, "Computer Engineering", CategoryTechnical},
	{[]string{"informatics"}, "Informatics", CategoryTechnical},
	{[]string{"information science and data analytics", "information science", "data analytics"}, "Information Science and Data Analytics", CategoryTechnical},

	// Business
	{[]string{"business administration", "business"}, "Business", CategoryBusiness},
	{[]string{"communication studies", "communications", "public relations"}, "Business", CategoryBusiness},
	{[]string{"marketing"}, "Business", CategoryBusiness},
	{[]string{"finance"}, "Business", CategoryBusiness},
	{[]string{"accounting", "accountancy"}, "Business", CategoryBusiness},
	{[]string{"management information systems", "mis", "business analytics"}, "Business", CategoryBusiness},

	// Humanities & Arts
	{[]string{"ux", "ui ux", "interaction design"}, "Design", CategoryHumanitiesArts},
	{[]string{"graphic design", "animation", "illustration", "interior design", "industrial design", "studio art", "art history", "photography"}, "Arts / Design", CategoryHumanitiesArts},
	{[]string{"english", "history", "philosophy", "linguistics", "humanities", "religious studies"}, "Humanities", CategoryHumanitiesArts},
	{[]string{"journalism", "radio television film"}, "Humanities & Arts", CategoryHumanitiesArts},
	{[]string{"sociology", "justice studies", "criminology", "anthropology", "political science", "global studies", "chicana", "african american", "american studies", "interdisciplinary studies"}, "Humanities & Arts", CategoryHumanitiesArts},

	// Health Sciences
	{[]string{"nursing"}, "Nursing", CategoryHealthSciences},
	{[]string{"public health"}, "Public Health", CategoryHealthSciences},
	{[]string{"kinesiology"}, "Kinesiology", CategoryHealthSciences},
	{[]string{"occupational therapy"}, "Occupational Therapy", CategoryHealthSciences},
	{[]string{"speech language pathology"}, "Speech Language Pathology", CategoryHealthSciences},
	{[]string{"nutritional science", "nutrition"}, "Nutritional Science", CategoryHealthSciences},
	{[]string{"clinical mental health counseling", "counseling"}, "Counseling", CategoryHealthSciences},
}

type keywordBucket struct {
	keywords []string
	category Category
}

// Fallback when no alias matched; the label becomes the title-cased canonical major.
var keywordBuckets = []keywordBucket{
	{[]string{"engineering", "computer", "data", "statistics", "mathematics", "math", "physics", "chemistry",
		"geology", "meteorology", "climate", "earth system", "forensic science"}, CategoryTechnical},
	{[]string{"business", "account", "finance", "marketing", "management", "taxation",
		"public administration", "transportation management"}, CategoryBusiness},
	{[]string{"health", "nursing", "therapy", "nutrition", "kinesiology"}, CategoryHealthSciences},
	{[]string{"art", "design", "music", "dance", "theatre", "english", "history",
		"philosophy", "journalism", "film", "humanities", "language"}, CategoryHumanitiesArts},
}

// Normalized labels map back to themselves so that classifying a stored label is
// a no-op ("Humanities & Arts" would otherwise split on "and").
var knownLabels = func() map[string]majorAlias {
	m := make(map[string]majorAlias, len(majorAliases))
	for _, a := range majorAliases {
		if _, ok := m[Text(a.label)]; !ok {
			m[Text(a.label)] = a
		}
	}
	return m
}()

var blankMajors = map[string]bool{
	"n/a": true, "na": true, "none": true, "blank": true,
	"undeclared": true, "undecided": true, "unknown": true,
}

var (
	decorativeChars = regexp.MustCompile(`[()•*|\[\]{}]`)
	punctuation     = regexp.MustCompile("[.,:;'\"`!?]")
	majorSeparator  = regexp.MustCompile(`\s*(?:\+|/|,|\band\b)\s*`)
	concentration   = regexp.MustCompile(`\bconcentration\b.*$`)
	degreeToken     = regexp.MustCompile(
		`\b(?:b\s?s|b\s?a|m\s?s|mba|phd|bachelors?|masters?|undergrad(?:uate)?|graduate|bs|ba|ms|ma|mfa|mph|mm|mlis|mpa|msw|mat|mup|mbt|mara|bfa|bm)\b`)
)

// MajorBase reduces a free-text major to the lowercase canonical form used for
// classification. When several majors are listed only the first one is kept, where
// a part made only of degree tokens ("B.S.,") does not count as a major.
func MajorBase(raw string) string {
	s := Text(raw)
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "ui/ux", "ui ux")
	s = decorativeChars.ReplaceAllString(s, " ")

	for _, part := range majorSeparator.Split(s, -1) {
		part = punctuation.ReplaceAllString(part, " ")
		part = concentration.ReplaceAllString(part, " ")
		part = degreeToken.ReplaceAllString(Text(part), " ")
		if part = Text(part); part != "" {
			return part
		}
	}
	return ""
}

// ClassifyMajor maps a free-text major to a normalized label and category.
// Empty or placeholder values ("N/A", "Undeclared") yield (Unknown, Other/Unknown).
func ClassifyMajor(raw string) (string, Category) {
	if blankMajors[Text(raw)] {
		return UnknownMajor, CategoryOtherUnknown
	}
	if a, ok := knownLabels[Text(raw)]; ok {
		return a.label, a.category
	}
	base := MajorBase(raw)
	if base == "" || blankMajors[base] {
		return UnknownMajor, CategoryOtherUnknown
	}

	// These collide with later keywords ("economics" vs finance, "biology" vs the
	// science buckets), so they are settled first.
	switch {
	case strings.Contains(base, "economics") || base == "econ":
		return "Economics", CategoryBusiness
	case strings.Contains(base, "psychology") || base == "psych":
		return "Psychology", CategoryHealthSciences
	case strings.Contains(base, "biology") || base == "bio" || strings.Contains(base, "biological sciences"):
		return "Biology", CategoryHealthSciences
	}

	for _, alias := range majorAliases {
		for _, key := range alias.keys {
			if matchesKey(base, key) {
				return alias.label, alias.category
			}
		}
	}

	for _, bucket := range keywordBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(base, kw) {
				return TitleCase(base), bucket.category
			}
		}
	}

	return UnknownMajor, CategoryOtherUnknown
}

func matchesKey(base, key string) bool {
	if len(key) <= 3 {
		return strings.Contains(" "+base+" ", " "+key+" ")
	}
	return strings.Contains(base, key)
}
