package normalize

import "regexp"

// Program is the canonical degree-program classification.
type Program string

const (
	ProgramUndergraduate Program = "Undergraduate"
	ProgramGraduate      Program = "Graduate"
	ProgramUnknown       Program = "Unknown"
)

var classYearPrograms = map[string]Program{
	"freshman":      ProgramUndergraduate,
	"sophomore":     ProgramUndergraduate,
	"junior":        ProgramUndergraduate,
	"senior":        ProgramUndergraduate,
	"undergraduate": ProgramUndergraduate,
	"undergrad":     ProgramUndergraduate,
	"1st year":      ProgramUndergraduate,
	"2nd year":      ProgramUndergraduate,
	"3rd year":      ProgramUndergraduate,
	"4th year":      ProgramUndergraduate,
	"grad":          ProgramGraduate,
	"graduate":      ProgramGraduate,
	"masters":       ProgramGraduate,
	"phd":           ProgramGraduate,
}

var (
	graduateToken = regexp.MustCompile(
		`\bm\.?\s?s\b|\b(ma|mba|mph|mfa|mm|mlis|mpa|msw|mat|mup|mbt|mara|phd)\b|\bmaster|\bgraduate\b|\bdoctor`)
	undergraduateToken = regexp.MustCompile(
		`\bb\.?\s?s\b|\bb\.?\s?a\b|\b(bfa|bm)\b|\bbachelor|\bundergrad`)
)

// ProgramFromClassYear maps a self-reported class year to a program by exact
// match on the normalized text. Anything outside the vocabulary is Unknown.
func ProgramFromClassYear(raw string) Program {
	if p, ok := classYearPrograms[Text(raw)]; ok {
		return p
	}
	return ProgramUnknown
}

// InferProgramFromMajor looks for degree tokens inside a major string
// ("M.S. CS", "BA English"). Graduate tokens win over undergraduate ones.
// ok is false when the text carries no degree token at all.
func InferProgramFromMajor(raw string) (p Program, ok bool) {
	s := Text(raw)
	switch {
	case s == "":
		return "", false
	case graduateToken.MatchString(s):
		return ProgramGraduate, true
	case undergraduateToken.MatchString(s):
		return ProgramUndergraduate, true
	}
	return "", false
}
