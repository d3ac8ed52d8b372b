// Package normalize turns the free text of attendance exports into canonical values:
// whitespace/case folding, header detection, major and degree-program classification,
// and timestamp parsing. Everything here is pure and safe for concurrent use.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Text trims s, lowercases it and collapses internal whitespace runs to one space.
func Text(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Email lowercases an address and removes every whitespace character in it.
func Email(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

// TitleCase upper-cases the first letter of each whitespace-separated token and
// joins the tokens with single spaces. The rest of each token is left as is.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
