package textstat

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// tokenPattern matches maximal runs of word characters, at least two long
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]{2,}`)

// Normalize composes text to NFC and lowercases it. A fresh Caser is used per
// call because Casers carry state.
func Normalize(text string) string {
	return cases.Lower(language.Russian).String(norm.NFC.String(text))
}

// Tokenize normalizes text and splits it into terms
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(Normalize(text), -1)
}
