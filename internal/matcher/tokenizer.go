package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Tokenizer splits text into the terms used for scoring. The same tokenizer is applied to
// corpus questions and to queries.
type Tokenizer func(text string) []string

// WhitespaceTokenizer splits on runs of whitespace and keeps tokens as they are:
// no case folding, punctuation stays attached ("(EVA)" and "EVA" are different terms).
func WhitespaceTokenizer(text string) []string {
	return strings.Fields(text)
}

// NormalizingTokenizer splits on whitespace, case-folds each token and trims
// leading and trailing punctuation. Tokens that become empty are dropped.
func NormalizingTokenizer(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))

	// cases.Caser keeps state, so a fresh one per call keeps the tokenizer goroutine safe
	folder := cases.Fold()
	for _, field := range fields {
		token := strings.TrimFunc(folder.String(field), func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if token == "" {
			continue
		}
		out = append(out, token)
	}

	return out
}
