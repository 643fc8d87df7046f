// Package tokenizer estimates token counts for prompts when the provider
// response omits usage figures.
package tokenizer

import (
	"strings"
	"unicode"
)

// Estimate returns a rough token count. CJK text tokenizes close to one
// token per rune; latin text averages ~4 characters per token.
func Estimate(text string) int {
	if text == "" {
		return 0
	}

	var cjk, latin int
	for _, r := range text {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			cjk++
		} else if !unicode.IsSpace(r) {
			latin++
		}
	}

	n := cjk + latin/4
	if n < 1 {
		n = len(strings.Fields(text))
	}
	if n < 1 {
		n = 1
	}
	return n
}
