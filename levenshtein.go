package keysetpager

import fastlevenshtein "github.com/ka-weihe/fast-levenshtein"

// levenshtein returns the edit distance between a and b.
func levenshtein(a, b []rune) int {
	return fastlevenshtein.Distance(string(a), string(b))
}
