package practice

import "strings"

// Normalize canonicalizes a free-text answer: surrounding whitespace is trimmed,
// letters are lowercased and internal whitespace runs collapse to one space.
// Punctuation is kept, so "don't" and "dont" stay different answers.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Equal reports whether answer matches target after normalization
func Equal(answer, target string) bool {
	return Normalize(answer) == Normalize(target)
}
