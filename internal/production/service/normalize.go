package service

import (
	"strings"
	"unicode"
)

// NormalizeName canonicalizes a material name for matching: lowercase,
// только буквы/цифры/пробелы, серии пробелов схлопываются в один, края
// обрезаются. "Ткань, 1 кат." и "ткань 1 кат" считаются одним материалом.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
