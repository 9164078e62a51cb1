package domain

import (
	"strings"

	"github.com/samber/lo"
)

// NormalizeName returns the upper-cased, trimmed form used for comparisons.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeNames normalizes and de-duplicates a list of names, dropping blanks.
func NormalizeNames(names []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(names, func(name string, _ int) string {
		return NormalizeName(name)
	})))
}
