package view

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is the collation used when none is configured
const DefaultLocale = "hu"

// SortOrder is the direction of a sort
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

func (o SortOrder) Flip() SortOrder {
	if o == Desc {
		return Asc
	}
	return Desc
}

// newCollator returns a collator for locale, falling back to DefaultLocale when it does not parse.
// Collators are not safe for concurrent use, so each derivation builds its own.
func newCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return collate.New(tag)
}

// sortStableBy sorts items by key with locale-aware comparison. Ties keep source order in both directions.
func sortStableBy[T any](items []T, locale string, order SortOrder, key func(T) string) {
	c := newCollator(locale)
	sort.SliceStable(items, func(i, j int) bool {
		if order == Desc {
			return c.CompareString(key(items[j]), key(items[i])) < 0
		}
		return c.CompareString(key(items[i]), key(items[j])) < 0
	})
}
