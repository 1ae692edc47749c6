package options

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortValues orders by sort_order, then by Greek collation of the text.
func sortValues(values []Value) {
	c := collate.New(language.Greek, collate.IgnoreCase)
	sort.SliceStable(values, func(i, j int) bool {
		if values[i].SortOrder != values[j].SortOrder {
			return values[i].SortOrder < values[j].SortOrder
		}
		return c.CompareString(values[i].Value, values[j].Value) < 0
	})
}
