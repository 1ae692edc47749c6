package personnel

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByName orders people by last then first name using Greek collation so
// accented and final-sigma forms sort next to their base letters.
func SortByName(people []Personnel) {
	c := collate.New(language.Greek, collate.IgnoreCase)
	sort.SliceStable(people, func(i, j int) bool {
		if cmp := c.CompareString(people[i].LastName, people[j].LastName); cmp != 0 {
			return cmp < 0
		}
		if cmp := c.CompareString(people[i].FirstName, people[j].FirstName); cmp != 0 {
			return cmp < 0
		}
		return people[i].ID < people[j].ID
	})
}
