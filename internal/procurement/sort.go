package procurement

import (
	"sort"
	"strconv"
)

// SortBySerial orders numeric serial numbers first in numeric order, then the
// remaining serials as text, then by id.
func SortBySerial(items []Procurement) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		an, aNum := numericSerial(a.SerialNo)
		bn, bNum := numericSerial(b.SerialNo)
		switch {
		case aNum && bNum:
			if an != bn {
				return an < bn
			}
		case aNum != bNum:
			return aNum
		default:
			if a.SerialNo != b.SerialNo {
				return a.SerialNo < b.SerialNo
			}
		}
		return a.ID < b.ID
	})
}

func numericSerial(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil
}
