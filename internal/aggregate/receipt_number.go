package aggregate

import (
	"strconv"
	"strings"
)

// CompareReceiptNumbers orders POS receipt numbers like "6-36175" by the
// numeric part after the last "-", then by the numeric prefix. Numbers that
// do not parse fall back to string order after all numeric ones.
func CompareReceiptNumbers(a, b string) int {
	pa, sa, okA := splitReceiptNumber(a)
	pb, sb, okB := splitReceiptNumber(b)

	switch {
	case okA && okB:
		if sa != sb {
			return cmpInt(sa, sb)
		}
		if pa != pb {
			return cmpInt(pa, pb)
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a, b)
}

func splitReceiptNumber(n string) (prefix int64, suffix int64, ok bool) {
	n = strings.TrimSpace(n)
	idx := strings.LastIndex(n, "-")
	if idx < 0 {
		s, err := strconv.ParseInt(n, 10, 64)
		return 0, s, err == nil
	}
	s, err := strconv.ParseInt(n[idx+1:], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	p, err := strconv.ParseInt(n[:idx], 10, 64)
	if err != nil {
		p = 0
	}
	return p, s, true
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
