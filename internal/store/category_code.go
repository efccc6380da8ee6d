package store

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
)

var categoryCodePattern = regexp.MustCompile(`^` + regexp.QuoteMeta(domain.CategoryCodePrefix) + `(\d+)$`)

// NextCategoryCode returns the code following the highest well-formed code in
// codes. Malformed codes are ignored; with none, the sequence starts at CAT-001.
// The numeric part is padded to at least three digits, never truncated.
func NextCategoryCode(codes []string) string {
	highest := 0
	for _, code := range codes {
		m := categoryCodePattern.FindStringSubmatch(code)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", domain.CategoryCodePrefix, highest+1)
}
