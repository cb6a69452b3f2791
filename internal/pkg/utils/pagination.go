package utils

import (
	"fmt"
	"math"
)

// Paginate returns the page count and a "1-20 of 45" label.
func Paginate(total int64, page, limit int) (int, string) {
	if total == 0 || limit <= 0 {
		return 0, "0 of 0"
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	return totalPages, showing
}
