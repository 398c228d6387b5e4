package shared

import (
	"net/http"
	"strconv"
)

// Pagination is a validated limit/offset pair. Out-of-range or malformed
// query values fall back to the caller's defaults instead of erroring;
// paging is a convenience, not part of the request contract.
type Pagination struct {
	Limit  int
	Offset int
}

func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	page := Pagination{Limit: defaultLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		page.Offset = v
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}

// Bounds clamps the page window to [0, total) so callers can slice directly.
// An offset past the end yields an empty window.
func (p Pagination) Bounds(total int) (start, end int) {
	if p.Offset >= total {
		return total, total
	}
	start = p.Offset
	end = start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}
