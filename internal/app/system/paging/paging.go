// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultLimit is the page size used when the caller does not ask for one.
const DefaultLimit = 100

// MaxLimit caps what a caller may ask for in a single page.
const MaxLimit = 500

// Page is a parsed limit/offset pair ready for Mongo Find options.
type Page struct {
	Limit  int64
	Offset int64
}

// Parse reads the "limit" and "offset" query parameters. Absent or
// invalid values fall back to DefaultLimit / zero; limit is clamped to
// MaxLimit so one request cannot drag an unbounded result set.
func Parse(r *http.Request) Page {
	p := Page{Limit: DefaultLimit}

	if s := query.Get(r, "limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if s := query.Get(r, "offset"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			p.Offset = n
		}
	}
	return p
}
