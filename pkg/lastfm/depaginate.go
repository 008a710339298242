package lastfm

import (
	"context"

	"github.com/jfmyers9/lastfm/pkg/lazylist"
)

// page is one page of a paginated listing: the parsed items plus the total
// page count the API reports on page 1.
type page[T any] struct {
	totalPages int
	items      []T
}

// fetchPage fetches and parses one page of a listing. Page numbers are
// 1-based. Call sites build the request parameters and convert raw records
// into domain objects; depaginate is agnostic to record shape.
type fetchPage[T any] func(ctx context.Context, pageNum int) (page[T], error)

// depaginate turns a paged listing API into one lazy sequence.
//
// Nothing is fetched until the first element is requested. The total page
// count is read from page 1 and fixed from then on; pages advance
// monotonically and each page is fetched exactly once per sequence,
// regardless of how many times the sequence is iterated (lazylist caches
// produced elements). A fetch error surfaces at the point materialization
// reaches the failing page and leaves earlier pages' items readable.
func depaginate[T any](ctx context.Context, fetch fetchPage[T]) *lazylist.List[T] {
	cur := 0     // last fetched page
	total := -1  // unknown until page 1 arrives
	var buf []T  // items of the current page
	idx := 0     // next unread item in buf

	return lazylist.New(func() (T, bool, error) {
		var zero T
		for {
			if idx < len(buf) {
				item := buf[idx]
				idx++
				return item, true, nil
			}
			if total >= 0 && cur >= total {
				return zero, false, nil
			}
			p, err := fetch(ctx, cur+1)
			if err != nil {
				return zero, false, err
			}
			cur++
			if total < 0 {
				total = p.totalPages
				if total < 1 {
					total = 1
				}
			}
			buf = p.items
			idx = 0
		}
	})
}
