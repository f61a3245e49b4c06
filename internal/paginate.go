package weverse

import "context"

// Page is one decoded page of a cursor-driven feed. LastID is the cursor for
// the next page; zero or negative means the payload omitted or mangled it.
type Page[T any] struct {
	Items   []*T
	IsEnded bool
	LastID  int64
}

// FetchPage requests the page at the given cursor (0 = most recent page).
// Returning a nil page with a nil error signals a gate stop: the paginator
// keeps what it has accumulated instead of failing the whole request.
type FetchPage[T any] func(ctx context.Context, from int64) (*Page[T], error)

// Paginate runs the shared multi-page fetch loop. Bounds:
//
//	pages <= -1  no requests, nil result (explicit "don't fetch")
//	pages == 0   unbounded, until the server reports isEnded
//	pages == N   at most N+1 requests: the current page plus N continuations
//
// Candidates from each page pass through admit, which returns the subset
// actually new to the cache; only that subset accumulates. A missing or
// non-positive cursor stops the loop defensively, since some payloads omit
// isEnded.
func Paginate[T any](ctx context.Context, pages int, fetch FetchPage[T], admit func([]*T) []*T) []*T {
	if pages <= -1 {
		return nil
	}
	var acc []*T
	from := int64(0)
	for count := 0; ; count++ {
		page, err := fetch(ctx, from)
		if err != nil || page == nil {
			return acc
		}
		acc = append(acc, admit(page.Items)...)
		if page.IsEnded {
			return acc
		}
		if page.LastID <= 0 {
			return acc
		}
		if pages > 0 && count >= pages {
			return acc
		}
		from = page.LastID
	}
}
