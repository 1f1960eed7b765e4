// Package list implements the paginated list engine: an ordered,
// append-only accumulation of pages fetched under one filter key, with
// an in-flight guard serializing fetches and an epoch token discarding
// stale responses after the key changes.
//
// The engine is a synchronous state machine. Callers obtain a Request
// from Reset, BeginNext or Retry, perform the fetch however they like
// (a Bubble Tea command here), and hand the outcome back to Complete.
// A Request whose epoch no longer matches is ignored, which is the
// cooperative equivalent of cancelling the fetch.
package list

// Pagination is the paging metadata carried by every fetched page.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PerPage     int
}

// Page is one fetched batch of items plus its metadata. Item order
// within a page is the server's.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Request identifies one sanctioned fetch. Key and PageNum parameterize
// the call; epoch binds the result to the engine state that issued it.
type Request struct {
	Key     string
	PageNum int
	epoch   int
}

// Engine owns the ListState for one list. Only the engine mutates its
// pages; triggers and filters merely request transitions.
type Engine[T any] struct {
	key      string
	epoch    int
	pages    []Page[T]
	inFlight bool
	err      error
	failed   *Request // last failed request, for Retry
}

// NewEngine returns an empty engine. Nothing fetches until Reset.
func NewEngine[T any]() *Engine[T] {
	return &Engine[T]{}
}

// Reset discards all accumulated pages and issues the page-1 request
// under the new key. Any fetch still in flight for the previous state
// becomes stale: its epoch no longer matches and Complete drops it.
func (e *Engine[T]) Reset(key string) Request {
	e.key = key
	e.epoch++
	e.pages = nil
	e.err = nil
	e.failed = nil
	e.inFlight = true
	return Request{Key: key, PageNum: 1, epoch: e.epoch}
}

// Invalidate forces a full discard-and-refetch from page 1 under the
// currently active key. Used after create/delete mutations, which
// shift downstream offsets and cannot be patched incrementally.
func (e *Engine[T]) Invalidate() Request {
	return e.Reset(e.key)
}

// BeginNext issues the request for the next page. It is a no-op when a
// fetch is already in flight, the engine is in an error state, no page
// has been fetched yet, or the last page was final.
func (e *Engine[T]) BeginNext() (Request, bool) {
	if e.inFlight || e.err != nil || len(e.pages) == 0 || !e.HasNext() {
		return Request{}, false
	}
	e.inFlight = true
	next := e.pages[len(e.pages)-1].Pagination.CurrentPage + 1
	return Request{Key: e.key, PageNum: next, epoch: e.epoch}, true
}

// Retry re-issues the request that last failed, keeping all previously
// accumulated pages. It is a no-op when the engine is not in an error
// state.
func (e *Engine[T]) Retry() (Request, bool) {
	if e.err == nil || e.failed == nil || e.inFlight {
		return Request{}, false
	}
	e.inFlight = true
	return *e.failed, true
}

// Complete hands a fetch outcome back to the engine. Stale results
// (from before a Reset) are discarded without touching state. A failure
// keeps prior pages and records the request for Retry. It reports
// whether the result was applied.
func (e *Engine[T]) Complete(req Request, page Page[T], err error) bool {
	if req.epoch != e.epoch {
		return false
	}
	e.inFlight = false

	if err != nil {
		e.err = err
		failed := req
		e.failed = &failed
		return true
	}

	// Pages append strictly in ascending order; anything else is a
	// duplicate or out-of-order response and is dropped.
	if page.Pagination.CurrentPage != len(e.pages)+1 {
		return false
	}

	e.pages = append(e.pages, page)
	e.err = nil
	e.failed = nil
	return true
}

// Items returns the accumulated items: the concatenation of all pages
// in fetch order.
func (e *Engine[T]) Items() []T {
	n := 0
	for _, p := range e.pages {
		n += len(p.Items)
	}
	items := make([]T, 0, n)
	for _, p := range e.pages {
		items = append(items, p.Items...)
	}
	return items
}

// HasNext reports whether a further page exists.
func (e *Engine[T]) HasNext() bool {
	if len(e.pages) == 0 {
		return false
	}
	last := e.pages[len(e.pages)-1].Pagination
	return last.CurrentPage < last.TotalPages
}

// InFlight reports whether a fetch is outstanding.
func (e *Engine[T]) InFlight() bool { return e.inFlight }

// Err returns the recorded fetch failure, nil when healthy.
func (e *Engine[T]) Err() error { return e.err }

// Key returns the active filter key.
func (e *Engine[T]) Key() string { return e.key }

// PageCount returns the number of accumulated pages.
func (e *Engine[T]) PageCount() int { return len(e.pages) }

// TotalItems returns the server-reported total, 0 before any fetch.
func (e *Engine[T]) TotalItems() int {
	if len(e.pages) == 0 {
		return 0
	}
	return e.pages[len(e.pages)-1].Pagination.TotalItems
}

// Started reports whether the engine has fetched or is fetching.
func (e *Engine[T]) Started() bool {
	return e.inFlight || len(e.pages) > 0 || e.err != nil
}
