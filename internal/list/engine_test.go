package list

import (
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func page(current, totalPages int, items ...string) Page[string] {
	return Page[string]{
		Items: items,
		Pagination: Pagination{
			CurrentPage: current,
			TotalPages:  totalPages,
			TotalItems:  totalPages * len(items),
			PerPage:     len(items),
		},
	}
}

func TestResetIssuesPageOne(t *testing.T) {
	e := NewEngine[string]()
	req := e.Reset("name=&status=active")

	if req.PageNum != 1 {
		t.Errorf("PageNum = %d, want 1", req.PageNum)
	}
	if req.Key != "name=&status=active" {
		t.Errorf("Key = %q, want the reset key", req.Key)
	}
	if !e.InFlight() {
		t.Error("engine should be in flight after Reset")
	}
	if !e.Started() {
		t.Error("engine should report started after Reset")
	}
}

func TestBeginNextGuards(t *testing.T) {
	t.Run("before any fetch", func(t *testing.T) {
		e := NewEngine[string]()
		if _, ok := e.BeginNext(); ok {
			t.Error("BeginNext should refuse before the first Reset")
		}
	})

	t.Run("while in flight", func(t *testing.T) {
		e := NewEngine[string]()
		e.Reset("k")
		if _, ok := e.BeginNext(); ok {
			t.Error("BeginNext should refuse while a fetch is outstanding")
		}
	})

	t.Run("after final page", func(t *testing.T) {
		e := NewEngine[string]()
		req := e.Reset("k")
		e.Complete(req, page(1, 1, "a", "b"), nil)
		if _, ok := e.BeginNext(); ok {
			t.Error("BeginNext should refuse when the last page was final")
		}
	})

	t.Run("in error state", func(t *testing.T) {
		e := NewEngine[string]()
		req := e.Reset("k")
		e.Complete(req, Page[string]{}, errors.New("boom"))
		if _, ok := e.BeginNext(); ok {
			t.Error("BeginNext should refuse while an error is recorded")
		}
	})
}

func TestBeginNextRequestsFollowingPage(t *testing.T) {
	e := NewEngine[string]()
	req := e.Reset("k")
	e.Complete(req, page(1, 3, "a", "b"), nil)

	next, ok := e.BeginNext()
	if !ok {
		t.Fatal("BeginNext refused with pages remaining")
	}
	if next.PageNum != 2 {
		t.Errorf("PageNum = %d, want 2", next.PageNum)
	}
	if next.Key != "k" {
		t.Errorf("Key = %q, want k", next.Key)
	}
}

func TestStaleEpochDiscarded(t *testing.T) {
	e := NewEngine[string]()
	old := e.Reset("k1")

	// Filter changed before the old fetch returned.
	fresh := e.Reset("k2")

	if applied := e.Complete(old, page(1, 2, "stale"), nil); applied {
		t.Error("stale result should not be applied")
	}
	if e.PageCount() != 0 {
		t.Errorf("PageCount = %d after stale result, want 0", e.PageCount())
	}
	if !e.InFlight() {
		t.Error("stale result must not clear the in-flight flag of the new fetch")
	}

	if applied := e.Complete(fresh, page(1, 2, "current"), nil); !applied {
		t.Error("current result should be applied")
	}
	if got := e.Items(); len(got) != 1 || got[0] != "current" {
		t.Errorf("Items = %v, want [current]", got)
	}
}

func TestOutOfOrderPageDropped(t *testing.T) {
	e := NewEngine[string]()
	req := e.Reset("k")
	e.Complete(req, page(1, 3, "a"), nil)

	dup := Request{Key: "k", PageNum: 1, epoch: req.epoch}
	if applied := e.Complete(dup, page(1, 3, "a"), nil); applied {
		t.Error("duplicate page should be dropped")
	}
	if e.PageCount() != 1 {
		t.Errorf("PageCount = %d, want 1", e.PageCount())
	}

	skipped := Request{Key: "k", PageNum: 3, epoch: req.epoch}
	if applied := e.Complete(skipped, page(3, 3, "c"), nil); applied {
		t.Error("page skipping ahead should be dropped")
	}
}

func TestErrorKeepsPagesAndRetrySucceeds(t *testing.T) {
	e := NewEngine[string]()
	req := e.Reset("k")
	e.Complete(req, page(1, 5, "a", "b"), nil)
	req2, _ := e.BeginNext()
	e.Complete(req2, page(2, 5, "c", "d"), nil)
	req3, _ := e.BeginNext()
	e.Complete(req3, page(3, 5, "e", "f"), nil)

	req4, _ := e.BeginNext()
	e.Complete(req4, Page[string]{}, errors.New("timeout"))

	if e.Err() == nil {
		t.Fatal("error not recorded")
	}
	if e.PageCount() != 3 {
		t.Errorf("PageCount = %d after failure, want 3 retained", e.PageCount())
	}

	retry, ok := e.Retry()
	if !ok {
		t.Fatal("Retry refused in error state")
	}
	if retry.PageNum != 4 {
		t.Errorf("retry PageNum = %d, want 4", retry.PageNum)
	}

	e.Complete(retry, page(4, 5, "g", "h"), nil)
	if e.Err() != nil {
		t.Errorf("Err = %v after successful retry, want nil", e.Err())
	}
	if got, want := len(e.Items()), 8; got != want {
		t.Errorf("item count = %d after retry, want %d (no duplication)", got, want)
	}
}

func TestRetryRefusedWhenHealthy(t *testing.T) {
	e := NewEngine[string]()
	req := e.Reset("k")
	e.Complete(req, page(1, 2, "a"), nil)

	if _, ok := e.Retry(); ok {
		t.Error("Retry should refuse without a recorded failure")
	}
}

func TestInvalidateKeepsKeyAndBumpsEpoch(t *testing.T) {
	e := NewEngine[string]()
	req := e.Reset("k")
	e.Complete(req, page(1, 2, "a"), nil)
	inFlightReq, _ := e.BeginNext()

	inv := e.Invalidate()
	if inv.Key != "k" {
		t.Errorf("Invalidate key = %q, want k", inv.Key)
	}
	if inv.PageNum != 1 {
		t.Errorf("Invalidate PageNum = %d, want 1", inv.PageNum)
	}
	if e.PageCount() != 0 {
		t.Errorf("PageCount = %d after Invalidate, want 0", e.PageCount())
	}

	// The fetch issued before invalidation is now stale.
	if applied := e.Complete(inFlightReq, page(2, 2, "b"), nil); applied {
		t.Error("pre-invalidation fetch should be discarded")
	}
}

func TestItemsConcatenateInFetchOrder(t *testing.T) {
	e := NewEngine[string]()
	req := e.Reset("k")
	e.Complete(req, page(1, 2, "a", "b"), nil)
	req2, _ := e.BeginNext()
	e.Complete(req2, page(2, 2, "c", "d"), nil)

	got := e.Items()
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Items = %v, want %v", got, want)
		}
	}
	if e.HasNext() {
		t.Error("HasNext = true on the final page")
	}
	if got := e.TotalItems(); got != 4 {
		t.Errorf("TotalItems = %d, want 4", got)
	}
}

// TestEngineProperties drives the engine with random operation
// sequences and checks its structural invariants after every step.
func TestEngineProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine[int]()
		var pending []Request // requests handed out and not yet completed
		totalPages := rapid.IntRange(1, 5).Draw(t, "totalPages")

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("op%d", i))
			switch op {
			case 0:
				key := rapid.SampledFrom([]string{"a", "b", "c"}).Draw(t, fmt.Sprintf("key%d", i))
				pending = append(pending, e.Reset(key))
			case 1:
				if req, ok := e.BeginNext(); ok {
					pending = append(pending, req)
				}
			case 2:
				if req, ok := e.Retry(); ok {
					pending = append(pending, req)
				}
			case 3:
				if len(pending) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(pending)-1).Draw(t, fmt.Sprintf("idx%d", i))
				req := pending[idx]
				pending = append(pending[:idx], pending[idx+1:]...)

				if rapid.Bool().Draw(t, fmt.Sprintf("fail%d", i)) {
					e.Complete(req, Page[int]{}, errors.New("fetch failed"))
				} else {
					p := Page[int]{
						Items: []int{req.PageNum},
						Pagination: Pagination{
							CurrentPage: req.PageNum,
							TotalPages:  totalPages,
							TotalItems:  totalPages,
							PerPage:     1,
						},
					}
					e.Complete(req, p, nil)
				}
			}

			// Pages always hold consecutive numbers starting at 1.
			for n, p := range e.pages {
				if p.Pagination.CurrentPage != n+1 {
					t.Fatalf("page %d has CurrentPage %d", n, p.Pagination.CurrentPage)
				}
			}
			// Items mirror the pages exactly.
			if got, want := len(e.Items()), e.PageCount(); got != want {
				t.Fatalf("item count %d != page count %d", got, want)
			}
			// An error state always has a retryable request recorded.
			if e.Err() != nil && e.failed == nil {
				t.Fatal("error recorded without a retry request")
			}
		}
	})
}
