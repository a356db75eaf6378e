package engine

import (
	"container/heap"
	"strings"
	"sync"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/bloom"
)

// Ensure Frontier implements arremate.URLFrontier at compile time.
var _ arremate.URLFrontier = (*Frontier)(nil)

// Frontier is the engine's work queue with Bloom filter deduplication.
// Requests pinned to the detail page type are popped before listing
// requests, so a run reaches extractable pages early; within a priority
// band the frontier is FIFO. Safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue *requestHeap
	seq   int
}

// NewFrontier creates a Frontier sized for n expected URLs with the
// given false positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &requestHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewFilter(n, fpRate),
		queue: h,
	}
}

// Push adds a request to the frontier. Returns false if the URL has
// already been seen. Fragments are stripped first, so URLs differing
// only by fragment are duplicates.
func (f *Frontier) Push(req arremate.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := stripFragment(req.URL)
	if f.seen.TestAndAdd(url) {
		return false
	}

	req.URL = url
	f.seq++
	heap.Push(f.queue, queuedRequest{req: req, seq: f.seq})
	return true
}

// Pop returns the next request in schedule order.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (arremate.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return arremate.Request{}, false
	}
	qr, _ := heap.Pop(f.queue).(queuedRequest)
	return qr.req, true
}

// Len returns the number of queued requests.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the URL has been processed or queued.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(stripFragment(url))
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}

// queuedRequest pairs a request with its arrival order for FIFO
// tie-breaking.
type queuedRequest struct {
	req arremate.Request
	seq int
}

func (q queuedRequest) priority() int {
	if q.req.Meta.ForcedType == arremate.PageTypeDetail {
		return 1
	}
	return 0
}

// requestHeap implements heap.Interface: higher priority first, earlier
// arrival first within a priority.
type requestHeap []queuedRequest

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if pi, pj := h[i].priority(), h[j].priority(); pi != pj {
		return pi > pj
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) {
	qr, _ := x.(queuedRequest)
	*h = append(*h, qr)
}

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
