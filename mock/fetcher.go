package mock

import (
	"context"

	"github.com/fcoelho/arremate"
)

var _ arremate.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of arremate.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, req arremate.Request) (*arremate.Page, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, req arremate.Request) (*arremate.Page, error) {
	return f.FetchFn(ctx, req)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ arremate.Handler = (*Handler)(nil)

// Handler is a mock implementation of arremate.Handler.
type Handler struct {
	StartRequestsFn  func(ctx context.Context, seeds []string) ([]arremate.Request, error)
	HandleResponseFn func(ctx context.Context, page *arremate.Page) (*arremate.HandleResult, error)
}

func (h *Handler) StartRequests(ctx context.Context, seeds []string) ([]arremate.Request, error) {
	return h.StartRequestsFn(ctx, seeds)
}

func (h *Handler) HandleResponse(ctx context.Context, page *arremate.Page) (*arremate.HandleResult, error) {
	return h.HandleResponseFn(ctx, page)
}
