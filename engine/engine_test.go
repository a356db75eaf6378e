package engine_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/engine"
	"github.com/fcoelho/arremate/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoFetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, req arremate.Request) (*arremate.Page, error) {
			return &arremate.Page{
				URL:        req.URL,
				Body:       "<html></html>",
				Header:     http.Header{"Content-Type": []string{"text/html"}},
				StatusCode: 200,
				Meta:       req.Meta,
			}, nil
		},
	}
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	t.Run("SeedErrorAbortsRun", func(t *testing.T) {
		t.Parallel()

		e := &engine.Engine{
			Fetcher: echoFetcher(),
			Handler: &mock.Handler{
				StartRequestsFn: func(ctx context.Context, seeds []string) ([]arremate.Request, error) {
					return nil, arremate.Errorf(arremate.EINVALID, "at least one seed URL required")
				},
			},
		}
		_, err := e.Run(context.Background(), nil)
		require.Error(t, err)
		assert.Equal(t, arremate.EINVALID, arremate.ErrorCode(err))
	})

	t.Run("DrivesListingToRecords", func(t *testing.T) {
		t.Parallel()

		handler := &mock.Handler{
			StartRequestsFn: func(ctx context.Context, seeds []string) ([]arremate.Request, error) {
				return []arremate.Request{{
					URL:  "https://site.com/leiloes",
					Meta: arremate.RequestMeta{Domain: "site.com", ForcedType: arremate.PageTypeList},
				}}, nil
			},
			HandleResponseFn: func(ctx context.Context, page *arremate.Page) (*arremate.HandleResult, error) {
				if page.Meta.ForcedType == arremate.PageTypeList {
					return &arremate.HandleResult{Next: []arremate.Request{
						{URL: "https://site.com/imovel/1", Meta: arremate.RequestMeta{Domain: "site.com", Depth: 1, ForcedType: arremate.PageTypeDetail}},
						{URL: "https://site.com/imovel/2", Meta: arremate.RequestMeta{Domain: "site.com", Depth: 1, ForcedType: arremate.PageTypeDetail}},
					}}, nil
				}
				return &arremate.HandleResult{Record: &arremate.AuctionRecord{
					URL:          page.URL,
					Title:        "Casa",
					SourceDomain: page.Meta.Domain,
				}}, nil
			},
		}

		var mu sync.Mutex
		seen := map[string]bool{}
		records := &mock.RecordService{
			CreateRecordFn: func(ctx context.Context, record *arremate.AuctionRecord) error {
				mu.Lock()
				defer mu.Unlock()
				if seen[record.URL] {
					return arremate.Errorf(arremate.ECONFLICT, "record already exists")
				}
				seen[record.URL] = true
				return nil
			},
		}

		e := &engine.Engine{
			Fetcher:     echoFetcher(),
			Handler:     handler,
			Records:     records,
			Concurrency: 2,
			RetryDelays: []time.Duration{},
		}
		res, err := e.Run(context.Background(), []string{"https://site.com/"})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Fetched)
		assert.Equal(t, 2, res.Saved)
		assert.Equal(t, 0, res.Failed)
	})

	t.Run("DuplicateRecordIsNotAFailure", func(t *testing.T) {
		t.Parallel()

		handler := &mock.Handler{
			StartRequestsFn: func(ctx context.Context, seeds []string) ([]arremate.Request, error) {
				return []arremate.Request{{URL: "https://site.com/imovel/1", Meta: arremate.RequestMeta{Domain: "site.com", ForcedType: arremate.PageTypeDetail}}}, nil
			},
			HandleResponseFn: func(ctx context.Context, page *arremate.Page) (*arremate.HandleResult, error) {
				return &arremate.HandleResult{Record: &arremate.AuctionRecord{URL: page.URL, Title: "Casa"}}, nil
			},
		}
		records := &mock.RecordService{
			CreateRecordFn: func(ctx context.Context, record *arremate.AuctionRecord) error {
				return arremate.Errorf(arremate.ECONFLICT, "record already exists")
			},
		}

		e := &engine.Engine{Fetcher: echoFetcher(), Handler: handler, Records: records}
		res, err := e.Run(context.Background(), []string{"https://site.com/"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Duplicates)
		assert.Equal(t, 0, res.Failed)
	})

	t.Run("FetchFailureRegistersProblemSite", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, req arremate.Request) (*arremate.Page, error) {
				return nil, arremate.Errorf(arremate.EUNAVAILABLE, "connection refused")
			},
		}
		handler := &mock.Handler{
			StartRequestsFn: func(ctx context.Context, seeds []string) ([]arremate.Request, error) {
				return []arremate.Request{{URL: "https://down.site.com/", Meta: arremate.RequestMeta{Domain: "down.site.com"}}}, nil
			},
			HandleResponseFn: func(ctx context.Context, page *arremate.Page) (*arremate.HandleResult, error) {
				t.Error("handler invoked for a failed fetch")
				return &arremate.HandleResult{}, nil
			},
		}

		var mu sync.Mutex
		var registered []string
		problems := &mock.ProblemSiteService{
			RegisterErrorFn: func(ctx context.Context, domain, errText string) error {
				mu.Lock()
				defer mu.Unlock()
				registered = append(registered, domain+": "+errText)
				return nil
			},
		}

		e := &engine.Engine{
			Fetcher:     fetcher,
			Handler:     handler,
			Problems:    problems,
			RetryDelays: []time.Duration{time.Millisecond},
		}
		res, err := e.Run(context.Background(), []string{"https://down.site.com/"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		require.Len(t, registered, 1)
		assert.True(t, strings.HasPrefix(registered[0], "down.site.com:"))
	})

	t.Run("URLCapBoundsTheRun", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		fetched := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, req arremate.Request) (*arremate.Page, error) {
				mu.Lock()
				fetched++
				mu.Unlock()
				return &arremate.Page{
					URL:        req.URL,
					Header:     http.Header{"Content-Type": []string{"text/html"}},
					StatusCode: 200,
					Meta:       req.Meta,
				}, nil
			},
		}

		n := 0
		handler := &mock.Handler{
			StartRequestsFn: func(ctx context.Context, seeds []string) ([]arremate.Request, error) {
				return []arremate.Request{{URL: "https://site.com/0"}}, nil
			},
			// Every page links to two fresh pages, forever.
			HandleResponseFn: func(ctx context.Context, page *arremate.Page) (*arremate.HandleResult, error) {
				n++
				return &arremate.HandleResult{Next: []arremate.Request{
					{URL: "https://site.com/" + strings.Repeat("a", n)},
					{URL: "https://site.com/" + strings.Repeat("b", n)},
				}}, nil
			},
		}

		e := &engine.Engine{Fetcher: fetcher, Handler: handler, MaxURLs: 5}
		res, err := e.Run(context.Background(), []string{"https://site.com/"})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Fetched)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 5, fetched)
	})
}
