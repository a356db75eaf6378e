// Package engine drives a crawl run: it pops requests from a deduped
// frontier, fetches them through a rate-limited worker pool, and feeds
// each response to the crawl controller one at a time. Records the
// controller emits are written through the record service.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/fcoelho/arremate"
	"golang.org/x/sync/errgroup"
)

// Frontier sizing and run bounds.
const (
	// frontierExpectedURLs sizes the Bloom filter for deduplication.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable dedup false positive rate.
	frontierFalsePositiveRate = 0.01
	// DefaultMaxURLs caps dispatched URLs to prevent runaway crawls.
	DefaultMaxURLs = 1000
	// DefaultConcurrency is the fetch worker pool size.
	DefaultConcurrency = 10
)

// Engine coordinates one crawl run. All collaborators must be set;
// Limiter and Problems are optional.
type Engine struct {
	Fetcher     arremate.Fetcher
	Handler     arremate.Handler
	Records     arremate.RecordService
	Problems    arremate.ProblemSiteService
	Limiter     arremate.DomainLimiter
	Logger      *slog.Logger
	Concurrency int
	MaxURLs     int
	RetryDelays []time.Duration
}

// Result holds the outcome of a crawl run.
type Result struct {
	Fetched    int
	Failed     int
	Saved      int
	Duplicates int
}

// fetchResult is one completed fetch handed back to the coordinator.
type fetchResult struct {
	req  arremate.Request
	page *arremate.Page
	err  error
}

// Run executes a crawl from the seed URLs until the frontier drains, the
// URL cap is reached, or the context is canceled. Responses are handled
// strictly one at a time in the coordinator goroutine, so the controller
// never sees two callbacks concurrently.
func (e *Engine) Run(ctx context.Context, seeds []string) (*Result, error) {
	reqs, err := e.Handler.StartRequests(ctx, seeds)
	if err != nil {
		return nil, err
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	for _, req := range reqs {
		frontier.Push(req)
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	maxURLs := e.MaxURLs
	if maxURLs <= 0 {
		maxURLs = DefaultMaxURLs
	}

	workCh := make(chan arremate.Request, concurrency)
	resultCh := make(chan fetchResult)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			for req := range workCh {
				res := e.fetch(gctx, req)
				select {
				case resultCh <- res:
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(resultCh)
		close(done)
	}()

	var result Result
	dispatched := 0
	pending := 0
	var next *arremate.Request

	if req, ok := frontier.Pop(); ok {
		next = &req
	}

coordinatorLoop:
	for {
		if next == nil && pending == 0 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if next != nil && dispatched < maxURLs {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case workCh <- *next:
				dispatched++
				pending++
				next = nil
			case res := <-resultCh:
				pending--
				e.handle(ctx, &res, frontier, &result)
			}
		} else {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case res, ok := <-resultCh:
				if !ok {
					break coordinatorLoop
				}
				pending--
				e.handle(ctx, &res, frontier, &result)
			}
		}

		if next == nil && dispatched < maxURLs {
			if req, ok := frontier.Pop(); ok {
				next = &req
			}
		}
	}

	close(workCh)

	// Drain completions from workers that were mid-fetch.
	drainTimeout := time.After(5 * time.Second)
drainLoop:
	for {
		select {
		case res, ok := <-resultCh:
			if !ok {
				break drainLoop
			}
			pending--
			e.handle(ctx, &res, frontier, &result)
		case <-drainTimeout:
			break drainLoop
		case <-done:
			break drainLoop
		}
	}

	e.logger().Info("crawl run finished",
		"fetched", result.Fetched, "saved", result.Saved,
		"duplicates", result.Duplicates, "failed", result.Failed)
	return &result, nil
}

// fetch runs in a worker: rate-limit, then fetch with retry.
func (e *Engine) fetch(ctx context.Context, req arremate.Request) fetchResult {
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx, req.Meta.Domain); err != nil {
			return fetchResult{req: req, err: err}
		}
	}

	delays := e.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	page, err := fetchWithRetry(ctx, e.Fetcher, req, delays, e.logger())
	return fetchResult{req: req, page: page, err: err}
}

// handle processes one completed fetch in the coordinator goroutine.
func (e *Engine) handle(ctx context.Context, res *fetchResult, frontier *Frontier, result *Result) {
	if res.err != nil {
		result.Failed++
		e.logger().Warn("fetch failed", "url", res.req.URL, "error", res.err)
		if e.Problems != nil && res.req.Meta.Domain != "" {
			if err := e.Problems.RegisterError(ctx, res.req.Meta.Domain, res.err.Error()); err != nil {
				e.logger().Warn("registering problem site failed", "domain", res.req.Meta.Domain, "error", err)
			}
		}
		return
	}

	result.Fetched++

	out, err := e.Handler.HandleResponse(ctx, res.page)
	if err != nil {
		result.Failed++
		e.logger().Warn("handling response failed", "url", res.page.URL, "error", err)
		return
	}

	for _, req := range out.Next {
		frontier.Push(req)
	}

	if out.Record != nil {
		switch err := e.Records.CreateRecord(ctx, out.Record); {
		case err == nil:
			result.Saved++
		case arremate.ErrorCode(err) == arremate.ECONFLICT:
			result.Duplicates++
		default:
			result.Failed++
			e.logger().Warn("saving record failed", "url", out.Record.URL, "error", err)
		}
	}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
