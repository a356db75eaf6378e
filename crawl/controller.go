// Package crawl implements the crawl controller: the arremate.Handler
// that turns fetched pages into extracted records and follow-up
// requests. It owns the run-start sequence (challenge poll, problem-site
// skip, seed emission) and the depth/quota policy that bounds a run.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/acquire"
	"github.com/fcoelho/arremate/classify"
	"github.com/fcoelho/arremate/goquery"
)

// Defaults for the crawl policy.
const (
	DefaultMaxDepth          = 2
	DefaultMaxItemsPerDomain = 10
)

// linkOvershoot is how many times the remaining quota of links a listing
// may schedule. Some scheduled links will fail extraction, so a listing
// overshoots and the quota check on arrival drops the surplus.
const linkOvershoot = 2

// Ensure Controller implements arremate.Handler at compile time.
var _ arremate.Handler = (*Controller)(nil)

// Controller decides, for each fetched page, how to interpret it and
// what to fetch next. All collaborators must be set before use;
// Screenshotter is optional.
type Controller struct {
	Classifier    *classify.Classifier
	Acquirer      *acquire.Acquirer
	Extractor     *goquery.Extractor
	Cache         arremate.SelectorCacheService
	Problems      arremate.ProblemSiteService
	Challenges    arremate.ChallengeStore
	Cookies       arremate.CookieStore
	Screenshots   arremate.Screenshotter
	Logger        *slog.Logger
	MaxDepth      int
	MaxItems      int
	CaptureDetail bool

	mu        sync.Mutex
	extracted map[string]int
}

// StartRequests builds the initial request set for a run. It first
// consumes completed challenge artifacts into the cookie store, then
// emits one listing request per seed, skipping domains the problem-site
// registry says to give up on. An empty seed set is the only
// configuration error that aborts a run.
func (c *Controller) StartRequests(ctx context.Context, seeds []string) ([]arremate.Request, error) {
	if len(seeds) == 0 {
		return nil, arremate.Errorf(arremate.EINVALID, "at least one seed URL required")
	}

	c.consumeChallenges(ctx)

	skip := c.skippableDomains(ctx)

	reqs := make([]arremate.Request, 0, len(seeds))
	for _, seed := range seeds {
		u, err := url.Parse(seed)
		if err != nil || u.Host == "" {
			c.logger().Warn("invalid seed URL", "url", seed)
			continue
		}
		if skip[u.Host] {
			c.logger().Info("skipping problem site", "domain", u.Host)
			continue
		}

		manual := false
		if c.Cookies != nil {
			if _, ok, err := c.Cookies.LoadCookies(u.Host); err == nil && ok {
				manual = true
			}
		}

		reqs = append(reqs, arremate.Request{
			URL: seed,
			Meta: arremate.RequestMeta{
				Domain:        u.Host,
				Depth:         0,
				ForcedType:    arremate.PageTypeList,
				Seed:          true,
				ManualCookies: manual,
			},
		})
	}
	return reqs, nil
}

// consumeChallenges loads the cookies from every challenge an operator
// has completed since the last run and marks the artifacts processed.
// An operator's action only takes effect here, never mid-run.
func (c *Controller) consumeChallenges(ctx context.Context) {
	artifacts, err := c.Challenges.PollCompleted(ctx)
	if err != nil {
		c.logger().Warn("challenge poll failed", "error", err)
		return
	}
	for _, art := range artifacts {
		if err := c.Cookies.SaveCookies(art.Domain, art.Cookies); err != nil {
			c.logger().Warn("saving challenge cookies failed", "domain", art.Domain, "error", err)
			continue
		}
		if err := c.Challenges.MarkProcessed(ctx, art.Domain, art.Timestamp); err != nil {
			c.logger().Warn("marking challenge processed failed", "domain", art.Domain, "error", err)
			continue
		}
		c.logger().Info("challenge cookies loaded", "domain", art.Domain, "cookies", len(art.Cookies))
	}
}

func (c *Controller) skippableDomains(ctx context.Context) map[string]bool {
	skip := make(map[string]bool)
	sites, err := c.Problems.FindProblemSites(ctx)
	if err != nil {
		c.logger().Warn("problem site lookup failed", "error", err)
		return skip
	}
	for _, site := range sites {
		if site.Skippable() {
			skip[site.Domain] = true
		}
	}
	return skip
}

// HandleResponse processes one fetched page. Recoverable failures
// (transport errors, challenges, extraction misses) return an empty
// result so the run continues.
func (c *Controller) HandleResponse(ctx context.Context, page *arremate.Page) (*arremate.HandleResult, error) {
	domain := page.Meta.Domain
	if domain == "" {
		if u, err := url.Parse(page.URL); err == nil {
			domain = u.Host
		}
	}

	if page.StatusCode >= 300 || !page.IsText() {
		c.logger().Warn("unusable response", "url", page.URL, "status", page.StatusCode)
		if err := c.Problems.RegisterError(ctx, domain, statusText(page)); err != nil {
			c.logger().Warn("registering problem site failed", "domain", domain, "error", err)
		}
		return &arremate.HandleResult{}, nil
	}

	// Requests carrying manual cookies are trusted past the challenge
	// gate; re-detecting would loop forever on one cookie set.
	if !page.Meta.ManualCookies && c.Classifier.IsChallenge(page.Body, page.URL) {
		c.recordChallenge(ctx, domain, page.URL)
		return &arremate.HandleResult{}, nil
	}

	pageType := page.Meta.ForcedType
	if pageType == "" {
		res := c.Classifier.PageType(page.Body, page.URL, page.Meta.Depth, page.Meta.Seed)
		pageType = res.Type
		c.logger().Debug("page classified",
			"url", page.URL, "type", res.Type,
			"listScore", res.ListScore, "detailScore", res.DetailScore)
	}

	if pageType == arremate.PageTypeDetail {
		return c.handleDetail(ctx, page, domain)
	}
	return c.handleList(ctx, page, domain)
}

// recordChallenge captures the challenge page for the operator and
// persists a pending artifact. The branch ends here; the operator's
// cookies are picked up at the start of the next run.
func (c *Controller) recordChallenge(ctx context.Context, domain, pageURL string) {
	c.logger().Info("challenge detected", "url", pageURL, "domain", domain)

	art := &arremate.ChallengeArtifact{
		Domain: domain,
		URL:    pageURL,
		Status: arremate.ChallengePending,
	}
	if c.Screenshots != nil {
		path, err := c.Screenshots.Capture(ctx, pageURL)
		if err != nil {
			c.logger().Warn("challenge screenshot failed", "url", pageURL, "error", err)
		} else {
			art.Screenshot = path
		}
	}
	if err := c.Challenges.Put(ctx, art); err != nil {
		c.logger().Warn("persisting challenge artifact failed", "url", pageURL, "error", err)
	}
}

// handleList acquires a link selector, harvests the listing's links, and
// schedules follow-ups per the depth/quota policy.
func (c *Controller) handleList(ctx context.Context, page *arremate.Page, domain string) (*arremate.HandleResult, error) {
	depth := page.Meta.Depth
	if depth >= c.maxDepth() {
		return &arremate.HandleResult{}, nil
	}

	remaining := c.remainingQuota(domain)
	if remaining <= 0 {
		c.logger().Info("domain quota reached", "domain", domain)
		return &arremate.HandleResult{}, nil
	}

	sel, source, err := c.Acquirer.ListSelector(ctx, page.URL, domain, page.Body)
	if err != nil {
		c.logger().Warn("no list selector", "url", page.URL, "error", err)
		return &arremate.HandleResult{}, nil
	}

	links, err := goquery.Links(page.Body, page.URL, sel)
	if err != nil {
		c.logger().Warn("applying list selector failed", "url", page.URL, "selector", sel, "error", err)
		links = nil
	}

	c.recordOutcome(ctx, page.URL, len(links) > 0)
	c.logger().Info("listing handled",
		"url", page.URL, "selector", sel, "source", string(source), "links", len(links))

	var detailLinks, listLinks []string
	for _, link := range links {
		if classify.IsDetailURL(link) {
			detailLinks = append(detailLinks, link)
		} else {
			listLinks = append(listLinks, link)
		}
	}

	// One hop before the depth limit only detail links are worth
	// scheduling; a listing fetched there could never be expanded.
	detailOnly := depth == c.maxDepth()-1 || c.maxDepth() == 2

	limit := remaining * linkOvershoot
	next := make([]arremate.Request, 0, limit)
	for _, link := range detailLinks {
		if len(next) >= limit {
			break
		}
		next = append(next, c.childRequest(page, domain, link, arremate.PageTypeDetail))
	}
	if !detailOnly {
		for _, link := range listLinks {
			if len(next) >= limit {
				break
			}
			next = append(next, c.childRequest(page, domain, link, ""))
		}
	}

	return &arremate.HandleResult{Next: next}, nil
}

func (c *Controller) childRequest(page *arremate.Page, domain, link string, forced arremate.PageType) arremate.Request {
	return arremate.Request{
		URL: link,
		Meta: arremate.RequestMeta{
			Domain:        domain,
			Depth:         page.Meta.Depth + 1,
			ForcedType:    forced,
			ManualCookies: page.Meta.ManualCookies,
		},
	}
}

// handleDetail acquires field selectors, extracts the record, feeds the
// outcome back into the cache, and emits the record when it has at least
// one essential field.
func (c *Controller) handleDetail(ctx context.Context, page *arremate.Page, domain string) (*arremate.HandleResult, error) {
	if c.remainingQuota(domain) <= 0 {
		c.logger().Info("domain quota reached, dropping detail page", "domain", domain, "url", page.URL)
		return &arremate.HandleResult{}, nil
	}

	sel, source, err := c.Acquirer.DetailSelectors(ctx, page.URL, domain, page.Body)
	if err != nil {
		c.logger().Warn("no detail selectors", "url", page.URL, "error", err)
		return &arremate.HandleResult{}, nil
	}

	record, matched, err := c.Extractor.ExtractDetail(page.Body, page.URL, sel)
	if err != nil {
		c.logger().Warn("extraction failed", "url", page.URL, "error", err)
		c.recordOutcome(ctx, page.URL, false)
		return &arremate.HandleResult{}, nil
	}

	success := record.Validate() == nil
	c.recordOutcome(ctx, page.URL, success)

	if !success {
		c.logger().Warn("extraction yielded no essential fields",
			"url", page.URL, "source", string(source), "matched", len(matched))
		return &arremate.HandleResult{}, nil
	}

	c.countExtraction(domain)

	if c.CaptureDetail && c.Screenshots != nil {
		if path, err := c.Screenshots.Capture(ctx, page.URL); err == nil {
			record.ScreenshotPath = path
		} else {
			c.logger().Warn("detail screenshot failed", "url", page.URL, "error", err)
		}
	}

	c.logger().Info("record extracted",
		"url", page.URL, "title", record.Title, "source", string(source))
	return &arremate.HandleResult{Record: record}, nil
}

// recordOutcome folds an extraction outcome into the selector cache.
// A URL acquired through a rule or fallback was written back to the
// cache during acquisition, so the entry exists by the time this runs.
func (c *Controller) recordOutcome(ctx context.Context, url string, success bool) {
	if err := c.Cache.RecordOutcome(ctx, url, success); err != nil {
		if arremate.ErrorCode(err) != arremate.ENOTFOUND {
			c.logger().Warn("recording selector outcome failed", "url", url, "error", err)
		}
	}
}

func (c *Controller) remainingQuota(domain string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxItems() - c.extracted[domain]
}

func (c *Controller) countExtraction(domain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.extracted == nil {
		c.extracted = make(map[string]int)
	}
	c.extracted[domain]++
}

func (c *Controller) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}

func (c *Controller) maxItems() int {
	if c.MaxItems > 0 {
		return c.MaxItems
	}
	return DefaultMaxItemsPerDomain
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func statusText(page *arremate.Page) string {
	if !page.IsText() {
		return "non-text response: " + page.Header.Get("Content-Type")
	}
	return "unexpected status " + strconv.Itoa(page.StatusCode)
}
