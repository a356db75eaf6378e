package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/acquire"
	"github.com/fcoelho/arremate/classify"
	"github.com/fcoelho/arremate/crawl"
	"github.com/fcoelho/arremate/engine"
	"github.com/fcoelho/arremate/fs"
	"github.com/fcoelho/arremate/gemini"
	"github.com/fcoelho/arremate/goquery"
	arrhttp "github.com/fcoelho/arremate/http"
	"github.com/fcoelho/arremate/rod"
	arrslog "github.com/fcoelho/arremate/slog"
	"github.com/fcoelho/arremate/sqlite"
	"google.golang.org/genai"
)

// CrawlCmd runs a crawl from one or more seed URLs.
type CrawlCmd struct {
	Seeds          []string      `arg:"" required:"" help:"Seed URLs to crawl."`
	Depth          int           `default:"2" help:"Maximum link depth from a seed."`
	MaxItems       int           `default:"10" help:"Maximum records per domain."`
	Concurrency    int           `short:"c" default:"3" help:"Concurrent fetch limit."`
	RPS            float64       `default:"1" help:"Requests per second per domain."`
	Timeout        time.Duration `short:"t" default:"30s" help:"Fetch timeout per page."`
	CookiesDir     string        `default:"cookies" help:"Directory for challenge artifacts and cookie files."`
	ScreenshotsDir string        `default:"screenshots" help:"Directory for captured screenshots."`
	CacheDir       string        `default:".arremate-cache" help:"Directory for the generation response cache."`
	Screenshots    bool          `help:"Capture a screenshot of each extracted detail page."`
}

// Run wires the crawl stack together and executes the run.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	logger := deps.Logger

	db, err := deps.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cookieStore := fs.NewCookieStore(c.CookiesDir)
	challenges := fs.NewChallengeStore(c.CookiesDir)

	cache := arrslog.NewLoggingSelectorCache(sqlite.NewSelectorCacheService(db), logger)
	rules := sqlite.NewRuleService(db)
	records := sqlite.NewRecordService(db)
	problems := sqlite.NewProblemSiteService(db)

	var generator arremate.Generator
	if client, err := genai.NewClient(deps.Ctx, &genai.ClientConfig{}); err != nil {
		logger.Warn("generation service unavailable, selector acquisition will use fallbacks", "error", err)
		generator = unavailableGenerator{}
	} else {
		generator = arrslog.NewLoggingGenerator(
			gemini.NewGenerator(client, gemini.NewPromptCache(c.CacheDir)), logger)
	}

	var screenshotter arremate.Screenshotter
	if shots, err := rod.NewScreenshotter(c.ScreenshotsDir, rod.WithCookieStore(cookieStore)); err != nil {
		logger.Warn("browser unavailable, screenshots disabled", "error", err)
	} else {
		defer shots.Close()
		screenshotter = shots
	}

	fetcher := arrhttp.NewFetcher(
		arrhttp.WithTimeout(c.Timeout),
		arrhttp.WithCookieStore(cookieStore),
	)
	defer fetcher.Close()

	controller := &crawl.Controller{
		Classifier:    classify.New(logger),
		Acquirer:      acquire.New(cache, rules, generator, logger),
		Extractor:     goquery.NewExtractor(logger),
		Cache:         cache,
		Problems:      problems,
		Challenges:    challenges,
		Cookies:       cookieStore,
		Screenshots:   screenshotter,
		Logger:        logger,
		MaxDepth:      c.Depth,
		MaxItems:      c.MaxItems,
		CaptureDetail: c.Screenshots,
	}

	eng := &engine.Engine{
		Fetcher:     fetcher,
		Handler:     controller,
		Records:     records,
		Problems:    problems,
		Limiter:     engine.NewDomainLimiter(c.RPS),
		Logger:      logger,
		Concurrency: c.Concurrency,
	}

	res, err := eng.Run(deps.Ctx, c.Seeds)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "fetched %d pages: %d records saved, %d duplicates, %d failures\n",
		res.Fetched, res.Saved, res.Duplicates, res.Failed)
	return nil
}

// unavailableGenerator stands in when no Gemini client could be built;
// the acquisition chain then relies on cache, rules, and fallbacks.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", arremate.Errorf(arremate.EUNAVAILABLE, "generation service not configured")
}
