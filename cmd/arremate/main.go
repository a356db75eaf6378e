// Command arremate crawls Brazilian property auction sites and extracts
// structured records from them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fcoelho/arremate/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("arremate"),
		kong.Description("Crawl auction sites and extract property records"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		DBPath: cli.DB,
	}
	return kctx.Run(deps)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `help:"SQLite database path." default:"arremate.db"`
	Verbose bool   `short:"v" help:"Enable debug logging."`

	Crawl   CrawlCmd   `cmd:"" help:"Crawl auction sites and extract property records."`
	Records RecordsCmd `cmd:"" help:"Browse extracted records."`
	Sites   SitesCmd   `cmd:"" help:"Browse and manage failing domains."`
	Cookies CookiesCmd `cmd:"" help:"Resolve anti-bot challenges with operator cookies."`
}

// Dependencies holds the services and configuration shared by commands.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	DBPath string
}

// openDB opens the SQLite database behind every command that needs one.
// The caller owns the returned handle.
func (d *Dependencies) openDB() (*sqlite.DB, error) {
	db := sqlite.NewDB(d.DBPath)
	if err := db.Open(); err != nil {
		return nil, fmt.Errorf("opening database %s: %w", d.DBPath, err)
	}
	return db, nil
}
