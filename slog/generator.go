// Package slog provides logging decorators for domain services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fcoelho/arremate"
)

// Ensure LoggingGenerator implements arremate.Generator.
var _ arremate.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with timing and outcome logging.
// Generation calls are the slowest and most expensive step of selector
// acquisition, so every one is worth a log line.
type LoggingGenerator struct {
	next   arremate.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next arremate.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Generate delegates to the wrapped generator and logs the call.
func (g *LoggingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	begin := time.Now()
	resp, err := g.next.Generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("selector generation",
			"promptLen", len(prompt),
			"duration", time.Since(begin),
			"error", err,
		)
		return "", err
	}
	g.logger.Info("selector generation",
		"promptLen", len(prompt),
		"responseLen", len(resp),
		"duration", time.Since(begin),
	)
	return resp, nil
}
