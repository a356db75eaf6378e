package mock

import (
	"context"

	"github.com/fcoelho/arremate"
)

var _ arremate.Generator = (*Generator)(nil)

// Generator is a mock implementation of arremate.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateFn(ctx, prompt)
}
