package arremate

import "context"

// Generator proposes CSS selectors from page markup. Implementations wrap
// a text-generation service; callers own prompt construction and are
// responsible for robustly extracting structure from the free-text reply.
type Generator interface {
	// Generate returns the service's free-text response to the prompt.
	// Returns EUNAVAILABLE if the service cannot be reached.
	Generate(ctx context.Context, prompt string) (string, error)
}
