// Package gemini implements selector generation using Google Gemini.
package gemini

import (
	"context"

	"github.com/fcoelho/arremate"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Generator implements arremate.Generator at compile time.
var _ arremate.Generator = (*Generator)(nil)

// Generator implements arremate.Generator using Google Gemini, with an
// optional file-backed response cache in front of the API.
type Generator struct {
	client *genai.Client
	cache  *PromptCache
}

// NewGenerator creates a new Generator. cache may be nil to disable
// response caching.
func NewGenerator(client *genai.Client, cache *PromptCache) *Generator {
	return &Generator{client: client, cache: cache}
}

// Generate produces a selector response for the prompt. Identical
// prompts within the cache window are answered from disk without an API
// call.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", arremate.Errorf(arremate.EINVALID, "prompt required")
	}

	if g.cache != nil {
		if response, ok := g.cache.Get(prompt); ok {
			return response, nil
		}
	}

	config := BuildConfig()
	result, err := g.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", arremate.Errorf(arremate.EUNAVAILABLE, "gemini request failed: %v", err)
	}
	if result == nil {
		return "", arremate.Errorf(arremate.EINTERNAL, "gemini returned nil result")
	}

	response := result.Text()
	if g.cache != nil {
		if err := g.cache.Put(prompt, response); err != nil {
			// A failed cache write only costs a future API call.
			return response, nil
		}
	}
	return response, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
// Low temperature keeps selector output deterministic enough to cache.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.3)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a web scraping assistant. You respond only with the JSON object requested, never with prose, markdown, or explanations.",
			}},
		},
		Temperature: &temp,
	}
}
