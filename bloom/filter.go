// Package bloom provides probabilistic URL-seen tracking for the crawl
// frontier.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter remembers which URLs a crawl has already scheduled. False
// positives drop a URL that was never fetched; false negatives never
// happen, so a URL is fetched at most once.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected URLs with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// TestAndAdd marks the URL as seen and reports whether it already was.
func (f *Filter) TestAndAdd(url string) bool {
	return f.f.TestAndAddString(url)
}

// Test reports whether the URL might have been seen.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// EstimatedCount returns the approximate number of URLs seen.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
