package arremate

import (
	"context"
	"time"
)

// AuctionRecord is one extracted property listing. Records are keyed by
// URL; submitting the same URL twice is a no-op.
type AuctionRecord struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Price          string    `json:"price"`
	Description    string    `json:"description"`
	Address        string    `json:"address"`
	Area           string    `json:"area"`
	PropertyType   string    `json:"propertyType"`
	AuctionDate    string    `json:"auctionDate"`
	ImageURL       string    `json:"imageUrl"`
	ScreenshotPath string    `json:"screenshotPath,omitempty"`
	SourceDomain   string    `json:"sourceDomain"`
	ExtractedAt    time.Time `json:"extractedAt"`
}

// Validate returns an error if the record contains invalid fields.
// A record is only worth keeping when at least one essential field
// (title, price, description) came out of extraction non-empty.
func (r *AuctionRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "record URL required")
	}
	if r.Title == "" && r.Price == "" && r.Description == "" {
		return Errorf(EINVALID, "record for %s has no essential fields", r.URL)
	}
	return nil
}

// RecordService persists extracted auction records.
type RecordService interface {
	// CreateRecord inserts a record. Inserting a URL that already exists
	// returns ECONFLICT; callers treat that as success.
	CreateRecord(ctx context.Context, record *AuctionRecord) error

	// FindRecordByURL retrieves a record by its URL.
	// Returns ENOTFOUND if no record exists.
	FindRecordByURL(ctx context.Context, url string) (*AuctionRecord, error)

	// FindRecords retrieves records matching the filter.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*AuctionRecord, error)
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	URL          *string `json:"url"`
	SourceDomain *string `json:"sourceDomain"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
