package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fcoelho/arremate"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ arremate.RecordService = (*RecordService)(nil)

// RecordService implements arremate.RecordService using SQLite.
type RecordService struct {
	db *DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db}
}

const recordColumns = "id, url, title, price, description, address, area, property_type, auction_date, image_url, screenshot_path, source_domain, extracted_at"

// CreateRecord inserts a record, normalizing its price on the way in.
// Inserting a URL that already exists returns ECONFLICT and leaves the
// stored record untouched.
func (s *RecordService) CreateRecord(ctx context.Context, record *arremate.AuctionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	record.ID = uuid.New().String()
	record.Price = arremate.NormalizePrice(record.Price)
	if record.ExtractedAt.IsZero() {
		record.ExtractedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO auction_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.URL, record.Title, record.Price, record.Description,
		record.Address, record.Area, record.PropertyType, record.AuctionDate,
		record.ImageURL, record.ScreenshotPath, record.SourceDomain,
		record.ExtractedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return arremate.Errorf(arremate.ECONFLICT, "record for %s already exists", record.URL)
	}
	return nil
}

// FindRecordByURL retrieves a record by its URL.
func (s *RecordService) FindRecordByURL(ctx context.Context, url string) (*arremate.AuctionRecord, error) {
	record, err := s.scanOne(ctx, `
		SELECT `+recordColumns+` FROM auction_records WHERE url = ?
	`, url)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FindRecords retrieves records matching the filter, newest first.
func (s *RecordService) FindRecords(ctx context.Context, filter arremate.RecordFilter) ([]*arremate.AuctionRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM auction_records WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.SourceDomain != nil {
		query.WriteString(" AND source_domain = ?")
		args = append(args, *filter.SourceDomain)
	}

	query.WriteString(" ORDER BY extracted_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*arremate.AuctionRecord
	for rows.Next() {
		var record arremate.AuctionRecord
		var extractedAt string
		if err := rows.Scan(&record.ID, &record.URL, &record.Title, &record.Price,
			&record.Description, &record.Address, &record.Area, &record.PropertyType,
			&record.AuctionDate, &record.ImageURL, &record.ScreenshotPath,
			&record.SourceDomain, &extractedAt); err != nil {
			return nil, err
		}
		if record.ExtractedAt, err = parseRFC3339(extractedAt, "extracted_at"); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

func (s *RecordService) scanOne(ctx context.Context, query string, args ...any) (*arremate.AuctionRecord, error) {
	var record arremate.AuctionRecord
	var extractedAt string

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&record.ID, &record.URL, &record.Title, &record.Price, &record.Description,
		&record.Address, &record.Area, &record.PropertyType, &record.AuctionDate,
		&record.ImageURL, &record.ScreenshotPath, &record.SourceDomain, &extractedAt)
	if err == sql.ErrNoRows {
		return nil, arremate.Errorf(arremate.ENOTFOUND, "record not found")
	}
	if err != nil {
		return nil, err
	}

	if record.ExtractedAt, err = parseRFC3339(extractedAt, "extracted_at"); err != nil {
		return nil, err
	}
	return &record, nil
}
