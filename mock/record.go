package mock

import (
	"context"

	"github.com/fcoelho/arremate"
)

var _ arremate.RecordService = (*RecordService)(nil)

// RecordService is a mock implementation of arremate.RecordService.
type RecordService struct {
	CreateRecordFn    func(ctx context.Context, record *arremate.AuctionRecord) error
	FindRecordByURLFn func(ctx context.Context, url string) (*arremate.AuctionRecord, error)
	FindRecordsFn     func(ctx context.Context, filter arremate.RecordFilter) ([]*arremate.AuctionRecord, error)
}

func (s *RecordService) CreateRecord(ctx context.Context, record *arremate.AuctionRecord) error {
	return s.CreateRecordFn(ctx, record)
}

func (s *RecordService) FindRecordByURL(ctx context.Context, url string) (*arremate.AuctionRecord, error) {
	return s.FindRecordByURLFn(ctx, url)
}

func (s *RecordService) FindRecords(ctx context.Context, filter arremate.RecordFilter) ([]*arremate.AuctionRecord, error) {
	return s.FindRecordsFn(ctx, filter)
}

var _ arremate.ProblemSiteService = (*ProblemSiteService)(nil)

// ProblemSiteService is a mock implementation of
// arremate.ProblemSiteService.
type ProblemSiteService struct {
	RegisterErrorFn    func(ctx context.Context, domain, errText string) error
	FindProblemSiteFn  func(ctx context.Context, domain string) (*arremate.ProblemSite, error)
	FindProblemSitesFn func(ctx context.Context) ([]*arremate.ProblemSite, error)
	SetBlockedFn       func(ctx context.Context, domain string, blocked bool) error
}

func (s *ProblemSiteService) RegisterError(ctx context.Context, domain, errText string) error {
	return s.RegisterErrorFn(ctx, domain, errText)
}

func (s *ProblemSiteService) FindProblemSite(ctx context.Context, domain string) (*arremate.ProblemSite, error) {
	return s.FindProblemSiteFn(ctx, domain)
}

func (s *ProblemSiteService) FindProblemSites(ctx context.Context) ([]*arremate.ProblemSite, error) {
	return s.FindProblemSitesFn(ctx)
}

func (s *ProblemSiteService) SetBlocked(ctx context.Context, domain string, blocked bool) error {
	return s.SetBlockedFn(ctx, domain, blocked)
}
