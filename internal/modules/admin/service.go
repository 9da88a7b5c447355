package admin

import (
	"context"
	"errors"
	"strings"

	"propzy/internal/domain"
	"propzy/internal/metrics"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/utils"
	"propzy/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNoListingIDs    = errors.New("listingIds must be a non-empty array")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidStatus   = errors.New("invalid status")
)

// Service is the moderation and categorization engine. Every operation
// overwrites unconditionally when the listing exists; concurrent calls on the
// same row are last-write-wins.
type Service struct {
	listings ListingRepository
}

func NewService(listings ListingRepository) *Service {
	return &Service{listings: listings}
}

func (s *Service) Approve(ctx context.Context, id int64) (*domain.Listing, error) {
	return s.setStatus(ctx, id, domain.ListingApproved, "approve")
}

func (s *Service) Reject(ctx context.Context, id int64) (*domain.Listing, error) {
	return s.setStatus(ctx, id, domain.ListingRejected, "reject")
}

func (s *Service) setStatus(ctx context.Context, id int64, status domain.ListingStatus, op string) (*domain.Listing, error) {
	if err := s.listings.UpdateFields(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, notFound(err)
	}
	metrics.RecordModeration(op)
	return s.get(ctx, id)
}

// Categorize merges the provided fields onto one listing. An empty payload
// changes nothing and returns the listing as it is.
func (s *Service) Categorize(ctx context.Context, id int64, c domain.Categorization) (*domain.Listing, error) {
	if c.Empty() {
		return s.get(ctx, id)
	}
	if err := s.listings.UpdateFields(ctx, id, c.Updates()); err != nil {
		return nil, notFound(err)
	}
	metrics.RecordModeration("categorize")
	return s.get(ctx, id)
}

// BulkCategorize applies one payload to every listing in ids and reports how
// many of them exist.
func (s *Service) BulkCategorize(ctx context.Context, ids []int64, c domain.Categorization) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, ErrNoListingIDs
	}
	matched, err := s.listings.BulkUpdateFields(ctx, ids, c.Updates())
	if err != nil {
		return 0, err
	}
	metrics.RecordModeration("bulk_categorize")
	return matched, nil
}

// List returns listings of every status with the admin filters applied, newest first.
func (s *Service) List(ctx context.Context, lf ListFilter, page, limit int) (*ListingPage, error) {
	f := repository.ListingFilter{
		PropertyType: strings.TrimSpace(lf.PropertyType),
		Purpose:      strings.TrimSpace(lf.Purpose),
		CityContains: lf.City,
		Search:       lf.Search,
		Limit:        limit,
		Offset:       utils.Offset(page, limit),
	}
	if lf.Status != "" {
		status := domain.ListingStatus(strings.TrimSpace(lf.Status))
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		f.Status = status
	}
	if lf.Category != "" {
		column, ok := domain.Category(strings.TrimSpace(lf.Category)).Column()
		if !ok {
			return nil, ErrUnknownCategory
		}
		f.FlagColumn = column
	}

	listings, total, err := s.listings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return &ListingPage{
		Listings: listings,
		Page:     response.NewPage(len(listings), total, page, limit),
	}, nil
}

func (s *Service) get(ctx context.Context, id int64) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrListingNotFound
	}
	return err
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
