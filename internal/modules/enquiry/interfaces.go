package enquiry

import (
	"context"
	"time"

	"propzy/internal/domain"
	"propzy/internal/repository"
)

type EnquiryRepository interface {
	Create(ctx context.Context, e *domain.Enquiry) error
	GetByID(ctx context.Context, id int64) (*domain.Enquiry, error)
	UpdateTriage(ctx context.Context, e *domain.Enquiry) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repository.EnquiryFilter) ([]domain.Enquiry, int64, error)
	CountBy(ctx context.Context, column string) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// ListingChecker resolves the optional listing link of a submission.
type ListingChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
