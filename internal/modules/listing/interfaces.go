package listing

import (
	"context"

	"propzy/internal/domain"
	"propzy/internal/repository"
)

// ListingRepository is the subset of the listing store the module uses.
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	Save(ctx context.Context, l *domain.Listing) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repository.ListingFilter) ([]domain.Listing, int64, error)
}
