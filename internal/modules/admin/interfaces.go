package admin

import (
	"context"

	"propzy/internal/domain"
	"propzy/internal/repository"
)

type ListingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	BulkUpdateFields(ctx context.Context, ids []int64, fields map[string]any) (int64, error)
	List(ctx context.Context, f repository.ListingFilter) ([]domain.Listing, int64, error)
}
