package repository

import (
	"context"
	"strings"
	"time"

	"propzy/internal/domain"
	"propzy/internal/metrics"

	"gorm.io/gorm"
)

// ListingFilter holds optional predicates; zero values are ignored.
// Exact fields use equality, the *Contains fields case-insensitive substrings,
// and Search ORs a substring across city, locality, description and apartment.
type ListingFilter struct {
	UserID       int64
	Status       domain.ListingStatus
	PropertyType string
	Purpose      string
	Bedrooms     string
	CityContains string
	CityEquals   string
	Locality     string
	Search       string
	FlagColumn   string
	OnlyActive   bool

	ByPriority bool
	Limit      int
	Offset     int
}

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	defer metrics.TrackDBOperation("listings.create")(time.Now())
	l.Normalize()
	active := l.IsActive
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner").Create(l).Error; err != nil {
			return err
		}
		// is_active carries a column default, so a false value is skipped on insert
		if !active {
			l.IsActive = false
			return tx.Model(&domain.Listing{}).Where("id = ?", l.ID).Update("is_active", false).Error
		}
		return nil
	})
}

// GetByID loads a listing with its owner summary.
func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).
		Preload("Owner").
		First(&l, id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// adminColumns change only through UpdateFields and BulkUpdateFields.
var adminColumns = []string{
	"Owner", "user_id", "created_at", "status",
	"is_featured", "is_top_pick", "is_highlighted", "is_investment_property",
	"is_recently_added", "priority", "featured_until", "tags",
}

// Save writes the owner-editable columns of l. Ownership, moderation status
// and categorization keep their stored values.
func (r *ListingRepository) Save(ctx context.Context, l *domain.Listing) error {
	defer metrics.TrackDBOperation("listings.save")(time.Now())
	l.Normalize()
	tx := r.db.WithContext(ctx).Model(l).Select("*").Omit(adminColumns...).Updates(l)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateFields writes the given columns of one listing.
func (r *ListingRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	defer metrics.TrackDBOperation("listings.update_fields")(time.Now())
	tx := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkUpdateFields applies the same columns to every listing in ids with a
// single UPDATE and returns how many of the ids exist.
func (r *ListingRepository) BulkUpdateFields(ctx context.Context, ids []int64, fields map[string]any) (int64, error) {
	defer metrics.TrackDBOperation("listings.bulk_update")(time.Now())
	var matched int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Listing{}).Where("id IN ?", ids).Count(&matched).Error; err != nil {
			return err
		}
		if matched == 0 || len(fields) == 0 {
			return nil
		}
		return tx.Model(&domain.Listing{}).Where("id IN ?", ids).Updates(fields).Error
	})
	return matched, err
}

// Delete removes the listing and clears enquiry references to it.
func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Enquiry{}).
			Where("listing_id = ?", id).
			Update("listing_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Listing{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List returns one page of listings matching f and the total match count.
// Newest first, or by priority then newest when f.ByPriority is set.
func (r *ListingRepository) List(ctx context.Context, f ListingFilter) ([]domain.Listing, int64, error) {
	defer metrics.TrackDBOperation("listings.list")(time.Now())

	q := applyListingFilter(r.db.WithContext(ctx).Model(&domain.Listing{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if f.ByPriority {
		order = "priority DESC, created_at DESC, id DESC"
	}

	var listings []domain.Listing
	q = q.Preload("Owner").Order(order)
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func applyListingFilter(q *gorm.DB, f ListingFilter) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OnlyActive {
		q = q.Where("is_active = ?", true)
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.Purpose != "" {
		q = q.Where("purpose = ?", f.Purpose)
	}
	if f.Bedrooms != "" {
		q = q.Where("bedrooms = ?", f.Bedrooms)
	}
	if f.CityContains != "" {
		q = q.Where("LOWER(city) LIKE ?"+likeEscape, likePattern(f.CityContains))
	}
	if f.CityEquals != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(strings.TrimSpace(f.CityEquals)))
	}
	if f.Locality != "" {
		q = q.Where("LOWER(locality) LIKE ?"+likeEscape, likePattern(f.Locality))
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(
			`(LOWER(city) LIKE ? ESCAPE '\' OR LOWER(locality) LIKE ? ESCAPE '\' OR `+
				`LOWER(property_description) LIKE ? ESCAPE '\' OR LOWER(apartment) LIKE ? ESCAPE '\')`,
			p, p, p, p,
		)
	}
	if f.FlagColumn != "" {
		q = q.Where(f.FlagColumn+" = ?", true)
	}
	return q
}

const likeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern that matches % and _ literally.
// Predicates using it must carry likeEscape.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
