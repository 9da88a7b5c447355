package repository

import (
	"context"
	"time"

	"propzy/internal/domain"
	"propzy/internal/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnquiryFilter struct {
	Status domain.EnquiryStatus
	Source domain.EnquirySource
	Search string // name, email, phone, location
	Limit  int
	Offset int
}

type EnquiryRepository struct {
	db *gorm.DB
}

func NewEnquiryRepository(db *gorm.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

func (r *EnquiryRepository) Create(ctx context.Context, e *domain.Enquiry) error {
	defer metrics.TrackDBOperation("enquiries.create")(time.Now())
	return r.db.WithContext(ctx).Omit("Listing").Create(e).Error
}

func (r *EnquiryRepository) GetByID(ctx context.Context, id int64) (*domain.Enquiry, error) {
	var e domain.Enquiry
	if err := r.db.WithContext(ctx).Preload("Listing").First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateTriage writes the triage columns of e. A stamp already stored in the
// row is kept even when e carries a different one.
func (r *EnquiryRepository) UpdateTriage(ctx context.Context, e *domain.Enquiry) error {
	defer metrics.TrackDBOperation("enquiries.update")(time.Now())
	tx := r.db.WithContext(ctx).Model(&domain.Enquiry{}).Where("id = ?", e.ID).Updates(map[string]any{
		"status":       e.Status,
		"admin_notes":  e.AdminNotes,
		"contacted_at": stampOnce("contacted_at", e.ContactedAt),
		"resolved_at":  stampOnce("resolved_at", e.ResolvedAt),
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func stampOnce(column string, at *time.Time) clause.Expr {
	if at == nil {
		return gorm.Expr(column)
	}
	return gorm.Expr("COALESCE("+column+", ?)", at.UTC())
}

func (r *EnquiryRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Enquiry{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of enquiries, newest first, with the linked listing summary.
func (r *EnquiryRepository) List(ctx context.Context, f EnquiryFilter) ([]domain.Enquiry, int64, error) {
	defer metrics.TrackDBOperation("enquiries.list")(time.Now())

	q := r.db.WithContext(ctx).Model(&domain.Enquiry{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR `+
				`LOWER(phone) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`,
			p, p, p, p,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Enquiry
	q = q.Preload("Listing").Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type groupCount struct {
	Bucket string
	Count  int64
}

// CountBy groups all enquiries by a column (status or source).
func (r *EnquiryRepository) CountBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(&domain.Enquiry{}).
		Select(column + " AS bucket, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Bucket] = row.Count
	}
	return out, nil
}

func (r *EnquiryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Enquiry{}).Count(&n).Error
	return n, err
}

// CountSince counts enquiries created at or after since.
func (r *EnquiryRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Enquiry{}).
		Where("created_at >= ?", since.UTC()).
		Count(&n).Error
	return n, err
}
