package enquiry

import (
	"context"
	"errors"
	"strings"
	"time"

	"propzy/internal/domain"
	"propzy/internal/metrics"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/utils"
	"propzy/internal/repository"

	"gorm.io/gorm"
)

// RecentWindow is the trailing period counted as recent in the statistics.
const RecentWindow = 30 * 24 * time.Hour

// Service is the enquiry triage engine.
type Service struct {
	enquiries EnquiryRepository
	listings  ListingChecker
	now       func() time.Time
}

func NewService(enquiries EnquiryRepository, listings ListingChecker) *Service {
	return &Service{
		enquiries: enquiries,
		listings:  listings,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a public enquiry. The request must already be validated.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*domain.Enquiry, error) {
	if req.ListingID != nil {
		ok, err := s.listings.Exists(ctx, *req.ListingID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrListingNotFound
		}
	}

	e := &domain.Enquiry{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		EnquiryType: req.EnquiryType,
		Location:    req.Location,
		UserType:    req.UserType,
		Reason:      req.Reason,
		ListingID:   req.ListingID,
		Source:      domain.InferSource(req.ListingID, req.EnquiryType),
		Status:      domain.EnquiryPending,
	}
	if err := s.enquiries.Create(ctx, e); err != nil {
		return nil, err
	}
	metrics.EnquiriesSubmitted.WithLabelValues(string(e.Source)).Inc()
	return e, nil
}

func (s *Service) List(ctx context.Context, lf ListFilter, page, limit int) (*EnquiryPage, error) {
	f := repository.EnquiryFilter{
		Search: strings.TrimSpace(lf.Search),
		Limit:  limit,
		Offset: utils.Offset(page, limit),
	}
	if lf.Status != "" {
		f.Status = domain.EnquiryStatus(lf.Status)
		if !f.Status.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	if lf.Source != "" {
		f.Source = domain.EnquirySource(lf.Source)
		if !f.Source.Valid() {
			return nil, ErrInvalidSource
		}
	}

	items, total, err := s.enquiries.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Enquiry{}
	}
	return &EnquiryPage{
		Enquiries: items,
		Page:      response.NewPage(len(items), total, page, limit),
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Enquiry, error) {
	e, err := s.enquiries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnquiryNotFound
		}
		return nil, err
	}
	return e, nil
}

// UpdateStatus moves an enquiry to any status. Reaching contacted or
// resolved for the first time stamps the matching timestamp; later updates
// keep the original stamp.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*domain.Enquiry, error) {
	status := domain.EnquiryStatus(strings.TrimSpace(req.Status))
	if status == "" && req.AdminNotes == nil {
		return nil, ErrNothingToUpdate
	}
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if status != "" {
		e.ApplyStatus(status, s.now())
	}
	if req.AdminNotes != nil {
		e.AdminNotes = *req.AdminNotes
	}

	if err := s.enquiries.UpdateTriage(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnquiryNotFound
		}
		return nil, err
	}
	if status != "" {
		metrics.EnquiryStatusChanges.WithLabelValues(string(status)).Inc()
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.enquiries.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnquiryNotFound
		}
		return err
	}
	return nil
}

// Stats reports totals per status and source (every bucket present, zero
// when empty) and the number of enquiries created in the last 30 days.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.enquiries.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.enquiries.CountBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	bySource, err := s.enquiries.CountBy(ctx, "source")
	if err != nil {
		return nil, err
	}
	recent, err := s.enquiries.CountSince(ctx, s.now().Add(-RecentWindow))
	if err != nil {
		return nil, err
	}

	out := &Stats{
		Total:           total,
		ByStatus:        make(map[string]int64, len(domain.EnquiryStatuses)),
		BySource:        make(map[string]int64, len(domain.EnquirySources)),
		RecentEnquiries: recent,
	}
	for _, st := range domain.EnquiryStatuses {
		out.ByStatus[string(st)] = byStatus[string(st)]
	}
	for _, src := range domain.EnquirySources {
		out.BySource[string(src)] = bySource[string(src)]
	}
	return out, nil
}
