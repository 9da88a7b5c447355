package listing

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"propzy/internal/domain"
	"propzy/internal/metrics"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/utils"
	"propzy/internal/repository"
	"propzy/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultViewLimit = 10
	MaxViewLimit     = 50
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   int64
	Role domain.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// Media holds the files of a multipart create request.
type Media struct {
	Photos []*multipart.FileHeader
	Video  *multipart.FileHeader
}

// Service contains listing business logic for owners and the public.
type Service struct {
	listings ListingRepository
	assets   storage.AssetHost
	log      *zap.Logger
}

func NewService(listings ListingRepository, assets storage.AssetHost, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{listings: listings, assets: assets, log: log}
}

// Create stores a new listing owned by the actor. Admin submissions are
// approved immediately, everything else waits for moderation.
func (s *Service) Create(ctx context.Context, actor Actor, in ListingInput, media Media) (*domain.Listing, error) {
	if len(media.Photos) > MaxPhotos {
		return nil, ErrTooManyFiles
	}

	l := &domain.Listing{UserID: actor.ID, IsActive: true}
	in.ApplyTo(l)
	l.Status = domain.InitialStatus(actor.Role)

	photos, video := s.uploadMedia(ctx, media)
	l.Photos = append(l.Photos, photos...)
	if video != "" {
		l.Video = video
	}

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}
	metrics.ListingsCreated.WithLabelValues(string(l.Status)).Inc()

	return s.reload(ctx, l.ID)
}

// uploadMedia sends files to the asset host one after another. A failed
// upload is logged and skipped.
func (s *Service) uploadMedia(ctx context.Context, media Media) (photos []string, video string) {
	if s.assets == nil {
		return nil, ""
	}
	for _, fh := range media.Photos {
		url, err := storage.UploadMultipart(ctx, s.assets, fh, storage.KindImage)
		if err != nil {
			metrics.AssetUploads.WithLabelValues(string(storage.KindImage), "failure").Inc()
			s.log.Warn("photo upload failed", zap.String("file", fh.Filename), zap.Error(err))
			continue
		}
		metrics.AssetUploads.WithLabelValues(string(storage.KindImage), "success").Inc()
		photos = append(photos, url)
	}
	if media.Video != nil {
		url, err := storage.UploadMultipart(ctx, s.assets, media.Video, storage.KindVideo)
		if err != nil {
			metrics.AssetUploads.WithLabelValues(string(storage.KindVideo), "failure").Inc()
			s.log.Warn("video upload failed", zap.String("file", media.Video.Filename), zap.Error(err))
		} else {
			metrics.AssetUploads.WithLabelValues(string(storage.KindVideo), "success").Inc()
			video = url
		}
	}
	return photos, video
}

func (s *Service) reload(ctx context.Context, id int64) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

// Get returns a listing if viewerID (0 for anonymous) may see it.
func (s *Service) Get(ctx context.Context, id, viewerID int64) (*domain.Listing, error) {
	l, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.VisibleTo(viewerID) {
		return nil, ErrNotVisible
	}
	return l, nil
}

// GetAny returns a listing without the visibility check.
func (s *Service) GetAny(ctx context.Context, id int64) (*domain.Listing, error) {
	return s.reload(ctx, id)
}

// Update merges owner-editable fields. Status and categorization stay as they are.
func (s *Service) Update(ctx context.Context, id, userID int64, in ListingInput) (*domain.Listing, error) {
	l, err := s.ownedListing(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	in.ApplyTo(l)
	l.Owner = nil
	if err := s.listings.Save(ctx, l); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.ownedListing(ctx, id, userID); err != nil {
		return err
	}
	return s.Destroy(ctx, id)
}

// Destroy permanently removes a listing; enquiry links to it are cleared.
func (s *Service) Destroy(ctx context.Context, id int64) error {
	if err := s.listings.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ownedListing(ctx context.Context, id, userID int64) (*domain.Listing, error) {
	l, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(userID) {
		return nil, ErrNotOwner
	}
	return l, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64, page, limit int) (*ListingPage, error) {
	return s.page(ctx, repository.ListingFilter{UserID: userID}, page, limit)
}

// ListByUser shows every status to the owner and to admins, approved listings to everyone else.
func (s *Service) ListByUser(ctx context.Context, targetID int64, viewer Actor, page, limit int) (*ListingPage, error) {
	f := repository.ListingFilter{UserID: targetID}
	if viewer.ID != targetID && !viewer.IsAdmin() {
		f.Status = domain.ListingApproved
	}
	return s.page(ctx, f, page, limit)
}

func (s *Service) Search(ctx context.Context, query string, page, limit int) (*ListingPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	return s.page(ctx, repository.ListingFilter{
		Status: domain.ListingApproved,
		Search: query,
	}, page, limit)
}

// Browse is the public catalogue; only approved listings are returned.
func (s *Service) Browse(ctx context.Context, bf BrowseFilter, page, limit int) (*ListingPage, error) {
	return s.page(ctx, repository.ListingFilter{
		Status:       domain.ListingApproved,
		Purpose:      strings.TrimSpace(bf.Purpose),
		PropertyType: strings.TrimSpace(bf.PropertyType),
		CityContains: bf.City,
		Locality:     bf.Locality,
		Bedrooms:     strings.TrimSpace(bf.Bedrooms),
	}, page, limit)
}

func (s *Service) ByCity(ctx context.Context, city string, page, limit int) (*ListingPage, error) {
	return s.page(ctx, repository.ListingFilter{
		Status:     domain.ListingApproved,
		OnlyActive: true,
		CityEquals: city,
	}, page, limit)
}

// View returns one public retrieval view: approved, active listings with
// the view's flag set.
func (s *Service) View(ctx context.Context, view domain.View, limit int) ([]domain.Listing, error) {
	column, ok := view.Column()
	if !ok {
		return nil, ErrUnknownView
	}
	if limit <= 0 {
		limit = DefaultViewLimit
	}
	if limit > MaxViewLimit {
		limit = MaxViewLimit
	}

	listings, _, err := s.listings.List(ctx, repository.ListingFilter{
		Status:     domain.ListingApproved,
		OnlyActive: true,
		FlagColumn: column,
		ByPriority: view.RanksByPriority(),
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *Service) page(ctx context.Context, f repository.ListingFilter, page, limit int) (*ListingPage, error) {
	f.Limit = limit
	f.Offset = utils.Offset(page, limit)

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
