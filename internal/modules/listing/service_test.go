package listing

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"propzy/internal/database"
	"propzy/internal/domain"
	"propzy/internal/pkg/utils"
	"propzy/internal/repository"
	"propzy/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type fakeHost struct {
	calls int
	fail  map[int]bool
}

func (h *fakeHost) Upload(_ context.Context, _ string, kind storage.Kind) (string, error) {
	h.calls++
	if h.fail[h.calls] {
		return "", errors.New("upload failed")
	}
	return "https://cdn.test/" + string(kind), nil
}

func newService(t *testing.T, host storage.AssetHost) (*Service, *gorm.DB, *domain.User, *domain.User) {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	owner := &domain.User{Email: "owner@x.io", PasswordHash: "h", Role: domain.RoleUser, IsActive: true}
	other := &domain.User{Email: "other@x.io", PasswordHash: "h", Role: domain.RoleUser, IsActive: true}
	require.NoError(t, users.Create(context.Background(), owner))
	require.NoError(t, users.Create(context.Background(), other))
	return NewService(repository.NewListingRepository(db), host, nil), db, owner, other
}

func str(s string) *utils.FlexString {
	v := utils.FlexString(s)
	return &v
}

func validInput() ListingInput {
	return ListingInput{
		PropertySubType: str("Flat"),
		City:            str("Pune"),
		Locality:        str("Baner"),
		Bedrooms:        str("2"),
	}
}

func TestCreate_StatusDependsOnActorRole(t *testing.T) {
	svc, _, owner, _ := newService(t, nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleUser}, validInput(), Media{})
	require.NoError(t, err)
	assert.Equal(t, domain.ListingPending, l.Status)
	assert.Equal(t, domain.PurposeSell, l.Purpose)
	assert.Equal(t, domain.DefaultAreaUnit, l.AreaUnit)
	assert.True(t, l.IsActive)
	require.NotNil(t, l.Owner)
	assert.Equal(t, "owner@x.io", l.Owner.Email)

	l, err = svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleAdmin}, validInput(), Media{})
	require.NoError(t, err)
	assert.Equal(t, domain.ListingApproved, l.Status)
}

func TestCreate_InactiveListingStaysInactive(t *testing.T) {
	svc, _, owner, _ := newService(t, nil)
	in := validInput()
	off := utils.FlexBool(false)
	in.IsActive = &off

	l, err := svc.Create(context.Background(), Actor{ID: owner.ID, Role: domain.RoleUser}, in, Media{})
	require.NoError(t, err)
	assert.False(t, l.IsActive)
}

func formFile(t *testing.T, field, name string) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestCreate_FailedUploadIsSkipped(t *testing.T) {
	host := &fakeHost{fail: map[int]bool{2: true}}
	svc, _, owner, _ := newService(t, host)

	media := Media{Photos: []*multipart.FileHeader{
		formFile(t, "photos", "a.png"),
		formFile(t, "photos", "b.png"),
		formFile(t, "photos", "c.png"),
	}}
	l, err := svc.Create(context.Background(), Actor{ID: owner.ID, Role: domain.RoleUser}, validInput(), media)
	require.NoError(t, err)
	assert.Equal(t, 3, host.calls)
	assert.Len(t, l.Photos, 2)
}

func TestGet_VisibilityRule(t *testing.T) {
	svc, _, owner, other := newService(t, nil)
	ctx := context.Background()

	pending, err := svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleUser}, validInput(), Media{})
	require.NoError(t, err)

	_, err = svc.Get(ctx, pending.ID, 0)
	assert.ErrorIs(t, err, ErrNotVisible)
	_, err = svc.Get(ctx, pending.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotVisible)
	got, err := svc.Get(ctx, pending.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)

	approved, err := svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleAdmin}, validInput(), Media{})
	require.NoError(t, err)
	_, err = svc.Get(ctx, approved.ID, 0)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, 9999, 0)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	svc, _, owner, other := newService(t, nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleUser}, validInput(), Media{})
	require.NoError(t, err)

	_, err = svc.Update(ctx, l.ID, other.ID, ListingInput{City: str("Mumbai")})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Update(ctx, 9999, owner.ID, ListingInput{City: str("Mumbai")})
	assert.ErrorIs(t, err, ErrListingNotFound)

	updated, err := svc.Update(ctx, l.ID, owner.ID, ListingInput{City: str("Mumbai")})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.City)
	assert.Equal(t, "Baner", updated.Locality)
	assert.Equal(t, domain.ListingPending, updated.Status)
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, _, owner, other := newService(t, nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleUser}, validInput(), Media{})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, l.ID, other.ID), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, l.ID, owner.ID))
	_, err = svc.GetAny(ctx, l.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestListByUser_HidesUnapprovedFromOthers(t *testing.T) {
	svc, _, owner, other := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleUser}, validInput(), Media{})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleAdmin}, validInput(), Media{})
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, owner.ID, Actor{ID: owner.ID, Role: domain.RoleUser}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)

	theirs, err := svc.ListByUser(ctx, owner.ID, Actor{ID: other.ID, Role: domain.RoleUser}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), theirs.Total)

	admin, err := svc.ListByUser(ctx, owner.ID, Actor{ID: 999, Role: domain.RoleAdmin}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.Total)
}

func TestSearch_RequiresQuery(t *testing.T) {
	svc, _, _, _ := newService(t, nil)
	_, err := svc.Search(context.Background(), "  ", 1, 20)
	assert.ErrorIs(t, err, ErrQueryRequired)
}

func TestView_RanksByPriorityAndSkipsInactive(t *testing.T) {
	svc, db, owner, _ := newService(t, nil)
	ctx := context.Background()
	admin := Actor{ID: owner.ID, Role: domain.RoleAdmin}

	var ids []int64
	for i := 0; i < 3; i++ {
		l, err := svc.Create(ctx, admin, validInput(), Media{})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	repo := repository.NewListingRepository(db)
	require.NoError(t, repo.UpdateFields(ctx, ids[0], map[string]any{"is_featured": true, "priority": 5}))
	require.NoError(t, repo.UpdateFields(ctx, ids[1], map[string]any{"is_featured": true, "priority": 1}))
	require.NoError(t, repo.UpdateFields(ctx, ids[2], map[string]any{"is_featured": true, "priority": 9, "is_active": false}))

	featured, err := svc.View(ctx, domain.ViewFeatured, 0)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, ids[0], featured[0].ID)
	assert.Equal(t, ids[1], featured[1].ID)

	_, err = svc.View(ctx, domain.View("popular"), 10)
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestBrowse_OnlyApproved(t *testing.T) {
	svc, _, owner, _ := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleUser}, validInput(), Media{})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Actor{ID: owner.ID, Role: domain.RoleAdmin}, validInput(), Media{})
	require.NoError(t, err)

	page, err := svc.Browse(ctx, BrowseFilter{City: "pun"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
}
