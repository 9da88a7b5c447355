package repository

import (
	"context"
	"testing"
	"time"

	"propzy/internal/database"
	"propzy/internal/domain"

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

func seedUser(t *testing.T, repo *UserRepository, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, UserName: "u", PasswordHash: "h", Role: domain.RoleUser, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedListing(t *testing.T, repo *ListingRepository, l domain.Listing) *domain.Listing {
	t.Helper()
	if l.PropertySubType == "" {
		l.PropertySubType = "Flat"
	}
	if l.Locality == "" {
		l.Locality = "Central"
	}
	if l.Status == "" {
		l.Status = domain.ListingApproved
	}
	l.IsActive = true
	require.NoError(t, repo.Create(context.Background(), &l))
	return &l
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, users, "Dup@Example.com")

	err := users.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "h", Role: domain.RoleUser, IsActive: true})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := users.GetByEmail(ctx, " DUP@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "dup@example.com", got.Email)
}

func TestListingRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	listings := NewListingRepository(db)
	ctx := context.Background()
	owner := seedUser(t, users, "owner@example.com")

	seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "Pune", Locality: "Baner", PropertyDescription: "Sunny flat"})
	seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "Mumbai", Locality: "Andheri", Apartment: "Pune Heights"})
	seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "Delhi", Locality: "Saket", Status: domain.ListingPending})
	seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "Pune", Locality: "Kothrud", PropertyType: domain.PropertyCommercial, IsFeatured: true})

	items, total, err := listings.List(ctx, ListingFilter{Search: "pune", Status: domain.ListingApproved})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total, "city match or apartment match")
	assert.Len(t, items, 3)
	require.NotNil(t, items[0].Owner)
	assert.Equal(t, "owner@example.com", items[0].Owner.Email)

	_, total, err = listings.List(ctx, ListingFilter{CityContains: "PUN", PropertyType: string(domain.PropertyCommercial)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = listings.List(ctx, ListingFilter{FlagColumn: "is_featured"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	page, total, err := listings.List(ctx, ListingFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page, 2)
}

func TestListingRepository_BulkUpdateCountsMatched(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingRepository(db)
	owner := seedUser(t, NewUserRepository(db), "o@example.com")
	ctx := context.Background()

	a := seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "A"})
	b := seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "B"})

	n, err := listings.BulkUpdateFields(ctx, []int64{a.ID, b.ID, 9999}, map[string]any{"is_top_pick": true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := listings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsTopPick)
}

func TestListingRepository_DeleteClearsEnquiryLink(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingRepository(db)
	enquiries := NewEnquiryRepository(db)
	owner := seedUser(t, NewUserRepository(db), "o@example.com")
	ctx := context.Background()

	l := seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "A"})
	e := &domain.Enquiry{Name: "n", Email: "e@x.io", Phone: "1", ListingID: &l.ID, Source: domain.SourcePropertyDetail, Status: domain.EnquiryPending}
	require.NoError(t, enquiries.Create(ctx, e))

	require.NoError(t, listings.Delete(ctx, l.ID))

	got, err := enquiries.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ListingID)
	assert.Nil(t, got.Listing)

	assert.ErrorIs(t, listings.Delete(ctx, l.ID), gorm.ErrRecordNotFound)
}

func TestEnquiryRepository_CountBy(t *testing.T) {
	db := newTestDB(t)
	enquiries := NewEnquiryRepository(db)
	ctx := context.Background()

	for _, s := range []domain.EnquiryStatus{domain.EnquiryPending, domain.EnquiryPending, domain.EnquiryClosed} {
		require.NoError(t, enquiries.Create(ctx, &domain.Enquiry{Name: "n", Email: "e@x.io", Phone: "1", Source: domain.SourceOther, Status: s}))
	}

	byStatus, err := enquiries.CountBy(ctx, "status")
	require.NoError(t, err)
	assert.EqualValues(t, 2, byStatus["pending"])
	assert.EqualValues(t, 1, byStatus["closed"])

	n, err := enquiries.CountSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestPasswordResetRepository_MarkUsedOnce(t *testing.T) {
	db := newTestDB(t)
	resets := NewPasswordResetRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	p := &domain.PasswordReset{UserID: 1, TokenHash: "abc", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, resets.Create(ctx, p))

	ok, err := resets.MarkUsed(ctx, p.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = resets.MarkUsed(ctx, p.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := resets.DeleteStale(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestListingRepository_SaveKeepsModeration(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingRepository(db)
	owner := seedUser(t, NewUserRepository(db), "o@example.com")
	ctx := context.Background()

	l := seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "Pune", Status: domain.ListingPending})

	stale, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)

	require.NoError(t, listings.UpdateFields(ctx, l.ID, map[string]any{
		"status":      domain.ListingApproved,
		"is_featured": true,
		"priority":    5,
	}))

	stale.City = "Mumbai"
	stale.Owner = nil
	require.NoError(t, listings.Save(ctx, stale))

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got.City)
	assert.Equal(t, domain.ListingApproved, got.Status)
	assert.True(t, got.IsFeatured)
	assert.Equal(t, 5, got.Priority)
	assert.Equal(t, owner.ID, got.UserID)

	stale.ID = 9999
	assert.ErrorIs(t, listings.Save(ctx, stale), gorm.ErrRecordNotFound)
}

func TestListingRepository_SearchMatchesWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	listings := NewListingRepository(db)
	owner := seedUser(t, NewUserRepository(db), "o@example.com")
	ctx := context.Background()

	seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "Pune", Locality: "Baner"})
	seedListing(t, listings, domain.Listing{UserID: owner.ID, City: "Delhi", Locality: "Saket", Apartment: "Tower_B 100%"})

	for _, q := range []string{"_", "%", `\`} {
		items, total, err := listings.List(ctx, ListingFilter{Search: q})
		require.NoError(t, err)
		if q == `\` {
			assert.EqualValues(t, 0, total, "search %q", q)
			continue
		}
		assert.EqualValues(t, 1, total, "search %q", q)
		require.Len(t, items, 1)
		assert.Equal(t, "Delhi", items[0].City)
	}

	_, total, err := listings.List(ctx, ListingFilter{Search: "towerxb"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	_, total, err = listings.List(ctx, ListingFilter{Locality: "b_ner"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestEnquiryRepository_SearchAndStamps(t *testing.T) {
	db := newTestDB(t)
	enquiries := NewEnquiryRepository(db)
	ctx := context.Background()

	john := &domain.Enquiry{Name: "John", Email: "john_doe@x.io", Phone: "1", Source: domain.SourceOther, Status: domain.EnquiryPending}
	require.NoError(t, enquiries.Create(ctx, john))
	require.NoError(t, enquiries.Create(ctx, &domain.Enquiry{Name: "Johnx", Email: "johnxdoe@x.io", Phone: "2", Source: domain.SourceOther, Status: domain.EnquiryPending}))

	items, total, err := enquiries.List(ctx, EnquiryFilter{Search: "john_doe"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, john.ID, items[0].ID)

	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	john.Status = domain.EnquiryContacted
	john.ContactedAt = &first
	require.NoError(t, enquiries.UpdateTriage(ctx, john))

	// a writer that read the row before the first stamp landed
	later := first.Add(time.Hour)
	john.ContactedAt = &later
	require.NoError(t, enquiries.UpdateTriage(ctx, john))

	got, err := enquiries.GetByID(ctx, john.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ContactedAt)
	assert.WithinDuration(t, first, *got.ContactedAt, time.Second)

	john.ContactedAt = nil
	require.NoError(t, enquiries.UpdateTriage(ctx, john))
	got, err = enquiries.GetByID(ctx, john.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ContactedAt)
	assert.Nil(t, got.ResolvedAt)
}
