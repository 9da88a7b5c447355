package main

import (
	"context"
	"errors"
	"flag"

	"propzy/internal/config"
	"propzy/internal/database"
	"propzy/internal/domain"
	"propzy/internal/pkg/logger"
	"propzy/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func main() {
	demo := flag.Bool("demo", false, "also insert sample approved listings owned by the admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("config", zap.Error(err))
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		logger.L().Fatal("logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	db, err := database.ConnectWithOptions(cfg.DatabaseURL, database.Options{LogLevel: cfg.DBLogLevel})
	if err != nil {
		log.Fatal("database connect", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		log.Fatal("database migrate", zap.Error(err))
	}

	ctx := context.Background()
	admin, created, err := ensureAdmin(ctx, repository.NewUserRepository(db), cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}
	if created {
		log.Info("admin created", zap.String("email", admin.Email))
	} else {
		log.Info("admin already exists", zap.String("email", admin.Email))
	}

	if *demo {
		n, err := seedDemoListings(ctx, repository.NewListingRepository(db), admin.ID)
		if err != nil {
			log.Fatal("seed demo listings", zap.Error(err))
		}
		log.Info("demo listings inserted", zap.Int("count", n))
	}
}

// ensureAdmin creates the admin account unless a user with that email exists.
func ensureAdmin(ctx context.Context, users *repository.UserRepository, email, password string) (*domain.User, bool, error) {
	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}
	admin := &domain.User{
		UserName:     "admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsVerified:   true,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, false, err
	}
	return admin, true, nil
}

func seedDemoListings(ctx context.Context, listings *repository.ListingRepository, ownerID int64) (int, error) {
	samples := []domain.Listing{
		{
			Purpose: domain.PurposeSell, PropertyType: domain.PropertyResidential, PropertySubType: "Flat/Apartment",
			City: "Pune", Locality: "Baner", Bedrooms: "2", Bathrooms: "2", CarpetArea: "850",
			ExpectedPrice: "7500000", AvailabilityStatus: domain.AvailabilityReady,
			Amenities: datatypes.JSONSlice[string]{"Lift", "Power Back-up", "Park"},
			IsFeatured: true, Priority: 10,
		},
		{
			Purpose: domain.PurposeRent, PropertyType: domain.PropertyResidential, PropertySubType: "Independent House",
			City: "Bengaluru", Locality: "Indiranagar", Bedrooms: "3", Bathrooms: "3", BuiltUpArea: "1800",
			ExpectedPrice: "65000", Furnishing: "Semi-furnished",
			IsTopPick: true, IsRecentlyAdded: true, Priority: 5,
		},
		{
			Purpose: domain.PurposeSell, PropertyType: domain.PropertyCommercial, PropertySubType: "Office Space",
			City: "Mumbai", Locality: "Andheri East", CarpetArea: "1200", ExpectedPrice: "32000000",
			AvailabilityStatus: domain.AvailabilityUnderConstruction,
			IsInvestmentProperty: true, IsHighlighted: true,
		},
	}

	for i := range samples {
		l := samples[i]
		l.UserID = ownerID
		l.Status = domain.ListingApproved
		l.IsActive = true
		if err := listings.Create(ctx, &l); err != nil {
			return i, err
		}
	}
	return len(samples), nil
}
