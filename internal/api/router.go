package api

import (
	"net/http"

	"propzy/internal/config"
	"propzy/internal/database"
	"propzy/internal/middleware"
	"propzy/internal/modules/admin"
	"propzy/internal/modules/auth"
	"propzy/internal/modules/enquiry"
	"propzy/internal/modules/listing"
	jwtsvc "propzy/internal/pkg/jwt"
	"propzy/internal/pkg/response"
	"propzy/internal/repository"
	"propzy/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-owned handles the HTTP surface is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Tokens *jwtsvc.Service
	Assets storage.AssetHost
	Mailer auth.Mailer
	Logger *zap.Logger

	// StaticDir is served under Config.Assets.BaseURL when set.
	StaticDir string
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(
		middleware.RequestID(log),
		middleware.Recovery(),
		middleware.AccessLog(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	userRepo := repository.NewUserRepository(d.DB)
	resetRepo := repository.NewPasswordResetRepository(d.DB)
	listingRepo := repository.NewListingRepository(d.DB)
	enquiryRepo := repository.NewEnquiryRepository(d.DB)

	authService := auth.NewService(userRepo, resetRepo, d.Tokens, d.Mailer, auth.Options{
		ResetTokenPepper: cfg.ResetTokenPepper,
		ResetTokenTTL:    cfg.ResetTokenTTL,
		FrontendURL:      cfg.FrontendURL,
	})
	authHandler := auth.NewHandler(authService)

	listingService := listing.NewService(listingRepo, d.Assets, log.Named("listing"))
	listingHandler := listing.NewHandler(listingService, cfg.Assets.MaxUploadMB<<20)

	adminService := admin.NewService(listingRepo)
	adminHandler := admin.NewHandler(adminService, listingService, listingHandler)

	enquiryService := enquiry.NewService(enquiryRepo, listingRepo)
	enquiryHandler := enquiry.NewHandler(enquiryService)

	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(d.DB); err != nil {
			response.ErrorWithDetails(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unreachable", err.Error())
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.InternalTokenAuth(cfg.MetricsToken), gin.WrapH(promhttp.Handler()))

	if d.StaticDir != "" && cfg.Assets.BaseURL != "" {
		r.Static(cfg.Assets.BaseURL, d.StaticDir)
	}

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		listingHandler.RegisterPublicRoutes(v1, middleware.OptionalJWTAuth(d.Tokens))
		enquiryHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.Tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			listingHandler.RegisterProtectedRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminHandler.RegisterRoutes(adminGroup)
				enquiryHandler.RegisterAdminRoutes(adminGroup)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return r
}
