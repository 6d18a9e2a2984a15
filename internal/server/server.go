// Package server assembles the HTTP router from the domain services.
package server

import (
	"net/http"
	"time"

	"staybook/internal/cache"
	"staybook/internal/config"
	"staybook/internal/database"
	"staybook/internal/domain/admin"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/facility"
	"staybook/internal/domain/property"
	"staybook/internal/domain/review"
	"staybook/internal/domain/user"
	"staybook/internal/middleware"
	"staybook/internal/notify"
	"staybook/internal/pkg/jwt"
	"staybook/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the process-wide resources the router is built from.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Reader   *sqlx.DB
	JWT      *jwt.Service
	Images   storage.Store
	Avatars  storage.Store
	Cache    cache.PropertyCache
	Hub      *notify.Hub
	Log      logrus.FieldLogger
	Now      func() time.Time
	Notifier notify.Notifier
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Notifier == nil {
		if d.Hub != nil {
			d.Notifier = d.Hub
		} else {
			d.Notifier = notify.Nop{}
		}
	}
	cfg := d.Config
	tx := database.NewTxRunner(d.DB)

	properties := property.NewRepository(d.DB)
	bookings := booking.NewRepository(d.DB)

	propertyHandler := property.NewHandler(
		property.NewService(properties, tx, d.Images, d.Cache, d.Log, cfg.MaxUploadSize),
	)
	bookingHandler := booking.NewHandler(booking.NewService(
		bookings, properties, tx,
		availability.NewEngine(properties, bookings, d.Now),
		d.Notifier, d.Log,
	))
	facilityHandler := facility.NewHandler(facility.NewService(facility.NewRepository(d.DB), d.Cache, d.Log))
	reviewHandler := review.NewHandler(review.NewService(review.NewRepository(d.DB), bookings, d.Cache, d.Log))
	userHandler := user.NewHandler(user.NewService(user.Deps{
		Users:       user.NewRepository(d.DB),
		Properties:  properties,
		Tx:          tx,
		JWT:         d.JWT,
		Avatars:     d.Avatars,
		Images:      d.Images,
		Cache:       d.Cache,
		Log:         d.Log,
		MaxFileSize: cfg.MaxUploadSize,
	}))
	adminHandler := admin.NewHandler(admin.NewService(admin.NewRepository(d.DB, d.Reader), tx, d.Log))

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadSize
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.StorageDriver == config.StorageLocal {
		r.Static("/uploads", cfg.UploadDir)
	}

	auth := middleware.JWTAuth(d.JWT)
	adminOnly := []gin.HandlerFunc{auth, middleware.AdminOnly()}

	v1 := r.Group("/api/v1")
	{
		// public
		userHandler.RegisterRoutes(v1)
		propertyHandler.RegisterRoutes(v1)
		bookingHandler.RegisterRoutes(v1)
		reviewHandler.RegisterRoutes(v1)
		facilityHandler.RegisterRoutes(v1, adminOnly...)

		protected := v1.Group("")
		protected.Use(auth)
		{
			userHandler.RegisterProtectedRoutes(protected)
			propertyHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterProtectedRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)
		}

		adminGroup := v1.Group("/admin", adminOnly...)
		{
			adminHandler.RegisterRoutes(adminGroup)
			facilityHandler.RegisterAdminRoutes(adminGroup)
		}

		if d.Hub != nil {
			notify.NewHandler(d.Hub, d.JWT, cfg.CORSOrigins).RegisterRoutes(v1)
		}
	}
	return r
}
