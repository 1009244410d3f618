// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parkwise/internal/auth"
	"parkwise/internal/bookings"
	"parkwise/internal/lots"
	"parkwise/internal/realtime"
	"parkwise/internal/reviews"
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/database"
	"parkwise/internal/slots"
	"parkwise/pkg/cache"
	"parkwise/pkg/metrics"
)

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	broadcaster *realtime.Broadcaster
	metrics     *metrics.Metrics

	// Built during SetupRoutes; main wires the sweeper to bookingService.
	bookingService bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, broadcaster *realtime.Broadcaster, collector *metrics.Metrics) *Router {
	return &Router{
		config:      cfg,
		db:          db,
		broadcaster: broadcaster,
		metrics:     collector,
	}
}

// BookingService exposes the booking service assembled in SetupRoutes.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	if r.metrics != nil {
		engine.GET("/metrics", r.metrics.Handler())
	}

	cacheSvc := r.cacheService()

	// Shared data plumbing
	slotStore := slots.NewStore(r.db.GetPostgreSQL())

	// Auth
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)

	// Lots own the pricing snapshot the booking flow quotes against
	lotRepo := lots.NewRepository(r.db.GetPostgreSQL())
	lotService := lots.NewService(lotRepo, slotStore, cacheSvc, r.broadcaster)
	lotController := lots.NewController(lotService)

	// Slots
	slotService := slots.NewService(slotStore, r.broadcaster)
	slotController := slots.NewController(slotService)

	// Bookings
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL(), slotStore)
	bookingService := bookings.NewService(bookingRepo, lotService, slotStore, r.broadcaster, r.config.Booking)
	bookingController := bookings.NewController(bookingService)
	r.bookingService = bookingService

	// Reviews gate on completed stays and resolve names via the auth adapter
	reviewRepo := reviews.NewRepository(r.db.GetPostgreSQL())
	reviewService := reviews.NewService(reviewRepo, bookingService, auth.NewUserServiceAdapter(authRepo), cacheSvc)
	reviewController := reviews.NewController(reviewService)

	realtimeController := realtime.NewController(r.broadcaster.Hub())

	api := engine.Group(r.config.GetAPIBasePath())
	{
		authRouter := auth.NewRouter(authController)
		authRouter.SetupRoutes(api)

		lots.SetupLotRoutes(api, lotController)
		slots.SetupSlotRoutes(api, slotController)
		bookings.SetupBookingRoutes(api, bookingController)
		reviews.SetupReviewRoutes(api, reviewController)
		realtime.SetupRealtimeRoutes(api, realtimeController)
	}
}

// cacheService returns the cache layer, or nil when Redis is unavailable so
// services fall through to the database.
func (r *Router) cacheService() cache.Service {
	client := r.db.GetRedisClient()
	if client == nil {
		return nil
	}
	return cache.NewService(client)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "parkwise-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "parkwise-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
