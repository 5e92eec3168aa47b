package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayinn/internal/infra/config"
	"stayinn/internal/infra/obs"
)

type AccommodationHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Search(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type AvailabilityHTTP interface {
	ListPeriods(c *gin.Context)
	CreatePeriod(c *gin.Context)
	UpdatePeriod(c *gin.Context)
	DeletePeriod(c *gin.Context)
}

type ReservationHTTP interface {
	Create(c *gin.Context)
	ListByPeriod(c *gin.Context)
	ListMine(c *gin.Context)
	ListExpired(c *gin.Context)
	Delete(c *gin.Context)
}

type RatingHTTP interface {
	RateAccommodation(c *gin.Context)
	RateHost(c *gin.Context)
	DeleteAccommodationRating(c *gin.Context)
	DeleteHostRating(c *gin.Context)
	ListForAccommodation(c *gin.Context)
	ListForHost(c *gin.Context)
	Average(c *gin.Context)
	MyAccommodationRatings(c *gin.Context)
	MyHostRatings(c *gin.Context)
	Notifications(c *gin.Context)
}

type ProfileHTTP interface {
	Get(c *gin.Context)
	Upsert(c *gin.Context)
	Delete(c *gin.Context)
}

type Handlers struct {
	Accommodation  AccommodationHTTP
	Availability   AvailabilityHTTP
	Reservation    ReservationHTTP
	Rating         RatingHTTP
	Profile        ProfileHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	if cfg.RateLimitRPS > 0 {
		router.Use(obsMW.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Accommodation != nil {
		api.GET("/accommodations", h.Accommodation.List)
		api.GET("/accommodations/search", h.Accommodation.Search)
		api.GET("/accommodations/:id", h.Accommodation.Get)
		api.POST("/accommodations", h.Accommodation.Create)
		api.PUT("/accommodations/:id", h.Accommodation.Update)
		api.DELETE("/accommodations/:id", h.Accommodation.Delete)
	}
	if h.Availability != nil {
		api.GET("/accommodations/:id/periods", h.Availability.ListPeriods)
		api.POST("/periods", h.Availability.CreatePeriod)
		api.PATCH("/periods", h.Availability.UpdatePeriod)
		api.DELETE("/periods/:id", h.Availability.DeletePeriod)
	}
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.GET("/reservations", h.Reservation.ListMine)
		api.GET("/reservations/expired", h.Reservation.ListExpired)
		api.GET("/periods/:id/reservations", h.Reservation.ListByPeriod)
		api.DELETE("/periods/:id/reservations/:reservationId", h.Reservation.Delete)
	}
	if h.Rating != nil {
		ratingGroup := api.Group("/ratings")
		ratingGroup.POST("/accommodation", h.Rating.RateAccommodation)
		ratingGroup.POST("/host", h.Rating.RateHost)
		ratingGroup.GET("/accommodation/:id", h.Rating.ListForAccommodation)
		ratingGroup.GET("/host/:id", h.Rating.ListForHost)
		ratingGroup.DELETE("/accommodation/:id", h.Rating.DeleteAccommodationRating)
		ratingGroup.DELETE("/host/:id", h.Rating.DeleteHostRating)
		ratingGroup.GET("/average/:subjectId", h.Rating.Average)
		ratingGroup.GET("/accommodation-by-user", h.Rating.MyAccommodationRatings)
		ratingGroup.GET("/host-by-user", h.Rating.MyHostRatings)
		api.GET("/notifications", h.Rating.Notifications)
	}
	if h.Profile != nil {
		api.GET("/profile", h.Profile.Get)
		api.PUT("/profile", h.Profile.Upsert)
		api.DELETE("/profile", h.Profile.Delete)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
