package api

import (
	"log"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"booking-rooms-backend/config"
	"booking-rooms-backend/internal/booking"
	"booking-rooms-backend/internal/notification"
	"booking-rooms-backend/internal/result"
	"booking-rooms-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	booking  *booking.Service
	notifier *notification.WorkerPool
	webpush  *webpush.Options
	jwt      config.JWTConfig
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, bookingSvc *booking.Service, notifier *notification.WorkerPool, webpushOptions *webpush.Options, jwtCfg config.JWTConfig) *Handler {
	return &Handler{
		store:    s,
		booking:  bookingSvc,
		notifier: notifier,
		webpush:  webpushOptions,
		jwt:      jwtCfg,
	}
}

// writeError maps a business error to its HTTP status. Unclassified
// failures get a generic body so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	e := result.From(err)
	if e.Kind == result.KindFailure {
		log.Printf("%s %s failed: %s", c.Request.Method, c.FullPath(), e.Description)
		c.AbortWithStatusJSON(e.HTTPStatus(), gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(e.HTTPStatus(), gin.H{"error": e.Description})
}
