package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"booking-rooms-backend/config"
	"booking-rooms-backend/internal/mw"
)

// NewRouter creates and configures the Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Reference-data GETs are cached; reservation reads never are, the
	// overlap check must see live state.
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)

		authed := api.Group("")
		authed.Use(mw.JWTAuth(h.jwt.Secret))
		{
			authed.GET("/rooms", caching, h.ListRooms)
			authed.GET("/rooms/:id", h.GetRoom)
			authed.POST("/rooms", mw.RequireAdmin(), h.CreateRoom)
			authed.PUT("/rooms/:id", mw.RequireAdmin(), h.UpdateRoom)
			authed.DELETE("/rooms/:id", mw.RequireAdmin(), h.DeleteRoom)

			authed.GET("/equipments", caching, h.ListEquipments)
			authed.GET("/equipments/:id", h.GetEquipment)

			authed.GET("/reservations", h.ListReservations)
			authed.GET("/reservations/:id", h.GetReservation)
			authed.POST("/reservations", h.CreateReservation)
			authed.DELETE("/reservations/:id", h.CancelReservation)
		}
	}

	return r
}
