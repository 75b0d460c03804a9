package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-rooms-backend/internal/booking"
	"booking-rooms-backend/internal/mw"
	"booking-rooms-backend/internal/notification"
)

// CreateReservation handles POST /api/reservations: the full validation
// pipeline, 201 with the hydrated reservation on success.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req booking.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	view, err := h.booking.Create(c.Request.Context(), c.GetString(mw.CtxUserID), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListReservations handles GET /api/reservations. Admins see everything;
// everyone else sees only their own.
func (h *Handler) ListReservations(c *gin.Context) {
	views, err := h.booking.List(c.Request.Context(), c.GetString(mw.CtxUserID), mw.IsAdmin(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetReservation handles GET /api/reservations/:id.
func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.booking.Get(c.Request.Context(), id, c.GetString(mw.CtxUserID), mw.IsAdmin(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelReservation handles DELETE /api/reservations/:id. Cancelling twice
// is a 400, not an idempotent 204. A successful cancel notifies watchers of
// the freed slot.
func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.booking.Cancel(c.Request.Context(), id, c.GetString(mw.CtxUserID), mw.IsAdmin(c))
	if err != nil {
		writeError(c, err)
		return
	}

	if h.notifier != nil {
		h.notifier.Dispatch(notification.FreedSlot{
			RoomID: res.RoomID,
			Start:  res.StartTimeUtc,
			End:    res.EndTimeUtc,
		})
	}
	c.Status(http.StatusNoContent)
}
