package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"booking-rooms-backend/internal/model"
	"booking-rooms-backend/internal/result"
	"booking-rooms-backend/internal/store"
)

// EquipmentResponse is the API shape of one equipment entry.
type EquipmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoomResponse is the API shape of one room.
type RoomResponse struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	Capacity   int                 `json:"capacity"`
	Location   string              `json:"location"`
	Equipments []EquipmentResponse `json:"equipments"`
}

func toRoomResponse(room *model.Room) RoomResponse {
	equipments := make([]EquipmentResponse, 0, len(room.Equipments))
	for _, e := range room.Equipments {
		equipments = append(equipments, EquipmentResponse{ID: e.ID, Name: e.Name})
	}
	return RoomResponse{
		ID:         room.ID,
		Name:       room.Name,
		Capacity:   room.Capacity,
		Location:   room.Location,
		Equipments: equipments,
	}
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]RoomResponse, 0, len(rooms))
	for i := range rooms {
		responses = append(responses, toRoomResponse(&rooms[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetRoom handles GET /api/rooms/:id.
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	room, err := h.store.GetRoom(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, result.NotFound("Room", id))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoomResponse(room))
}

type roomRequest struct {
	Name         string  `json:"name" binding:"required"`
	Capacity     int     `json:"capacity" binding:"required,gt=0"`
	Location     string  `json:"location"`
	EquipmentIDs []int64 `json:"equipmentIds"`
}

// CreateRoom handles POST /api/rooms (admin only).
func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	room := &model.Room{
		Name:     req.Name,
		Capacity: req.Capacity,
		Location: req.Location,
	}
	if err := h.store.CreateRoom(c.Request.Context(), room, req.EquipmentIDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRoomResponse(room))
}

// UpdateRoom handles PUT /api/rooms/:id (admin only).
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	room := &model.Room{
		ID:       id,
		Name:     req.Name,
		Capacity: req.Capacity,
		Location: req.Location,
	}
	err := h.store.UpdateRoom(c.Request.Context(), room, req.EquipmentIDs)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, result.NotFound("Room", id))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRoom handles DELETE /api/rooms/:id (admin only). Rooms with
// non-cancelled reservations cannot be deleted.
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.store.DeleteRoom(c.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(c, result.NotFound("Room", id))
	case errors.Is(err, store.ErrRoomInUse):
		writeError(c, result.Conflict("Cannot delete room with active reservations."))
	case err != nil:
		writeError(c, err)
	default:
		c.Status(http.StatusNoContent)
	}
}

// ListEquipments handles GET /api/equipments.
func (h *Handler) ListEquipments(c *gin.Context) {
	equipments, err := h.store.ListEquipments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]EquipmentResponse, 0, len(equipments))
	for _, e := range equipments {
		responses = append(responses, EquipmentResponse{ID: e.ID, Name: e.Name})
	}
	c.JSON(http.StatusOK, responses)
}

// GetEquipment handles GET /api/equipments/:id.
func (h *Handler) GetEquipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	equipment, err := h.store.GetEquipment(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, result.NotFound("Equipment", id))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, EquipmentResponse{ID: equipment.ID, Name: equipment.Name})
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
