package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"booking-rooms-backend/internal/auth"
	"booking-rooms-backend/internal/model"
	"booking-rooms-backend/internal/result"
	"booking-rooms-backend/internal/store"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// Register creates a new account with the requested role.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
		writeError(c, result.Conflict("Invalid role: "+req.Role))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}

	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(c, result.Conflict("User already exists."))
			return
		}
		writeError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type loginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	UserName     string    `json:"userName"`
	Token        string    `json:"token"`
	ExpiresAtUtc time.Time `json:"expiresAtUtc"`
	Roles        []string  `json:"roles"`
}

// Login verifies credentials and issues an access token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.UserName)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !auth.VerifyPassword(user.PasswordHash, req.Password)) {
		writeError(c, result.Unauthorized("Invalid username or password."))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	ttl := time.Duration(h.jwt.ExpireMinutes) * time.Minute
	token, err := auth.NewToken(h.jwt.Secret, h.jwt.Issuer, user.ID, user.DisplayName, user.Role, ttl)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		UserName:     user.DisplayName,
		Token:        token.Value,
		ExpiresAtUtc: token.Exp,
		Roles:        []string{user.Role},
	})
}
