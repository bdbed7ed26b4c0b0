package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eggstore-system/config"
	"eggstore-system/internal/middleware"
	"eggstore-system/internal/services/users"
	"eggstore-system/internal/utils"
)

type AuthHandler struct {
	users *users.Service
	auth  config.AuthConfig
	log   *logrus.Logger
}

func NewAuthHandler(userSvc *users.Service, auth config.AuthConfig, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: userSvc, auth: auth, log: log}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorResponse("Invalid username or password"))
			return
		}
		respondError(c, h.log, err)
		return
	}

	ttl := time.Duration(h.auth.TokenTTLMin) * time.Minute
	token, exp, err := utils.GenerateToken([]byte(h.auth.JWTSecret), user.ID, user.Username, user.Role, ttl)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Login successful", gin.H{
		"token":      token,
		"expires_at": exp,
		"user":       user,
	}))
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("User registered", user))
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	userID := c.GetUint(middleware.ContextUserID)
	err := h.users.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorResponse("Current password is incorrect"))
			return
		}
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Password updated", nil))
}
