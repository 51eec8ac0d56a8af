package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notsolong/internal/config"
	"notsolong/internal/middleware"
	"notsolong/internal/models"
	"notsolong/internal/utils"
)

type AuthHandler struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewAuthHandler(cfg *config.Config, conn *gorm.DB) *AuthHandler {
	return &AuthHandler{cfg: cfg, db: conn}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username"`
}

// Register creates a user and returns the profile plus a token pair.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Email and a password of at least 8 characters are required.")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		// Default to the local part of the email, like the signup form does.
		username = strings.SplitN(req.Email, "@", 2)[0]
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		serviceError(c, err)
		return
	}

	user := models.User{
		Username: username,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hash,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			jsonError(c, http.StatusBadRequest, "An account with this email already exists.")
			return
		}
		serviceError(c, err)
		return
	}

	tokens, err := utils.GenerateTokenPair(h.cfg, user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "tokens": tokens})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges email/password for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Email and password are required.")
		return
	}

	var user models.User
	err := h.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		// Same answer whether the account exists or the password is wrong.
		jsonError(c, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	tokens, err := utils.GenerateTokenPair(h.cfg, user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Refresh token is required.")
		return
	}

	userID, err := utils.ParseToken(h.cfg, req.Refresh, utils.TokenTypeRefresh)
	if err != nil {
		jsonError(c, http.StatusUnauthorized, "Invalid or expired refresh token.")
		return
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		jsonError(c, http.StatusUnauthorized, "Invalid or expired refresh token.")
		return
	}

	tokens, err := utils.GenerateTokenPair(h.cfg, user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": tokens.Access})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, user)
}

type updateMeRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// UpdateMe updates the profile. Only the username may change.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		jsonError(c, http.StatusBadRequest, "Email cannot be changed.")
		return
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			jsonError(c, http.StatusBadRequest, "Username cannot be empty.")
			return
		}
		user.Username = username
		if err := h.db.Model(user).Update("username", username).Error; err != nil {
			serviceError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, user)
}
