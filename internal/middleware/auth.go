package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notsolong/internal/config"
	"notsolong/internal/models"
	"notsolong/internal/utils"
)

const CurrentUserKey = "current_user"

// bearerUser resolves the Authorization header to a user, or nil when
// the header is absent or invalid.
func bearerUser(c *gin.Context, cfg *config.Config, conn *gorm.DB) *models.User {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil
	}
	userID, err := utils.ParseToken(cfg, token, utils.TokenTypeAccess)
	if err != nil {
		return nil
	}
	var user models.User
	if err := conn.First(&user, userID).Error; err != nil {
		return nil
	}
	return &user
}

// LoadUser sets the current user into the context when a valid access
// token is present, and passes through otherwise. Public endpoints use
// it to fill per-user fields like current_user_vote.
func LoadUser(cfg *config.Config, conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := bearerUser(c, cfg, conn); user != nil {
			c.Set(CurrentUserKey, user)
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a valid access token.
func AuthRequired(cfg *config.Config, conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := bearerUser(c, cfg, conn)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required."})
			return
		}
		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by LoadUser/AuthRequired.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
