package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notsolong/internal/services"
)

// Error helper, matches the {"detail": "..."} shape clients expect.
func jsonError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"detail": message})
}

// serviceError maps vote-service and gorm sentinels to HTTP responses.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidVote):
		jsonError(c, http.StatusBadRequest, "Vote value must be -1, 0 or 1.")
	case errors.Is(err, services.ErrRecapNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		jsonError(c, http.StatusNotFound, "Not found.")
	case errors.Is(err, services.ErrUserNotFound):
		jsonError(c, http.StatusNotFound, "User not found.")
	case errors.Is(err, services.ErrVoteConflict):
		jsonError(c, http.StatusConflict, "Conflicting vote, please retry.")
	default:
		zap.L().Error("internal error", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Internal server error.")
	}
}
