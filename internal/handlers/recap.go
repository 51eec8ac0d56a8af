package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notsolong/internal/middleware"
	"notsolong/internal/models"
	"notsolong/internal/services"
	"notsolong/internal/utils"
)

type RecapHandler struct {
	db    *gorm.DB
	votes *services.VoteService
}

func NewRecapHandler(conn *gorm.DB, votes *services.VoteService) *RecapHandler {
	return &RecapHandler{db: conn, votes: votes}
}

type createRecapRequest struct {
	TitleID uint   `json:"title_id" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

// Create adds the caller's recap for a title. One recap per
// (title, user); a second attempt is a 400 like a bad title id.
func (h *RecapHandler) Create(c *gin.Context) {
	var req createRecapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "title_id and text are required.")
		return
	}
	text := utils.SanitizeText(req.Text)
	if text == "" {
		jsonError(c, http.StatusBadRequest, "Text cannot be empty.")
		return
	}

	var titleCount int64
	if err := h.db.Model(&models.Title{}).Where("id = ?", req.TitleID).Count(&titleCount).Error; err != nil {
		serviceError(c, err)
		return
	}
	if titleCount == 0 {
		jsonError(c, http.StatusBadRequest, "Invalid or missing title.")
		return
	}

	user, _ := middleware.CurrentUser(c)
	recap := models.Recap{TitleID: req.TitleID, UserID: user.ID, Text: text}
	if err := h.db.Create(&recap).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			jsonError(c, http.StatusBadRequest, "You already have a recap for this title.")
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			jsonError(c, http.StatusBadRequest, "Invalid or missing title.")
		default:
			serviceError(c, err)
		}
		return
	}

	if err := h.db.Preload("Title").Preload("User").First(&recap, recap.ID).Error; err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recap)
}

// Get returns one recap, with the caller's vote when authenticated.
func (h *RecapHandler) Get(c *gin.Context) {
	recap, ok := h.loadRecap(c)
	if !ok {
		return
	}
	if err := h.annotateVote(c, recap); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recap)
}

type updateRecapRequest struct {
	Text string `json:"text" binding:"required"`
}

// Update rewrites the recap text. Owner only.
func (h *RecapHandler) Update(c *gin.Context) {
	recap, ok := h.loadRecap(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	if recap.UserID != user.ID {
		jsonError(c, http.StatusForbidden, "You can only edit your own recap.")
		return
	}

	var req updateRecapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "text is required.")
		return
	}
	text := utils.SanitizeText(req.Text)
	if text == "" {
		jsonError(c, http.StatusBadRequest, "Text cannot be empty.")
		return
	}

	if err := h.db.Model(recap).Update("text", text).Error; err != nil {
		serviceError(c, err)
		return
	}
	recap.Text = text
	if err := h.annotateVote(c, recap); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recap)
}

// Delete removes the recap. Owner only; votes go with it via cascade.
func (h *RecapHandler) Delete(c *gin.Context) {
	recap, ok := h.loadRecap(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	if recap.UserID != user.ID {
		jsonError(c, http.StatusForbidden, "You can only delete your own recap.")
		return
	}
	if err := h.db.Delete(recap).Error; err != nil {
		serviceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type voteRequest struct {
	Value *int `json:"value" binding:"required"`
}

// Vote casts, changes or retracts the caller's vote and returns the
// recap with refreshed counters.
func (h *RecapHandler) Vote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid recap id.")
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "value is required.")
		return
	}

	user, _ := middleware.CurrentUser(c)
	recap, err := h.votes.Apply(uint(id), user.ID, *req.Value)
	if err != nil {
		serviceError(c, err)
		return
	}
	if err := h.annotateVote(c, recap); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recap)
}

func (h *RecapHandler) loadRecap(c *gin.Context) (*models.Recap, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid recap id.")
		return nil, false
	}
	var recap models.Recap
	if err := h.db.Preload("Title").Preload("User").First(&recap, uint(id)).Error; err != nil {
		serviceError(c, err)
		return nil, false
	}
	return &recap, true
}

func (h *RecapHandler) annotateVote(c *gin.Context, recap *models.Recap) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	values, err := h.votes.CurrentValues(user.ID, []uint{recap.ID})
	if err != nil {
		return err
	}
	if v, ok := values[recap.ID]; ok {
		recap.CurrentUserVote = &v
	}
	return nil
}
