package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notsolong/internal/middleware"
	"notsolong/internal/models"
	"notsolong/internal/services"
	"notsolong/internal/utils"
)

type TitleHandler struct {
	db    *gorm.DB
	votes *services.VoteService
}

func NewTitleHandler(conn *gorm.DB, votes *services.VoteService) *TitleHandler {
	return &TitleHandler{db: conn, votes: votes}
}

type createTitleRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
	Author   string `json:"author"`
}

// Create adds a new title.
func (h *TitleHandler) Create(c *gin.Context) {
	var req createTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Name and category are required.")
		return
	}
	if !models.ValidCategory(req.Category) {
		jsonError(c, http.StatusBadRequest, "Invalid category.")
		return
	}
	name := utils.SanitizeText(req.Name)
	if name == "" {
		jsonError(c, http.StatusBadRequest, "Name cannot be empty.")
		return
	}

	user, _ := middleware.CurrentUser(c)
	title := models.Title{
		Name:        name,
		Category:    req.Category,
		Author:      utils.SanitizeText(req.Author),
		CreatedByID: &user.ID,
	}
	if err := h.db.Create(&title).Error; err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

// Get returns one title.
func (h *TitleHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid title id.")
		return
	}
	var title models.Title
	if err := h.db.First(&title, uint(id)).Error; err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

// Random picks a random title, optionally filtered by category and
// excluding already-seen ids, and returns its summary bundle.
func (h *TitleHandler) Random(c *gin.Context) {
	q := h.db.Model(&models.Title{})

	if category := c.Query("category"); category != "" {
		if !models.ValidCategory(category) {
			jsonError(c, http.StatusBadRequest, "Invalid category.")
			return
		}
		q = q.Where("category = ?", category)
	}
	if exclude := excludeIDs(c); len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}

	var title models.Title
	if err := q.Order("RANDOM()").First(&title).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "No titles available for the requested filter.")
			return
		}
		serviceError(c, err)
		return
	}
	h.renderSummary(c, &title)
}

// Summary returns the bundle for one specific title.
func (h *TitleHandler) Summary(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid title id.")
		return
	}
	var title models.Title
	if err := h.db.First(&title, uint(id)).Error; err != nil {
		serviceError(c, err)
		return
	}
	h.renderSummary(c, &title)
}

// renderSummary builds {title, top_recap, other_recaps}: the highest
// scored recap plus up to three random others.
func (h *TitleHandler) renderSummary(c *gin.Context, title *models.Title) {
	var top *models.Recap
	var first models.Recap
	err := h.db.Preload("Title").Preload("User").
		Where("title_id = ?", title.ID).
		Order("score DESC, created_at DESC").
		First(&first).Error
	if err == nil {
		top = &first
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		serviceError(c, err)
		return
	}

	others := []models.Recap{}
	q := h.db.Preload("Title").Preload("User").Where("title_id = ?", title.ID)
	if top != nil {
		q = q.Where("id <> ?", top.ID)
	}
	if err := q.Order("RANDOM()").Limit(3).Find(&others).Error; err != nil {
		serviceError(c, err)
		return
	}

	recaps := others
	if top != nil {
		recaps = append([]models.Recap{*top}, others...)
	}
	if err := h.annotateVotes(c, recaps); err != nil {
		serviceError(c, err)
		return
	}
	if top != nil {
		top = &recaps[0]
		recaps = recaps[1:]
	}

	c.JSON(http.StatusOK, gin.H{
		"title":        title,
		"top_recap":    top,
		"other_recaps": recaps,
	})
}

// annotateVotes fills CurrentUserVote for the logged-in user, if any.
func (h *TitleHandler) annotateVotes(c *gin.Context, recaps []models.Recap) error {
	user, ok := middleware.CurrentUser(c)
	if !ok || len(recaps) == 0 {
		return nil
	}
	ids := make([]uint, len(recaps))
	for i, r := range recaps {
		ids[i] = r.ID
	}
	values, err := h.votes.CurrentValues(user.ID, ids)
	if err != nil {
		return err
	}
	for i := range recaps {
		if v, ok := values[recaps[i].ID]; ok {
			value := v
			recaps[i].CurrentUserVote = &value
		}
	}
	return nil
}

// excludeIDs parses ?exclude=1,2 or repeated ?exclude= params,
// ignoring anything non-numeric.
func excludeIDs(c *gin.Context) []uint {
	raw := c.QueryArray("exclude")
	if len(raw) == 1 && strings.Contains(raw[0], ",") {
		raw = strings.Split(raw[0], ",")
	}
	var ids []uint
	for _, s := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
