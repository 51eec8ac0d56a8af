package models

import (
	"time"
)

// Title categories. Stored as plain strings, validated at the handler edge.
const (
	CategoryBook     = "book"
	CategoryMovie    = "movie"
	CategoryTVSeries = "tvseries"
	CategoryTVShow   = "tvshow"
	CategoryPodcast  = "podcast"
	CategorySpeech   = "speech"
	CategoryOther    = "other"
)

// TitleCategories lists every accepted category value.
var TitleCategories = []string{
	CategoryBook, CategoryMovie, CategoryTVSeries, CategoryTVShow,
	CategoryPodcast, CategorySpeech, CategoryOther,
}

// ValidCategory reports whether c is one of the accepted categories.
func ValidCategory(c string) bool {
	for _, v := range TitleCategories {
		if v == c {
			return true
		}
	}
	return false
}

type Title struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Category    string    `gorm:"size:20;not null" json:"category"`
	Author      string    `json:"author"` // original creator of the work, free text
	CreatedByID *uint     `gorm:"index" json:"created_by_id"`
	CreatedBy   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
