package models

import (
	"time"
)

// Vote is one user's current sentiment on one recap. Value is 1 or -1;
// there is no zero row, retracting a vote deletes the row. The unique
// index keeps at most one row per (recap, user).
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecapID   uint      `gorm:"not null;uniqueIndex:idx_recap_user_vote" json:"recap_id"`
	Recap     Recap     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_recap_user_vote" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
}
