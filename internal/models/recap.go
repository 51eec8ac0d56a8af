package models

import (
	"time"
)

// Recap is a user's short take on a Title. One recap per (title, user).
//
// Score, Upvotes and Downvotes are derived from the votes table and are
// written only by services.VoteService; score == upvotes - downvotes
// holds after every vote mutation.
type Recap struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TitleID   uint      `gorm:"not null;uniqueIndex:idx_title_user_recap" json:"title_id"`
	Title     Title     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"title"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_title_user_recap" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Score     int       `gorm:"not null;default:0" json:"score"`
	Upvotes   int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int       `gorm:"not null;default:0" json:"downvotes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 非数据库字段，查询时按当前登录用户填充
	CurrentUserVote *int `gorm:"-" json:"current_user_vote"`
}
