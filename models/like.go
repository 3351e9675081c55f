package models

import "time"

// Like records that one visitor fingerprint approves of one post.
// The (post_id, user_fingerprint) pair is unique; rows are only inserted or deleted.
type Like struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          string    `gorm:"column:post_id;size:255;not null;index:idx_post_id;uniqueIndex:idx_likes_post_fingerprint,priority:1" json:"post_id"`
	UserFingerprint string    `gorm:"column:user_fingerprint;size:512;not null;uniqueIndex:idx_likes_post_fingerprint,priority:2" json:"-"`
	CreatedAt       time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Like) TableName() string { return "likes" }
