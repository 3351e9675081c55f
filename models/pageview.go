package models

import "time"

// PageView is one recorded navigation. Rows are append-only.
type PageView struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PagePath        string    `gorm:"column:page_path;index:idx_page_path;size:512;not null" json:"page_path"`
	PageTitle       string    `gorm:"column:page_title;type:text" json:"page_title"`
	UserFingerprint string    `gorm:"column:user_fingerprint;type:text;not null" json:"-"`
	ViewedAt        time.Time `gorm:"column:viewed_at;index:idx_viewed_at;not null" json:"viewed_at"`
	Referrer        string    `gorm:"column:referrer;type:text" json:"referrer"`
	SessionID       string    `gorm:"column:session_id;type:text" json:"session_id"`
}

func (PageView) TableName() string { return "page_views" }
