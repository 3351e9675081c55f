package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tourwithmark/engagement/models"
)

// LikeResult is the outcome of a toggle.
type LikeResult struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// LikeStatus is a visitor's view of a post's likes.
type LikeStatus struct {
	Count     int64 `json:"count"`
	UserLiked bool  `json:"userLiked"`
}

// PostLikes is the like total of one post.
type PostLikes struct {
	PostID string `gorm:"column:post_id" json:"post_id"`
	Count  int64  `gorm:"column:count" json:"count"`
}

// ToggleLike removes the visitor's like on postID if present, otherwise adds it,
// and returns the post's count as read inside the same transaction.
func (s *Store) ToggleLike(ctx context.Context, postID, fingerprint string) (LikeResult, error) {
	if strings.TrimSpace(postID) == "" {
		return LikeResult{}, ErrEmptyPostID
	}

	var res LikeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("post_id = ? AND user_fingerprint = ?", postID, fingerprint).Delete(&models.Like{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected > 0 {
			res.Liked = false
		} else {
			// A concurrent toggle may have inserted the same pair since the delete; the
			// unique index turns that into a no-op and the outcome is "liked".
			like := models.Like{PostID: postID, UserFingerprint: fingerprint, CreatedAt: s.timestamp()}
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
			if ins.Error != nil && !errors.Is(ins.Error, gorm.ErrDuplicatedKey) {
				return ins.Error
			}
			res.Liked = true
		}

		return tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&res.Count).Error
	})
	if err != nil {
		return LikeResult{}, wrap("toggle like", err)
	}
	return res, nil
}

// LikeStatus reads the post's total and whether fingerprint has liked it in one statement,
// so both values come from the same snapshot.
func (s *Store) LikeStatus(ctx context.Context, postID, fingerprint string) (LikeStatus, error) {
	if strings.TrimSpace(postID) == "" {
		return LikeStatus{}, ErrEmptyPostID
	}

	var row struct {
		Count     int64 `gorm:"column:count"`
		UserLiked int64 `gorm:"column:user_liked"`
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM likes WHERE post_id = ?) AS count,
			(SELECT COUNT(*) FROM likes WHERE post_id = ? AND user_fingerprint = ?) AS user_liked`,
		postID, postID, fingerprint,
	).Scan(&row).Error
	if err != nil {
		return LikeStatus{}, wrap("like status", err)
	}
	return LikeStatus{Count: row.Count, UserLiked: row.UserLiked > 0}, nil
}

// LikeStats lists every liked post with its total, most liked first.
func (s *Store) LikeStats(ctx context.Context) ([]PostLikes, error) {
	rows := []PostLikes{}
	err := s.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("post_id, COUNT(*) AS count").
		Group("post_id").
		Order("count DESC, post_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("like stats", err)
	}
	return nonNil(rows), nil
}
