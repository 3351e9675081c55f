package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tourwithmark/engagement/middleware"
	"github.com/tourwithmark/engagement/store"
	"github.com/tourwithmark/engagement/utils"
)

// LikesController serves the like button widget.
type LikesController struct {
	store          LikeStore
	cache          *utils.Cache
	logger         *zap.Logger
	trustForwarded bool
}

// NewLikesController creates a new LikesController instance. cache may be nil.
func NewLikesController(s LikeStore, cache *utils.Cache, logger *zap.Logger, trustForwarded bool) *LikesController {
	return &LikesController{store: s, cache: cache, logger: logger, trustForwarded: trustForwarded}
}

// GetLikes returns the post's count and whether the caller has liked it. The post id is
// opaque and stored exactly as sent.
func (l *LikesController) GetLikes(ctx *gin.Context) {
	postID := ctx.Param("postId")
	if strings.TrimSpace(postID) == "" {
		utils.Error(ctx, http.StatusBadRequest, store.ErrEmptyPostID.Error())
		return
	}

	status, err := l.store.LikeStatus(ctx.Request.Context(), postID, middleware.VisitorFingerprint(ctx, l.trustForwarded))
	if err != nil {
		respondError(ctx, l.logger, "fetch likes", err, "Database error")
		return
	}
	utils.JSON(ctx, http.StatusOK, status)
}

// ToggleLike flips the caller's like on the post.
func (l *LikesController) ToggleLike(ctx *gin.Context) {
	postID := ctx.Param("postId")
	if strings.TrimSpace(postID) == "" {
		utils.Error(ctx, http.StatusBadRequest, store.ErrEmptyPostID.Error())
		return
	}

	res, err := l.store.ToggleLike(ctx.Request.Context(), postID, middleware.VisitorFingerprint(ctx, l.trustForwarded))
	if err != nil {
		respondError(ctx, l.logger, "toggle like", err, "Database error")
		return
	}

	result := "unliked"
	if res.Liked {
		result = "liked"
	}
	utils.LikeToggles.WithLabelValues(result).Inc()
	l.cache.Invalidate(ctx.Request.Context(), utils.CacheKeyStats, utils.CacheKeyDashboard)

	utils.JSON(ctx, http.StatusOK, res)
}

// GetStats lists like totals for every post, most liked first.
func (l *LikesController) GetStats(ctx *gin.Context) {
	if b, ok := l.cache.GetBytes(ctx.Request.Context(), utils.CacheKeyStats); ok {
		utils.RawJSON(ctx, http.StatusOK, b)
		return
	}

	rows, err := l.store.LikeStats(ctx.Request.Context())
	if err != nil {
		respondError(ctx, l.logger, "fetch stats", err, "Database error")
		return
	}
	b, err := json.Marshal(rows)
	if err != nil {
		respondError(ctx, l.logger, "encode stats", err, "Internal server error")
		return
	}
	l.cache.SetBytes(ctx.Request.Context(), utils.CacheKeyStats, b)
	utils.RawJSON(ctx, http.StatusOK, b)
}
