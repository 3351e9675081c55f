package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tourwithmark/engagement/store"
	"github.com/tourwithmark/engagement/utils"
)

// LikeStore is the part of the store the like endpoints need.
type LikeStore interface {
	ToggleLike(ctx context.Context, postID, fingerprint string) (store.LikeResult, error)
	LikeStatus(ctx context.Context, postID, fingerprint string) (store.LikeStatus, error)
	LikeStats(ctx context.Context) ([]store.PostLikes, error)
}

// PageViewStore appends page view events.
type PageViewStore interface {
	RecordPageView(ctx context.Context, in store.PageViewInput) (uint, error)
}

// AnalyticsStore serves the read-only aggregations.
type AnalyticsStore interface {
	Analytics(ctx context.Context) store.Analytics
	Dashboard(ctx context.Context) ([]store.DashboardRow, error)
}

// respondError maps validation failures to 400 and everything else to a logged 500
// whose body never carries the underlying error text.
func respondError(ctx *gin.Context, logger *zap.Logger, op string, err error, message string) {
	if errors.Is(err, store.ErrValidation) {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}
	logger.Error(op,
		zap.Error(err),
		zap.String("path", ctx.Request.URL.Path),
		zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
	)
	utils.Error(ctx, http.StatusInternalServerError, message)
}
