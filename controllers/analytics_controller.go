package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tourwithmark/engagement/store"
	"github.com/tourwithmark/engagement/utils"
)

// AnalyticsController serves page view aggregates and the combined dashboard.
type AnalyticsController struct {
	store  AnalyticsStore
	cache  *utils.Cache
	logger *zap.Logger
}

// NewAnalyticsController creates a new AnalyticsController instance. cache may be nil.
func NewAnalyticsController(s AnalyticsStore, cache *utils.Cache, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{store: s, cache: cache, logger: logger}
}

// GetAnalytics returns pageViews, recentActivity and totalStats. A failed part is reported
// inline and the response is still 200 so the working parts reach the dashboard.
func (a *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	if b, ok := a.cache.GetBytes(ctx.Request.Context(), utils.CacheKeyAnalytics); ok {
		utils.RawJSON(ctx, http.StatusOK, b)
		return
	}

	res := a.store.Analytics(ctx.Request.Context())
	for name, err := range map[string]error{
		store.AggPageViews:      res.PageViewsErr,
		store.AggRecentActivity: res.RecentActivityErr,
		store.AggTotalStats:     res.TotalStatsErr,
	} {
		if err == nil {
			continue
		}
		utils.AggregationFailures.WithLabelValues(name).Inc()
		a.logger.Error("analytics query failed",
			zap.String("query", name),
			zap.Error(err),
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
		)
	}

	b, err := json.Marshal(res)
	if err != nil {
		respondError(ctx, a.logger, "encode analytics", err, "Internal server error")
		return
	}
	// partial results are not cached so the next request retries the failed query
	if len(res.Failed()) == 0 {
		a.cache.SetBytes(ctx.Request.Context(), utils.CacheKeyAnalytics, b)
	}
	utils.RawJSON(ctx, http.StatusOK, b)
}

// GetDashboard returns page aggregates joined with like counts.
func (a *AnalyticsController) GetDashboard(ctx *gin.Context) {
	if b, ok := a.cache.GetBytes(ctx.Request.Context(), utils.CacheKeyDashboard); ok {
		utils.RawJSON(ctx, http.StatusOK, b)
		return
	}

	rows, err := a.store.Dashboard(ctx.Request.Context())
	if err != nil {
		respondError(ctx, a.logger, "fetch dashboard stats", err, "Database error")
		return
	}
	b, err := json.Marshal(rows)
	if err != nil {
		respondError(ctx, a.logger, "encode dashboard stats", err, "Internal server error")
		return
	}
	a.cache.SetBytes(ctx.Request.Context(), utils.CacheKeyDashboard, b)
	utils.RawJSON(ctx, http.StatusOK, b)
}
