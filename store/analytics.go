package store

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/tourwithmark/engagement/models"
)

// PageTotal aggregates all views of one path.
type PageTotal struct {
	PagePath       string    `gorm:"column:page_path" json:"page_path"`
	PageTitle      string    `gorm:"column:page_title" json:"page_title"`
	TotalViews     int64     `gorm:"column:total_views" json:"total_views"`
	UniqueVisitors int64     `gorm:"column:unique_visitors" json:"unique_visitors"`
	LastViewed     Timestamp `gorm:"column:last_viewed" json:"last_viewed"`
}

// RecentPage counts views of one path inside the trailing window.
type RecentPage struct {
	PagePath  string `gorm:"column:page_path" json:"page_path"`
	PageTitle string `gorm:"column:page_title" json:"page_title"`
	Views24h  int64  `gorm:"column:views_24h" json:"views_24h"`
}

// TotalStats summarizes the whole event log.
type TotalStats struct {
	TotalPageViews      int64 `gorm:"column:total_page_views" json:"total_page_views"`
	TotalUniqueVisitors int64 `gorm:"column:total_unique_visitors" json:"total_unique_visitors"`
	TotalPagesViewed    int64 `gorm:"column:total_pages_viewed" json:"total_pages_viewed"`
	TotalSessions       int64 `gorm:"column:total_sessions" json:"total_sessions"`
}

// Aggregation names, also used as JSON keys and metric labels.
const (
	AggPageViews      = "pageViews"
	AggRecentActivity = "recentActivity"
	AggTotalStats     = "totalStats"
)

// Analytics holds the three independent aggregations. A failed part keeps its error
// and leaves its siblings untouched.
type Analytics struct {
	PageViews         []PageTotal
	PageViewsErr      error
	RecentActivity    []RecentPage
	RecentActivityErr error
	TotalStats        *TotalStats
	TotalStatsErr     error
}

// Failed lists the aggregations that returned an error.
func (a Analytics) Failed() []string {
	var out []string
	if a.PageViewsErr != nil {
		out = append(out, AggPageViews)
	}
	if a.RecentActivityErr != nil {
		out = append(out, AggRecentActivity)
	}
	if a.TotalStatsErr != nil {
		out = append(out, AggTotalStats)
	}
	return out
}

type aggregationError struct {
	Error string `json:"error"`
}

// MarshalJSON replaces a failed part with {"error": ...}; the driver message is not exposed.
func (a Analytics) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if a.PageViewsErr != nil {
		out[AggPageViews] = aggregationError{Error: "Failed to load page views"}
	} else {
		out[AggPageViews] = nonNil(a.PageViews)
	}
	if a.RecentActivityErr != nil {
		out[AggRecentActivity] = aggregationError{Error: "Failed to load recent activity"}
	} else {
		out[AggRecentActivity] = nonNil(a.RecentActivity)
	}
	if a.TotalStatsErr != nil || a.TotalStats == nil {
		out[AggTotalStats] = aggregationError{Error: "Failed to load total stats"}
	} else {
		out[AggTotalStats] = a.TotalStats
	}
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Analytics runs the per-page, recent and global aggregations concurrently.
func (s *Store) Analytics(ctx context.Context) Analytics {
	var (
		a Analytics
		g errgroup.Group
	)
	// Each goroutine owns its own fields and never returns an error, so one failure
	// cannot cancel the others.
	g.Go(func() error {
		a.PageViews, a.PageViewsErr = s.PageTotals(ctx)
		return nil
	})
	g.Go(func() error {
		a.RecentActivity, a.RecentActivityErr = s.RecentActivity(ctx)
		return nil
	})
	g.Go(func() error {
		a.TotalStats, a.TotalStatsErr = s.TotalStats(ctx)
		return nil
	})
	_ = g.Wait()
	return a
}

// PageTotals groups every view by path, most viewed first.
func (s *Store) PageTotals(ctx context.Context) ([]PageTotal, error) {
	rows := []PageTotal{}
	err := s.db.WithContext(ctx).
		Model(&models.PageView{}).
		Select(`page_path,
			COALESCE(MAX(page_title), '') AS page_title,
			COUNT(*) AS total_views,
			COUNT(DISTINCT user_fingerprint) AS unique_visitors,
			MAX(viewed_at) AS last_viewed`).
		Group("page_path").
		Order("total_views DESC, page_path ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("page totals", err)
	}
	return nonNil(rows), nil
}

// RecentActivity counts views per path inside the trailing window ending now.
func (s *Store) RecentActivity(ctx context.Context) ([]RecentPage, error) {
	since := s.timestamp().Add(-s.recentWindow)
	rows := []RecentPage{}
	err := s.db.WithContext(ctx).
		Model(&models.PageView{}).
		Select(`page_path,
			COALESCE(MAX(page_title), '') AS page_title,
			COUNT(*) AS views_24h`).
		Where("viewed_at > ?", since).
		Group("page_path").
		Order("views_24h DESC, page_path ASC").
		Limit(s.recentLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("recent activity", err)
	}
	return nonNil(rows), nil
}

// TotalStats reads the global counters. Empty session ids are not sessions.
func (s *Store) TotalStats(ctx context.Context) (*TotalStats, error) {
	var t TotalStats
	err := s.db.WithContext(ctx).
		Model(&models.PageView{}).
		Select(`COUNT(*) AS total_page_views,
			COUNT(DISTINCT user_fingerprint) AS total_unique_visitors,
			COUNT(DISTINCT page_path) AS total_pages_viewed,
			COUNT(DISTINCT NULLIF(session_id, '')) AS total_sessions`).
		Scan(&t).Error
	if err != nil {
		return nil, wrap("total stats", err)
	}
	return &t, nil
}
