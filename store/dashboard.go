package store

import (
	"context"
	"sort"
	"strings"
)

// DashboardRow joins a page's view aggregates with the like count of a post whose id
// appears in the page path.
type DashboardRow struct {
	PageID         string    `json:"page_id"`
	PageTitle      *string   `json:"page_title"`
	TotalViews     int64     `json:"total_views"`
	UniqueVisitors int64     `json:"unique_visitors"`
	LikeCount      int64     `json:"like_count"`
	LastViewed     Timestamp `json:"last_viewed"`
}

// Dashboard returns the combined page/like view. Pages without likes and likes without
// pages are both kept, with missing numbers as zero.
func (s *Store) Dashboard(ctx context.Context) ([]DashboardRow, error) {
	pages, err := s.PageTotals(ctx)
	if err != nil {
		return nil, wrap("dashboard", err)
	}
	likes, err := s.LikeStats(ctx)
	if err != nil {
		return nil, wrap("dashboard", err)
	}
	return CombineDashboard(pages, likes), nil
}

// CombineDashboard is a full outer join of pages and post likes on "page path contains
// post id". The match is case-insensitive for ASCII, as SQLite's LIKE is, but '%' and '_'
// in a post id are literal characters. It is loose on purpose: a post id that is a
// substring of an unrelated path matches too.
func CombineDashboard(pages []PageTotal, likes []PostLikes) []DashboardRow {
	rows := make([]DashboardRow, 0, len(pages)+len(likes))
	matched := make([]bool, len(likes))

	for _, p := range pages {
		title := p.PageTitle
		base := DashboardRow{
			PageID:         p.PagePath,
			PageTitle:      &title,
			TotalViews:     p.TotalViews,
			UniqueVisitors: p.UniqueVisitors,
			LastViewed:     p.LastViewed,
		}
		path := strings.ToLower(p.PagePath)
		hit := false
		for i, l := range likes {
			if !strings.Contains(path, strings.ToLower(l.PostID)) {
				continue
			}
			row := base
			row.LikeCount = l.Count
			rows = append(rows, row)
			matched[i] = true
			hit = true
		}
		if !hit {
			rows = append(rows, base)
		}
	}

	for i, l := range likes {
		if matched[i] {
			continue
		}
		rows = append(rows, DashboardRow{PageID: l.PostID, LikeCount: l.Count})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalViews > rows[j].TotalViews
	})
	return rows
}
