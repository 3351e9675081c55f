package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCombineDashboard(t *testing.T) {
	seen := Timestamp{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Valid: true}

	tests := []struct {
		name  string
		pages []PageTotal
		likes []PostLikes
		want  []DashboardRow
	}{
		{
			name: "empty",
			want: []DashboardRow{},
		},
		{
			name:  "page without likes",
			pages: []PageTotal{{PagePath: "/about", PageTitle: "About", TotalViews: 2, UniqueVisitors: 1, LastViewed: seen}},
			want: []DashboardRow{
				{PageID: "/about", PageTitle: strPtr("About"), TotalViews: 2, UniqueVisitors: 1, LastViewed: seen},
			},
		},
		{
			name:  "likes without page",
			likes: []PostLikes{{PostID: "orphan", Count: 4}},
			want:  []DashboardRow{{PageID: "orphan", LikeCount: 4}},
		},
		{
			name:  "match is case-insensitive containment",
			pages: []PageTotal{{PagePath: "/Blog/Trip-To-Peru", PageTitle: "Peru", TotalViews: 3, UniqueVisitors: 2}},
			likes: []PostLikes{{PostID: "trip-to-peru", Count: 2}},
			want: []DashboardRow{
				{PageID: "/Blog/Trip-To-Peru", PageTitle: strPtr("Peru"), TotalViews: 3, UniqueVisitors: 2, LikeCount: 2},
			},
		},
		{
			name:  "one page matching several posts yields a row each",
			pages: []PageTotal{{PagePath: "/blog/peru-2", PageTitle: "P", TotalViews: 5}},
			likes: []PostLikes{{PostID: "peru", Count: 3}, {PostID: "peru-2", Count: 1}},
			want: []DashboardRow{
				{PageID: "/blog/peru-2", PageTitle: strPtr("P"), TotalViews: 5, LikeCount: 3},
				{PageID: "/blog/peru-2", PageTitle: strPtr("P"), TotalViews: 5, LikeCount: 1},
			},
		},
		{
			// SQL LIKE wildcards in a post id are matched literally
			name:  "underscore is not a wildcard",
			pages: []PageTotal{{PagePath: "/blog/trip-to-peru", PageTitle: "Peru", TotalViews: 2}},
			likes: []PostLikes{{PostID: "trip_to_peru", Count: 1}, {PostID: "%", Count: 1}},
			want: []DashboardRow{
				{PageID: "/blog/trip-to-peru", PageTitle: strPtr("Peru"), TotalViews: 2},
				{PageID: "trip_to_peru", LikeCount: 1},
				{PageID: "%", LikeCount: 1},
			},
		},
		{
			name: "ordered by total views",
			pages: []PageTotal{
				{PagePath: "/low", TotalViews: 1},
				{PagePath: "/high", TotalViews: 9},
			},
			likes: []PostLikes{{PostID: "nowhere", Count: 7}},
			want: []DashboardRow{
				{PageID: "/high", PageTitle: strPtr(""), TotalViews: 9},
				{PageID: "/low", PageTitle: strPtr(""), TotalViews: 1},
				{PageID: "nowhere", LikeCount: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CombineDashboard(tt.pages, tt.likes))
		})
	}
}

func TestDashboard_FromStore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, fp := range []string{"F1", "F2", "F1"} {
		_, err := s.RecordPageView(ctx, PageViewInput{Path: "/blog/trip-to-peru", Title: "Peru", Fingerprint: fp})
		require.NoError(t, err)
	}
	_, err := s.RecordPageView(ctx, PageViewInput{Path: "/about", Title: "About", Fingerprint: "F1"})
	require.NoError(t, err)

	for _, fp := range []string{"F1", "F2"} {
		_, err := s.ToggleLike(ctx, "trip-to-peru", fp)
		require.NoError(t, err)
	}
	_, err = s.ToggleLike(ctx, "orphan-post", "F1")
	require.NoError(t, err)

	rows, err := s.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "/blog/trip-to-peru", rows[0].PageID)
	assert.EqualValues(t, 3, rows[0].TotalViews)
	assert.EqualValues(t, 2, rows[0].UniqueVisitors)
	assert.EqualValues(t, 2, rows[0].LikeCount)
	assert.True(t, rows[0].LastViewed.Valid)

	assert.Equal(t, "/about", rows[1].PageID)
	assert.EqualValues(t, 0, rows[1].LikeCount)

	assert.Equal(t, "orphan-post", rows[2].PageID)
	assert.Nil(t, rows[2].PageTitle)
	assert.EqualValues(t, 1, rows[2].LikeCount)
	assert.False(t, rows[2].LastViewed.Valid)
}
