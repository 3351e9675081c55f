package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tourwithmark/engagement/config"
	"github.com/tourwithmark/engagement/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	return config.AppConfig{
		DBDriver:          "sqlite",
		DBPath:            filepath.Join(t.TempDir(), "likes.db"),
		LogLevel:          "silent",
		RecentWindowHours: 24,
		RecentLimit:       10,
	}
}

// createTestStore opens a fresh SQLite store in a temp dir.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), testConfig(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_IsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := Open(ctx, cfg)
		require.NoError(t, err, "open #%d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"likes", "page_views"} {
		require.True(t, s.db.Migrator().HasTable(table), "table %s missing", table)
	}
	require.True(t, s.db.Migrator().HasIndex(&models.Like{}, "idx_likes_post_fingerprint"))
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "oracle"
	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
}

func TestClose_ReleasesHandle(t *testing.T) {
	s, err := Open(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())

	_, err = s.LikeStatus(context.Background(), "post", "fp")
	var se *StoreError
	require.ErrorAs(t, err, &se)
}

func TestClose_NilStore(t *testing.T) {
	var s *Store
	require.NoError(t, s.Close())
}
