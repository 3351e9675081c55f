package store

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tourwithmark/engagement/models"
)

func persistedLikes(t *testing.T, s *Store, postID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error)
	return n
}

func TestToggleLike_Scenario(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	res, err := s.ToggleLike(ctx, "trip-to-peru", "F1")
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, Count: 1}, res)

	res, err = s.ToggleLike(ctx, "trip-to-peru", "F1")
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, Count: 0}, res)

	_, err = s.ToggleLike(ctx, "trip-to-peru", "F1")
	require.NoError(t, err)
	res, err = s.ToggleLike(ctx, "trip-to-peru", "F2")
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, Count: 2}, res)
}

func TestToggleLike_EmptyPostID(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ToggleLike(context.Background(), "  ", "F1")
	require.ErrorIs(t, err, ErrValidation)

	_, err = s.LikeStatus(context.Background(), "", "F1")
	require.ErrorIs(t, err, ErrValidation)
}

func TestToggleLike_ParityMatchesPersistedRows(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	fingerprints := []string{"A", "B", "C"}
	toggles := map[string]int{}

	for i := 0; i < 60; i++ {
		fp := fingerprints[rng.Intn(len(fingerprints))]
		res, err := s.ToggleLike(ctx, "post", fp)
		require.NoError(t, err)
		toggles[fp]++

		assert.Equal(t, toggles[fp]%2 == 1, res.Liked, "toggle %d for %s", i, fp)
		assert.Equal(t, persistedLikes(t, s, "post"), res.Count, "toggle %d", i)

		status, err := s.LikeStatus(ctx, "post", fp)
		require.NoError(t, err)
		assert.Equal(t, res.Liked, status.UserLiked)
		assert.Equal(t, res.Count, status.Count)
	}
}

func TestToggleLike_PostsAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.ToggleLike(ctx, "a", "F1")
	require.NoError(t, err)
	res, err := s.ToggleLike(ctx, "b", "F1")
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, Count: 1}, res)

	status, err := s.LikeStatus(ctx, "a", "F1")
	require.NoError(t, err)
	assert.Equal(t, LikeStatus{Count: 1, UserLiked: true}, status)
}

func TestToggleLike_ConcurrentFingerprintsLoseNoUpdate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	const visitors = 20
	expected := 0
	var wg sync.WaitGroup
	errs := make(chan error, visitors)
	for i := 0; i < visitors; i++ {
		n := i%3 + 1
		if n%2 == 1 {
			expected++
		}
		wg.Add(1)
		go func(fp string, n int) {
			defer wg.Done()
			for j := 0; j < n; j++ {
				if _, err := s.ToggleLike(ctx, "busy-post", fp); err != nil {
					errs <- err
					return
				}
			}
		}(fmt.Sprintf("fp-%d", i), n)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.EqualValues(t, expected, persistedLikes(t, s, "busy-post"))
	status, err := s.LikeStatus(ctx, "busy-post", "nobody")
	require.NoError(t, err)
	assert.EqualValues(t, expected, status.Count)
	assert.False(t, status.UserLiked)
}

func TestLikes_UniqueConstraintEnforcedByStore(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.db.Create(&models.Like{PostID: "p", UserFingerprint: "F1"}).Error)
	err := s.db.Create(&models.Like{PostID: "p", UserFingerprint: "F1"}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.EqualValues(t, 1, persistedLikes(t, s, "p"))
}

func TestLikes_ConcurrentDuplicateInsertsKeepOneRow(t *testing.T) {
	s := createTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Like{PostID: "race", UserFingerprint: "F1"}).Error
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, persistedLikes(t, s, "race"))

	status, err := s.LikeStatus(context.Background(), "race", "F1")
	require.NoError(t, err)
	assert.Equal(t, LikeStatus{Count: 1, UserLiked: true}, status)
}

func TestLikeStatus_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.ToggleLike(ctx, "p", "F1")
	require.NoError(t, err)

	first, err := s.LikeStatus(ctx, "p", "F1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.LikeStatus(ctx, "p", "F1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	other, err := s.LikeStatus(ctx, "p", "F2")
	require.NoError(t, err)
	assert.Equal(t, LikeStatus{Count: 1, UserLiked: false}, other)
}

func TestLikeStats_OrderedByCount(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.LikeStats(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, fp := range []string{"1", "2", "3"} {
		_, err := s.ToggleLike(ctx, "popular", fp)
		require.NoError(t, err)
	}
	_, err = s.ToggleLike(ctx, "quiet", "1")
	require.NoError(t, err)

	stats, err := s.LikeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []PostLikes{{PostID: "popular", Count: 3}, {PostID: "quiet", Count: 1}}, stats)
}
