package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hallway/internal/apperr"
	"hallway/internal/db"
	"hallway/internal/models"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPost(t *testing.T) (models.User, models.Post) {
	t.Helper()

	user := models.User{Username: "fox", Email: "fox@example.com", Password: "x"}
	require.NoError(t, db.DB.Create(&user).Error)

	post := models.Post{Pid: "abcd1234", UserID: user.ID, AuthorName: "fox", Body: "hello"}
	require.NoError(t, db.DB.Create(&post).Error)

	return user, post
}

func postLikes(t *testing.T, postID uint) int {
	t.Helper()
	var post models.Post
	require.NoError(t, db.DB.First(&post, postID).Error)
	return post.Likes
}

func TestCastExactlyOncePerDay(t *testing.T) {
	setupTestDB(t)
	user, post := seedPost(t)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	svc := NewRatingServiceWithClock(clock)

	require.NoError(t, svc.Cast(post.ID, user.ID, 1))
	assert.Equal(t, 1, postLikes(t, post.ID))

	// Second cast the same day must be rejected with no mutation
	err := svc.Cast(post.ID, user.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Equal(t, apperr.CodeAlreadyRatedToday, apperr.Code(err))
	assert.Equal(t, 1, postLikes(t, post.ID))

	var count int64
	db.DB.Model(&models.Rating{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCastConcurrentSameDay(t *testing.T) {
	setupTestDB(t)
	user, post := seedPost(t)
	svc := NewRatingService()

	// All casts race on the same (post, user, day); the unique index must let
	// exactly one land.
	const callers = 8
	var wg sync.WaitGroup
	var successes, conflicts int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Cast(post.ID, user.ID, 1)
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case apperr.IsConflict(err):
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes)
	assert.EqualValues(t, callers-1, conflicts)
	assert.Equal(t, 1, postLikes(t, post.ID))

	var count int64
	db.DB.Model(&models.Rating{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCastAllowedAgainNextDay(t *testing.T) {
	setupTestDB(t)
	user, post := seedPost(t)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 28, 23, 30, 0, 0, time.UTC))
	svc := NewRatingServiceWithClock(clock)

	require.NoError(t, svc.Cast(post.ID, user.ID, 1))

	clock.Advance(1 * time.Hour) // crosses the UTC day boundary
	require.NoError(t, svc.Cast(post.ID, user.ID, -1))

	assert.Equal(t, 0, postLikes(t, post.ID))
}

func TestCastRejectsBadValue(t *testing.T) {
	setupTestDB(t)
	user, post := seedPost(t)

	svc := NewRatingService()
	err := svc.Cast(post.ID, user.ID, 0)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	var count int64
	db.DB.Model(&models.Rating{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCastUnknownPostRollsBack(t *testing.T) {
	setupTestDB(t)
	user, _ := seedPost(t)

	svc := NewRatingService()
	err := svc.Cast(9999, user.ID, 1)
	require.Error(t, err)

	// The rating insert must have been rolled back with the failed increment
	var count int64
	db.DB.Model(&models.Rating{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestRatedTodayMarking(t *testing.T) {
	setupTestDB(t)
	user, post := seedPost(t)

	other := models.Post{Pid: "efgh5678", UserID: user.ID, AuthorName: "fox", Body: "second"}
	require.NoError(t, db.DB.Create(&other).Error)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	svc := NewRatingServiceWithClock(clock)

	require.NoError(t, svc.Cast(post.ID, user.ID, 1))

	assert.True(t, svc.HasRatedToday(post.ID, user.ID))
	assert.False(t, svc.HasRatedToday(other.ID, user.ID))

	rated := svc.RatedToday(user.ID, []uint{post.ID, other.ID})
	assert.True(t, rated[post.ID])
	assert.False(t, rated[other.ID])

	// Yesterday's rating does not count against today
	clock.Advance(24 * time.Hour)
	assert.False(t, svc.HasRatedToday(post.ID, user.ID))
}
