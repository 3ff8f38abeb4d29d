package services

import (
	"errors"

	"hallway/internal/apperr"
	"hallway/internal/db"
	"hallway/internal/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// RatingService applies at most one rating per (post, user, calendar day).
// The day boundary is UTC for every caller. Uniqueness is enforced by the
// composite index on the ratings table, so two racing casts cannot both land:
// whichever insert loses gets a duplicate-key rejection and the aggregate
// counter is only touched in the same transaction as a successful insert.
type RatingService struct {
	clock clockwork.Clock
}

func NewRatingService() *RatingService {
	return &RatingService{clock: clockwork.NewRealClock()}
}

// NewRatingServiceWithClock is used by tests to control the calendar day.
func NewRatingServiceWithClock(clock clockwork.Clock) *RatingService {
	return &RatingService{clock: clock}
}

// Day returns the current UTC calendar date, YYYY-MM-DD.
func (s *RatingService) Day() string {
	return s.clock.Now().UTC().Format("2006-01-02")
}

// Cast records a +1/-1 rating on a post and moves the post's likes counter by
// the same amount. Returns ALREADY_RATED_TODAY if this user already rated
// this post today; in that case nothing is mutated.
func (s *RatingService) Cast(postID, userID uint, value int) error {
	if value != 1 && value != -1 {
		return apperr.Validation("rating value must be +1 or -1")
	}

	day := s.Day()

	return db.DB.Transaction(func(tx *gorm.DB) error {
		rating := models.Rating{
			PostID: postID,
			UserID: userID,
			Day:    day,
			Value:  value,
		}
		if err := tx.Create(&rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict(apperr.CodeAlreadyRatedToday, "already rated today")
			}
			return err
		}

		res := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes", gorm.Expr("likes + ?", value))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Rolls back the rating insert too
			return apperr.NotFound("post not found")
		}
		return nil
	})
}

// HasRatedToday reports whether the user already spent today's rating on the post.
func (s *RatingService) HasRatedToday(postID, userID uint) bool {
	var count int64
	db.DB.Model(&models.Rating{}).
		Where("post_id = ? AND user_id = ? AND day = ?", postID, userID, s.Day()).
		Count(&count)
	return count > 0
}

// RatedToday returns the subset of postIDs the user has rated today. Used to
// mark a whole feed page in one query.
func (s *RatingService) RatedToday(userID uint, postIDs []uint) map[uint]bool {
	rated := make(map[uint]bool)
	if len(postIDs) == 0 {
		return rated
	}

	var rows []models.Rating
	db.DB.Where("user_id = ? AND day = ? AND post_id IN ?", userID, s.Day(), postIDs).
		Find(&rows)
	for _, r := range rows {
		rated[r.PostID] = true
	}
	return rated
}
