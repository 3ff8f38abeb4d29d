package services

import (
	"errors"
	"strings"

	"hallway/internal/apperr"
	"hallway/internal/db"
	"hallway/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const minUsernameLen = 3

// NameService owns the shared username namespace. A claim is a single
// conditional insert keyed by the (lowercased) name, never a read followed by
// a write, so concurrent claims of the same name resolve to exactly one
// winner at the database.
type NameService struct{}

func NewNameService() *NameService {
	return &NameService{}
}

// Reserve binds desired to userID, releasing previous (if owned by userID) in
// the same transaction, and updates the user's display name. Returns
// NAME_TAKEN if another identity holds the name; nothing is mutated then.
func (s *NameService) Reserve(userID uint, desired, previous string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return s.reserve(tx, userID, desired, previous)
	})
}

func (s *NameService) reserve(tx *gorm.DB, userID uint, desired, previous string) error {
	desired = strings.TrimSpace(desired)
	if len(desired) < minUsernameLen {
		return apperr.Validation("username must be at least 3 characters")
	}

	key := strings.ToLower(desired)
	prevKey := strings.ToLower(strings.TrimSpace(previous))

	if key != prevKey {
		// ON CONFLICT DO NOTHING, not a bare insert: a unique violation would
		// abort the surrounding Postgres transaction and poison every
		// statement after it. A lost race shows up as zero rows affected and
		// the transaction stays healthy for the holder lookup.
		claim := models.Username{Name: key, UserID: userID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The name exists; re-claiming one's own name is a no-op success.
			var holder models.Username
			if err := tx.Where("name = ?", key).First(&holder).Error; err != nil {
				return err
			}
			if holder.UserID != userID {
				return apperr.Conflict(apperr.CodeNameTaken, "username already taken")
			}
		}

		if prevKey != "" {
			if err := tx.Where("name = ? AND user_id = ?", prevKey, userID).
				Delete(&models.Username{}).Error; err != nil {
				return err
			}
		}
	}

	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("username", desired).Error
}

// Register creates the identity row and reserves its username as one
// transaction: a NAME_TAKEN loss rolls the identity back with it, so a failed
// registration can never leave an orphaned user behind.
func (s *NameService) Register(user *models.User, desired string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("EMAIL_REGISTERED", "email already registered")
			}
			return err
		}
		if err := s.reserve(tx, user.ID, desired, ""); err != nil {
			return err
		}
		user.Username = strings.TrimSpace(desired)
		return nil
	})
}

// Release frees name if userID holds it. Releasing a name held by someone
// else, or not held at all, is a no-op.
func (s *NameService) Release(userID uint, name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil
	}
	return db.DB.Where("name = ? AND user_id = ?", key, userID).
		Delete(&models.Username{}).Error
}

// Owner returns the user id holding name, or 0 when the name is free.
func (s *NameService) Owner(name string) uint {
	var holder models.Username
	err := db.DB.Where("name = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&holder).Error
	if err != nil {
		return 0
	}
	return holder.UserID
}
