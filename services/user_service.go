package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"battle-arena-system/models"

	"gorm.io/gorm"
)

// BaseXPPerLevel anchors the level curve: xpForNextLevel(l) = floor(100 * l^1.5)
const BaseXPPerLevel = 100

// xpForNextLevel returns XP required to advance from the given level.
func xpForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Floor(float64(BaseXPPerLevel) * math.Pow(float64(level), 1.5)))
}

type UserService struct {
	DB            *gorm.DB
	Notifications *NotificationService
}

func NewUserService(db *gorm.DB, notifications *NotificationService) *UserService {
	return &UserService{DB: db, Notifications: notifications}
}

// GetByID loads a user profile.
func (s *UserService) GetByID(userID string) (*models.ArenaUser, error) {
	var u models.ArenaUser
	if err := s.DB.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername resolves a display handle to a profile, case-insensitively.
// The folded lookup column and FoldHandle share one normalization, so
// non-ASCII handles resolve the same way they were stored.
func (s *UserService) GetByUsername(handle string) (*models.ArenaUser, error) {
	var u models.ArenaUser
	err := s.DB.Where("username_folded = ?", models.FoldHandle(handle)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfile applies whitelisted profile mutations.
func (s *UserService) UpdateProfile(userID string, updates map[string]interface{}) (*models.ArenaUser, error) {
	allowed := map[string]bool{"bio": true, "profile_picture_url": true, "last_seen": true}
	filtered := map[string]interface{}{}
	for col, v := range updates {
		if allowed[col] {
			filtered[col] = v
		}
	}
	if len(filtered) > 0 {
		if err := s.DB.Model(&models.ArenaUser{}).Where("id = ?", userID).Updates(filtered).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(userID)
}

// AwardXP adds XP atomically, walking the level curve until the remainder
// fits below the next threshold. Each level gained emits a level_up
// notification (fire-and-forget).
func (s *UserService) AwardXP(userID string, xp int64, reason string) (*models.ArenaUser, error) {
	var updated models.ArenaUser
	leveledTo := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var u models.ArenaUser
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		u.XP += xp
		for u.XP >= xpForNextLevel(u.Level) {
			u.XP -= xpForNextLevel(u.Level)
			u.Level++
			leveledTo = u.Level
		}

		if err := tx.Save(&u).Error; err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if leveledTo > 0 {
		s.Notifications.Notify(userID, userID, models.NotificationLevelUp,
			fmt.Sprintf("Congratulations! You reached level %d.", leveledTo), "#")
	}
	log.Printf("🎤 XP awarded: %s +%d → xp=%d lvl=%d (reason: %s)", userID, xp, updated.XP, updated.Level, reason)
	return &updated, nil
}

// Touch records activity for presence display.
func (s *UserService) Touch(userID string) {
	now := time.Now()
	_ = s.DB.Model(&models.ArenaUser{}).Where("id = ?", userID).Update("last_seen", &now).Error
}
