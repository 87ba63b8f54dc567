package models

import (
	"time"

	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

var handleFolder = cases.Fold()

// FoldHandle normalizes a display handle for lookups and comparisons.
// Handles are user-chosen and not restricted to ASCII, so unicode case
// folding is used instead of a plain lowercase.
func FoldHandle(handle string) string {
	return handleFolder.String(handle)
}

// ArenaUser is the local mirror of identity-provider profiles plus the
// progression columns owned by this service (xp, level, coins, inventory).
// Profile fields are populated by the profile sync worker; progression
// fields are never overwritten by sync.
type ArenaUser struct {
	ID       string `json:"id" gorm:"primaryKey"` // identity provider user id
	Username string `json:"username" gorm:"uniqueIndex;not null"`

	// UsernameFolded is maintained by the BeforeSave hook; handle lookups
	// query it so store and Go code share one normalization.
	UsernameFolded    string  `json:"-" gorm:"uniqueIndex;not null"`
	Email             string  `json:"email,omitempty"`
	ProfilePictureURL *string `json:"profilePictureUrl,omitempty" gorm:"column:profile_picture_url"`
	Bio               *string `json:"bio,omitempty"`

	// Progression (original level curve: floor(100 * level^1.5))
	XP       int64 `json:"xp" gorm:"default:0"`
	Level    int   `json:"level" gorm:"default:1"`
	RapCoins int64 `json:"rapCoins" gorm:"column:rap_coins;default:0"`

	// Shop-creditable inventory columns
	BoostCredits int64 `json:"boost_credits" gorm:"default:0"`
	StorySlots   int64 `json:"story_slots" gorm:"default:0"`

	LastSeen *time.Time `json:"last_seen,omitempty"`

	Timestamps
}

func (ArenaUser) TableName() string { return "users" }

// BeforeSave keeps the folded lookup column in step with the display handle.
func (u *ArenaUser) BeforeSave(tx *gorm.DB) error {
	u.UsernameFolded = FoldHandle(u.Username)
	return nil
}
