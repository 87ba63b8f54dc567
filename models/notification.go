package models

import "time"

// Notification kinds emitted by this service.
const (
	NotificationBattleRequest   = "battle_request"
	NotificationBattleAccepted  = "battle_accepted"
	NotificationBattleRejected  = "battle_rejected"
	NotificationBattleCompleted = "battle_completed"
	NotificationLevelUp         = "level_up"
	NotificationNewFollower     = "new_follower"
	NotificationNewMessage      = "new_message"
	NotificationPurchase        = "purchase"
)

// Notification is a side-channel message to a user. Created as a best-effort
// side effect of lifecycle transitions; only the read flag is ever mutated.
type Notification struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	RecipientID string    `json:"recipient_id" gorm:"index;not null"`
	ActorID     string    `json:"actor_id" gorm:"not null"`
	Type        string    `json:"type" gorm:"not null"`
	Message     string    `json:"message"`
	Link        string    `json:"link"`
	IsRead      bool      `json:"is_read" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
