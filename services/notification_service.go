package services

import (
	"log"

	"battle-arena-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Notify creates a notification best-effort. A failed insert is logged and
// swallowed — notifications must never veto the state transition they
// accompany.
func (s *NotificationService) Notify(recipientID, actorID, ntype, message, link string) {
	n := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        ntype,
		Message:     message,
		Link:        link,
	}
	if err := s.DB.Create(&n).Error; err != nil {
		log.Printf("[NOTIFY] failed to create %s notification for %s: %v", ntype, recipientID, err)
	}
}

// ListForUser returns the recipient's notifications, most recent first.
func (s *NotificationService) ListForUser(userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var out []models.Notification
	err := s.DB.Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkAllRead flips the unread flag for every notification of the recipient.
func (s *NotificationService) MarkAllRead(userID string) error {
	return s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
