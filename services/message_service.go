package services

import (
	"errors"
	"strings"

	"battle-arena-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageService struct {
	DB            *gorm.DB
	Notifications *NotificationService
}

func NewMessageService(db *gorm.DB, notifications *NotificationService) *MessageService {
	return &MessageService{DB: db, Notifications: notifications}
}

// FindOrCreateConversation resolves the conversation between two users,
// creating it on first contact. The pair is stored min/max ordered so both
// directions hit the same row.
func (s *MessageService) FindOrCreateConversation(userA, userB string) (*models.Conversation, error) {
	minID, maxID := userA, userB
	if minID > maxID {
		minID, maxID = maxID, minID
	}

	var convo models.Conversation
	err := s.DB.Where("user1_id = ? AND user2_id = ?", minID, maxID).First(&convo).Error
	if err == nil {
		return &convo, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	convo = models.Conversation{ID: uuid.NewString(), User1ID: minID, User2ID: maxID}
	if err := s.DB.Create(&convo).Error; err != nil {
		return nil, err
	}
	return &convo, nil
}

// ConversationsForUser lists conversations the user takes part in.
func (s *MessageService) ConversationsForUser(userID string) ([]models.Conversation, error) {
	var out []models.Conversation
	err := s.DB.
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Send appends a message and notifies the other participant.
func (s *MessageService) Send(conversationID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	var convo models.Conversation
	if err := s.DB.First(&convo, "id = ?", conversationID).Error; err != nil {
		return nil, err
	}

	msg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return nil, err
	}

	recipient := convo.User1ID
	if senderID == convo.User1ID {
		recipient = convo.User2ID
	}
	s.Notifications.Notify(recipient, senderID, models.NotificationNewMessage,
		"sent you a message.", "messages")
	return &msg, nil
}

// MessagesFor lists a conversation's messages in send order.
func (s *MessageService) MessagesFor(conversationID string) ([]models.Message, error) {
	var out []models.Message
	err := s.DB.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
