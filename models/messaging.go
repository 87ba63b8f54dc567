package models

import "time"

// Conversation pairs two users. User1ID is always the lexicographically
// smaller id so a pair maps to exactly one row.
type Conversation struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	User1ID   string    `json:"user1_id" gorm:"uniqueIndex:idx_convo_pair;not null"`
	User2ID   string    `json:"user2_id" gorm:"uniqueIndex:idx_convo_pair;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type Message struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"index;not null"`
	SenderID       string    `json:"sender_id" gorm:"not null"`
	Content        string    `json:"content" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
