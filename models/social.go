package models

import "time"

// Follow links a follower to the account they follow.
type Follow struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	FollowerID  string    `json:"follower_id" gorm:"uniqueIndex:idx_follow_pair;not null"`
	FollowingID string    `json:"following_id" gorm:"uniqueIndex:idx_follow_pair;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Post is a feed entry. Like/comment counts are denormalized and recounted
// on every toggle/insert rather than incremented blindly.
type Post struct {
	ID            string `json:"id" gorm:"primaryKey"`
	UserID        string `json:"user_id" gorm:"index;not null"`
	Caption       string `json:"caption"`
	MediaURL      string `json:"media_url"`
	MediaType     string `json:"media_type"` // image | audio
	LikesCount    int64  `json:"likes_count" gorm:"default:0"`
	CommentsCount int64  `json:"comments_count" gorm:"default:0"`

	Timestamps
}

type PostLike struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"uniqueIndex:idx_post_like;not null"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_post_like;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type PostComment struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	PostID      string    `json:"post_id" gorm:"index;not null"`
	UserID      string    `json:"user_id" gorm:"not null"`
	CommentText string    `json:"comment_text" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Story is an ephemeral media post; rows past ExpiresAt are invisible to
// listings and purged by the maintenance scheduler.
type Story struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	MediaURL  string    `json:"media_url" gorm:"not null"`
	MediaType string    `json:"media_type" gorm:"default:'image'"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
