package services

import (
	"errors"
	"fmt"
	"time"

	"battle-arena-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoryLifetime is how long a story stays visible after posting.
const StoryLifetime = 24 * time.Hour

// SocialService covers the pass-through social surface: follows, posts,
// likes, comments, stories.
type SocialService struct {
	DB            *gorm.DB
	Media         MediaUploader
	Users         *UserService
	Notifications *NotificationService
}

func NewSocialService(db *gorm.DB, media MediaUploader, users *UserService, notifications *NotificationService) *SocialService {
	return &SocialService{DB: db, Media: media, Users: users, Notifications: notifications}
}

// Follow creates the follow edge and notifies the followed account.
func (s *SocialService) Follow(followerID, followingID string) error {
	f := models.Follow{ID: uuid.NewString(), FollowerID: followerID, FollowingID: followingID}
	if err := s.DB.Create(&f).Error; err != nil {
		return err
	}
	if actor, err := s.Users.GetByID(followerID); err == nil {
		s.Notifications.Notify(followingID, followerID, models.NotificationNewFollower,
			"started following you.", fmt.Sprintf("profile?user=%s", actor.Username))
	}
	return nil
}

func (s *SocialService) Unfollow(followerID, followingID string) error {
	return s.DB.
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
}

func (s *SocialService) IsFollowing(viewerID, profileID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", viewerID, profileID).
		Count(&count).Error
	return count > 0, err
}

// Followers lists the accounts following the user.
func (s *SocialService) Followers(userID string) ([]models.ArenaUser, error) {
	ids := s.DB.Model(&models.Follow{}).
		Select("follower_id").
		Where("following_id = ?", userID)
	var out []models.ArenaUser
	err := s.DB.Where("id IN (?)", ids).Order("username ASC").Find(&out).Error
	return out, err
}

// Following lists the accounts the user follows.
func (s *SocialService) Following(userID string) ([]models.ArenaUser, error) {
	ids := s.DB.Model(&models.Follow{}).
		Select("following_id").
		Where("follower_id = ?", userID)
	var out []models.ArenaUser
	err := s.DB.Where("id IN (?)", ids).Order("username ASC").Find(&out).Error
	return out, err
}

// FollowStats returns follower and following counts.
func (s *SocialService) FollowStats(userID string) (followers, following int64, err error) {
	if err = s.DB.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&followers).Error; err != nil {
		return
	}
	err = s.DB.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following).Error
	return
}

// CreatePost stores a feed entry, uploading media when a blob is provided.
func (s *SocialService) CreatePost(userID, caption string, blob []byte, mediaType string) (*models.Post, error) {
	post := models.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Caption:   caption,
		MediaType: mediaType,
	}
	if len(blob) > 0 {
		url, err := s.Media.Upload(userID, blob, mediaType, "posts")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		post.MediaURL = url
	}
	if err := s.DB.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// PostsForUser lists one account's posts, newest first.
func (s *SocialService) PostsForUser(userID string) ([]models.Post, error) {
	var out []models.Post
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// Feed lists posts by the viewer and everyone they follow, newest first.
func (s *SocialService) Feed(viewerID string, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	followed := s.DB.Model(&models.Follow{}).
		Select("following_id").
		Where("follower_id = ?", viewerID)
	var out []models.Post
	err := s.DB.
		Where("user_id = ? OR user_id IN (?)", viewerID, followed).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CommentsForPost lists a post's comments, oldest first.
func (s *SocialService) CommentsForPost(postID string) ([]models.PostComment, error) {
	var out []models.PostComment
	err := s.DB.Where("post_id = ?", postID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (s *SocialService) DeletePost(postID, userID string) error {
	return s.DB.Where("id = ? AND user_id = ?", postID, userID).Delete(&models.Post{}).Error
}

// ToggleLike flips the viewer's like and recounts the denormalized total.
func (s *SocialService) ToggleLike(postID, userID string) (liked bool, likes int64, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		findErr := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case findErr == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			like := models.PostLike{ID: uuid.NewString(), PostID: postID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			liked = true
		default:
			return findErr
		}

		if err := tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&likes).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).Update("likes_count", likes).Error
	})
	return
}

// AddComment appends a comment and recounts the denormalized total.
func (s *SocialService) AddComment(postID, userID, text string) (*models.PostComment, error) {
	comment := models.PostComment{
		ID:          uuid.NewString(),
		PostID:      postID,
		UserID:      userID,
		CommentText: text,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.PostComment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).Update("comments_count", count).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateStory uploads story media and stores a 24h-expiring record.
func (s *SocialService) CreateStory(userID string, blob []byte, mediaType string) (*models.Story, error) {
	url, err := s.Media.Upload(userID, blob, mediaType, "stories")
	if err != nil || url == "" {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	story := models.Story{
		ID:        uuid.NewString(),
		UserID:    userID,
		MediaURL:  url,
		MediaType: mediaType,
		ExpiresAt: time.Now().Add(StoryLifetime),
	}
	if err := s.DB.Create(&story).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// ActiveStories lists a user's unexpired stories, oldest first.
func (s *SocialService) ActiveStories(userID string) ([]models.Story, error) {
	var out []models.Story
	err := s.DB.
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
