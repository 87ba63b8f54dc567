package services

import (
	"errors"
	"fmt"
	"testing"

	"battle-arena-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.ArenaUser{},
		&models.Battle{},
		&models.BattleRound{},
		&models.BattleVote{},
		&models.Notification{},
		&models.Follow{},
		&models.Post{},
		&models.PostLike{},
		&models.PostComment{},
		&models.Story{},
		&models.Conversation{},
		&models.Message{},
		&models.ShopItem{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, id, handle string) *models.ArenaUser {
	t.Helper()
	u := models.ArenaUser{ID: id, Username: handle, Level: 1}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

// fakeMedia satisfies MediaUploader without touching the network.
type fakeMedia struct {
	fail    bool
	uploads int
}

func (f *fakeMedia) Upload(ownerID string, blob []byte, resourceKind, subfolder string) (string, error) {
	if f.fail {
		return "", errors.New("upload exploded")
	}
	f.uploads++
	return fmt.Sprintf("https://cdn.test/%s/%s/%d", subfolder, ownerID, f.uploads), nil
}

// testEnv wires the full service graph over one in-memory database.
type testEnv struct {
	db            *gorm.DB
	media         *fakeMedia
	notifications *NotificationService
	users         *UserService
	battles       *BattleService
	rounds        *RoundService
	votes         *VoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	media := &fakeMedia{}
	notifications := NewNotificationService(db)
	users := NewUserService(db, notifications)
	rounds := NewRoundService(db, media, users, notifications)
	return &testEnv{
		db:            db,
		media:         media,
		notifications: notifications,
		users:         users,
		battles:       NewBattleService(db, users, notifications),
		rounds:        rounds,
		votes:         NewVoteService(db, rounds),
	}
}

func notificationsOfType(t *testing.T, db *gorm.DB, recipientID, ntype string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, db.
		Where("recipient_id = ? AND type = ?", recipientID, ntype).
		Find(&out).Error)
	return out
}
