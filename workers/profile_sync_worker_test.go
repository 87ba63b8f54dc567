package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"battle-arena-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newWorkerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.ArenaUser{}))
	return db
}

func profileServer(t *testing.T, users []MirroredProfile, gotToken *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotToken = r.Header.Get("X-Service-Token")
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		_ = json.NewEncoder(w).Encode(GetProfileChangesResponse{Users: users})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncBatchUpsertsProfiles(t *testing.T) {
	db := newWorkerDB(t)
	bio := "street poet"
	now := time.Now().UTC().Truncate(time.Second)
	var gotToken string
	srv := profileServer(t, []MirroredProfile{{
		ID:        "u1",
		Username:  "mc_a",
		Email:     "a@example.com",
		Bio:       &bio,
		CreatedAt: now,
		UpdatedAt: now,
	}}, &gotToken)

	w := NewProfileSyncWorker(db, srv.URL, "/api/v1/public/profiles", "secret-token")
	require.NoError(t, w.syncBatch(context.Background(), time.Time{}))
	assert.Equal(t, "secret-token", gotToken)

	var got models.ArenaUser
	require.NoError(t, db.First(&got, "id = ?", "u1").Error)
	assert.Equal(t, "mc_a", got.Username)
	assert.Equal(t, "a@example.com", got.Email)
	require.NotNil(t, got.Bio)
	assert.Equal(t, "street poet", *got.Bio)
}

func TestSyncBatchNeverTouchesProgression(t *testing.T) {
	db := newWorkerDB(t)
	seed := models.ArenaUser{ID: "u1", Username: "mc_a", XP: 450, Level: 3, RapCoins: 900}
	require.NoError(t, db.Create(&seed).Error)

	newBio := "rebranded"
	var gotToken string
	srv := profileServer(t, []MirroredProfile{{
		ID:        "u1",
		Username:  "mc_a_reborn",
		Email:     "a@example.com",
		Bio:       &newBio,
		UpdatedAt: time.Now().UTC(),
	}}, &gotToken)

	w := NewProfileSyncWorker(db, srv.URL, "/api/v1/public/profiles", "secret-token")
	require.NoError(t, w.syncBatch(context.Background(), time.Time{}))

	var got models.ArenaUser
	require.NoError(t, db.First(&got, "id = ?", "u1").Error)
	assert.Equal(t, "mc_a_reborn", got.Username)
	require.NotNil(t, got.Bio)
	assert.Equal(t, "rebranded", *got.Bio)

	// arena progression stays local
	assert.Equal(t, int64(450), got.XP)
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, int64(900), got.RapCoins)
}

func TestSyncBatchSurfacesUpstreamFailure(t *testing.T) {
	db := newWorkerDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	w := NewProfileSyncWorker(db, srv.URL, "/api/v1/public/profiles", "secret-token")
	assert.Error(t, w.syncBatch(context.Background(), time.Time{}))
}
