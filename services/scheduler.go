package services

import (
	"log"
	"time"

	"battle-arena-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// PendingRequestTTL is how long a battle request may sit unanswered before
// the maintenance job expires it.
const PendingRequestTTL = 14 * 24 * time.Hour

// StartMaintenanceScheduler runs the recurring cleanup jobs: expiring stale
// pending battle requests and purging expired stories.
func StartMaintenanceScheduler(db *gorm.DB, notifications *NotificationService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() { expireStaleBattles(db, notifications, time.Now()) }),
	)
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() { purgeExpiredStories(db, time.Now()) }),
	)
}

// expireStaleBattles deletes pending requests older than the TTL and tells
// the requester their challenge went unanswered.
func expireStaleBattles(db *gorm.DB, notifications *NotificationService, now time.Time) {
	cutoff := now.Add(-PendingRequestTTL)
	var stale []models.Battle
	err := db.Where("status = ? AND created_at < ?", models.BattleStatusPending, cutoff).
		Find(&stale).Error
	if err != nil {
		log.Printf("[Scheduler] stale battle query failed: %v", err)
		return
	}
	for _, b := range stale {
		if err := db.Unscoped().Delete(&models.Battle{}, "id = ?", b.ID).Error; err != nil {
			log.Printf("[Scheduler] failed to expire battle %s: %v", b.ID, err)
			continue
		}
		notifications.Notify(b.Player1ID, b.Player2ID, models.NotificationBattleRejected,
			"Your battle request expired without a response.", "battles")
		log.Printf("⏳ Expired pending battle: %s vs %s", b.Player1, b.Player2)
	}
}

// purgeExpiredStories hard-deletes story rows past their expiry.
func purgeExpiredStories(db *gorm.DB, now time.Time) {
	res := db.Where("expires_at <= ?", now).Delete(&models.Story{})
	if res.Error != nil {
		log.Printf("[Scheduler] story purge failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("🧹 Purged %d expired stories", res.RowsAffected)
	}
}
