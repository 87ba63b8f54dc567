package services

import (
	"errors"
	"fmt"
	"log"

	"battle-arena-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxBattleRounds bounds the rounds a challenge may request.
const (
	MinBattleRounds = 1
	MaxBattleRounds = 5
)

// BattleService owns the battle request lifecycle: create, list, accept,
// reject. Round scoring lives in RoundService.
type BattleService struct {
	DB            *gorm.DB
	Users         *UserService
	Notifications *NotificationService
}

func NewBattleService(db *gorm.DB, users *UserService, notifications *NotificationService) *BattleService {
	return &BattleService{DB: db, Users: users, Notifications: notifications}
}

// Request creates a pending battle from requester to opponent.
//
// Validations, in order: round count bounds, opponent exists, not a
// self-challenge, and no pending/active battle already pairs the two users
// in either slot order. The duplicate check and insert run in one
// transaction so the guard and write commit together.
func (s *BattleService) Request(requesterID, opponentHandle string, totalRounds int) (*models.Battle, error) {
	if totalRounds < MinBattleRounds || totalRounds > MaxBattleRounds {
		return nil, ErrInvalidRoundCount
	}

	requester, err := s.Users.GetByID(requesterID)
	if err != nil {
		return nil, err
	}
	opponent, err := s.Users.GetByUsername(opponentHandle)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrOpponentNotFound
		}
		return nil, err
	}
	if opponent.ID == requester.ID {
		return nil, ErrSelfChallenge
	}

	state := models.NewRoundState(totalRounds)
	battle := models.Battle{
		ID:           uuid.NewString(),
		Player1:      requester.Username,
		Player2:      opponent.Username,
		Player1ID:    requester.ID,
		Player2ID:    opponent.ID,
		Status:       models.BattleStatusPending,
		CurrentRound: 1,
	}
	if err := battle.SetRoundState(state); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Battle{}).
			Where("status IN ?", []string{models.BattleStatusPending, models.BattleStatusActive}).
			Where("(player1_id = ? AND player2_id = ?) OR (player1_id = ? AND player2_id = ?)",
				requester.ID, opponent.ID, opponent.ID, requester.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateBattle
		}
		return tx.Create(&battle).Error
	})
	if err != nil {
		return nil, err
	}

	s.Notifications.Notify(opponent.ID, requester.ID, models.NotificationBattleRequest,
		fmt.Sprintf("%s challenged you to a %d-round battle.", requester.Username, totalRounds),
		"battles?tab=pending")

	return &battle, nil
}

// GetByID loads one battle.
func (s *BattleService) GetByID(battleID string) (*models.Battle, error) {
	var b models.Battle
	if err := s.DB.First(&b, "id = ?", battleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBattleNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListPending returns pending battles where the handle fills either slot.
func (s *BattleService) ListPending(handle string) ([]models.Battle, error) {
	return s.listByStatus(handle, models.BattleStatusPending, "created_at DESC")
}

// ListActive returns active battles for the handle.
func (s *BattleService) ListActive(handle string) ([]models.Battle, error) {
	return s.listByStatus(handle, models.BattleStatusActive, "created_at DESC")
}

// ListCompleted returns completed battles, most recently finished first.
func (s *BattleService) ListCompleted(handle string) ([]models.Battle, error) {
	return s.listByStatus(handle, models.BattleStatusCompleted, "completed_at DESC")
}

func (s *BattleService) listByStatus(handle, status, order string) ([]models.Battle, error) {
	var out []models.Battle
	err := s.DB.
		Where("(player1 = ? OR player2 = ?)", handle, handle).
		Where("status = ?", status).
		Order(order).
		Find(&out).Error
	return out, err
}

// Accept transitions a pending battle to active and notifies the requester.
// Returns false when the battle no longer exists or already left pending —
// the caller surfaces that as a plain failure, not an error.
func (s *BattleService) Accept(battleID, accepterID string) bool {
	res := s.DB.Model(&models.Battle{}).
		Where("id = ? AND status = ?", battleID, models.BattleStatusPending).
		Update("status", models.BattleStatusActive)
	if res.Error != nil {
		log.Printf("[BATTLE] accept %s failed: %v", battleID, res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		return false
	}

	if battle, err := s.GetByID(battleID); err == nil {
		s.Notifications.Notify(battle.Player1ID, accepterID, models.NotificationBattleAccepted,
			fmt.Sprintf("%s accepted your battle request.", battle.Player2),
			fmt.Sprintf("battles?tab=active&battleId=%s", battle.ID))
	}
	return true
}

// Reject deletes the battle request and notifies the other participant.
func (s *BattleService) Reject(battleID, rejecterID string) bool {
	battle, err := s.GetByID(battleID)
	if err != nil {
		return false
	}

	if err := s.DB.Unscoped().Delete(&models.Battle{}, "id = ?", battleID).Error; err != nil {
		log.Printf("[BATTLE] reject %s failed: %v", battleID, err)
		return false
	}

	other := battle.Player1ID
	if rejecterID == battle.Player1ID {
		other = battle.Player2ID
	}
	s.Notifications.Notify(other, rejecterID, models.NotificationBattleRejected,
		"Your battle request was declined.", "battles")
	return true
}
