package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"battle-arena-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaUploader abstracts the hosted media store: blob in, public URL out.
// The production implementation lives in utils (R2/S3).
type MediaUploader interface {
	Upload(ownerID string, blob []byte, resourceKind, subfolder string) (string, error)
}

// RoundService handles audio submissions and owns the round completion
// evaluator. Evaluation is re-entrant: it is triggered after every vote and
// every upload, and must be a safe no-op whenever the round is not yet both
// recorded and decided.
type RoundService struct {
	DB            *gorm.DB
	Media         MediaUploader
	Users         *UserService
	Notifications *NotificationService
}

// BattleWinXP is credited to the winner when a battle completes.
const BattleWinXP = 100

func NewRoundService(db *gorm.DB, media MediaUploader, users *UserService, notifications *NotificationService) *RoundService {
	return &RoundService{DB: db, Media: media, Users: users, Notifications: notifications}
}

// SubmitRoundAudio uploads one player's take for a round and persists it on
// the round record, creating the record lazily on first submission. Only the
// submitter's slot is written. A successful submission triggers evaluation.
func (s *RoundService) SubmitRoundAudio(battleID string, roundNumber int, submitterHandle string, blob []byte) (*models.BattleRound, error) {
	var battle models.Battle
	if err := s.DB.First(&battle, "id = ?", battleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBattleNotFound
		}
		return nil, err
	}
	if battle.Status != models.BattleStatusActive {
		return nil, ErrBattleNotActive
	}
	state, err := battle.RoundState()
	if err != nil {
		return nil, err
	}
	if roundNumber < 1 || roundNumber > state.Total {
		return nil, ErrRoundOutOfRange
	}

	var slot int
	var ownerID string
	switch models.FoldHandle(submitterHandle) {
	case models.FoldHandle(battle.Player1):
		slot, ownerID = 1, battle.Player1ID
	case models.FoldHandle(battle.Player2):
		slot, ownerID = 2, battle.Player2ID
	default:
		return nil, ErrNotAParticipant
	}

	url, err := s.Media.Upload(ownerID, blob, "audio", "battle_audios")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if url == "" {
		return nil, ErrUploadFailed
	}

	now := time.Now()
	var round models.BattleRound
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("battle_id = ? AND round_number = ?", battleID, roundNumber).First(&round).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			round = models.BattleRound{
				ID:          uuid.NewString(),
				BattleID:    battleID,
				RoundNumber: roundNumber,
			}
			fillAudioSlot(&round, slot, url, now)
			return tx.Create(&round).Error
		}
		if err != nil {
			return err
		}
		fillAudioSlot(&round, slot, url, now)
		updates := map[string]interface{}{}
		if slot == 1 {
			updates["player1_audio_url"] = url
			updates["player1_recorded_at"] = now
		} else {
			updates["player2_audio_url"] = url
			updates["player2_recorded_at"] = now
		}
		return tx.Model(&models.BattleRound{}).Where("id = ?", round.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.Evaluate(battleID, round.ID); err != nil {
		log.Printf("[ROUND] post-upload evaluation of round %s failed: %v", round.ID, err)
	}
	return &round, nil
}

func fillAudioSlot(round *models.BattleRound, slot int, url string, at time.Time) {
	if slot == 1 {
		round.Player1AudioURL = &url
		round.Player1RecordedAt = &at
	} else {
		round.Player2AudioURL = &url
		round.Player2RecordedAt = &at
	}
}

// roundOutcome is the result of tallying one round's votes.
type roundOutcome int

const (
	roundUndecided roundOutcome = iota // no votes yet
	roundPlayer1
	roundPlayer2
	roundTie
)

// tallyRound is the pure scoring function: majority wins, equal non-zero
// counts tie, zero votes on both sides leave the round undecided.
func tallyRound(p1Votes, p2Votes int) roundOutcome {
	switch {
	case p1Votes > p2Votes:
		return roundPlayer1
	case p2Votes > p1Votes:
		return roundPlayer2
	case p1Votes == 0:
		return roundUndecided
	default:
		return roundTie
	}
}

// Evaluate detects round completion and advances the battle.
//
// No-ops, in order: round missing audio; battle not active (a settled
// battle can never be reopened); round already scored (the
// round_<N>_winner key is the idempotence guard); zero votes. Otherwise the
// round is scored, and the battle either completes (final round) or advances
// to the next round. Guard check and write commit in one transaction.
func (s *RoundService) Evaluate(battleID, roundID string) error {
	var round models.BattleRound
	if err := s.DB.First(&round, "id = ? AND battle_id = ?", roundID, battleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoundNotFound
		}
		return err
	}
	if !round.Complete() {
		return nil
	}

	completed := false
	var final models.Battle
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var b models.Battle
		if err := tx.First(&b, "id = ?", battleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBattleNotFound
			}
			return err
		}
		if b.Status != models.BattleStatusActive {
			return nil // completed battles are settled, pending ones not started
		}
		state, err := b.RoundState()
		if err != nil {
			return err
		}
		if state.Winners[round.RoundNumber] != "" {
			return nil // already scored
		}

		var votes []models.BattleVote
		if err := tx.Where("round_id = ?", roundID).Find(&votes).Error; err != nil {
			return err
		}
		p1Votes, p2Votes := 0, 0
		for _, v := range votes {
			switch v.VotedForPlayerID {
			case b.Player1ID:
				p1Votes++
			case b.Player2ID:
				p2Votes++
			}
		}

		switch tallyRound(p1Votes, p2Votes) {
		case roundUndecided:
			return nil // awaiting votes
		case roundPlayer1:
			state.Player1Score++
			state.Winners[round.RoundNumber] = b.Player1
		case roundPlayer2:
			state.Player2Score++
			state.Winners[round.RoundNumber] = b.Player2
		case roundTie:
			state.Winners[round.RoundNumber] = models.RoundTieWinner
		}
		if err := b.SetRoundState(state); err != nil {
			return err
		}

		if b.CurrentRound >= state.Total {
			now := time.Now()
			b.Status = models.BattleStatusCompleted
			b.CompletedAt = &now
			switch {
			case state.Player1Score > state.Player2Score:
				w := b.Player1
				b.Winner = &w
			case state.Player2Score > state.Player1Score:
				w := b.Player2
				b.Winner = &w
			default:
				b.Winner = nil // overall tie, no distinct draw status
			}
			completed = true
		} else {
			b.CurrentRound++
		}

		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		final = b
		return nil
	})
	if err != nil {
		return err
	}

	if completed {
		result := "The battle ended in a tie."
		if final.Winner != nil {
			result = fmt.Sprintf("Winner: %s.", *final.Winner)
			winnerID := final.Player1ID
			if *final.Winner == final.Player2 {
				winnerID = final.Player2ID
			}
			if _, err := s.Users.AwardXP(winnerID, BattleWinXP, "battle_win"); err != nil {
				log.Printf("[ROUND] XP award for battle %s failed: %v", final.ID, err)
			}
		}
		link := "battles?tab=completed"
		s.Notifications.Notify(final.Player1ID, final.Player2ID, models.NotificationBattleCompleted,
			fmt.Sprintf("Your battle with %s is over. %s", final.Player2, result), link)
		s.Notifications.Notify(final.Player2ID, final.Player1ID, models.NotificationBattleCompleted,
			fmt.Sprintf("Your battle with %s is over. %s", final.Player1, result), link)
	}
	return nil
}

// RoundsForBattle lists a battle's rounds in play order.
func (s *RoundService) RoundsForBattle(battleID string) ([]models.BattleRound, error) {
	var out []models.BattleRound
	err := s.DB.Where("battle_id = ?", battleID).Order("round_number ASC").Find(&out).Error
	return out, err
}
