package services

import (
	"errors"
	"fmt"
	"log"

	"battle-arena-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteService records listener ballots and triggers round evaluation.
type VoteService struct {
	DB     *gorm.DB
	Rounds *RoundService
}

func NewVoteService(db *gorm.DB, rounds *RoundService) *VoteService {
	return &VoteService{DB: db, Rounds: rounds}
}

// CastVote inserts one ballot for a round. Battle participants are barred
// from voting on their own battle, the ballot must back one of the two
// participants, and a voter gets exactly one ballot per round. The
// existing-vote guard and the insert share a transaction, and
// the unique (round_id, voter_id) index backs the guard at the store level.
func (s *VoteService) CastVote(battleID, roundID, voterID, votedForPlayerID string) error {
	var battle models.Battle
	if err := s.DB.First(&battle, "id = ?", battleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBattleNotFound
		}
		return err
	}
	if battle.HasParticipantID(voterID) {
		return ErrParticipantCannotVote
	}
	if !battle.HasParticipantID(votedForPlayerID) {
		return ErrInvalidVoteTarget
	}

	var round models.BattleRound
	if err := s.DB.First(&round, "id = ? AND battle_id = ?", roundID, battleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoundNotFound
		}
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BattleVote{}).
			Where("round_id = ? AND voter_id = ?", roundID, voterID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyVoted
		}
		vote := models.BattleVote{
			ID:               uuid.NewString(),
			BattleID:         battleID,
			RoundID:          roundID,
			VoterID:          voterID,
			VotedForPlayerID: votedForPlayerID,
			Score:            1,
		}
		if err := tx.Create(&vote).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrVoteInsert, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.Rounds.Evaluate(battleID, roundID); err != nil {
		log.Printf("[VOTE] post-vote evaluation of round %s failed: %v", roundID, err)
	}
	return nil
}

// VotesForRound lists a round's ballots.
func (s *VoteService) VotesForRound(roundID string) ([]models.BattleVote, error) {
	var out []models.BattleVote
	err := s.DB.Where("round_id = ?", roundID).Find(&out).Error
	return out, err
}

// HasVoted reports whether the voter already cast a ballot for the round.
func (s *VoteService) HasVoted(roundID, voterID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.BattleVote{}).
		Where("round_id = ? AND voter_id = ?", roundID, voterID).
		Count(&count).Error
	return count > 0, err
}
