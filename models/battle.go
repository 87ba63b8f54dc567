package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Battle statuses
const (
	BattleStatusPending   = "pending"
	BattleStatusActive    = "active"
	BattleStatusCompleted = "completed"
)

// RoundTieWinner is stored in the per-round winner slot when votes tie.
const RoundTieWinner = "tie"

// Battle represents a challenge between two rappers. Player handles are
// denormalized for rendering; the immutable user ids resolved at creation
// time are the authoritative participant identities.
type Battle struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Player1   string `json:"player1" gorm:"not null"` // requester handle
	Player2   string `json:"player2" gorm:"not null"` // opponent handle
	Player1ID string `json:"player1_id" gorm:"index;not null"`
	Player2ID string `json:"player2_id" gorm:"index;not null"`

	Status       string `json:"status" gorm:"default:'pending';index"`
	CurrentRound int    `json:"currentRound" gorm:"column:current_round;default:1"`

	// RoundsJSON holds the round scoreboard document, see RoundState.
	RoundsJSON string `json:"-" gorm:"column:rounds;type:text"`

	Winner      *string    `json:"winner,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"index"`

	Timestamps
}

// RoundState is the scoreboard document persisted on the battle record:
//
//	{"total":3,"player1_score":1,"player2_score":0,"round_1_winner":"mc_a"}
//
// The round_<N>_winner keys are dynamic; a key, once written, is never
// overwritten (idempotence guard against double scoring).
type RoundState struct {
	Total        int
	Player1Score int
	Player2Score int
	Winners      map[int]string // round number → handle or RoundTieWinner
}

func NewRoundState(total int) RoundState {
	return RoundState{Total: total, Winners: map[int]string{}}
}

func (r RoundState) MarshalJSON() ([]byte, error) {
	doc := map[string]interface{}{
		"total":         r.Total,
		"player1_score": r.Player1Score,
		"player2_score": r.Player2Score,
	}
	for n, w := range r.Winners {
		doc[fmt.Sprintf("round_%d_winner", n)] = w
	}
	return json.Marshal(doc)
}

func (r *RoundState) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	r.Winners = map[int]string{}
	for key, raw := range doc {
		switch key {
		case "total":
			if err := json.Unmarshal(raw, &r.Total); err != nil {
				return err
			}
		case "player1_score":
			if err := json.Unmarshal(raw, &r.Player1Score); err != nil {
				return err
			}
		case "player2_score":
			if err := json.Unmarshal(raw, &r.Player2Score); err != nil {
				return err
			}
		default:
			var n int
			if _, err := fmt.Sscanf(key, "round_%d_winner", &n); err == nil && n > 0 {
				var w string
				if err := json.Unmarshal(raw, &w); err != nil {
					return err
				}
				r.Winners[n] = w
			}
		}
	}
	return nil
}

// RoundState decodes the scoreboard document. An empty column yields a
// zero-value state with an initialized winner map.
func (b *Battle) RoundState() (RoundState, error) {
	if b.RoundsJSON == "" {
		return NewRoundState(0), nil
	}
	var st RoundState
	if err := json.Unmarshal([]byte(b.RoundsJSON), &st); err != nil {
		return RoundState{}, fmt.Errorf("decode battle %s rounds: %w", b.ID, err)
	}
	return st, nil
}

func (b *Battle) SetRoundState(st RoundState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	b.RoundsJSON = string(raw)
	return nil
}

// HasParticipantID reports whether the given user id belongs to either slot.
func (b *Battle) HasParticipantID(userID string) bool {
	return userID == b.Player1ID || userID == b.Player2ID
}

// BattleRound is one recording exchange within a battle. Rounds are created
// lazily on the first audio submission for a round number and never deleted.
type BattleRound struct {
	ID          string `json:"id" gorm:"primaryKey"`
	BattleID    string `json:"battle_id" gorm:"uniqueIndex:idx_battle_round;not null"`
	RoundNumber int    `json:"round_number" gorm:"uniqueIndex:idx_battle_round;not null"`

	Player1AudioURL   *string    `json:"player1_audio_url,omitempty"`
	Player2AudioURL   *string    `json:"player2_audio_url,omitempty"`
	Player1RecordedAt *time.Time `json:"player1_recorded_at,omitempty"`
	Player2RecordedAt *time.Time `json:"player2_recorded_at,omitempty"`

	Timestamps
}

// Complete reports whether both players have submitted audio.
func (r *BattleRound) Complete() bool {
	return r.Player1AudioURL != nil && r.Player2AudioURL != nil
}

// BattleVote is one listener's ballot for a round. Votes are insert-only.
type BattleVote struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	BattleID         string    `json:"battle_id" gorm:"index;not null"`
	RoundID          string    `json:"round_id" gorm:"uniqueIndex:idx_round_voter;not null"`
	VoterID          string    `json:"voter_id" gorm:"uniqueIndex:idx_round_voter;not null"`
	VotedForPlayerID string    `json:"voted_for_player_id" gorm:"not null"`
	Score            int       `json:"score" gorm:"default:1"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}
