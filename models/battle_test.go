package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundStateMarshalsDynamicWinnerKeys(t *testing.T) {
	st := NewRoundState(3)
	st.Player1Score = 2
	st.Winners[1] = "mc_a"
	st.Winners[2] = RoundTieWinner

	raw, err := json.Marshal(st)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, float64(3), doc["total"])
	assert.Equal(t, float64(2), doc["player1_score"])
	assert.Equal(t, "mc_a", doc["round_1_winner"])
	assert.Equal(t, "tie", doc["round_2_winner"])
	_, there := doc["round_3_winner"]
	assert.False(t, there)
}

func TestRoundStateRoundTrip(t *testing.T) {
	st := NewRoundState(5)
	st.Player1Score = 2
	st.Player2Score = 1
	st.Winners[1] = "mc_a"
	st.Winners[2] = "mc_b"
	st.Winners[3] = "mc_a"

	raw, err := json.Marshal(st)
	require.NoError(t, err)

	var got RoundState
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, st.Total, got.Total)
	assert.Equal(t, st.Player1Score, got.Player1Score)
	assert.Equal(t, st.Player2Score, got.Player2Score)
	assert.Equal(t, st.Winners, got.Winners)
}

func TestBattleRoundStateEmptyColumn(t *testing.T) {
	b := Battle{}
	st, err := b.RoundState()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)
	assert.NotNil(t, st.Winners)
}

func TestBattleSetRoundState(t *testing.T) {
	b := Battle{ID: "b1"}
	st := NewRoundState(2)
	st.Winners[1] = "mc_b"
	require.NoError(t, b.SetRoundState(st))

	got, err := b.RoundState()
	require.NoError(t, err)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, "mc_b", got.Winners[1])
}

func TestBattleHasParticipantID(t *testing.T) {
	b := Battle{Player1ID: "u1", Player2ID: "u2"}
	assert.True(t, b.HasParticipantID("u1"))
	assert.True(t, b.HasParticipantID("u2"))
	assert.False(t, b.HasParticipantID("u3"))
	assert.False(t, b.HasParticipantID(""))
}

func TestBattleRoundComplete(t *testing.T) {
	url := "https://cdn.test/a.webm"
	r := BattleRound{}
	assert.False(t, r.Complete())
	r.Player1AudioURL = &url
	assert.False(t, r.Complete())
	r.Player2AudioURL = &url
	assert.True(t, r.Complete())
}
