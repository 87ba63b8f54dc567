package services

import (
	"testing"

	"battle-arena-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// activeBattle sets up two rappers and an accepted battle between them.
func activeBattle(t *testing.T, env *testEnv, totalRounds int) *models.Battle {
	t.Helper()
	createUser(t, env.db, "u1", "mc_a")
	createUser(t, env.db, "u2", "mc_b")
	battle, err := env.battles.Request("u1", "mc_b", totalRounds)
	require.NoError(t, err)
	require.True(t, env.battles.Accept(battle.ID, "u2"))
	battle, err = env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	return battle
}

func TestSubmitCreatesRoundLazily(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 3)

	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take1"))
	require.NoError(t, err)
	require.NotNil(t, round.Player1AudioURL)
	assert.NotNil(t, round.Player1RecordedAt)
	assert.Nil(t, round.Player2AudioURL)
	assert.False(t, round.Complete())

	// second submission lands on the same row, other slot
	again, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_b", []byte("take2"))
	require.NoError(t, err)
	assert.Equal(t, round.ID, again.ID)

	list, err := env.rounds.RoundsForBattle(battle.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Complete())
}

func TestSubmitMatchesHandleCaseInsensitively(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 3)

	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "MC_A", []byte("take"))
	require.NoError(t, err)
	assert.NotNil(t, round.Player1AudioURL)
}

func TestSubmitRequiresActiveBattle(t *testing.T) {
	env := newTestEnv(t)
	createUser(t, env.db, "u1", "mc_a")
	createUser(t, env.db, "u2", "mc_b")

	battle, err := env.battles.Request("u1", "mc_b", 3)
	require.NoError(t, err)

	// still pending — no round has started
	_, err = env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	assert.ErrorIs(t, err, ErrBattleNotActive)
}

func TestSubmitRejectsOutOfRangeRound(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 3)

	for _, n := range []int{0, -1, 4, 5} {
		_, err := env.rounds.SubmitRoundAudio(battle.ID, n, "mc_a", []byte("take"))
		assert.ErrorIs(t, err, ErrRoundOutOfRange, "round=%d", n)
	}

	list, err := env.rounds.RoundsForBattle(battle.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCompletedBattleStaysSettled(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 1)
	createUser(t, env.db, "v1", "fan_one")

	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	require.NoError(t, err)
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v1", "u1"))
	_, err = env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_b", []byte("take"))
	require.NoError(t, err)

	settled, err := env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	require.Equal(t, models.BattleStatusCompleted, settled.Status)
	require.NotNil(t, settled.Winner)

	// a late submission past the final round cannot reopen the battle
	_, err = env.rounds.SubmitRoundAudio(battle.ID, 2, "mc_b", []byte("late"))
	assert.ErrorIs(t, err, ErrBattleNotActive)

	// even a round row forged into the store cannot re-run completion
	u1URL, u2URL := "https://cdn.test/a.webm", "https://cdn.test/b.webm"
	forged := models.BattleRound{
		ID: "forged", BattleID: battle.ID, RoundNumber: 2,
		Player1AudioURL: &u1URL, Player2AudioURL: &u2URL,
	}
	require.NoError(t, env.db.Create(&forged).Error)
	require.NoError(t, env.db.Create(&models.BattleVote{
		ID: "forged-vote", BattleID: battle.ID, RoundID: forged.ID,
		VoterID: "v1", VotedForPlayerID: "u2", Score: 1,
	}).Error)
	require.NoError(t, env.rounds.Evaluate(battle.ID, forged.ID))

	after, err := env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BattleStatusCompleted, after.Status)
	require.NotNil(t, after.Winner)
	assert.Equal(t, "mc_a", *after.Winner)
	assert.Equal(t, settled.CompletedAt.Unix(), after.CompletedAt.Unix())

	state, err := after.RoundState()
	require.NoError(t, err)
	assert.Equal(t, 1, state.Player1Score)
	assert.Equal(t, 0, state.Player2Score)
	assert.NotContains(t, state.Winners, 2)
}

func TestSubmitRejectsOutsiders(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 3)
	createUser(t, env.db, "u3", "mc_c")

	_, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_c", []byte("take"))
	assert.ErrorIs(t, err, ErrNotAParticipant)
}

func TestSubmitSurfacesUploadFailure(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 3)
	env.media.fail = true

	_, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	assert.ErrorIs(t, err, ErrUploadFailed)

	// nothing persisted
	list, err := env.rounds.RoundsForBattle(battle.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmitUnknownBattle(t *testing.T) {
	env := newTestEnv(t)
	createUser(t, env.db, "u1", "mc_a")

	_, err := env.rounds.SubmitRoundAudio("no-such-battle", 1, "mc_a", []byte("take"))
	assert.ErrorIs(t, err, ErrBattleNotFound)
}

func TestEvaluateNoOpWhileRoundIncomplete(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 3)

	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	require.NoError(t, err)

	require.NoError(t, env.rounds.Evaluate(battle.ID, round.ID))

	got, err := env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentRound)
	state, err := got.RoundState()
	require.NoError(t, err)
	assert.Empty(t, state.Winners)
}

func TestEvaluateNoOpWithZeroVotes(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 3)

	_, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	require.NoError(t, err)
	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_b", []byte("take"))
	require.NoError(t, err)

	require.NoError(t, env.rounds.Evaluate(battle.ID, round.ID))

	got, err := env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BattleStatusActive, got.Status)
	assert.Equal(t, 1, got.CurrentRound)
}

func TestEvaluateScoresMajorityAndAdvances(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 2)
	createUser(t, env.db, "v1", "fan_one")
	createUser(t, env.db, "v2", "fan_two")
	createUser(t, env.db, "v3", "fan_three")

	// votes land before the round completes, so the tally sees all three
	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	require.NoError(t, err)
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v1", "u1"))
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v2", "u1"))
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v3", "u2"))

	_, err = env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_b", []byte("take"))
	require.NoError(t, err)

	got, err := env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BattleStatusActive, got.Status)
	assert.Equal(t, 2, got.CurrentRound)

	state, err := got.RoundState()
	require.NoError(t, err)
	assert.Equal(t, 1, state.Player1Score)
	assert.Equal(t, 0, state.Player2Score)
	assert.Equal(t, "mc_a", state.Winners[1])
}

func TestEvaluateIsIdempotentPerRound(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 3)
	createUser(t, env.db, "v1", "fan_one")

	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	require.NoError(t, err)
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v1", "u1"))
	_, err = env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_b", []byte("take"))
	require.NoError(t, err)

	// re-running evaluation must not double-score or re-advance
	require.NoError(t, env.rounds.Evaluate(battle.ID, round.ID))
	require.NoError(t, env.rounds.Evaluate(battle.ID, round.ID))

	got, err := env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentRound)
	state, err := got.RoundState()
	require.NoError(t, err)
	assert.Equal(t, 1, state.Player1Score)
}

func TestFinalRoundCompletesBattleWithWinner(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 1)
	createUser(t, env.db, "v1", "fan_one")
	createUser(t, env.db, "v2", "fan_two")
	createUser(t, env.db, "v3", "fan_three")

	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	require.NoError(t, err)
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v1", "u1"))
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v2", "u1"))
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v3", "u2"))
	_, err = env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_b", []byte("take"))
	require.NoError(t, err)

	got, err := env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BattleStatusCompleted, got.Status)
	require.NotNil(t, got.Winner)
	assert.Equal(t, "mc_a", *got.Winner)
	assert.NotNil(t, got.CompletedAt)

	// both participants hear about it
	assert.Len(t, notificationsOfType(t, env.db, "u1", models.NotificationBattleCompleted), 1)
	assert.Len(t, notificationsOfType(t, env.db, "u2", models.NotificationBattleCompleted), 1)

	// winner banks the win bonus
	winner, err := env.users.GetByID("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), winner.XP) // exactly one level threshold consumed
	assert.Equal(t, 2, winner.Level)
}

func TestTiedFinalRoundLeavesNoWinner(t *testing.T) {
	env := newTestEnv(t)
	battle := activeBattle(t, env, 1)
	createUser(t, env.db, "v1", "fan_one")
	createUser(t, env.db, "v2", "fan_two")

	round, err := env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_a", []byte("take"))
	require.NoError(t, err)
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v1", "u1"))
	require.NoError(t, env.votes.CastVote(battle.ID, round.ID, "v2", "u2"))
	_, err = env.rounds.SubmitRoundAudio(battle.ID, 1, "mc_b", []byte("take"))
	require.NoError(t, err)

	got, err := env.battles.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BattleStatusCompleted, got.Status)
	assert.Nil(t, got.Winner)

	state, err := got.RoundState()
	require.NoError(t, err)
	assert.Equal(t, models.RoundTieWinner, state.Winners[1])
	assert.Equal(t, 0, state.Player1Score)
	assert.Equal(t, 0, state.Player2Score)
}

func TestTallyRound(t *testing.T) {
	assert.Equal(t, roundUndecided, tallyRound(0, 0))
	assert.Equal(t, roundPlayer1, tallyRound(3, 1))
	assert.Equal(t, roundPlayer2, tallyRound(1, 3))
	assert.Equal(t, roundTie, tallyRound(2, 2))
}
