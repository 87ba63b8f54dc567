package services

import "errors"

// Failure taxonomy surfaced by the services. Handlers translate these into
// HTTP statuses; anything else wrapping through is treated as a store or
// upstream failure (500).
var (
	// Validation
	ErrInvalidRoundCount = errors.New("total rounds must be between 1 and 5")
	ErrSelfChallenge     = errors.New("cannot challenge yourself")
	ErrEmptyMessage      = errors.New("message content is empty")
	ErrRoundOutOfRange   = errors.New("round number is outside the battle's rounds")
	ErrInvalidVoteTarget = errors.New("vote target is not a battle participant")

	// Lifecycle
	ErrBattleNotActive = errors.New("battle is not active")

	// Duplicate state
	ErrDuplicateBattle = errors.New("a pending or active battle already exists with this opponent")
	ErrAlreadyVoted    = errors.New("already voted for this round")

	// Authorization
	ErrNotAParticipant       = errors.New("submitter is not a battle participant")
	ErrParticipantCannotVote = errors.New("battle participants cannot vote on their own rounds")

	// Not found
	ErrBattleNotFound   = errors.New("battle not found")
	ErrRoundNotFound    = errors.New("round not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrOpponentNotFound = errors.New("opponent not found")
	ErrItemNotFound     = errors.New("shop item not found")

	// External service / store
	ErrUploadFailed = errors.New("media upload failed")
	ErrVoteInsert   = errors.New("failed to record vote")

	// Shop
	ErrInsufficientCoins = errors.New("not enough rap coins for this item")
	ErrBadTargetColumn   = errors.New("shop item targets an unknown user column")
)
