// handlers/respond.go
package handlers

import (
	"errors"

	"battle-arena-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// statusForError maps service errors onto HTTP statuses so every route
// reports failures the same way.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRoundCount),
		errors.Is(err, services.ErrSelfChallenge),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrRoundOutOfRange),
		errors.Is(err, services.ErrInvalidVoteTarget),
		errors.Is(err, services.ErrBadTargetColumn):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientCoins):
		return fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrNotAParticipant),
		errors.Is(err, services.ErrParticipantCannotVote):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrBattleNotFound),
		errors.Is(err, services.ErrRoundNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrOpponentNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateBattle),
		errors.Is(err, services.ErrAlreadyVoted),
		errors.Is(err, services.ErrBattleNotActive):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
