// handlers/battle.go
package handlers

import (
	"io"
	"strconv"

	"battle-arena-system/middleware"
	"battle-arena-system/models"
	"battle-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBattleRoutes(
	app *fiber.App,
	battles *services.BattleService,
	rounds *services.RoundService,
	votes *services.VoteService,
	users *services.UserService,
) {
	// 🔐 Secured routes — require user context from the Gateway
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/battles", func(c *fiber.Ctx) error {
		var body struct {
			Opponent string `json:"opponent"`
			Rounds   int    `json:"rounds"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
		battle, err := battles.Request(middleware.CurrentUserID(c), body.Opponent, body.Rounds)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(battle)
	})

	secured.Get("/battles/pending", battleList(battles.ListPending, users))
	secured.Get("/battles/active", battleList(battles.ListActive, users))
	secured.Get("/battles/completed", battleList(battles.ListCompleted, users))

	secured.Get("/battles/:id", func(c *fiber.Ctx) error {
		battle, err := battles.GetByID(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(battle)
	})

	secured.Post("/battles/:id/accept", func(c *fiber.Ctx) error {
		if !battles.Accept(c.Params("id"), middleware.CurrentUserID(c)) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "battle is not open for acceptance",
			})
		}
		return c.JSON(fiber.Map{"status": "active"})
	})

	secured.Post("/battles/:id/reject", func(c *fiber.Ctx) error {
		if !battles.Reject(c.Params("id"), middleware.CurrentUserID(c)) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "battle not found",
			})
		}
		return c.JSON(fiber.Map{"status": "rejected"})
	})

	secured.Get("/battles/:id/rounds", func(c *fiber.Ctx) error {
		list, err := rounds.RoundsForBattle(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	// Round audio submission — multipart upload under field "audio"
	secured.Post("/battles/:id/rounds/:round/audio", func(c *fiber.Ctx) error {
		roundNumber, err := strconv.Atoi(c.Params("round"))
		if err != nil || roundNumber < 1 {
			return badRequest(c, "invalid round number")
		}
		fileHeader, err := c.FormFile("audio")
		if err != nil {
			return badRequest(c, "audio file is required")
		}
		f, err := fileHeader.Open()
		if err != nil {
			return badRequest(c, "could not read audio file")
		}
		defer f.Close()
		blob, err := io.ReadAll(f)
		if err != nil {
			return badRequest(c, "could not read audio file")
		}

		user, err := users.GetByID(middleware.CurrentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		round, err := rounds.SubmitRoundAudio(c.Params("id"), roundNumber, user.Username, blob)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(round)
	})

	secured.Post("/battles/:id/rounds/:round_id/votes", func(c *fiber.Ctx) error {
		var body struct {
			VotedFor string `json:"voted_for"`
		}
		if err := c.BodyParser(&body); err != nil || body.VotedFor == "" {
			return badRequest(c, "voted_for is required")
		}
		err := votes.CastVote(c.Params("id"), c.Params("round_id"), middleware.CurrentUserID(c), body.VotedFor)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "voted"})
	})

	secured.Get("/rounds/:round_id/votes", func(c *fiber.Ctx) error {
		list, err := votes.VotesForRound(c.Params("round_id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})
}

// battleList resolves the caller's handle and delegates to one of the
// status-scoped listings.
func battleList(list func(handle string) ([]models.Battle, error), users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := users.GetByID(middleware.CurrentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		battles, err := list(user.Username)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(battles)
	}
}
