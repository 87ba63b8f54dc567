// handlers/profile.go
package handlers

import (
	"strconv"

	"battle-arena-system/middleware"
	"battle-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(
	app *fiber.App,
	users *services.UserService,
	notifications *services.NotificationService,
	shop *services.ShopService,
) {
	// 🔓 Public routes — gateway-authenticated, no user context required
	app.Get("/users/:username", func(c *fiber.Ctx) error {
		user, err := users.GetByUsername(c.Params("username"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	app.Get("/shop/items", func(c *fiber.Ctx) error {
		items, err := shop.ListItems()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})

	// 🔐 Secured routes
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/me", func(c *fiber.Ctx) error {
		user, err := users.GetByID(middleware.CurrentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		users.Touch(user.ID)
		return c.JSON(user)
	})

	secured.Patch("/me", func(c *fiber.Ctx) error {
		var body struct {
			Bio               *string `json:"bio"`
			ProfilePictureURL *string `json:"profile_picture_url"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
		updates := map[string]interface{}{}
		if body.Bio != nil {
			updates["bio"] = *body.Bio
		}
		if body.ProfilePictureURL != nil {
			updates["profile_picture_url"] = *body.ProfilePictureURL
		}
		user, err := users.UpdateProfile(middleware.CurrentUserID(c), updates)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	secured.Get("/notifications", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		list, err := notifications.ListForUser(middleware.CurrentUserID(c), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	secured.Post("/notifications/read", func(c *fiber.Ctx) error {
		if err := notifications.MarkAllRead(middleware.CurrentUserID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"status": "read"})
	})

	secured.Post("/shop/items/:id/purchase", func(c *fiber.Ctx) error {
		user, err := shop.Purchase(middleware.CurrentUserID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})
}
