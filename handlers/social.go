// handlers/social.go
package handlers

import (
	"io"
	"strconv"

	"battle-arena-system/middleware"
	"battle-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSocialRoutes(
	app *fiber.App,
	social *services.SocialService,
	messages *services.MessageService,
) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Follows
	secured.Post("/users/:id/follow", func(c *fiber.Ctx) error {
		if err := social.Follow(middleware.CurrentUserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "following"})
	})

	secured.Delete("/users/:id/follow", func(c *fiber.Ctx) error {
		if err := social.Unfollow(middleware.CurrentUserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"status": "unfollowed"})
	})

	secured.Get("/users/:id/followers", func(c *fiber.Ctx) error {
		list, err := social.Followers(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	secured.Get("/users/:id/following", func(c *fiber.Ctx) error {
		list, err := social.Following(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	secured.Get("/users/:id/follow-stats", func(c *fiber.Ctx) error {
		followers, following, err := social.FollowStats(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		isFollowing, err := social.IsFollowing(middleware.CurrentUserID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"followers":    followers,
			"following":    following,
			"is_following": isFollowing,
		})
	})

	// Posts
	secured.Post("/posts", func(c *fiber.Ctx) error {
		caption := c.FormValue("caption")
		blob, mediaType, err := optionalMedia(c, "media")
		if err != nil {
			return badRequest(c, "could not read media file")
		}
		post, err := social.CreatePost(middleware.CurrentUserID(c), caption, blob, mediaType)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	secured.Get("/feed", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		posts, err := social.Feed(middleware.CurrentUserID(c), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(posts)
	})

	secured.Get("/users/:id/posts", func(c *fiber.Ctx) error {
		posts, err := social.PostsForUser(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(posts)
	})

	secured.Delete("/posts/:id", func(c *fiber.Ctx) error {
		if err := social.DeletePost(c.Params("id"), middleware.CurrentUserID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"status": "deleted"})
	})

	secured.Post("/posts/:id/like", func(c *fiber.Ctx) error {
		liked, likes, err := social.ToggleLike(c.Params("id"), middleware.CurrentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"liked": liked, "likes_count": likes})
	})

	secured.Post("/posts/:id/comments", func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil || body.Text == "" {
			return badRequest(c, "comment text is required")
		}
		comment, err := social.AddComment(c.Params("id"), middleware.CurrentUserID(c), body.Text)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	secured.Get("/posts/:id/comments", func(c *fiber.Ctx) error {
		comments, err := social.CommentsForPost(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(comments)
	})

	// Stories
	secured.Post("/stories", func(c *fiber.Ctx) error {
		blob, mediaType, err := optionalMedia(c, "media")
		if err != nil || blob == nil {
			return badRequest(c, "media file is required")
		}
		story, err := social.CreateStory(middleware.CurrentUserID(c), blob, mediaType)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(story)
	})

	secured.Get("/users/:id/stories", func(c *fiber.Ctx) error {
		stories, err := social.ActiveStories(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(stories)
	})

	// Messaging
	secured.Get("/conversations", func(c *fiber.Ctx) error {
		list, err := messages.ConversationsForUser(middleware.CurrentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	secured.Post("/conversations", func(c *fiber.Ctx) error {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.UserID == "" {
			return badRequest(c, "user_id is required")
		}
		convo, err := messages.FindOrCreateConversation(middleware.CurrentUserID(c), body.UserID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(convo)
	})

	secured.Get("/conversations/:id/messages", func(c *fiber.Ctx) error {
		list, err := messages.MessagesFor(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	secured.Post("/conversations/:id/messages", func(c *fiber.Ctx) error {
		var body struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
		msg, err := messages.Send(c.Params("id"), middleware.CurrentUserID(c), body.Content)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	})
}

// optionalMedia reads a multipart file field, returning a nil blob when
// the field is absent. The stored media type comes from the mime prefix.
func optionalMedia(c *fiber.Ctx, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", nil
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	blob, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	mediaType := "image"
	if ct := fileHeader.Header.Get("Content-Type"); len(ct) >= 5 && ct[:5] == "video" {
		mediaType = "video"
	}
	return blob, mediaType, nil
}
