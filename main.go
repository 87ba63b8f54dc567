package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"battle-arena-system/handlers"
	"battle-arena-system/middleware"
	"battle-arena-system/models"
	"battle-arena-system/services"
	"battle-arena-system/utils"
	"battle-arena-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB — round audio and story media
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitMediaStore(); err != nil {
		log.Fatal("failed to initialize media store:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.ArenaUser{},
		&models.Battle{},
		&models.BattleRound{},
		&models.BattleVote{},
		&models.Notification{},
		&models.Follow{},
		&models.Post{},
		&models.PostLike{},
		&models.PostComment{},
		&models.Story{},
		&models.Conversation{},
		&models.Message{},
		&models.ShopItem{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	media := utils.R2MediaStore{}

	notificationService := services.NewNotificationService(db)
	userService := services.NewUserService(db, notificationService)
	battleService := services.NewBattleService(db, userService, notificationService)
	roundService := services.NewRoundService(db, media, userService, notificationService)
	voteService := services.NewVoteService(db, roundService)
	socialService := services.NewSocialService(db, media, userService, notificationService)
	messageService := services.NewMessageService(db, notificationService)
	shopService := services.NewShopService(db, notificationService)

	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("ARENA_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("ARENA_SERVICE_TOKEN environment variable not set")
	}

	syncWorker := workers.NewProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker.Start(ctx)
	services.StartMaintenanceScheduler(db, notificationService)

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix
	handlers.SetupBattleRoutes(app, battleService, roundService, voteService, userService)
	handlers.SetupProfileRoutes(app, userService, notificationService, shopService)
	handlers.SetupSocialRoutes(app, socialService, messageService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Profile Sync Worker running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
