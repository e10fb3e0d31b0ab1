package main

import (
	"context"
	"log"
	"time"

	config "github.com/anjiri1684/chat_backend/configs"
	"github.com/anjiri1684/chat_backend/database"
	"github.com/anjiri1684/chat_backend/handlers"
	"github.com/anjiri1684/chat_backend/jobs"
	"github.com/anjiri1684/chat_backend/middleware"
	"github.com/anjiri1684/chat_backend/repository"
	"github.com/anjiri1684/chat_backend/routes"
	"github.com/anjiri1684/chat_backend/services"
	"github.com/anjiri1684/chat_backend/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	settings := config.Load()
	if settings.JWTSecret == "" {
		log.Fatalf("🔥 JWT_SECRET is required")
	}

	db, err := database.ConnectDB(settings.DatabaseURL)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}

	uploader, err := services.NewImageUploader(context.Background(), settings)
	if err != nil {
		log.Fatalf("🔥 Failed to initialize image uploads: %v", err)
	}
	var signer handlers.UploadSigner
	if cld, ok := uploader.(*services.CloudinaryUploader); ok {
		signer = cld
	}
	log.Printf("✅ Image upload backend: %s", settings.UploadBackend)

	users := repository.NewGormUserRepository(db)
	convs := repository.NewGormConversationRepository(db)
	messages := repository.NewGormMessageRepository(db)
	hub := websocket.NewHub()

	h := &handlers.Handler{
		Auth:          services.NewAuthService(users, settings.JWTSecret),
		Profiles:      services.NewProfileService(users, uploader),
		Blocks:        services.NewBlockService(users),
		Conversations: services.NewConversationService(users, convs, messages),
		Messages:      services.NewMessageService(users, convs, messages, uploader, hub),
		Signer:        signer,
		Hub:           hub,
	}

	c := cron.New()
	if _, err := jobs.SchedulePresenceSweep(c, hub); err != nil {
		log.Fatalf("🔥 Failed to schedule presence sweep: %v", err)
	}
	c.Start()
	defer c.Stop()
	log.Println("✅ Cron job for presence sweep scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Chat Backend",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  settings.CorsOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Africa/Nairobi",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, h, middleware.Protected(settings.JWTSecret))

	log.Printf("✅ Server is running on port %s", settings.Port)
	if err := app.Listen(":" + settings.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
