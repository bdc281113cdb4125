package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "instapilot/configs"
	"instapilot/internal/api/handlers"
	"instapilot/internal/api/middleware"
	job "instapilot/internal/jobs"
	"instapilot/internal/queue"
	"instapilot/internal/repository"
	"instapilot/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	instagramRepo := repository.NewInstagramAccountRepository(db)
	attemptRepo := repository.NewPublishAttemptRepository(db)
	postContextRepo := repository.NewPostContextRepository(db)
	wikiContextRepo := repository.NewWikiContextRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	storageService := service.NewStorageService(*cfg)
	openRouterService := service.NewOpenRouterService(*cfg)
	instagramService := service.NewInstagramService(*cfg)
	accountService := service.NewAccountService(*cfg, instagramRepo)
	postService := service.NewPostService(postRepo, instagramRepo, postContextRepo, attemptRepo, instagramService, openRouterService, storageService, cfg.EncryptionKey)
	postContextService := service.NewContextService(postContextRepo)
	wikiContextService := service.NewContextService(wikiContextRepo)
	publisherService := service.NewPublisherService(postRepo, instagramRepo, attemptRepo, instagramService, cfg.EncryptionKey)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/register", auth.Register)
	app.Post("/login", auth.Login)
	app.Post("/logout", auth.Logout)

	webhook := handlers.NewWebhookHandler(*cfg, client)
	app.Get("/webhook", webhook.Verify)
	app.Post("/webhook", webhook.Receive)

	api := app.Group("/api/v1")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	instagram := handlers.NewInstagramHandler(*cfg, accountService)
	api.Post("/instagram/credentials", instagram.RegisterCredentials)
	api.Get("/instagram/credentials", instagram.GetCredentials)
	api.Put("/instagram/credentials", instagram.UpdateCredentials)
	api.Delete("/instagram/credentials", instagram.RemoveCredentials)
	api.Get("/instagram/connect", instagram.Connect)
	api.Get("/instagram/connect/callback", instagram.ConnectCallback)

	post := handlers.NewPostHandler(postService, publisherService)
	api.Post("/posts/create", post.CreatePost)
	api.Post("/posts/prepare", post.PreparePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Get("/posts/:id/attempts", post.ListAttempts)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Post("/posts/publish", post.PublishPost)
	api.Post("/posts/publish-pending", post.PublishPending)
	api.Delete("/posts/:id", post.RemovePost)

	postContext := handlers.NewContextHandler(postContextService)
	api.Get("/contexts/post", postContext.Get)
	api.Post("/contexts/post", postContext.Create)
	api.Put("/contexts/post", postContext.Update)
	api.Delete("/contexts/post", postContext.Remove)

	wikiContext := handlers.NewContextHandler(wikiContextService)
	api.Get("/contexts/wiki", wikiContext.Get)
	api.Post("/contexts/wiki", wikiContext.Create)
	api.Put("/contexts/wiki", wikiContext.Update)
	api.Delete("/contexts/wiki", wikiContext.Remove)

	// cron jobs
	cleanupJob := job.NewAttemptCleanupJob(attemptRepo, cfg.AttemptRetentionDays)

	c := cron.New()
	c.AddFunc("@every 24h00m00s", cleanupJob.Run)
	c.Start()

	publishJob := job.NewPublishJob(publisherService, cfg.PublishInterval)
	if err := publishJob.Start(context.Background()); err != nil {
		log.Fatalf("Could not start publish job: %v", err)
	}

	//queue
	queueW := queue.NewQueue(*cfg, instagramRepo, wikiContextRepo, openRouterService, instagramService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeDirectMessageReply, queueW.HandleDirectMessageTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, publishJob, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, publishJob *job.PublishJob, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := publishJob.Stop(); err != nil {
		log.Printf("Failed to stop publish job: %v", err)
	}
	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
