package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lms/audit"
	"lms/config"
	"lms/database"
	"lms/middleware"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	enrollmentRoutes "lms/routers/enrollmentRoutes"
	progressRoutes "lms/routers/progressRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/robfig/cron/v3"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	audit.Start(database.Database.Db, 256)

	app := fiber.New(fiber.Config{
		// Unanticipated failures reach the caller as an opaque 500; the
		// detail stays in the server log.
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return middleware.JsonResponse(c, fiberErr.Code, false, fiberErr.Message, nil)
			}
			log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
		},
	})

	// Cross-origin requests only from the configured allow-list. Preflight is
	// answered here, before the auth chain.
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.AppConfig.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Liveness probe sits outside the guarded pipeline
	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})

	limiter := middleware.NewRateLimiter(config.AppConfig.RateLimitMax, config.AppConfig.RateLimitWindow)
	app.Use("/api", middleware.RequireJSON, limiter.Handler())

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	progressRoutes.SetupProgressRoutes(app)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every "+config.AppConfig.RateLimitSweepEach.String(), limiter.Sweep); err != nil {
		log.Fatalf("Failed to schedule rate limit sweep: %v", err)
	}
	sweeper.Start()

	// Shutdown drains in-flight requests before Listen returns.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}

	// Listener is closed; release the background workers and the storage handle.
	sweeper.Stop()
	audit.Stop()
	database.Close()
}
