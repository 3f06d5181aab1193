package main

import (
	"context"
	"strconv"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/fixflow/fixflow/config"
	"github.com/fixflow/fixflow/internal/api/middleware"
	"github.com/fixflow/fixflow/internal/api/v1/handlers"
	"github.com/fixflow/fixflow/internal/api/v1/routes"
	"github.com/fixflow/fixflow/internal/constants"
	"github.com/fixflow/fixflow/internal/db"
	"github.com/fixflow/fixflow/internal/db/repos"
	"github.com/fixflow/fixflow/internal/events"
	"github.com/fixflow/fixflow/internal/logger"
	"github.com/fixflow/fixflow/internal/services"
)

func main() {
	// A missing .env file is fine; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	logger.InitializeAndConfigure()

	port, err := strconv.Atoi(config.GetEnv(constants.EnvDBPort, "5432"))
	if err != nil {
		logger.Fatalf("Invalid %s: %v", constants.EnvDBPort, err)
	}

	database, err := db.New(db.Options{
		Host:     config.GetEnv(constants.EnvDBHost, ""),
		Port:     port,
		User:     config.GetEnv(constants.EnvDBUser, ""),
		Password: config.GetEnv(constants.EnvDBPassword, ""),
		DBName:   config.GetEnv(constants.EnvDBName, ""),
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Repositories
	jobRepo := repos.NewJobRepository(database)
	payoutRepo := repos.NewPayoutRepository(database)
	settingsRepo := repos.NewSettingsRepository(database)

	// Services
	jobService := services.NewJobService(jobRepo)
	quoteService := services.NewQuoteService(jobRepo, services.NoDeliveryQuotes{})
	settlementService := services.NewSettlementService(payoutRepo, jobRepo, services.StaticPaymentVerifier{State: services.PaymentCompleted})
	payoutService := services.NewPayoutService(payoutRepo, settingsRepo)

	// Event loop and notification dispatch
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	services.RegisterNotificationHandlers(services.LogNotifier{})
	events.Start(ctx)

	// HTTP server
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})
	app.Use(middleware.Logger())

	jobHandler := handlers.NewJobHandler(jobService, quoteService)
	payoutHandler := handlers.NewPayoutHandler(settlementService, payoutService)
	routes.RegisterRoutes(app, jobHandler, payoutHandler)

	listenPort := config.GetEnv(constants.EnvAPIPort, routes.DefaultPort)
	logger.Infof("Starting API server on port %s", listenPort)
	if err := app.Listen(":" + listenPort); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
