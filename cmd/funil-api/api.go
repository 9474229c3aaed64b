// Package main provides the Funil API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/funildev/funil/pkg/automation"
	"github.com/funildev/funil/pkg/eventbus"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/registry"
	"github.com/funildev/funil/pkg/services"
	"github.com/funildev/funil/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		persistence: persistence,
		logger:      logger,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	matcher := automation.NewMatcher(a.logger)
	dispatcher := automation.NewDispatcher(a.registry, a.logger)

	workflowService := services.NewWorkflow(a.persistence, a.registry)
	leadService := services.NewLead(a.persistence, matcher, dispatcher, a.eventBus, a.logger)
	rotationService := services.NewRotation(a.persistence, a.eventBus, a.logger)
	kanbanService := services.NewKanban(a.persistence, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(workflowService, leadService, rotationService, kanbanService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Funil API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Post("/round-robin/assign", handlers.AssignLead)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	l := app.Group("/leads")
	l.Get("/", handlers.GetLeads)
	l.Post("/", handlers.CreateLead)
	l.Get("/:id", handlers.GetLead)
	l.Put("/:id", handlers.UpdateLead)
	l.Delete("/:id", handlers.DeleteLead)

	k := app.Group("/kanban")
	k.Get("/boards", handlers.GetBoards)
	k.Post("/boards", handlers.CreateBoard)
	k.Get("/boards/:id", handlers.GetBoard)
	k.Post("/columns", handlers.CreateColumn)
	k.Post("/cards", handlers.CreateCard)
	k.Patch("/cards/:id/move", handlers.MoveCard)
	k.Delete("/cards/:id", handlers.DeleteCard)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
