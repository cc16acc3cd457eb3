package api

import (
	"grounded-qa/config"
	"grounded-qa/internal/api/ask"
	"grounded-qa/internal/api/healthcheck"
	"grounded-qa/internal/api/retriever"
	"grounded-qa/internal/core/prompt"
	"grounded-qa/internal/core/query"
	"grounded-qa/internal/middleware"
	"grounded-qa/internal/web"

	"github.com/gofiber/fiber/v3"
)

// Deps are built once at start-up and shared by every request.
type Deps struct {
	Runner    ask.Runner
	Searcher  query.Searcher
	Pinger    healthcheck.Pinger
	Assembler *prompt.Assembler
}

// NewApp wires the routes onto a fiber app.
func NewApp(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.AppName,
		BodyLimit:    cfg.Server.BodyLimit,
		Concurrency:  cfg.Server.Concurrency,
		Views:        web.Engine(),
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestLogger())

	ask.RegisterRoutes(app, ask.NewHandler(deps.Runner))
	retriever.RegisterRoutes(app, retriever.NewHandler(deps.Searcher, deps.Assembler))
	healthcheck.RegisterRoutes(app, healthcheck.NewHandler(deps.Pinger))

	return app
}
