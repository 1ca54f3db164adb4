package main

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func newServer(cat *catalog, cfg config, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				logger.Error("Couldn't handle request", zap.Error(err), zap.String("url", c.OriginalURL()))
			}
			return sendMessage(c, status, err.Error())
		},
	})

	app.Use(createLoggingMiddleware(logger))
	app.Get("/health", healthHandler)

	apiGroup := app.Group("/api", createAuthMiddleware(cfg.Token))
	apiGroup.Get("/movies", createMoviesHandler(cat, cfg.PerPage, logger))
	apiGroup.Get("/movies/:id", createMovieHandler(cat))

	return app
}
