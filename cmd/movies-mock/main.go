package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/doingodswork/deflix-movies/pkg/logadapter"
)

func main() {
	bootLogger, err := logadapter.NewLogger("info", "console")
	if err != nil {
		panic(err)
	}
	config := parseConfig(bootLogger)
	config.validate(bootLogger)

	logger, err := logadapter.NewLogger(config.LogLevel, config.LogEncoding)
	if err != nil {
		bootLogger.Fatal("Couldn't create logger", zap.Error(err))
	}
	defer logger.Sync()

	cat, err := newCatalog(defaultMovies)
	if config.DataFile != "" {
		cat, err = loadCatalog(afero.NewOsFs(), config.DataFile)
	}
	if err != nil {
		logger.Fatal("Couldn't load movies", zap.Error(err))
	}

	app := newServer(cat, config, logger)

	addr := config.BindAddr + ":" + strconv.Itoa(config.Port)
	logger.Info("Starting server", zap.String("address", addr), zap.Int("movies", len(cat.movies)))
	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Couldn't start server", zap.Error(err))
		}
	}()

	// Graceful shutdown

	c := make(chan os.Signal, 1)
	// Accept SIGINT (Ctrl+C) and SIGTERM (`docker stop`)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	logger.Info("Received signal, shutting down server...", zap.Stringer("signal", sig))
	if err := app.Shutdown(); err != nil {
		logger.Error("Error shutting down server", zap.Error(err))
	}
	logger.Info("Server shut down")
}
