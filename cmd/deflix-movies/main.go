package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/doingodswork/deflix-movies/pkg/logadapter"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command> [args]\n\n%s\n\nFlags:\n", os.Args[0], usage)
		flag.PrintDefaults()
	}

	// Logger for the config parsing. Its level and encoding are only known afterwards.
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

	configJSON, err := json.Marshal(config)
	if err != nil {
		logger.Fatal("Couldn't marshal config to JSON", zap.Error(err))
	}
	logger.Debug("Parsed config", zap.ByteString("config", configJSON))

	registerTypes()

	// Accept SIGINT (Ctrl+C) and SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, config, afero.NewOsFs(), logger)
	if err != nil {
		logger.Fatal("Couldn't initialize", zap.Error(err))
	}

	runErr := a.run(ctx, flag.Args(), os.Stdout)
	if err = a.close(); err != nil {
		logger.Error("Couldn't clean up", zap.Error(err))
	}
	if runErr != nil {
		if errors.Is(runErr, errUsage) {
			fmt.Fprintln(os.Stderr, runErr)
			flag.Usage()
			os.Exit(2)
		}
		logger.Error("Command failed", zap.Error(runErr))
		os.Exit(1)
	}
}
