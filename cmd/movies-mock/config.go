package main

import (
	"flag"
	"os"
	"strconv"

	"go.uber.org/zap"
)

type config struct {
	BindAddr    string `json:"bindAddr"`
	Port        int    `json:"port"`
	Token       string `json:"-"`
	PerPage     int    `json:"perPage"`
	DataFile    string `json:"dataFile"`
	LogLevel    string `json:"logLevel"`
	LogEncoding string `json:"logEncoding"`
}

func parseConfig(logger *zap.Logger) config {
	result := config{}

	var (
		bindAddr    = flag.String("bindAddr", "localhost", `Local interface address to bind to. "localhost" only allows access from the local host. "0.0.0.0" binds to all network interfaces.`)
		port        = flag.Int("port", 8080, "Port to listen on")
		token       = flag.String("token", "", "Bearer token that clients must send. Any request is allowed if empty.")
		perPage     = flag.Int("perPage", 10, "Default and max page size")
		dataFile    = flag.String("dataFile", "", "Path to a JSON file with an array of movies. A built-in set of movies is served if empty.")
		logLevel    = flag.String("logLevel", "info", `Log level to show only logs with the given and more severe levels. Can be "debug", "info", "warn", "error".`)
		logEncoding = flag.String("logEncoding", "console", `Log encoding. Can be "console" or "json".`)
	)

	flag.Parse()

	// Only overwrite the values by their env var counterparts that have not been set (and that *are* set via env var).
	var err error
	if !isArgSet("port") {
		if val, ok := os.LookupEnv("PORT"); ok {
			if *port, err = strconv.Atoi(val); err != nil {
				logger.Fatal("Couldn't convert environment variable from string to int", zap.Error(err), zap.String("envVar", "PORT"))
			}
		}
	}
	if !isArgSet("token") {
		if val, ok := os.LookupEnv("API_TOKEN"); ok {
			*token = val
		}
	}

	result.BindAddr = *bindAddr
	result.Port = *port
	result.Token = *token
	result.PerPage = *perPage
	result.DataFile = *dataFile
	result.LogLevel = *logLevel
	result.LogEncoding = *logEncoding
	return result
}

func (c *config) validate(logger *zap.Logger) {
	if c.PerPage < 1 {
		logger.Fatal("perPage must be at least 1", zap.Int("perPage", c.PerPage))
	}
	if c.LogEncoding != "console" && c.LogEncoding != "json" {
		logger.Fatal(`logEncoding must be one of "console" or "json"`, zap.String("logEncoding", c.LogEncoding))
	}
}

// isArgSet returns true if the argument you're looking for is actually set as command line argument.
// Pass without "-" prefix.
func isArgSet(arg string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == arg {
			found = true
		}
	})
	return found
}
