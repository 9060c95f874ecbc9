package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/condovista/condoctl/api"
	"github.com/condovista/condoctl/internal/config"
	"github.com/condovista/condoctl/session"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "condoctl: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.NewFromFile(filepath.Join(config.EnvVars{}.GetDataFolder(), "config.yaml"))
	if err != nil {
		return err
	}

	logger := newLogger(cfg.GetLogLevel())

	store, err := session.NewFileStore(cfg.GetDataFolder())
	if err != nil {
		return err
	}

	// The identity-change broadcast drives anything showing "who is logged
	// in"; here that is just the log stream.
	unsubscribe := store.Subscribe(func() {
		if profile, ok := store.Profile(); ok {
			logger.Info().Str("user", profile.Username).Msg("session identity changed")
			return
		}
		logger.Info().Msg("session cleared")
	})
	defer unsubscribe()

	client, err := api.New(cfg.GetBaseURL(), store,
		api.WithLogger(logger),
		api.WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
	)
	if err != nil {
		return err
	}

	app, err := newConsole(cfg, client, logger)
	if err != nil {
		return err
	}
	return app.dispatch(context.Background(), args)
}

func newLogger(level string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = zerolog.WarnLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(logLevel).With().Timestamp().Logger()
}
