package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/outside/internal/shared"
)

// Exit codes returned by main.
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitAuth        = 3
	exitUnavailable = 4
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.app().Run(ctx, os.Args); err != nil {
		code := exitCode(err)
		if code == exitOK {
			logger.Warn("not implemented")
		} else {
			logger.Error("application error", "error", err)
		}
		stop()
		os.Exit(code)
	}
}

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, shared.ErrNotImplemented):
		return exitOK
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidFlag),
		errors.Is(err, shared.ErrInvalidConfig):
		return exitUsage
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrRegistrationFailed),
		errors.Is(err, shared.ErrAuthFailed):
		return exitAuth
	case errors.Is(err, shared.ErrConnection),
		errors.Is(err, shared.ErrServiceUnavailable),
		errors.Is(err, shared.ErrTimeout):
		return exitUnavailable
	default:
		return exitError
	}
}
