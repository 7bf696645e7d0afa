package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/outside/internal/mapview"
	"github.com/desertthunder/outside/internal/shared"
	"github.com/desertthunder/outside/internal/tasks"
	"github.com/desertthunder/outside/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive venue finder.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	fileLogger.SetLevel(r.logger.GetLevel())

	opts := tasks.OptionsFromConfig(r.config)
	opts.Logger = fileLogger

	model := ui.NewModel(ctx, ui.Config{
		API:     r.api,
		Map:     mapview.New(mapview.OptionsFromConfig(r.config.Map), fileLogger),
		Cacher:  r.cacher,
		Options: opts,
		Dismiss: r.config.Notifications.Dismiss(),
		OpenURL: r.openURL,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
