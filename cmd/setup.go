package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/outside/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded default configuration.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		path = "config.toml"
	}

	r.logger.Info("creating config file from template", "path", path)
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Override any value with OUTSIDE_* environment variables, e.g. %s_API_BASE_URL\n", shared.EnvPrefix)
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	db := r.db
	if db == nil {
		r.logger.Info("initializing database", "path", r.config.Database.Path)

		var err error
		if db, err = shared.OpenDatabase(r.config.Database); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()
	} else if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	statuses, err := shared.Migrations(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, m := range statuses {
		mark := "✗"
		if m.Applied {
			mark = "✓"
		}
		r.writePlain("%s %03d %s\n", mark, m.Version, m.Name)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// SetupSession imports the cookies of a logged in browser session.
//
// Accepts a cURL command copied from the browser's network panel, then confirms the session with the API.
func (r *Runner) SetupSession(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}
	if err := r.requireAPI(); err != nil {
		return err
	}
	if r.jar == nil {
		return fmt.Errorf("%w: cookie jar not initialized", shared.ErrServiceUnavailable)
	}

	var session *shared.SessionImport
	var err error
	if curlFile != "" {
		if session, err = shared.ParseCurlFile(curlFile); err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
	} else if session, err = shared.ParseCurlCommand(curlCmd); err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	if !session.HasSession() {
		return fmt.Errorf("%w: no sessionid cookie in the cURL command", shared.ErrInvalidInput)
	}

	base, err := url.Parse(r.config.API.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	if host := session.Host(); host != "" && host != base.Host {
		r.logger.Warn("cURL command targets another host", "curl", host, "api", base.Host)
	}

	r.jar.Import(base, session.Cookies)
	r.logger.Info("imported cookies", "count", len(session.Cookies), "host", base.Host)

	username, err := r.requireSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: the imported session was rejected", shared.ErrAuthFailed)
	}

	return r.writePlain("✓ Session imported for %s\n", username)
}
