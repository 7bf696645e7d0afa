package main

import (
	"context"
	"strings"

	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/tasks"
	"github.com/urfave/cli/v3"
)

// AuthStatus asks the API who owns the stored session cookie.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	r.logger.Info("checking session")
	view := tasks.NewSessionView(r.ctrl.Auth.CheckStatus(ctx))
	r.printSession(view)

	if history := r.ctrl.Search.State().History; len(history) > 0 {
		r.writePlainln("Recent searches:")
		for i, h := range history {
			r.writePlain("  %d. %s\n", i+1, h.Label())
		}
	}
	return nil
}

// AuthLogin authenticates with username and password. The session cookie is kept in the database.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	session, err := r.ctrl.Auth.Login(ctx, cmd.String("username"), cmd.String("password"))
	if err != nil {
		return err
	}

	r.printSession(tasks.NewSessionView(session))
	return nil
}

// AuthSignup registers an account. The confirmation defaults to the password.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	form := models.Registration{
		Username:  cmd.String("username"),
		Email:     cmd.String("email"),
		FullName:  cmd.String("full-name"),
		Password:  cmd.String("password"),
		Password2: cmd.String("password2"),
	}
	if form.Password2 == "" {
		form.Password2 = form.Password
	}

	session, err := r.ctrl.Auth.Signup(ctx, form)
	if err != nil {
		return err
	}

	r.printSession(tasks.NewSessionView(session))
	return nil
}

// AuthLogout ends the session. A failed logout rebuilds the session state from the server.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAPI(); err != nil {
		return err
	}

	session, err := r.ctrl.Auth.Logout(ctx)
	if err != nil {
		r.printSession(tasks.NewSessionView(r.ctrl.Session.Get()))
		return err
	}

	r.printSession(tasks.NewSessionView(session))
	return nil
}

func (r *Runner) printSession(view tasks.SessionView) {
	if view.Authenticated {
		r.writePlain("✓ Logged in as %s (%s)\n", view.Username, view.DisplayName)
	} else {
		r.writePlain("✗ Not logged in\n")
	}
	r.writePlain("Actions: %s\n", strings.Join(view.Actions, " · "))
}
