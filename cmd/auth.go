package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

type authStatus struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
	Remembered    bool   `json:"remembered"`
}

func emailArg(cmd *cli.Command) (string, error) {
	email := strings.TrimSpace(cmd.StringArg("email"))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", shared.ErrMissingArgument)
	}
	return email, nil
}

// AuthRegister creates an account whose password is a TMDB API key.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	email, err := emailArg(cmd)
	if err != nil {
		return err
	}
	password := cmd.String("password")
	if password != cmd.String("confirm") {
		return shared.ErrPasswordMismatch
	}

	r.logger.Info("registering user", "email", email)
	if _, err := r.auth.Register(ctx, email, password); err != nil {
		return err
	}

	r.writePlain("✓ Sign up complete. Sign in with your new account.\n")
	return nil
}

// AuthLogin signs in and stores the API key.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, err := emailArg(cmd)
	if err != nil {
		return err
	}
	remember := cmd.Bool("remember")

	user, err := r.auth.Login(email, cmd.String("password"), remember)
	if err != nil {
		return err
	}

	r.writePlain("✓ Signed in as %s\n", user.ID)
	if remember {
		r.writePlain("You will stay signed in until you log out.\n")
	}
	return nil
}

// AuthLogout clears the stored API key and signed in user.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.auth.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports who is signed in.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := authStatus{
		Authenticated: r.auth.IsAuthenticated(),
		User:          r.auth.CurrentUser(),
		Remembered:    r.auth.IsRemembered(),
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !status.Authenticated {
		return r.writePlain("Authentication: ✗ Not signed in\n")
	}
	r.writePlain("Authentication: ✓ API key stored\n")
	if status.User != "" {
		r.writePlain("User: %s\n", status.User)
	}
	if status.Remembered {
		r.writePlain("Remember me: on\n")
	}
	return nil
}
