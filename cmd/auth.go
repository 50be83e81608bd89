package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/router"
	"github.com/desertthunder/melody/internal/session"
	"github.com/desertthunder/melody/internal/shared"
	"github.com/desertthunder/melody/internal/validators"
	"github.com/urfave/cli/v3"
)

// Login signs in with --username/--password, prompting for whichever is missing.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	if _, _, decision, err := r.router.Check(router.PathLogin); err == nil && !decision.Allow {
		return r.writePlain("Already signed in. Run 'melody logout' to switch accounts.\n")
	}

	username, err := r.valueOrPrompt(cmd, "username", "Username")
	if err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}
	password, err := r.valueOrPrompt(cmd, "password", "Password")
	if err != nil {
		return err
	}

	if err := r.session.Login(ctx, username, password); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	name := strings.TrimSpace(username)
	if u := r.session.User(); u != nil {
		name = u.DisplayName()
	}
	r.logger.Info("signed in", "user", name)
	return r.writePlain("✓ Signed in as %s\n", name)
}

// Logout clears the stored token and the offline playlist cache.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	if !r.session.IsAuthenticated() {
		return r.writePlain("Not signed in.\n")
	}

	if err := r.library.Forget(ctx); err != nil {
		r.logger.Warn("failed to clear playlist cache", "error", err)
	}
	r.session.Logout(ctx)
	return r.writePlain("✓ Signed out\n")
}

// Register creates an account. Email and password are checked locally before anything is sent.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	username, err := r.valueOrPrompt(cmd, "username", "Username")
	if err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}
	password, err := r.valueOrPrompt(cmd, "password", "Password")
	if err != nil {
		return err
	}
	email, err := r.valueOrPrompt(cmd, "email", "Email")
	if err != nil {
		return err
	}

	if failed := validators.Collect(
		validators.Field{Name: "password", Message: validators.ValidatePassword(password)},
		validators.Field{Name: "email", Message: validators.ValidateEmail(email)},
	); len(failed) > 0 {
		return invalidFields(failed)
	}

	reg := models.Registration{
		Username: strings.TrimSpace(username),
		Password: password,
		Nickname: cmd.String("nickname"),
		Email:    email,
		Phone:    cmd.String("phone"),
		Gender:   session.ParseGender(cmd.String("gender")),
		Bio:      cmd.String("bio"),
	}
	if err := r.session.Register(ctx, reg); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return r.writePlain("✓ Account %s created. Run 'melody login' to sign in.\n", reg.Username)
}

// WhoAmI prints the signed-in account as fetched from the server.
func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRoute(ctx, router.PathProfile); err != nil {
		return err
	}

	user, err := r.session.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	return r.writePlain("%s (id %d)\n", user.DisplayName(), user.ID)
}

// invalidFields joins validation failures into one [shared.ErrInvalidInput] error.
func invalidFields(failed []validators.Field) error {
	parts := make([]string, len(failed))
	for i, f := range failed {
		parts[i] = f.Name + ": " + f.Message
	}
	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(parts, "; "))
}
