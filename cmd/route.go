package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/melody/internal/shared"
	"github.com/desertthunder/melody/internal/validators"
	"github.com/urfave/cli/v3"
)

// Route prints the guard decision for a path and where navigation finally lands.
func (r *Runner) Route(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	loc, route, decision, err := r.router.Check(path)
	if err != nil {
		return err
	}
	final, err := r.router.Navigate(path)
	if err != nil {
		return err
	}

	r.writePlainHeader(loc.FullPath())
	r.writePlain("%-14s %v\n", "signed in", r.session.IsAuthenticated())
	r.writePlain("%-14s %v\n", "requires auth", route.RequiresAuth)
	switch {
	case route.Redirect != "":
		r.writePlain("%-14s redirect to %s\n", "route", route.Redirect)
	case decision.Allow:
		r.writePlain("%-14s allow\n", "guard")
	default:
		r.writePlain("%-14s redirect to %s\n", "guard", decision.Redirect.FullPath())
	}
	return r.writePlain("%-14s %s\n", "lands on", final.FullPath())
}

// ValidateEmail checks an email address with the sign-up rules.
func (r *Runner) ValidateEmail(ctx context.Context, cmd *cli.Command) error {
	return r.validate("email", validators.ValidateEmail(cmd.StringArg("value")))
}

// ValidatePassword checks a password with the sign-up rules.
func (r *Runner) ValidatePassword(ctx context.Context, cmd *cli.Command) error {
	return r.validate("password", validators.ValidatePassword(cmd.StringArg("value")))
}

func (r *Runner) validate(field, msg string) error {
	if msg != "" {
		return fmt.Errorf("%w: %s: %s", shared.ErrInvalidInput, field, msg)
	}
	return r.writePlain("✓ %s ok\n", field)
}
