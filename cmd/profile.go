package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/melody/internal/formatter"
	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/router"
	"github.com/desertthunder/melody/internal/session"
	"github.com/desertthunder/melody/internal/shared"
	"github.com/desertthunder/melody/internal/validators"
	"github.com/urfave/cli/v3"
)

// ProfileShow prints the profile card, or the raw profile with --json.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
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
	return r.writePlain("%s", formatter.ProfileCard(user))
}

// ProfileUpdate sends the current profile with the flags that were set applied on top.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRoute(ctx, router.PathProfile); err != nil {
		return err
	}

	current, err := r.session.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	update := models.ProfileUpdate{
		Nickname: current.Nickname,
		Email:    current.Email,
		Phone:    current.Phone,
		Gender:   current.Gender,
		Bio:      current.Bio,
	}
	changed := false
	for flag, dst := range map[string]*string{
		"nickname": &update.Nickname,
		"email":    &update.Email,
		"phone":    &update.Phone,
		"bio":      &update.Bio,
	} {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
			changed = true
		}
	}
	if cmd.IsSet("gender") {
		update.Gender = session.ParseGender(cmd.String("gender"))
		changed = true
	}
	if !changed {
		return fmt.Errorf("%w: nothing to update, pass at least one field flag", shared.ErrMissingArgument)
	}

	if cmd.IsSet("email") {
		if msg := validators.ValidateEmail(update.Email); msg != "" {
			return fmt.Errorf("%w: email: %s", shared.ErrInvalidInput, msg)
		}
	}

	user, err := r.session.UpdateProfile(ctx, update)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	r.writePlain("✓ Profile updated\n")
	return r.writePlain("%s", formatter.ProfileCard(user))
}

// ProfileAvatar uploads the image at path as the new avatar.
func (r *Runner) ProfileAvatar(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if err := r.requireRoute(ctx, router.PathProfile); err != nil {
		return err
	}

	f, err := os.Open(shared.ExpandHome(path))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	defer f.Close()

	if err := r.session.UploadAvatar(ctx, filepath.Base(path), f); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	avatar := ""
	if u := r.session.User(); u != nil {
		avatar = u.AvatarURL
	}
	return r.writePlain("✓ Avatar updated %s\n", avatar)
}

// Password changes the password. The server's verdict is printed whether or not it succeeded.
func (r *Runner) Password(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRoute(ctx, router.PathSettings); err != nil {
		return err
	}

	// the change request carries the cached profile
	r.session.Restore(ctx)

	oldPassword, err := r.valueOrPrompt(cmd, "old", "Current password")
	if err != nil {
		return err
	}
	newPassword, err := r.valueOrPrompt(cmd, "new", "New password")
	if err != nil {
		return err
	}
	if msg := validators.ValidatePassword(newPassword); msg != "" {
		return fmt.Errorf("%w: new password: %s", shared.ErrInvalidInput, msg)
	}

	result := r.session.UpdatePassword(ctx, models.PasswordChange{OldPassword: oldPassword, NewPassword: newPassword})
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Message)
	}
	return r.writePlain("✓ %s\n", result.Message)
}

// AccountDelete removes the account after confirmation and signs out.
func (r *Runner) AccountDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRoute(ctx, router.PathSettings); err != nil {
		return err
	}

	ok, err := r.confirm(cmd, "Permanently delete this account?")
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlain("Cancelled.\n")
	}

	owner := r.session.Token()
	if err := r.session.DeleteAccount(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	if err := r.library.ForgetOwner(ctx, owner); err != nil {
		r.logger.Warn("failed to clear playlist cache", "error", err)
	}
	return r.writePlain("✓ Account deleted\n")
}
