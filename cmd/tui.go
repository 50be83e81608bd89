package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/melody/internal/shared"
	"github.com/desertthunder/melody/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI at --start.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(shared.ExpandHome(r.config.Log.File))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.connect(ctx); err != nil {
		return err
	}
	if user := r.session.Restore(ctx); user != nil {
		fileLogger.Info("restored session", "user", user.DisplayName())
	}

	model := ui.NewModel(ctx, r.session, r.library, r.router, fileLogger, cmd.String("start"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
