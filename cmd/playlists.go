package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/melody/internal/formatter"
	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/router"
	"github.com/desertthunder/melody/internal/shared"
	"github.com/desertthunder/melody/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList fetches the collection and renders it to stdout or --output.
//
// With --offline the copy cached by the last fetch is used and the API is not called. When only
// --output is given, the format follows its extension.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	output := cmd.String("output")
	formatName := cmd.String("format")
	if !cmd.IsSet("format") && output != "" {
		if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
			formatName = ext
		}
	}
	format, err := formatter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if err := r.requireRoute(ctx, router.PathHome); err != nil {
		return err
	}

	var playlists []models.Playlist
	if cmd.Bool("offline") {
		playlists, err = r.library.Cached(ctx)
	} else {
		playlists, err = r.library.Fetch(ctx)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	r.logger.Debug("loaded playlists", "count", len(playlists), "offline", cmd.Bool("offline"))

	if output != "" {
		path, err := formatter.WriteExport(format, playlists, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %d playlists to %s\n", len(playlists), path)
	}

	data, err := formatter.Render(format, playlists)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// PlaylistsDelete removes one or more playlists by id after confirmation.
//
// Several ids are deleted concurrently; every outcome is printed and the command fails if any
// delete failed.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	ids := make([]int64, len(args))
	for i, raw := range args {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: playlist id %q", shared.ErrInvalidArgument, raw)
		}
		ids[i] = id
	}

	if err := r.requireRoute(ctx, router.PathHome); err != nil {
		return err
	}

	question := fmt.Sprintf("Delete playlist #%d?", ids[0])
	if len(ids) > 1 {
		question = fmt.Sprintf("Delete %d playlists?", len(ids))
	}
	ok, err := r.confirm(cmd, question)
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlain("Cancelled.\n")
	}

	prog := make(chan tasks.ProgressUpdate, 2*len(ids)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	engine := tasks.NewEngine(r.library, r.logger)
	result, err := engine.BulkDelete(ctx, prog, ids, tasks.BulkDeleteOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.API.RateLimit,
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	if result.Total == 1 && result.Failed == 1 {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, result.Results[0].Err)
	}
	for _, res := range result.Results {
		if res.Err != nil {
			r.writePlain("✗ Playlist #%d: %v\n", res.ID, res.Err)
			continue
		}
		r.writePlain("✓ Deleted playlist #%d\n", res.ID)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d playlists could not be deleted", shared.ErrAPIRequest, result.Failed, result.Total)
	}
	return nil
}
