package tasks

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melody/internal/shared"
)

// Deleter removes a single playlist by id. Implemented by library.Library.
type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteResult is the outcome for one playlist.
type DeleteResult struct {
	ID  int64
	Err error // nil when the playlist was deleted
}

// BulkDeleteResult summarizes a [Engine.BulkDelete] run. Results follow the order of the requested ids.
type BulkDeleteResult struct {
	Total   int
	Deleted int
	Failed  int
	Results []DeleteResult
}

// Engine runs bulk playlist operations.
type Engine struct {
	playlists Deleter
	logger    *log.Logger
}

// NewEngine creates an [Engine] over playlists.
func NewEngine(playlists Deleter, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Engine{playlists: playlists, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
