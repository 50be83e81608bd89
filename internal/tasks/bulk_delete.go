package tasks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/melody/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 3
	maxWorkers     = 10
	defaultRate    = 5.0
)

// BulkDeleteOpts contains configuration for bulk playlist deletes.
type BulkDeleteOpts struct {
	NumWorkers int     // Concurrent workers (default: 3, at most 10)
	RateLimit  float64 // Deletes started per second (default: 5)
}

type deleteJob struct {
	index int
	id    int64
}

type deleteOutcome struct {
	index int
	DeleteResult
}

// BulkDelete deletes every id concurrently, collecting each outcome.
//
// Duplicate ids are deleted once. Individual failures are reported in the result; the returned
// error is reserved for a missing deleter or a cancelled context.
func (e *Engine) BulkDelete(ctx context.Context, prog chan<- ProgressUpdate, ids []int64, opts BulkDeleteOpts) (*BulkDeleteResult, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist library not initialized", shared.ErrServiceUnavailable)
	}

	ids = dedupe(ids)
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, maxWorkers, max(len(ids), 1))
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRate
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan deleteJob, len(ids))
	outcomes := make(chan deleteOutcome, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.deleteWorker(ctx, &wg, jobs, outcomes)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			e.sendProgress(prog, deletingUpdate(i+1, len(ids), id))
			jobs <- deleteJob{index: i, id: id}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	collected := make([]deleteOutcome, 0, len(ids))
	for out := range outcomes {
		collected = append(collected, out)
		if out.Err != nil {
			e.logger.Warn("failed to delete playlist", "id", out.ID, "error", out.Err)
			e.sendProgress(prog, deleteFailedUpdate(len(collected), len(ids), out.ID, out.Err))
		} else {
			e.sendProgress(prog, deletedUpdate(len(collected), len(ids), out.ID))
		}
	}

	slices.SortFunc(collected, func(a, b deleteOutcome) int { return a.index - b.index })
	result := &BulkDeleteResult{Total: len(ids), Results: make([]DeleteResult, len(collected))}
	for i, out := range collected {
		result.Results[i] = out.DeleteResult
		if out.Err != nil {
			result.Failed++
		} else {
			result.Deleted++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// deleteWorker deletes playlists from the jobs channel until it is closed.
func (e *Engine) deleteWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan deleteJob, outcomes chan<- deleteOutcome) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := e.playlists.Delete(ctx, job.id)
		outcomes <- deleteOutcome{index: job.index, DeleteResult: DeleteResult{ID: job.id, Err: err}}
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
