package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	DeletePlaylist Phase = iota
	DeletedPlaylist
	DeleteFailed
)

func (p Phase) String() string {
	switch p {
	case DeletePlaylist:
		return "delete_playlist"
	case DeletedPlaylist:
		return "deleted_playlist"
	case DeleteFailed:
		return "delete_failed"
	default:
		return ""
	}
}

func deletingUpdate(step, total int, id int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeletePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Deleting playlist #%d", id),
		Data:    id,
	}
}

func deletedUpdate(step, total int, id int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeletedPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Deleted playlist #%d", id),
		Data:    id,
	}
}

func deleteFailedUpdate(step, total int, id int64, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeleteFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to delete playlist #%d: %v", id, err),
		Data:    err,
	}
}
