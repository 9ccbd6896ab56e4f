package primary

import (
	"context"

	"github.com/example/nsfwsweep/internal/core/cleanup"
	"github.com/example/nsfwsweep/internal/models"
)

// CleanupService defines the primary port for NSFW cleanup operations.
type CleanupService interface {
	// Cleanup runs the pass loop for one category until its listing converges.
	// Item failures never abort the loop; an error is returned only when the
	// listing cannot be fetched or the context is cancelled. The report is
	// always non-nil and reflects the work done so far.
	Cleanup(ctx context.Context, req CleanupRequest) (*CategoryReport, error)
}

// CleanupRequest contains the parameters for cleaning one category.
type CleanupRequest struct {
	RunID    string
	Category models.Category
	Observer Observer // optional
}

// CategoryReport is the tally for one category, returned once its loop ends.
type CategoryReport struct {
	RunID            string
	Category         models.Category
	Deleted          int
	SkippedArchived  int
	SkippedPermanent int
	Deferred         int // items still deferred when the loop stopped
	TimedOut         int // total timeouts across passes
	Passes           int
	Converged        bool
}

// ItemEvent describes what happened to one item in a pass.
type ItemEvent struct {
	Category    models.Category
	Pass        int
	Index       int // 1-based position within the pass
	Total       int // items in the pass
	Item        models.ContentItem
	Outcome     cleanup.Outcome // empty for archived items, which are never attempted
	Disposition cleanup.Disposition
	Err         error
}

// Observer receives progress callbacks from a cleanup loop.
type Observer interface {
	PassStarted(category models.Category, pass, actionable int)
	ItemFinished(event ItemEvent)
}
