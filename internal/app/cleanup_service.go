package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/example/nsfwsweep/internal/core/cleanup"
	"github.com/example/nsfwsweep/internal/models"
	"github.com/example/nsfwsweep/internal/ports/primary"
	"github.com/example/nsfwsweep/internal/ports/secondary"
)

// DefaultListingRetries is how many consecutive listing failures a category tolerates.
const DefaultListingRetries = 3

// CleanupOptions tunes the pass loop.
type CleanupOptions struct {
	// MaxPasses bounds the number of passes per category. Zero means unbounded.
	MaxPasses int
	// ListingRetries is the number of consecutive failed fetches tolerated
	// before the category is abandoned. Zero selects DefaultListingRetries.
	ListingRetries int
	// Classifier decides permanence of failures. Nil selects cleanup.DefaultClassifier.
	Classifier cleanup.Classifier
}

// CleanupServiceImpl implements the CleanupService interface.
type CleanupServiceImpl struct {
	content        secondary.ContentService
	runner         OperationRunner
	events         secondary.EventLog
	logger         *log.Logger
	classifier     cleanup.Classifier
	maxPasses      int
	listingRetries int
	now            func() time.Time
}

// NewCleanupService creates a new CleanupService with injected dependencies.
// events may be nil when nothing should be recorded.
func NewCleanupService(
	content secondary.ContentService,
	runner OperationRunner,
	events secondary.EventLog,
	logger *log.Logger,
	opts CleanupOptions,
) *CleanupServiceImpl {
	if opts.Classifier == nil {
		opts.Classifier = cleanup.DefaultClassifier()
	}
	if opts.ListingRetries <= 0 {
		opts.ListingRetries = DefaultListingRetries
	}
	return &CleanupServiceImpl{
		content:        content,
		runner:         runner,
		events:         events,
		logger:         logger,
		classifier:     opts.Classifier,
		maxPasses:      opts.MaxPasses,
		listingRetries: opts.ListingRetries,
		now:            time.Now,
	}
}

// Cleanup runs passes over one category until a fresh listing holds no
// actionable adult items.
func (s *CleanupServiceImpl) Cleanup(ctx context.Context, req primary.CleanupRequest) (*primary.CategoryReport, error) {
	report := &primary.CategoryReport{RunID: req.RunID, Category: req.Category}

	mutation, err := cleanup.MutationFor(req.Category)
	if err != nil {
		return report, err
	}

	observer := req.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	logger := s.logger.With("category", req.Category)

	// Archived and permanently failed items, never presented again this run.
	dropped := make(map[string]bool)
	listingFailures := 0

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		listing, err := s.list(ctx, req.Category)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			listingFailures++
			logger.Warn("listing failed", "attempt", listingFailures, "err", err)
			s.record(ctx, report, "", secondary.EventError, fmt.Sprintf("failed to list %s items: %v", req.Category, err))
			if listingFailures > s.listingRetries {
				return report, fmt.Errorf("failed to list %s items: %w", req.Category, err)
			}
			continue
		}
		listingFailures = 0

		plan := cleanup.PlanPass(listing, dropped)
		if plan.Empty() {
			report.Deferred = 0
			report.Converged = true
			break
		}
		if cleanup.ReachedPassLimit(report.Passes, s.maxPasses) {
			report.Deferred = plan.Attemptable()
			logger.Warn("pass limit reached, giving up on remaining items",
				"passes", report.Passes, "remaining", report.Deferred)
			break
		}

		report.Passes++
		observer.PassStarted(req.Category, report.Passes, len(plan.Items))
		logger.Debug("starting pass", "pass", report.Passes, "items", len(plan.Items), "ignored", plan.Ignored)

		skip := cleanup.SkipSet{}
		for i, item := range plan.Items {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			event := primary.ItemEvent{
				Category: req.Category,
				Pass:     report.Passes,
				Index:    i + 1,
				Total:    len(plan.Items),
				Item:     item,
			}

			if guard := cleanup.CanMutate(item); !guard.Allowed {
				dropped[item.ID] = true
				report.SkippedArchived++
				event.Disposition = cleanup.DispositionSkippedArchived
				logger.Info("skipping archived item", "item", item.Label())
				s.record(ctx, report, item.ID, secondary.EventSkip, guard.Reason)
				observer.ItemFinished(event)
				continue
			}

			err := s.runner.Run(ctx, func(actx context.Context) error {
				return s.mutate(actx, mutation, item)
			})

			// An observed success still counts when the run is interrupted.
			outcome := cleanup.Resolve(err, s.classifier)
			if ctx.Err() != nil && outcome != cleanup.OutcomeSuccess {
				return report, ctx.Err()
			}
			event.Outcome = outcome
			event.Disposition = cleanup.DispositionFor(outcome)
			event.Err = err

			switch outcome {
			case cleanup.OutcomeSuccess:
				report.Deleted++
				logger.Debug("removed item", "item", item.Label())
			case cleanup.OutcomeTimedOut:
				report.TimedOut++
				skip.Add(item.ID)
				logger.Warn("operation timed out, skipping", "item", item.Label())
				s.record(ctx, report, item.ID, secondary.EventTimeout, err.Error())
			case cleanup.OutcomeFailedPermanent:
				dropped[item.ID] = true
				report.SkippedPermanent++
				logger.Info("skipping item that cannot be changed", "item", item.Label(), "err", err)
				s.record(ctx, report, item.ID, secondary.EventSkip, err.Error())
			default:
				skip.Add(item.ID)
				logger.Error("mutation failed, will retry", "item", item.Label(), "err", err)
				s.record(ctx, report, item.ID, secondary.EventError, err.Error())
			}

			observer.ItemFinished(event)
		}

		report.Deferred = skip.Len()
		if skip.Len() > 0 {
			logger.Info("retrying skipped items on next pass", "count", skip.Len())
		}
	}

	s.record(ctx, report, "", secondary.EventSummary, fmt.Sprintf(
		"deleted=%d archived=%d permanent=%d deferred=%d passes=%d converged=%t",
		report.Deleted, report.SkippedArchived, report.SkippedPermanent,
		report.Deferred, report.Passes, report.Converged,
	))
	return report, nil
}

func (s *CleanupServiceImpl) list(ctx context.Context, category models.Category) ([]models.ContentItem, error) {
	switch category {
	case models.CategorySaved:
		return s.content.ListSaved(ctx)
	case models.CategoryUpvoted:
		return s.content.ListUpvoted(ctx)
	case models.CategoryDownvoted:
		return s.content.ListDownvoted(ctx)
	}
	return nil, fmt.Errorf("unknown category %q", category)
}

func (s *CleanupServiceImpl) mutate(ctx context.Context, mutation cleanup.Mutation, item models.ContentItem) error {
	switch mutation {
	case cleanup.MutationUnsave:
		return s.content.Unsave(ctx, item)
	case cleanup.MutationClearVote:
		return s.content.ClearVote(ctx, item)
	}
	return fmt.Errorf("unknown mutation %q", mutation)
}

// record appends an event. Failing to record never interrupts the loop.
func (s *CleanupServiceImpl) record(ctx context.Context, report *primary.CategoryReport, itemID, kind, message string) {
	if s.events == nil {
		return
	}
	err := s.events.Record(ctx, secondary.Event{
		RunID:    report.RunID,
		Time:     s.now(),
		Category: string(report.Category),
		ItemID:   itemID,
		Kind:     kind,
		Message:  message,
	})
	if err != nil {
		s.logger.Warn("failed to record event", "kind", kind, "item", itemID, "err", err)
	}
}

type nopObserver struct{}

func (nopObserver) PassStarted(models.Category, int, int) {}
func (nopObserver) ItemFinished(primary.ItemEvent)        {}

// Ensure CleanupServiceImpl implements the interface
var _ primary.CleanupService = (*CleanupServiceImpl)(nil)
