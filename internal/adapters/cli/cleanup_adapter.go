// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting, but delegate
// business logic to services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/example/nsfwsweep/internal/core/cleanup"
	"github.com/example/nsfwsweep/internal/models"
	"github.com/example/nsfwsweep/internal/ports/primary"
)

var (
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed)
	infoColor  = color.New(color.FgCyan)
	titleColor = color.New(color.FgMagenta)
)

// RunSummary totals the category reports of one run.
type RunSummary struct {
	RunID   string
	Reports []*primary.CategoryReport
	Deleted int
}

// CleanupAdapter drives CleanupService across categories and renders progress.
// It implements primary.Observer for the loops it starts.
type CleanupAdapter struct {
	service primary.CleanupService
	out     io.Writer

	mu   sync.Mutex
	spin *spinner.Spinner // nil when output is not a terminal
}

// NewCleanupAdapter creates a new CleanupAdapter. A spinner is shown only
// when interactive is true.
func NewCleanupAdapter(service primary.CleanupService, out io.Writer, interactive bool) *CleanupAdapter {
	a := &CleanupAdapter{service: service, out: out}
	if interactive {
		a.spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out))
	}
	return a
}

// RunAll cleans each category in order. A category whose listing cannot be
// fetched is reported and the run moves on; cancellation stops everything.
func (a *CleanupAdapter) RunAll(ctx context.Context, runID string, categories []models.Category, logPath string) (*RunSummary, error) {
	summary := &RunSummary{RunID: runID}
	var errs []error

	for _, category := range categories {
		a.startSpinner(fmt.Sprintf(" fetching %s items...", category))
		report, err := a.service.Cleanup(ctx, primary.CleanupRequest{
			RunID:    runID,
			Category: category,
			Observer: a,
		})
		a.stopSpinner()

		if report != nil {
			summary.Reports = append(summary.Reports, report)
			summary.Deleted += report.Deleted
			a.printReport(report)
		}
		if err != nil {
			if ctx.Err() != nil {
				warnColor.Fprintf(a.out, "⚠ Interrupted during %s cleanup\n", category)
				return summary, err
			}
			errColor.Fprintf(a.out, "✗ %s cleanup stopped: %v\n", category, err)
			errs = append(errs, err)
		}
	}

	titleColor.Fprintf(a.out, "\nAll done! Removed %d NSFW items in total. Check %s for errors if any.\n", summary.Deleted, logPath)
	return summary, errors.Join(errs...)
}

// PassStarted announces a pass. Passes after the first retry deferred items.
func (a *CleanupAdapter) PassStarted(category models.Category, pass, actionable int) {
	if pass > 1 {
		a.printf(warnColor, "Retrying %d remaining %s items (pass %d)...\n", actionable, category, pass)
	}
	a.setSuffix(fmt.Sprintf(" %s: 0/%d", category, actionable))
}

// ItemFinished renders one item's result.
func (a *CleanupAdapter) ItemFinished(event primary.ItemEvent) {
	a.setSuffix(fmt.Sprintf(" %s: %d/%d", event.Category, event.Index, event.Total))

	switch event.Disposition {
	case cleanup.DispositionSkippedArchived:
		a.printf(infoColor, "- Skipped archived %s\n", event.Item.Label())
	case cleanup.DispositionSkippedPermanentError:
		a.printf(warnColor, "⚠ Cannot modify %s, skipping: %v\n", event.Item.Label(), event.Err)
	case cleanup.DispositionDeferredTransient:
		if event.Outcome == cleanup.OutcomeTimedOut {
			a.printf(warnColor, "⚠ Operation timed out on %s, will retry\n", event.Item.Label())
		} else {
			a.printf(errColor, "✗ Error on %s: %v\n", event.Item.Label(), event.Err)
		}
	}
}

func (a *CleanupAdapter) printReport(r *primary.CategoryReport) {
	okColor.Fprintf(a.out, "\n✓ %s\n", headline(r.Category, r.Deleted))
	if r.SkippedArchived > 0 || r.SkippedPermanent > 0 {
		fmt.Fprintf(a.out, "  skipped: %d archived, %d unmodifiable\n", r.SkippedArchived, r.SkippedPermanent)
	}
	if r.TimedOut > 0 {
		fmt.Fprintf(a.out, "  timeouts: %d\n", r.TimedOut)
	}
	if !r.Converged && r.Deferred > 0 {
		warnColor.Fprintf(a.out, "  ⚠ %d items still pending after %d passes\n", r.Deferred, r.Passes)
	}
	fmt.Fprintln(a.out)
}

func headline(category models.Category, n int) string {
	switch category {
	case models.CategoryUpvoted:
		return fmt.Sprintf("Cleared upvotes from %d NSFW posts/comments.", n)
	case models.CategoryDownvoted:
		return fmt.Sprintf("Cleared downvotes from %d NSFW posts/comments.", n)
	}
	return fmt.Sprintf("Deleted %d NSFW saved posts/comments.", n)
}

// printf writes a line without tearing the spinner.
func (a *CleanupAdapter) printf(c *color.Color, format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.spin != nil && a.spin.Active() {
		a.spin.Stop()
		defer a.spin.Start()
	}
	c.Fprintf(a.out, format, args...)
}

func (a *CleanupAdapter) setSuffix(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.spin != nil {
		a.spin.Lock()
		a.spin.Suffix = s
		a.spin.Unlock()
	}
}

func (a *CleanupAdapter) startSpinner(suffix string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.spin != nil {
		a.spin.Suffix = suffix
		a.spin.Start()
	}
}

func (a *CleanupAdapter) stopSpinner() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.spin != nil {
		a.spin.Stop()
	}
}

// Ensure CleanupAdapter implements the interface
var _ primary.Observer = (*CleanupAdapter)(nil)
