package cleanup

import (
	"fmt"

	"github.com/example/nsfwsweep/internal/models"
)

// Mutation is the remote call that removes an item from a category.
type Mutation string

const (
	MutationUnsave    Mutation = "unsave"
	MutationClearVote Mutation = "clear_vote"
)

// MutationFor returns the mutation that cleans a category.
func MutationFor(category models.Category) (Mutation, error) {
	switch category {
	case models.CategorySaved:
		return MutationUnsave, nil
	case models.CategoryUpvoted, models.CategoryDownvoted:
		return MutationClearVote, nil
	}
	return "", fmt.Errorf("no mutation for category %q", category)
}

// Disposition is where an item ended up after one pass.
type Disposition string

const (
	DispositionSucceeded             Disposition = "succeeded"
	DispositionSkippedArchived       Disposition = "skipped_archived"
	DispositionSkippedPermanentError Disposition = "skipped_permanent_error"
	DispositionDeferredTransient     Disposition = "deferred_transient"
)

// DispositionFor maps a mutation outcome onto the per-item state machine.
func DispositionFor(outcome Outcome) Disposition {
	switch outcome {
	case OutcomeSuccess:
		return DispositionSucceeded
	case OutcomeFailedPermanent:
		return DispositionSkippedPermanentError
	default:
		return DispositionDeferredTransient
	}
}

// FilterAdult returns the adult-flagged items, preserving listing order.
func FilterAdult(items []models.ContentItem) []models.ContentItem {
	var flagged []models.ContentItem
	for _, item := range items {
		if item.Adult {
			flagged = append(flagged, item)
		}
	}
	return flagged
}

// SkipSet holds the IDs deferred during the current pass.
type SkipSet map[string]struct{}

// Add records an item as deferred.
func (s SkipSet) Add(id string) { s[id] = struct{}{} }

// Has reports whether id was deferred.
func (s SkipSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of deferred items.
func (s SkipSet) Len() int { return len(s) }

// PassPlan is the work for one pass over a fresh listing.
type PassPlan struct {
	// Items holds the adult items not yet dropped this run, in listing order.
	// Archived items stay in place; the loop skips them without a mutation.
	Items []models.ContentItem
	// Ignored counts adult items already dropped earlier in the run.
	Ignored int
}

// Empty reports whether the pass has nothing to act on.
func (p PassPlan) Empty() bool {
	return len(p.Items) == 0
}

// Attemptable counts the items a mutation will be tried on.
func (p PassPlan) Attemptable() int {
	n := 0
	for _, item := range p.Items {
		if CanMutate(item).Allowed {
			n++
		}
	}
	return n
}

// PlanPass selects the adult items a pass should visit.
// dropped holds IDs that were archived or failed permanently earlier in the run;
// they are never presented again.
func PlanPass(listing []models.ContentItem, dropped map[string]bool) PassPlan {
	var plan PassPlan
	for _, item := range FilterAdult(listing) {
		if dropped[item.ID] {
			plan.Ignored++
			continue
		}
		plan.Items = append(plan.Items, item)
	}
	return plan
}

// ReachedPassLimit reports whether another pass is forbidden.
// maxPasses <= 0 means unbounded: the loop ends only when the listing converges.
func ReachedPassLimit(passes, maxPasses int) bool {
	return maxPasses > 0 && passes >= maxPasses
}
