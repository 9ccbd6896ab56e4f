// Package cleanup contains the pure business logic for NSFW cleanup passes.
// This is part of the Functional Core - no I/O, only pure functions.
package cleanup

import (
	"fmt"

	"github.com/example/nsfwsweep/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// CanMutate evaluates whether a mutation may be attempted on an item.
// Rule: only adult-flagged, modifiable items are ever mutated.
func CanMutate(item models.ContentItem) GuardResult {
	if !item.Adult {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s is not marked NSFW", item.ID),
		}
	}
	if !item.Modifiable {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s is archived or locked and cannot be modified", item.ID),
		}
	}
	return GuardResult{Allowed: true}
}
