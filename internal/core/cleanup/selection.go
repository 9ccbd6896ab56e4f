package cleanup

import (
	"fmt"
	"strings"

	"github.com/example/nsfwsweep/internal/models"
)

// MenuOptions are the numbered choices shown by the interactive prompt.
var MenuOptions = []string{
	"1. Remove saved NSFW posts/comments",
	"2. Remove upvotes from NSFW posts/comments",
	"3. Remove downvotes from NSFW posts/comments",
	"4. Do all three",
}

// ParseSelection converts a menu choice or category name into categories.
// Accepts "1".."4", a category name, or "all".
func ParseSelection(choice string) ([]models.Category, error) {
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "1", "saved":
		return []models.Category{models.CategorySaved}, nil
	case "2", "upvoted":
		return []models.Category{models.CategoryUpvoted}, nil
	case "3", "downvoted":
		return []models.Category{models.CategoryDownvoted}, nil
	case "4", "all":
		return append([]models.Category(nil), models.AllCategories...), nil
	}
	return nil, fmt.Errorf("invalid selection %q: choose 1-4, saved, upvoted, downvoted or all", choice)
}
