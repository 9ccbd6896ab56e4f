package models

import (
	"fmt"
	"unicode/utf8"
)

// Kind is the type of a saved or voted thing.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Category is one of the user listings the cleaner works through.
type Category string

const (
	CategorySaved     Category = "saved"
	CategoryUpvoted   Category = "upvoted"
	CategoryDownvoted Category = "downvoted"
)

// AllCategories lists every category in the order they are cleaned.
var AllCategories = []Category{CategorySaved, CategoryUpvoted, CategoryDownvoted}

// ParseCategory converts a user-supplied name into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategorySaved, CategoryUpvoted, CategoryDownvoted:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q (want saved, upvoted or downvoted)", s)
}

// ContentItem is one saved or voted post or comment as returned by a listing.
// Items are owned by a single pass and never persisted.
type ContentItem struct {
	ID         string // fullname, e.g. t3_abc123
	Kind       Kind
	Adult      bool // over_18
	Modifiable bool // false for archived or locked things
	Title      string
	Subreddit  string
	Permalink  string
}

// Label returns a short human-readable description for logs.
func (i ContentItem) Label() string {
	if i.Title == "" {
		return i.ID
	}
	title := i.Title
	if utf8.RuneCountInString(title) > 60 {
		title = string([]rune(title)[:57]) + "..."
	}
	return fmt.Sprintf("%s (%s)", i.ID, title)
}
