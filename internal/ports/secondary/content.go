package secondary

import (
	"context"

	"github.com/example/nsfwsweep/internal/models"
)

// ContentService defines the secondary port for the remote content platform.
// A ContentService is an authenticated session; it is used by one caller at a time.
type ContentService interface {
	// Username returns the account the session is authenticated as.
	Username() string

	// ListSaved returns every item the user has saved, across all pages.
	ListSaved(ctx context.Context) ([]models.ContentItem, error)

	// ListUpvoted returns every item the user has upvoted, across all pages.
	ListUpvoted(ctx context.Context) ([]models.ContentItem, error)

	// ListDownvoted returns every item the user has downvoted, across all pages.
	ListDownvoted(ctx context.Context) ([]models.ContentItem, error)

	// Unsave removes the item from the user's saved list.
	Unsave(ctx context.Context, item models.ContentItem) error

	// ClearVote resets the user's vote on the item.
	ClearVote(ctx context.Context, item models.ContentItem) error
}

// Credentials holds what is needed to open a ContentService session.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

// Authenticator opens authenticated sessions (session bootstrap).
type Authenticator interface {
	// Authenticate verifies the credentials and returns a ready session.
	Authenticate(ctx context.Context, creds Credentials) (ContentService, error)
}
