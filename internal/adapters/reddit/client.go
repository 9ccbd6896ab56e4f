// Package reddit implements the content service and session bootstrap
// against Reddit's OAuth API.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/example/nsfwsweep/internal/models"
	"github.com/example/nsfwsweep/internal/ports/secondary"
)

const (
	// DefaultBaseURL is the OAuth API host.
	DefaultBaseURL = "https://oauth.reddit.com"
	// DefaultPageSize is the largest page Reddit serves for user listings.
	DefaultPageSize = 100

	maxBodySize = 4 << 20
)

// Client is an authenticated Reddit session.
type Client struct {
	http     *http.Client
	baseURL  string
	username string
	pageSize int
	logger   *log.Logger
}

// NewClient wraps an already-authorized HTTP client. logger may be nil.
func NewClient(httpClient *http.Client, baseURL, username string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		pageSize: DefaultPageSize,
		logger:   logger,
	}
}

// Username returns the account this session acts for.
func (c *Client) Username() string { return c.username }

// ListSaved returns all saved posts and comments.
func (c *Client) ListSaved(ctx context.Context) ([]models.ContentItem, error) {
	return c.listing(ctx, "saved")
}

// ListUpvoted returns all upvoted posts.
func (c *Client) ListUpvoted(ctx context.Context) ([]models.ContentItem, error) {
	return c.listing(ctx, "upvoted")
}

// ListDownvoted returns all downvoted posts.
func (c *Client) ListDownvoted(ctx context.Context) ([]models.ContentItem, error) {
	return c.listing(ctx, "downvoted")
}

// Unsave removes item from the saved listing.
func (c *Client) Unsave(ctx context.Context, item models.ContentItem) error {
	form := url.Values{"id": {item.ID}}
	return c.post(ctx, "/api/unsave", form)
}

// ClearVote withdraws the user's vote on item.
func (c *Client) ClearVote(ctx context.Context, item models.ContentItem) error {
	form := url.Values{"id": {item.ID}, "dir": {"0"}}
	return c.post(ctx, "/api/vote", form)
}

func (c *Client) listing(ctx context.Context, where string) ([]models.ContentItem, error) {
	path := fmt.Sprintf("/user/%s/%s", url.PathEscape(c.username), where)
	seen := make(map[string]bool)
	var items []models.ContentItem
	after := ""

	for page := 1; ; page++ {
		q := url.Values{
			"limit":    {strconv.Itoa(c.pageSize)},
			"raw_json": {"1"},
		}
		if after != "" {
			q.Set("after", after)
		}

		var resp listingResponse
		if err := c.get(ctx, path, q, &resp); err != nil {
			return nil, err
		}
		for _, child := range resp.Data.Children {
			items = append(items, child.toItem())
		}
		c.logger.Debug("fetched listing page", "where", where, "page", page, "items", len(resp.Data.Children))

		next := resp.Data.After
		if next == "" || seen[next] {
			return items, nil
		}
		seen[next] = true
		after = next
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	body, err := c.do(req, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values) error {
	form.Set("api_type", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, path)
	if err != nil {
		return err
	}
	if msg := envelopeErrors(body); msg != "" {
		return &APIError{
			Method:     req.Method,
			Path:       path,
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Message:    msg,
		}
	}
	return nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", req.Method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    describeErrorBody(body),
		}
	}
	return body, nil
}

type listingResponse struct {
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

type thingData struct {
	Name      string `json:"name"`
	Over18    bool   `json:"over_18"`
	Archived  bool   `json:"archived"`
	Locked    bool   `json:"locked"`
	Title     string `json:"title"`
	LinkTitle string `json:"link_title"`
	Body      string `json:"body"`
	Subreddit string `json:"subreddit"`
	Permalink string `json:"permalink"`
}

func (t thing) toItem() models.ContentItem {
	kind := models.KindPost
	if t.Kind == "t1" {
		kind = models.KindComment
	}
	title := t.Data.Title
	if title == "" {
		title = t.Data.LinkTitle
	}
	if title == "" {
		title = strings.Join(strings.Fields(t.Data.Body), " ")
	}
	return models.ContentItem{
		ID:         t.Data.Name,
		Kind:       kind,
		Adult:      t.Data.Over18,
		Modifiable: !t.Data.Archived && !t.Data.Locked,
		Title:      title,
		Subreddit:  t.Data.Subreddit,
		Permalink:  t.Data.Permalink,
	}
}

// Ensure Client implements the interface
var _ secondary.ContentService = (*Client)(nil)
