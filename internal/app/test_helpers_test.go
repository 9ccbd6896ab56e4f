package app

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/example/nsfwsweep/internal/models"
	"github.com/example/nsfwsweep/internal/ports/primary"
	"github.com/example/nsfwsweep/internal/ports/secondary"
)

// Ensure mockContentService implements the interface
var _ secondary.ContentService = (*mockContentService)(nil)

// mockContentService implements secondary.ContentService for testing.
// listFn receives the 1-based fetch number for the category.
type mockContentService struct {
	mu          sync.Mutex
	listFn      map[models.Category]func(fetch int) ([]models.ContentItem, error)
	unsaveFn    func(ctx context.Context, item models.ContentItem) error
	clearVoteFn func(ctx context.Context, item models.ContentItem) error

	fetches   map[models.Category]int
	mutations map[string]int
	unsaved   []string
	cleared   []string
}

func newMockContentService() *mockContentService {
	return &mockContentService{
		listFn:    make(map[models.Category]func(int) ([]models.ContentItem, error)),
		fetches:   make(map[models.Category]int),
		mutations: make(map[string]int),
	}
}

// withListing serves the same listing on every fetch.
func (m *mockContentService) withListing(category models.Category, items ...models.ContentItem) *mockContentService {
	m.listFn[category] = func(int) ([]models.ContentItem, error) { return items, nil }
	return m
}

func (m *mockContentService) Username() string { return "tester" }

func (m *mockContentService) list(category models.Category) ([]models.ContentItem, error) {
	m.mu.Lock()
	m.fetches[category]++
	fetch := m.fetches[category]
	fn := m.listFn[category]
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(fetch)
}

func (m *mockContentService) ListSaved(ctx context.Context) ([]models.ContentItem, error) {
	return m.list(models.CategorySaved)
}

func (m *mockContentService) ListUpvoted(ctx context.Context) ([]models.ContentItem, error) {
	return m.list(models.CategoryUpvoted)
}

func (m *mockContentService) ListDownvoted(ctx context.Context) ([]models.ContentItem, error) {
	return m.list(models.CategoryDownvoted)
}

func (m *mockContentService) Unsave(ctx context.Context, item models.ContentItem) error {
	m.mu.Lock()
	m.mutations[item.ID]++
	m.unsaved = append(m.unsaved, item.ID)
	fn := m.unsaveFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, item)
	}
	return nil
}

func (m *mockContentService) ClearVote(ctx context.Context, item models.ContentItem) error {
	m.mu.Lock()
	m.mutations[item.ID]++
	m.cleared = append(m.cleared, item.ID)
	fn := m.clearVoteFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, item)
	}
	return nil
}

func (m *mockContentService) fetchCount(category models.Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[category]
}

func (m *mockContentService) mutationCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mutations[id]
}

// inlineRunner runs the action on the caller's goroutine with no time budget.
type inlineRunner struct{}

func (inlineRunner) Run(ctx context.Context, action func(ctx context.Context) error) error {
	return action(ctx)
}

// mockEventLog records events in memory.
type mockEventLog struct {
	mu     sync.Mutex
	events []secondary.Event
	err    error
}

func (m *mockEventLog) Record(ctx context.Context, event secondary.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventLog) forItem(id string) []secondary.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []secondary.Event
	for _, e := range m.events {
		if e.ItemID == id {
			out = append(out, e)
		}
	}
	return out
}

// recordingObserver captures progress callbacks.
type recordingObserver struct {
	passes []int
	items  []primary.ItemEvent
}

func (o *recordingObserver) PassStarted(category models.Category, pass, actionable int) {
	o.passes = append(o.passes, actionable)
}

func (o *recordingObserver) ItemFinished(event primary.ItemEvent) {
	o.items = append(o.items, event)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func post(id string, adult, modifiable bool) models.ContentItem {
	return models.ContentItem{ID: id, Kind: models.KindPost, Adult: adult, Modifiable: modifiable, Title: "title " + id}
}
