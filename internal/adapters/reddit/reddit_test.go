package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nsfwsweep/internal/core/cleanup"
	"github.com/example/nsfwsweep/internal/models"
	"github.com/example/nsfwsweep/internal/ports/secondary"
)

const testAgent = "sweep-test/1.0 by tester"

var testCreds = secondary.Credentials{
	ClientID:     "id",
	ClientSecret: "secret",
	Username:     "tester",
	Password:     "hunter2",
	UserAgent:    testAgent,
}

// fakeReddit serves the token endpoint, the identity endpoint and whatever
// extra routes a test registers.
type fakeReddit struct {
	mux    *http.ServeMux
	server *httptest.Server

	mu          sync.Mutex
	tokenCalls  int
	tokenStatus int
	tokenTTL    int
	agents      []string
}

func newFakeReddit(t *testing.T) *fakeReddit {
	f := &fakeReddit{mux: http.NewServeMux(), tokenStatus: http.StatusOK, tokenTTL: 3600}

	f.mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenCalls++
		status := f.tokenStatus
		ttl := f.tokenTTL
		f.mu.Unlock()

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "token request must use basic auth")
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error": "invalid_grant"}`)
			return
		}
		fmt.Fprintf(w, `{"access_token": "tok", "token_type": "bearer", "expires_in": %d, "scope": "*"}`, ttl)
	})
	f.handle("/api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"name": "Tester"})
	})

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.agents = append(f.agents, r.Header.Get("User-Agent"))
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

// handle registers an API route that requires the bearer token.
func (f *fakeReddit) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h(w, r)
	})
}

func (f *fakeReddit) options() Options {
	return Options{
		BaseURL:           f.server.URL,
		TokenURL:          f.server.URL + "/api/v1/access_token",
		RequestsPerMinute: -1,
	}
}

func (f *fakeReddit) session(t *testing.T) *Client {
	svc, err := NewAuthenticator(f.options(), nil).Authenticate(context.Background(), testCreds)
	require.NoError(t, err)
	return svc.(*Client)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func listingPage(after string, children ...map[string]any) map[string]any {
	return map[string]any{
		"kind": "Listing",
		"data": map[string]any{"after": after, "children": children},
	}
}

func link(name string, nsfw bool, extra map[string]any) map[string]any {
	data := map[string]any{"name": name, "over_18": nsfw, "title": "post " + name, "subreddit": "pics"}
	for k, v := range extra {
		data[k] = v
	}
	return map[string]any{"kind": "t3", "data": data}
}

func TestAuthenticate_Success(t *testing.T) {
	f := newFakeReddit(t)

	svc, err := NewAuthenticator(f.options(), nil).Authenticate(context.Background(), testCreds)

	require.NoError(t, err)
	assert.Equal(t, "Tester", svc.Username())
	assert.Equal(t, 1, f.tokenCalls)
	for _, agent := range f.agents {
		assert.Equal(t, testAgent, agent)
	}
}

func TestAuthenticate_RejectedCredentials(t *testing.T) {
	f := newFakeReddit(t)
	f.tokenStatus = http.StatusUnauthorized

	svc, err := NewAuthenticator(f.options(), nil).Authenticate(context.Background(), testCreds)

	require.Error(t, err)
	assert.Nil(t, svc)
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "tester", authErr.Username)
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	creds := testCreds
	creds.Password = ""
	creds.UserAgent = ""

	_, err := NewAuthenticator(Options{}, nil).Authenticate(context.Background(), creds)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, err.Error(), "password")
	assert.Contains(t, err.Error(), "user agent")
}

func (f *fakeReddit) tokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls
}

func TestAuthenticate_ReusesToken(t *testing.T) {
	f := newFakeReddit(t)
	f.handle("/user/Tester/saved", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listingPage(""))
	})
	client := f.session(t)

	_, err := client.ListSaved(context.Background())
	require.NoError(t, err)
	_, err = client.ListSaved(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.tokenCount())
}

func TestAuthenticate_ReissuesExpiredToken(t *testing.T) {
	f := newFakeReddit(t)
	// Tokens inside the oauth2 expiry margin are already stale.
	f.tokenTTL = 1
	f.handle("/user/Tester/saved", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listingPage(""))
	})
	client := f.session(t)
	require.Equal(t, 1, f.tokenCount())

	_, err := client.ListSaved(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, f.tokenCount())
}

func TestClient_ListingPaginates(t *testing.T) {
	f := newFakeReddit(t)
	var afters []string
	f.handle("/user/Tester/saved", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("raw_json"))
		after := r.URL.Query().Get("after")
		afters = append(afters, after)
		switch after {
		case "":
			writeJSON(w, listingPage("t3_b",
				link("t3_a", true, nil),
				link("t3_b", false, nil),
			))
		case "t3_b":
			writeJSON(w, listingPage("",
				map[string]any{"kind": "t1", "data": map[string]any{
					"name": "t1_c", "over_18": true, "link_title": "parent thread", "body": "a comment",
				}},
			))
		default:
			t.Errorf("unexpected after %q", after)
		}
	})

	items, err := f.session(t).ListSaved(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"", "t3_b"}, afters)
	require.Len(t, items, 3)
	assert.Equal(t, "t3_a", items[0].ID)
	assert.True(t, items[0].Adult)
	assert.Equal(t, models.KindPost, items[0].Kind)
	assert.False(t, items[1].Adult)
	assert.Equal(t, models.KindComment, items[2].Kind)
	assert.Equal(t, "parent thread", items[2].Title)
}

func TestClient_ListingStopsOnRepeatedCursor(t *testing.T) {
	f := newFakeReddit(t)
	calls := 0
	f.handle("/user/Tester/upvoted", func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, listingPage("t3_loop", link("t3_loop", true, nil)))
	})

	items, err := f.session(t).ListUpvoted(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, items, 2)
}

func TestClient_ModifiableFlag(t *testing.T) {
	tests := []struct {
		name       string
		extra      map[string]any
		modifiable bool
	}{
		{name: "plain", modifiable: true},
		{name: "archived", extra: map[string]any{"archived": true}, modifiable: false},
		{name: "locked", extra: map[string]any{"locked": true}, modifiable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeReddit(t)
			f.handle("/user/Tester/downvoted", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, listingPage("", link("t3_x", true, tt.extra)))
			})

			items, err := f.session(t).ListDownvoted(context.Background())

			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, tt.modifiable, items[0].Modifiable)
		})
	}
}

func TestClient_UnsaveAndClearVote(t *testing.T) {
	f := newFakeReddit(t)
	var forms []string
	record := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		forms = append(forms, r.URL.Path+"?"+r.PostForm.Encode())
		writeJSON(w, map[string]any{})
	}
	f.handle("/api/unsave", record)
	f.handle("/api/vote", record)

	client := f.session(t)
	item := models.ContentItem{ID: "t3_abc", Kind: models.KindPost, Adult: true, Modifiable: true}

	require.NoError(t, client.Unsave(context.Background(), item))
	require.NoError(t, client.ClearVote(context.Background(), item))

	assert.Equal(t, []string{
		"/api/unsave?api_type=json&id=t3_abc",
		"/api/vote?api_type=json&dir=0&id=t3_abc",
	}, forms)
}

func TestClient_ErrorsClassify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		permanent bool
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"message": "Forbidden", "error": 403}`, permanent: true},
		{name: "not found", status: http.StatusNotFound, body: `{"message": "Not Found", "error": 404}`, permanent: true},
		{name: "bad request", status: http.StatusBadRequest, body: `{"message": "Bad Request", "error": 400}`, permanent: true},
		{name: "archived in envelope", status: http.StatusOK, body: `{"json": {"errors": [["ARCHIVED", "that thing is archived", "id"]]}}`, permanent: true},
		{name: "server error", status: http.StatusInternalServerError, body: `<html>oops</html>`, permanent: false},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"message": "Too Many Requests", "error": 429}`, permanent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeReddit(t)
			f.handle("/api/unsave", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			// ID contains a marker substring; it must not leak into the error.
			err := f.session(t).Unsave(context.Background(), models.ContentItem{ID: "t3_400abc"})

			require.Error(t, err)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.NotContains(t, err.Error(), "400abc")
			assert.Equal(t, tt.permanent, cleanup.DefaultClassifier().IsPermanent(err), "error: %v", err)
		})
	}
}

func TestDescribeErrorBody(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: `{"message": "Forbidden", "error": 403}`, want: "Forbidden"},
		{body: `{"reason": "private", "message": "Forbidden"}`, want: "private: Forbidden"},
		{body: `{"error": "invalid_grant"}`, want: "invalid_grant"},
		{body: `not json`, want: "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, describeErrorBody([]byte(tt.body)))
		})
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("é", 150)

	got := truncate(body, 201)

	assert.True(t, utf8.ValidString(got), "truncated body is not valid UTF-8: %q", got)
	assert.Equal(t, strings.Repeat("é", 100)+"...", got)
	assert.Equal(t, "short", truncate("short", 200))
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(0, 5))
	assert.Nil(t, newLimiter(-1, 5))

	l := newLimiter(60, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
	assert.InDelta(t, 1.0, float64(l.Limit()), 0.0001)
}

func TestTransport_SetsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Transport: newTransport(nil, testAgent, newLimiter(600, 1))}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.True(t, strings.HasPrefix(got, "sweep-test/"))
}
