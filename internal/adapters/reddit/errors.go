package reddit

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// APIError is a failed Reddit API call. The message never carries the
// item's fullname so that classification only sees what Reddit said.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Status, e.Message)
}

// AuthError reports a failed session bootstrap.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for u/%s: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// errorResponse covers the shapes Reddit uses for non-2xx bodies.
type errorResponse struct {
	Message     string `json:"message"`
	Reason      string `json:"reason"`
	Explanation string `json:"explanation"`
	Error       any    `json:"error"`
}

// jsonEnvelope is the api_type=json wrapper of POST endpoints.
type jsonEnvelope struct {
	JSON struct {
		Errors [][]any `json:"errors"`
	} `json:"json"`
}

func describeErrorBody(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}
	parts := make([]string, 0, 3)
	for _, s := range []string{resp.Reason, resp.Message, resp.Explanation} {
		if s != "" && !containsFold(parts, s) {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		if s, ok := resp.Error.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ": ")
}

// envelopeErrors returns the joined "CODE: message" pairs of a 2xx body,
// or "" when the call succeeded.
func envelopeErrors(body []byte) string {
	var env jsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(env.JSON.Errors))
	for _, e := range env.JSON.Errors {
		fields := make([]string, 0, 2)
		for i, f := range e {
			if i > 1 {
				break
			}
			if s, ok := f.(string); ok && s != "" {
				fields = append(fields, s)
			}
		}
		if len(fields) > 0 {
			msgs = append(msgs, strings.Join(fields, ": "))
		}
	}
	return strings.Join(msgs, "; ")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
