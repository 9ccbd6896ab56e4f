package reddit

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// userAgentTransport stamps every request with the configured User-Agent.
// Reddit throttles or rejects requests carrying a generic agent.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// rateLimitedTransport waits on the limiter before every request.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// newLimiter converts a per-minute budget into a token bucket.
// A non-positive budget disables throttling.
func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// newTransport builds the transport chain shared by token and API requests.
func newTransport(base http.RoundTripper, userAgent string, limiter *rate.Limiter) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	var rt http.RoundTripper = base
	if limiter != nil {
		rt = &rateLimitedTransport{base: rt, limiter: limiter}
	}
	return &userAgentTransport{base: rt, userAgent: userAgent}
}
