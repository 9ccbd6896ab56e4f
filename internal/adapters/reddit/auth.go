package reddit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/example/nsfwsweep/internal/ports/secondary"
)

const (
	// DefaultTokenURL is where password grants are exchanged.
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	// DefaultRequestsPerMinute stays within Reddit's OAuth client quota.
	DefaultRequestsPerMinute = 60
	// DefaultBurst allows a short burst before throttling kicks in.
	DefaultBurst = 5
	// DefaultHTTPTimeout bounds a single HTTP exchange.
	DefaultHTTPTimeout = 30 * time.Second
)

// Options configures the Reddit adapter. Zero values select the defaults.
type Options struct {
	BaseURL           string
	TokenURL          string
	RequestsPerMinute int
	Burst             int
	HTTPTimeout       time.Duration
	// Transport is the innermost round tripper; tests point it at httptest.
	Transport http.RoundTripper
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.TokenURL == "" {
		o.TokenURL = DefaultTokenURL
	}
	if o.RequestsPerMinute == 0 {
		o.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if o.Burst <= 0 {
		o.Burst = DefaultBurst
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = DefaultHTTPTimeout
	}
	return o
}

// Authenticator opens Reddit sessions with the script-app password grant.
type Authenticator struct {
	opts   Options
	logger *log.Logger
}

// NewAuthenticator creates an Authenticator. logger may be nil.
func NewAuthenticator(opts Options, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Authenticator{opts: opts.withDefaults(), logger: logger}
}

// Authenticate exchanges the credentials for a token and confirms the
// identity behind it. Every failure is an *AuthError.
func (a *Authenticator) Authenticate(ctx context.Context, creds secondary.Credentials) (secondary.ContentService, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, &AuthError{Username: creds.Username, Err: err}
	}

	// Token exchanges share the throttled, agent-stamped transport.
	base := &http.Client{
		Transport: newTransport(a.opts.Transport, creds.UserAgent, newLimiter(a.opts.RequestsPerMinute, a.opts.Burst)),
		Timeout:   a.opts.HTTPTimeout,
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, base)

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.opts.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	source := oauth2.ReuseTokenSource(nil, &passwordTokenSource{
		ctx:      tokenCtx,
		conf:     conf,
		username: creds.Username,
		password: creds.Password,
	})

	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: source, Base: base.Transport},
		Timeout:   a.opts.HTTPTimeout,
	}

	client := NewClient(httpClient, a.opts.BaseURL, creds.Username, a.logger)
	name, err := client.me(ctx)
	if err != nil {
		return nil, &AuthError{Username: creds.Username, Err: err}
	}
	if !strings.EqualFold(name, creds.Username) {
		a.logger.Warn("token belongs to a different account", "configured", creds.Username, "actual", name)
	}
	client.username = name
	a.logger.Debug("authenticated", "user", name)
	return client, nil
}

func validateCredentials(creds secondary.Credentials) error {
	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, "client id")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if creds.Username == "" {
		missing = append(missing, "username")
	}
	if creds.Password == "" {
		missing = append(missing, "password")
	}
	if creds.UserAgent == "" {
		missing = append(missing, "user agent")
	}
	if len(missing) > 0 {
		return errors.New("missing " + strings.Join(missing, ", "))
	}
	return nil
}

// passwordTokenSource issues a fresh password grant whenever the cached
// token expires. Reddit does not hand out refresh tokens for this grant.
type passwordTokenSource struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	return s.conf.PasswordCredentialsToken(s.ctx, s.username, s.password)
}

type meResponse struct {
	Name string `json:"name"`
}

// me returns the account name the token is bound to.
func (c *Client) me(ctx context.Context) (string, error) {
	var resp meResponse
	if err := c.get(ctx, "/api/v1/me", nil, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return "", errors.New("identity endpoint returned no account name")
	}
	return resp.Name, nil
}

// Ensure Authenticator implements the interface
var _ secondary.Authenticator = (*Authenticator)(nil)
