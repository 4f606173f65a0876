// Copyright (c) 2018 Tim Heckman
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package emojify

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"golang.org/x/net/publicsuffix"
)

// Version is the version of this package.
const Version = "0.2.0"

const (
	// DefaultAPIURL is where the Web API methods used by the web client live.
	DefaultAPIURL = "https://slack.com/api/"

	maxRedirects = 10
)

// loginFailedFlashMessage is a string that is presented when offering incorrect
// credentials during login. This being present is the only way to know the
// difference between invalid credentials and an invalid request.
var loginFailedFlashMessage = []byte(`Sorry, you entered an incorrect email address or password.`)

// HTTPClient represents the functionality we need from an *http.Client, or
// similar.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Credentials are what a person would type in to the Slack sign in page.
type Credentials struct {
	TeamName string
	Email    string
	Password string
}

// SessionEstablisher is anything that can turn Credentials in to a Session.
// The browser-imitating *Client is the only implementation today.
type SessionEstablisher interface {
	EstablishSession(ctx context.Context, creds Credentials) (*Session, error)
}

// Client establishes sessions by logging in to Slack as if it were a browser.
// It holds no session state itself: every call to EstablishSession starts
// from an empty cookie jar.
type Client struct {
	newHTTPClient func() (HTTPClient, error)
	endpoint      string
	apiURL        string
}

// Option configures a *Client.
type Option func(*Client)

// WithHTTPClientFunc sets the constructor used to build the HTTP client for
// each session. The client it returns must not follow redirects, and should
// have a cookie jar.
func WithHTTPClientFunc(fn func() (HTTPClient, error)) Option {
	return func(c *Client) { c.newHTTPClient = fn }
}

// WithEndpoint overrides the https://{team}.slack.com workspace URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimSuffix(endpoint, "/") }
}

// WithAPIURL overrides DefaultAPIURL. It must end with a slash.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) { c.apiURL = apiURL }
}

// New returns a new *Client.
func New(opts ...Option) *Client {
	c := &Client{
		newHTTPClient: NewHTTPClient,
		apiURL:        DefaultAPIURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewHTTPClient returns an *http.Client suitable for a single session: a
// fresh cookie jar, and redirects returned to the caller instead of being
// followed.
func NewHTTPClient() (HTTPClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build cookie jar")
	}

	c := &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return c, nil
}

func (c *Client) endpointFor(team string) string {
	if len(c.endpoint) > 0 {
		return c.endpoint
	}

	return "https://" + team + ".slack.com"
}

// EstablishSession logs in to the workspace and returns a *Session carrying
// the API token the web client would use.
//
// The flow, as a browser sees it:
//
// GET the workspace root. A 200 carries the sign in form, whose hidden "crumb"
// input is a CSRF token that hashes in the User-Agent; the same UA must be
// used for the POST or Slack silently refuses the login.
//
// POST the form back to the same resource, with the Content-Type set to
// "application/x-www-form-urlencoded". A 200 means the login failed, and the
// body may carry a flash message saying the credentials were wrong. A 302 to
// the checkcookie endpoint means it worked.
//
// checkcookie validates the cookie and redirects again, eventually landing on
// a page (the "redir" from the form) with the boot data inlined. The api_token
// is scraped from there.
func (c *Client) EstablishSession(ctx context.Context, creds Credentials) (*Session, error) {
	endpoint := c.endpointFor(creds.TeamName)

	if len(creds.TeamName) == 0 {
		return nil, &AuthenticationError{Endpoint: endpoint, Reason: "must provide the Slack workspace name"}
	}

	if len(creds.Email) == 0 || len(creds.Password) == 0 {
		return nil, &AuthenticationError{Endpoint: endpoint, Reason: "both an email and password must be provided"}
	}

	httpc, err := c.newHTTPClient()
	if err != nil {
		return nil, err
	}

	l := &login{c: httpc, endpoint: endpoint}

	ld, err := l.getLoginDetails(ctx)
	if err != nil {
		return nil, err
	}

	checkCookieURL, err := l.logIn(ctx, creds.Email, creds.Password, ld)
	if err != nil {
		return nil, err
	}

	page, err := l.followRedirects(ctx, checkCookieURL)
	if err != nil {
		return nil, err
	}

	sd, err := parseSessionDetails(page)
	if err != nil {
		return nil, l.authErr(err, "failed to get session details")
	}

	return newSession(httpc, endpoint, c.apiURL, sd), nil
}

// login is the state of one sign in attempt.
type login struct {
	c        HTTPClient
	endpoint string
}

func (l *login) authErr(err error, reason string) error {
	return &AuthenticationError{Endpoint: l.endpoint, Reason: reason, Err: err}
}

func (l *login) get(ctx context.Context, url string, val url.Values) (*http.Response, error) {
	req, err := getReq(ctx, url, val)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %q", url)
	}

	resp, err := l.c.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "GET " + url, Err: err}
	}

	return resp, nil
}

func (l *login) postForm(ctx context.Context, url string, val url.Values) (*http.Response, error) {
	req, err := postFormReq(ctx, url, val)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %q", url)
	}

	resp, err := l.c.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "POST " + url, Err: err}
	}

	return resp, nil
}

func (l *login) logIn(ctx context.Context, email, password string, ld LoginDetails) (string, error) {
	if len(ld.Crumb) == 0 {
		return "", errors.New("LoginDetails must contain a crumb value")
	}

	v := url.Values{
		"crumb":    []string{ld.Crumb},
		"email":    []string{email},
		"password": []string{password},
		"redir":    []string{ld.Redir},
		"signin":   []string{ld.Signin},
		"remember": []string{"on"},
	}

	if len(ld.HasRemember) > 0 {
		v.Set("has_remember", ld.HasRemember)
	}

	resp, err := l.postForm(ctx, l.endpoint, v)
	if err != nil {
		return "", err
	}

	defer func() { _ = resp.Body.Close() }()

	// 302 (Found): log in attempt appears successful; do cookie validation
	// 200 (OK): actually not OK; login failed (wrong creds/missing form data)
	// Other: unexpected response
	switch resp.StatusCode {
	default:
		return "", l.authErr(nil, "unexpected HTTP response when logging in ("+resp.Status+")")

	case http.StatusFound:
		loc := resp.Header.Get("Location")

		if !strings.Contains(loc, "checkcookie") {
			return "", l.authErr(nil, "unexpected HTTP redirect location header value when logging in ("+loc+")")
		}

		return loc, nil

	case http.StatusOK:
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", &NetworkError{Op: "POST " + l.endpoint, Err: errors.Wrap(err, "failed to read response body")}
		}

		if bytes.Contains(respBody, loginFailedFlashMessage) {
			return "", l.authErr(nil, "invalid Slack credentials")
		}

		return "", l.authErr(nil, "failed to log in for unknown reason")
	}
}

// followRedirects walks the redirect chain that starts at loc, which may be
// relative to the workspace endpoint, and returns the body of the page it ends
// on. The cookie jar picks up whatever is set along the way.
func (l *login) followRedirects(ctx context.Context, loc string) ([]byte, error) {
	next, err := url.Parse(l.endpoint + "/")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse endpoint %q", l.endpoint)
	}

	for i := 0; i < maxRedirects; i++ {
		ref, err := url.Parse(loc)
		if err != nil {
			return nil, l.authErr(err, "invalid redirect location "+loc)
		}

		next = next.ResolveReference(ref)

		resp, err := l.get(ctx, next.String(), nil)
		if err != nil {
			return nil, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			if err != nil {
				return nil, &NetworkError{Op: "GET " + next.String(), Err: errors.Wrap(err, "failed to read response body")}
			}

			return body, nil

		case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
			loc = resp.Header.Get("Location")

			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			if len(loc) == 0 {
				return nil, l.authErr(nil, next.String()+" redirected without a location")
			}

		default:
			_ = resp.Body.Close()
			return nil, l.authErr(nil, next.String()+" did not redirect as expected ("+resp.Status+")")
		}
	}

	return nil, l.authErr(nil, "too many redirects after logging in")
}

// Session is an authenticated web session. It belongs to the single operation
// it was created for; Close it once that operation is done.
type Session struct {
	// Token is the api_token scraped from the web client's boot data.
	Token string

	// BaseURL is the workspace URL the session was established against.
	BaseURL string

	c         HTTPClient
	apiURL    string
	logOutURL string
	api       *slack.Client
}

func (s *Session) closed() bool {
	return s.api == nil
}

func newSession(c HTTPClient, baseURL, apiURL string, sd sessionDetails) *Session {
	return &Session{
		Token:     sd.sessionToken,
		BaseURL:   baseURL,
		c:         c,
		apiURL:    apiURL,
		logOutURL: sd.logOutURL,
		api:       slack.New(sd.sessionToken, slack.OptionHTTPClient(c), slack.OptionAPIURL(apiURL)),
	}
}

// Close signs out of the session when Slack gave us a logout URL, and forgets
// the token either way. Operations on a closed session fail with
// ErrSessionClosed. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	logOutURL := s.logOutURL

	s.Token, s.logOutURL, s.api = "", "", nil

	if len(logOutURL) == 0 {
		return nil
	}

	req, err := getReq(ctx, logOutURL, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %q", logOutURL)
	}

	resp, err := s.c.Do(req)
	if err != nil {
		return &NetworkError{Op: "GET " + logOutURL, Err: err}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &NetworkError{Op: "GET " + logOutURL, Err: errors.Errorf("unexpected HTTP response status: %s", resp.Status)}
	}

	return nil
}
