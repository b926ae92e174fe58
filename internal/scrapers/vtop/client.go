// Package vtop is the client of the portal: it owns the login handshake,
// session bookkeeping, expiry detection and retries, and hands raw pages to
// the extract package.
package vtop

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"vtopassist-backend/internal/components/assert"
	"vtopassist-backend/internal/components/chrono"
	"vtopassist-backend/internal/components/telemetry"
	"vtopassist-backend/internal/extract"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("vtopassist-backend/internal/scrapers/vtop")

const (
	report_client_request_captcha    = "client.request-captcha"
	report_client_login              = "client.login"
	report_client_logout             = "client.logout"
	report_client_fetch_semesters    = "client.fetch-semesters"
	report_client_fetch_attendance   = "client.fetch-attendance"
	report_client_fetch_timetable    = "client.fetch-timetable"
	report_client_fetch_curriculum   = "client.fetch-curriculum"
	report_client_fetch_marks        = "client.fetch-marks"
	report_client_fetch_grades       = "client.fetch-grades"
	report_client_fetch_exams        = "client.fetch-exam-schedule"
	report_client_fetch_profile      = "client.fetch-profile"
	report_client_navigate           = "client.navigate"
	report_client_session_expired    = "client.session-expired"
	report_client_redirect_exhausted = "client.redirect-exhausted"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultSessionTTL = time.Hour
	DefaultRateLimit  = 2

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	// the setup form bounces through a few pages before settling
	maxRedirects = 3
)

type Options struct {
	BaseURL   string
	Endpoints Endpoints
	// Timeout bounds every single request.
	Timeout time.Duration
	// RateLimit is the number of requests per second, bursts of the same
	// size are let through.
	RateLimit float64
	// CloudflareBypass wraps the transport with browser-like TLS and
	// headers, only needed when the portal sits behind a bot filter.
	CloudflareBypass bool
	// SessionTTL is how long a session is trusted after login.
	SessionTTL time.Duration
	Retry      RetryPolicy
	// DumpDir, when set, receives a file per exchange with the portal.
	DumpDir string

	Time      chrono.TimeAPI
	Telemetry telemetry.API
}

type Client struct {
	http        *resty.Client
	baseURL     *url.URL
	endpoints   Endpoints
	sessionTTL  time.Duration
	retryPolicy RetryPolicy

	time chrono.TimeAPI
	tel  telemetry.API
}

func NewClient(opts Options) (*Client, error) {
	assert.NotNil(opts.Telemetry)
	assert.NotEmptyStr(opts.BaseURL)

	if opts.Time == nil {
		opts.Time = chrono.NewStandardTime()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}

	tel := telemetry.NewScopedAPI("vtop_client", opts.Telemetry)

	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("base url %q is not absolute", opts.BaseURL)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseURL)
	// the session value is the only cookie store
	httpClient.SetCookieJar(nil)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	httpClient.SetTimeout(opts.Timeout)

	burst := max(int(opts.RateLimit), 1)
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	if opts.DumpDir != "" {
		if err := telemetry.DumpResty(httpClient, opts.DumpDir); err != nil {
			return nil, err
		}
	}

	return &Client{
		http:        httpClient,
		baseURL:     baseURL,
		endpoints:   opts.Endpoints.withDefaults(),
		sessionTTL:  opts.SessionTTL,
		retryPolicy: opts.Retry,
		time:        opts.Time,
		tel:         tel,
	}, nil
}

type response struct {
	status   int
	location string
	header   http.Header
	body     string
}

func (r response) redirect() bool {
	switch r.status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return r.location != ""
	}
	return false
}

// send issues a single request with the session rendered into the Cookie
// header, redirects are returned as is.
func (c *Client) send(ctx context.Context, s Session, method, path string, form url.Values) (response, error) {
	req := c.http.R().SetContext(ctx)
	if cookie := cookieHeader(s); cookie != "" {
		req.SetHeader("Cookie", cookie)
	}
	if form != nil {
		req.SetFormDataFromValues(form)
	}
	res, err := req.Execute(method, path)
	if err != nil {
		return response{}, transportError(err)
	}
	return response{
		status:   res.StatusCode(),
		location: res.Header().Get("Location"),
		header:   res.Header(),
		body:     string(res.Body()),
	}, nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return newError(CodeUpstreamTimeout, "request timed out", err)
	}
	return newError(CodeUpstreamUnavailable, "request failed", err)
}

// absorb returns the session updated with the cookies and CSRF token the
// response carries.
func absorb(s Session, res response) Session {
	s = applyCookies(s, res.header)
	return s.WithTokens("", extract.CSRFToken(res.body), "")
}

func (c *Client) resolve(location string) string {
	ref, err := url.Parse(location)
	if err != nil {
		return location
	}
	return c.baseURL.ResolveReference(ref).String()
}

// checkSession rejects sessions that must not be used to issue requests.
func (c *Client) checkSession(s Session) error {
	if !s.Valid() || s.State == StateExpired {
		return newError(CodeSessionExpired, "no live session", nil)
	}
	if !s.ExpiresAt.IsZero() && !c.time.Now().Before(s.ExpiresAt) {
		return newError(CodeSessionExpired, "session lifetime elapsed", nil)
	}
	if s.Identity.RegistrationNumber == "" {
		return newError(CodeMissingIdentity, "session has no registration number", nil)
	}
	return nil
}

func (c *Client) authForm(s Session, extra url.Values) url.Values {
	form := url.Values{}
	form.Set(fieldCSRF, s.CSRF)
	form.Set(fieldAuthorizedID, s.Identity.RegistrationNumber)
	form.Set(fieldCacheBuster, strconv.FormatInt(c.time.Now().UnixMilli(), 10))
	for key, values := range extra {
		form[key] = values
	}
	return form
}

// post issues an authenticated request. The returned session is always
// usable as the caller's next value: expired on expiry, rotated on success,
// unchanged otherwise.
func (c *Client) post(ctx context.Context, s Session, path string, extra url.Values) (response, Session, error) {
	res, err := c.send(ctx, s, http.MethodPost, path, c.authForm(s, extra))
	if err != nil {
		return response{}, s, err
	}
	if sessionExpired(res.status, res.location, res.body, c.endpoints) {
		c.tel.ReportDebug(report_client_session_expired, path, res.status)
		return res, s.Expire(), newError(CodeSessionExpired, "portal ended the session", nil)
	}
	if res.status >= http.StatusBadRequest {
		return res, s, newError(CodeUpstreamError, fmt.Sprintf("%s answered %d", path, res.status), nil)
	}
	return res, absorb(s, res), nil
}

// pageRequest is one "navigate, then fetch" exchange.
type pageRequest struct {
	report string
	// view is requested first on a best-effort basis, only expiry counts
	view string
	data string
	form url.Values
}

var menuForm = url.Values{"verifyMenu": {"true"}}

func (c *Client) fetchPage(ctx context.Context, s Session, p pageRequest) (string, Session, error) {
	if err := c.checkSession(s); err != nil {
		return "", s, err
	}

	current := s
	var body string
	err := c.retry(ctx, p.report, func() error {
		if p.view != "" {
			_, next, err := c.post(ctx, current, p.view, menuForm)
			current = next
			if errors.Is(err, ErrSessionExpired) {
				return err
			}
			if err != nil {
				c.tel.ReportWarning(report_client_navigate, fmt.Errorf("%s: %w", p.view, err))
			}
		}
		res, next, err := c.post(ctx, current, p.data, p.form)
		current = next
		if err != nil {
			return err
		}
		body = res.body
		return nil
	})
	if err != nil {
		if CodeOf(err) == "" {
			err = transportError(err)
		}
		if !errors.Is(err, ErrSessionExpired) {
			c.tel.ReportBroken(p.report, err)
		}
		return "", current, err
	}
	return body, current, nil
}
