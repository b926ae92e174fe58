package vtop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"vtopassist-backend/internal/extract"
)

// Captcha is the image a human has to solve to log in, together with the
// short-lived session it was issued for.
type Captcha struct {
	Image    []byte
	MimeType string
	DataURI  string
	Session  Session
}

// RequestCaptcha runs the pre-login handshake and returns the CAPTCHA the
// login form expects.
func (c *Client) RequestCaptcha(ctx context.Context) (Captcha, error) {
	ctx, span := tracer.Start(ctx, "RequestCaptcha")
	defer span.End()

	var captcha Captcha
	err := c.retry(ctx, report_client_request_captcha, func() error {
		var err error
		captcha, err = c.handshake(ctx, Session{State: StateUnauthenticated})
		return err
	})
	if err != nil {
		if CodeOf(err) == "" {
			err = transportError(err)
		}
		c.tel.ReportBroken(report_client_request_captcha, err)
		return Captcha{}, err
	}
	return captcha, nil
}

// handshake: entry page for the first session id and token, the setup form
// (following its redirects) to unlock the login form, then the CAPTCHA
// fragment.
func (c *Client) handshake(ctx context.Context, s Session) (Captcha, error) {
	s, err := s.Advance(StateHandshakeInFlight)
	if err != nil {
		return Captcha{}, err
	}

	res, err := c.send(ctx, s, http.MethodGet, c.endpoints.Entry, nil)
	if err != nil {
		return Captcha{}, err
	}
	if res.status >= http.StatusInternalServerError {
		return Captcha{}, newError(CodeUpstreamError, fmt.Sprintf("entry page answered %d", res.status), nil)
	}
	s = absorb(s, res)
	if !s.Valid() {
		return Captcha{}, newError(CodeUpstreamUnavailable, "entry page issued no session", nil)
	}

	res, err = c.send(ctx, s, http.MethodPost, c.endpoints.Setup, url.Values{
		fieldCSRF: {s.CSRF},
		"flag":    {"VTOP"},
	})
	for hops := 0; ; hops++ {
		if err != nil {
			return Captcha{}, err
		}
		if res.status >= http.StatusInternalServerError {
			return Captcha{}, newError(CodeUpstreamError, fmt.Sprintf("setup answered %d", res.status), nil)
		}
		s = absorb(s, res)
		if !res.redirect() {
			break
		}
		if hops == maxRedirects {
			c.tel.ReportWarning(report_client_redirect_exhausted, c.endpoints.Setup, res.location)
			break
		}
		res, err = c.send(ctx, s, http.MethodGet, c.resolve(res.location), nil)
	}

	// the captcha endpoint hands out fresh cookies that do not belong to
	// the session the login form is bound to, they are ignored
	res, err = c.send(ctx, s, http.MethodGet, c.endpoints.Captcha, nil)
	if err != nil {
		return Captcha{}, err
	}
	if res.status >= http.StatusInternalServerError {
		return Captcha{}, newError(CodeUpstreamError, fmt.Sprintf("captcha answered %d", res.status), nil)
	}
	image, ok := extract.CaptchaImage(res.body)
	if !ok {
		return Captcha{}, newError(CodeParseFailure, "captcha response carries no image", nil)
	}

	s, err = s.Advance(StateCaptchaIssued)
	if err != nil {
		return Captcha{}, err
	}
	s = s.WithExpiry(c.time.Now().Add(c.sessionTTL))
	return Captcha{
		Image:    image.Image,
		MimeType: image.MimeType,
		DataURI:  image.DataURI,
		Session:  s,
	}, nil
}

type LoginRequest struct {
	SessionID       string
	Username        string
	Password        string
	CaptchaSolution string
	CSRF            string
	Sticky          string
	// RememberCredentials keeps the credentials in the session so it can
	// be re-established without asking the user again.
	RememberCredentials bool
}

// LoginResult describes the outcome of a login the portal answered. A
// rejected login is Success=false with Code and Message filled in.
type LoginResult struct {
	Success  bool
	Code     Code
	Message  string
	Identity Identity
	Session  Session
}

// Err converts a failed result into an *Error, nil on success.
func (r LoginResult) Err() error {
	if r.Success {
		return nil
	}
	return newError(r.Code, r.Message, nil)
}

var loginFailureCodes = map[extract.LoginFailureKind]Code{
	extract.LoginInvalidCaptcha:     CodeInvalidCaptcha,
	extract.LoginInvalidCredentials: CodeInvalidCredentials,
	extract.LoginAccountLocked:      CodeAccountLocked,
	extract.LoginUnknownFailure:     CodeUpstreamError,
}

// Login submits the credentials and the CAPTCHA solution. The returned
// error is only set when the portal could not be reached.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if req.SessionID == "" {
		return LoginResult{
			Code:    CodeSessionExpired,
			Message: "request a captcha before logging in",
		}, nil
	}

	s := Session{
		ID:     req.SessionID,
		CSRF:   req.CSRF,
		Sticky: req.Sticky,
		State:  StateCaptchaIssued,
	}
	res, err := c.send(ctx, s, http.MethodPost, c.endpoints.Login, url.Values{
		fieldCSRF:    {req.CSRF},
		"username":   {req.Username},
		"password":   {req.Password},
		"captchaStr": {req.CaptchaSolution},
	})
	if err != nil {
		c.tel.ReportBroken(report_client_login, err)
		return LoginResult{}, err
	}
	s = absorb(s, res)

	errorRedirect := false
	for hops := 0; res.redirect() && hops < maxRedirects; hops++ {
		if isErrorLocation(res.location, c.endpoints) {
			errorRedirect = true
		}
		res, err = c.send(ctx, s, http.MethodGet, c.resolve(res.location), nil)
		if err != nil {
			c.tel.ReportBroken(report_client_login, fmt.Errorf("follow redirect: %w", err))
			return LoginResult{}, err
		}
		s = absorb(s, res)
	}
	if res.status >= http.StatusInternalServerError {
		err := newError(CodeUpstreamError, fmt.Sprintf("login answered %d", res.status), nil)
		c.tel.ReportBroken(report_client_login, err)
		return LoginResult{}, err
	}

	if kind, message, ok := extract.LoginError(res.body); ok {
		return c.loginFailure(s, loginFailureCodes[kind], message), nil
	}
	if errorRedirect || extract.IsLoginPage(res.body) {
		kind := extract.LoginUnknownFailure
		_, message, _ := extract.LoginError(res.body)
		return c.loginFailure(s, loginFailureCodes[kind], message), nil
	}

	identity := extract.ExtractIdentity(res.body)
	if identity.RegistrationNumber == "" {
		content, err := c.send(ctx, s, http.MethodGet, c.endpoints.Content, nil)
		if err != nil {
			c.tel.ReportBroken(report_client_login, fmt.Errorf("content page: %w", err))
			return LoginResult{}, err
		}
		s = absorb(s, content)
		identity = extract.ExtractIdentity(content.body)
	}
	if identity.RegistrationNumber == "" {
		c.tel.ReportWarning(report_client_login, errors.New("no registration number after login"))
		return c.loginFailure(s, CodeMissingIdentity, "logged in but the portal did not say as whom"), nil
	}

	s, err = s.Advance(StateAuthenticated)
	if err != nil {
		return LoginResult{}, err
	}
	s = s.WithIdentity(Identity{
		DisplayName:        identity.DisplayName,
		RegistrationNumber: identity.RegistrationNumber,
		LoginID:            req.Username,
	}).WithExpiry(c.time.Now().Add(c.sessionTTL))
	if req.RememberCredentials {
		s = s.WithCredentials(&Credentials{LoginID: req.Username, Password: req.Password})
	}

	return LoginResult{
		Success:  true,
		Identity: s.Identity,
		Session:  s,
	}, nil
}

func (c *Client) loginFailure(s Session, code Code, message string) LoginResult {
	c.tel.ReportDebug(report_client_login, "rejected", code)
	return LoginResult{
		Success: false,
		Code:    code,
		Message: message,
		Session: s,
	}
}

// isErrorLocation reports a redirect to the login form's error variant
// rather than to the portal's content.
func isErrorLocation(location string, endpoints Endpoints) bool {
	lower := strings.ToLower(location)
	if strings.Contains(lower, "error") {
		return true
	}
	return redirectsToLogin(location, endpoints)
}

// Logout ends the session upstream. It is best-effort: the session must be
// discarded locally whatever the outcome.
func (c *Client) Logout(ctx context.Context, s Session) error {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	if !s.Valid() {
		return nil
	}
	_, err := c.send(ctx, s, http.MethodPost, c.endpoints.Logout, c.authForm(s, nil))
	if err != nil {
		c.tel.ReportWarning(report_client_logout, err)
		return err
	}
	return nil
}

// Reauthenticate starts a fresh handshake for a session that kept its
// credentials. The CAPTCHA still needs a human, the returned session carries
// the credentials so Login can be called with them.
func (c *Client) Reauthenticate(ctx context.Context, s Session) (Captcha, error) {
	if s.Credentials == nil {
		return Captcha{}, newError(CodeMissingIdentity, "session holds no saved credentials", nil)
	}
	captcha, err := c.RequestCaptcha(ctx)
	if err != nil {
		return Captcha{}, err
	}
	captcha.Session = captcha.Session.
		WithCredentials(s.Credentials).
		WithIdentity(Identity{LoginID: s.Credentials.LoginID})
	return captcha, nil
}
