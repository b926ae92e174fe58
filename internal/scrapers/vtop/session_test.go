package vtop

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionTransitions(t *testing.T) {
	s := Session{ID: "a", State: StateUnauthenticated}

	_, err := s.Advance(StateAuthenticated)
	require.Error(t, err)

	s, err = s.Advance(StateHandshakeInFlight)
	require.NoError(t, err)
	s, err = s.Advance(StateCaptchaIssued)
	require.NoError(t, err)
	s, err = s.Advance(StateAuthenticated)
	require.NoError(t, err)
	s, err = s.Advance(StateAuthenticated)
	require.NoError(t, err)
	s, err = s.Advance(StateExpired)
	require.NoError(t, err)

	_, err = s.Advance(StateAuthenticated)
	require.Error(t, err)
	require.Equal(t, StateExpired, s.Expire().State)
}

func TestSessionIsAValue(t *testing.T) {
	original := authenticated()
	creds := &Credentials{LoginID: "21BCE1234", Password: "hunter2"}

	updated := original.
		WithTokens("next", "", "").
		WithCredentials(creds).
		Expire()
	creds.Password = "changed"

	require.Equal(t, "auth-session", original.ID)
	require.Equal(t, StateAuthenticated, original.State)
	require.Nil(t, original.Credentials)

	require.Equal(t, "next", updated.ID)
	require.Equal(t, "auth-csrf", updated.CSRF)
	require.Equal(t, "s2", updated.Sticky)
	require.Equal(t, "hunter2", updated.Credentials.Password)
}

func TestSessionUsable(t *testing.T) {
	s := authenticated()
	require.True(t, s.Usable(testStart))
	require.False(t, s.Usable(s.ExpiresAt))
	require.False(t, s.Expire().Usable(testStart))
	require.False(t, Session{State: StateAuthenticated}.Usable(testStart))

	s.ExpiresAt = time.Time{}
	require.True(t, s.Usable(testStart.Add(1000*time.Hour)))
}

func TestErrors(t *testing.T) {
	err := fmt.Errorf("fetch marks: %w", newError(CodeSessionExpired, "gone", nil))
	require.ErrorIs(t, err, ErrSessionExpired)
	require.NotErrorIs(t, err, ErrUpstreamError)
	require.Equal(t, CodeSessionExpired, CodeOf(err))
	require.Equal(t, Code(""), CodeOf(errors.New("plain")))

	cause := errors.New("connection reset")
	wrapped := newError(CodeUpstreamUnavailable, "request failed", cause)
	require.ErrorIs(t, wrapped, cause)
	require.Equal(t, "vtop: upstream_unavailable: request failed: connection reset", wrapped.Error())

	retryable := map[Code]bool{
		CodeSessionExpired:      false,
		CodeInvalidCaptcha:      false,
		CodeInvalidCredentials:  false,
		CodeAccountLocked:       false,
		CodeMissingIdentity:     false,
		CodeParseFailure:        false,
		CodeUpstreamTimeout:     true,
		CodeUpstreamUnavailable: true,
		CodeUpstreamError:       true,
	}
	for code, expected := range retryable {
		require.Equal(t, expected, IsRetryable(newError(code, "", nil)), code)
		reauth := code == CodeSessionExpired || code == CodeMissingIdentity
		require.Equal(t, reauth, RequiresReauth(newError(code, "", nil)), code)
	}
	require.False(t, IsRetryable(nil))
	require.False(t, RequiresReauth(nil))
}

func TestSplitSetCookie(t *testing.T) {
	require.Equal(t, []string{
		"JSESSIONID=abc; Path=/vtop; Expires=Wed, 21 Oct 2026 07:28:00 GMT; HttpOnly",
		"SERVERID=s2; Path=/",
	}, splitSetCookie([]string{
		"JSESSIONID=abc; Path=/vtop; Expires=Wed, 21 Oct 2026 07:28:00 GMT; HttpOnly, SERVERID=s2; Path=/",
	}))

	require.Equal(t, []string{"A=1", "B=2"}, splitSetCookie([]string{"A=1", "B=2"}))
	require.Empty(t, splitSetCookie([]string{""}))
}

func TestApplyCookies(t *testing.T) {
	header := http.Header{}
	header.Add("Set-Cookie", "JSESSIONID=first; Path=/vtop")
	header.Add("Set-Cookie", "UNRELATED=x, JSESSIONID=second; HttpOnly")

	s := applyCookies(Session{ID: "old", Sticky: "s1"}, header)
	require.Equal(t, "second", s.ID)
	require.Equal(t, "s1", s.Sticky)

	require.Equal(t, "JSESSIONID=second; SERVERID=s1", cookieHeader(s))
	require.Equal(t, "JSESSIONID=only", cookieHeader(Session{ID: "only"}))
	require.Equal(t, "", cookieHeader(Session{Sticky: "s1"}))
}

func TestSessionExpired(t *testing.T) {
	e := DefaultEndpoints()
	require.True(t, sessionExpired(http.StatusFound, "/vtop/login", "", e))
	require.True(t, sessionExpired(http.StatusFound, "https://vtop.example.edu/vtop/open/page?x=1", "", e))
	require.False(t, sessionExpired(http.StatusFound, "/vtop/content", "", e))
	require.False(t, sessionExpired(http.StatusOK, "/vtop/login", "<html></html>", e))
	require.True(t, sessionExpired(http.StatusOK, "", loginPage, e))
	require.True(t, sessionExpired(http.StatusOK, "", notFoundPage, e))
	require.False(t, sessionExpired(http.StatusOK, "", attendancePage, e))
}
