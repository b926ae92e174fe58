package vtop

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchAttendance(t *testing.T) {
	portal := newFakePortal(t)
	client, _, _ := newTestClient(t, portal, time.Second)

	data, s, err := client.FetchAttendance(context.Background(), authenticated(), "VL20242505")
	require.NoError(t, err)
	require.Equal(t, "VL20242505", data.SemesterID)
	require.Len(t, data.Entries, 3)
	require.Equal(t, 35, data.TotalAttended)
	require.Equal(t, 44, data.TotalClasses)

	e := DefaultEndpoints()
	require.Equal(t, 1, portal.hitCount(e.AttendanceView))
	require.Equal(t, 1, portal.hitCount(e.AttendanceData))
	require.Equal(t, "true", portal.lastForm(e.AttendanceView).Get("verifyMenu"))

	form := portal.lastForm(e.AttendanceData)
	require.Equal(t, "VL20242505", form.Get(fieldSemester))
	require.Equal(t, "21BCE1234", form.Get(fieldAuthorizedID))
	require.Equal(t, "auth-session", s.ID)
	require.Equal(t, "JSESSIONID=auth-session; SERVERID=s2", portal.lastCookie(e.AttendanceData))
	require.Equal(t, "1740819600000", form.Get(fieldCacheBuster))
	// the token rotated by the navigation is the one sent with the data request
	require.Equal(t, "5f0d6a51-7d1c-4c0e-9b43-3b2f6d54a8f1", form.Get(fieldCSRF))
	require.Equal(t, "5f0d6a51-7d1c-4c0e-9b43-3b2f6d54a8f1", s.CSRF)
}

func TestFetchSemesters(t *testing.T) {
	portal := newFakePortal(t)
	client, _, _ := newTestClient(t, portal, time.Second)

	semesters, _, err := client.FetchSemesters(context.Background(), authenticated())
	require.NoError(t, err)
	require.Len(t, semesters, 2)
	require.Equal(t, "VL20242505", semesters[0].ID)
	require.Equal(t, "Winter Semester 2024-25", semesters[0].Name)

	portal.handle(DefaultEndpoints().AttendanceView, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div>maintenance</div>`))
	})
	_, _, err = client.FetchSemesters(context.Background(), authenticated())
	require.ErrorIs(t, err, ErrParseFailure)
	require.False(t, IsRetryable(err))
}

func TestFetchDetectsExpiry(t *testing.T) {
	e := DefaultEndpoints()
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "redirect to login",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Location", e.Login)
				w.WriteHeader(http.StatusFound)
			},
		},
		{
			name: "role picker",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(loginPage))
			},
		},
		{
			name: "not found page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(notFoundPage))
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			portal := newFakePortal(t)
			portal.handle(e.AttendanceData, c.handler)
			client, rec, _ := newTestClient(t, portal, time.Second)

			_, s, err := client.FetchAttendance(context.Background(), authenticated(), "VL20242505")
			require.ErrorIs(t, err, ErrSessionExpired)
			require.True(t, RequiresReauth(err))
			require.Equal(t, StateExpired, s.State)
			require.Equal(t, 1, portal.hitCount(e.AttendanceData))
			require.Empty(t, rec.Reports("broken"))
		})
	}
}

func TestFetchExpiryOnNavigation(t *testing.T) {
	portal := newFakePortal(t)
	e := DefaultEndpoints()
	portal.handle(e.AttendanceView, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", e.Entry)
		w.WriteHeader(http.StatusFound)
	})
	client, _, _ := newTestClient(t, portal, time.Second)

	_, _, err := client.FetchAttendance(context.Background(), authenticated(), "VL20242505")
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, 0, portal.hitCount(e.AttendanceData))
}

func TestFetchIgnoresFailedNavigation(t *testing.T) {
	portal := newFakePortal(t)
	e := DefaultEndpoints()
	portal.handle(e.AttendanceView, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, rec, _ := newTestClient(t, portal, time.Second)

	data, s, err := client.FetchAttendance(context.Background(), authenticated(), "VL20242505")
	require.NoError(t, err)
	require.Len(t, data.Entries, 3)
	require.Equal(t, 1, portal.hitCount(e.AttendanceData))
	require.Equal(t, "auth-csrf", s.CSRF)

	navigated := false
	for _, r := range rec.Reports("warning") {
		if strings.HasSuffix(r.Id, report_client_navigate) {
			navigated = true
		}
	}
	require.True(t, navigated)
}

func TestFetchRetriesTimeouts(t *testing.T) {
	portal := newFakePortal(t)
	e := DefaultEndpoints()
	portal.handle(e.Curriculum, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	client, rec, _ := newTestClient(t, portal, 50*time.Millisecond)

	_, _, err := client.FetchCurriculum(context.Background(), authenticated())
	require.ErrorIs(t, err, ErrUpstreamTimeout)
	require.True(t, IsRetryable(err))
	require.Equal(t, 3, portal.hitCount(e.Curriculum))
	require.NotEmpty(t, rec.Reports("broken"))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	portal := newFakePortal(t)
	e := DefaultEndpoints()
	var calls atomic.Int32
	portal.handle(e.Curriculum, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<table><tr><td>BCSE101L</td><td>Computer Programming</td><td>3</td><td>A</td></tr></table>`))
	})
	client, _, _ := newTestClient(t, portal, time.Second)

	data, _, err := client.FetchCurriculum(context.Background(), authenticated())
	require.NoError(t, err)
	require.Equal(t, 3, portal.hitCount(e.Curriculum))
	require.Len(t, data.Categories, 1)
	require.Equal(t, "BCSE101L", data.Categories[0].Courses[0].Code)

	calls.Store(-10)
	_, _, err = client.FetchCurriculum(context.Background(), authenticated())
	require.ErrorIs(t, err, ErrUpstreamError)
	require.Equal(t, 6, portal.hitCount(e.Curriculum))
}

func TestFetchRejectsUnusableSessions(t *testing.T) {
	portal := newFakePortal(t)
	client, _, clock := newTestClient(t, portal, time.Second)
	ctx := context.Background()

	anonymous := authenticated()
	anonymous.Identity.RegistrationNumber = ""
	_, _, err := client.FetchProfile(ctx, anonymous)
	require.ErrorIs(t, err, ErrMissingIdentity)
	require.True(t, RequiresReauth(err))

	_, _, err = client.FetchProfile(ctx, Session{})
	require.ErrorIs(t, err, ErrSessionExpired)

	_, _, err = client.FetchProfile(ctx, authenticated().Expire())
	require.ErrorIs(t, err, ErrSessionExpired)

	clock.Advance(2 * time.Hour)
	_, _, err = client.FetchProfile(ctx, authenticated())
	require.ErrorIs(t, err, ErrSessionExpired)

	require.Equal(t, 0, portal.hitCount(DefaultEndpoints().Profile))
}

func TestFetchCancelled(t *testing.T) {
	portal := newFakePortal(t)
	client, _, _ := newTestClient(t, portal, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := client.FetchCurriculum(ctx, authenticated())
	require.Error(t, err)
	require.NotEmpty(t, CodeOf(err))
}
