package vtop

import (
	_ "embed"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
	"vtopassist-backend/internal/components/chrono"
	"vtopassist-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

var (
	//go:embed testdata/login_page.html
	loginPage string
	//go:embed testdata/captcha.html
	captchaPage string
	//go:embed testdata/dashboard.html
	dashboardPage string
	//go:embed testdata/login_error.html
	loginErrorPage string
	//go:embed testdata/not_found.html
	notFoundPage string
	//go:embed testdata/semesters.html
	semestersPage string
	//go:embed testdata/attendance.html
	attendancePage string
)

// fakePortal is an httptest server standing in for the portal. Every path
// gets a default handler that tests may replace before issuing requests.
type fakePortal struct {
	server *httptest.Server

	mutex    sync.Mutex
	handlers map[string]http.HandlerFunc
	hits     map[string]int
	forms    map[string]url.Values
	cookies  map[string]string
}

func newFakePortal(t testing.TB) *fakePortal {
	p := &fakePortal{
		handlers: map[string]http.HandlerFunc{},
		hits:     map[string]int{},
		forms:    map[string]url.Values{},
		cookies:  map[string]string{},
	}
	e := DefaultEndpoints()

	p.handlers[e.Entry] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "JSESSIONID=entry-session; Path=/vtop; HttpOnly")
		w.Header().Add("Set-Cookie", "SERVERID=s1; Path=/")
		w.Write([]byte(loginPage))
	}
	p.handlers[e.Setup] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/vtop/prelogin/landing")
		w.WriteHeader(http.StatusFound)
	}
	p.handlers["/vtop/prelogin/landing"] = func(w http.ResponseWriter, r *http.Request) {
		// some proxies fold every cookie into one header
		w.Header().Set("Set-Cookie", "JSESSIONID=setup-session; Path=/vtop; Expires=Wed, 21 Oct 2026 07:28:00 GMT; HttpOnly, SERVERID=s2; Path=/")
		w.Write([]byte(`<form id="vtopLoginForm"><input type="hidden" name="_csrf" value="setup-csrf"/></form>`))
	}
	p.handlers[e.Captcha] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "JSESSIONID=captcha-session; Path=/vtop")
		w.Write([]byte(captchaPage))
	}
	p.handlers[e.Login] = func(w http.ResponseWriter, r *http.Request) {
		switch r.PostForm.Get("captchaStr") {
		case "ABC123":
			w.Header().Add("Set-Cookie", "JSESSIONID=auth-session; Path=/vtop")
			w.Header().Set("Location", "/vtop/init/page")
		default:
			w.Header().Set("Location", "/vtop/login/error?captcha="+r.PostForm.Get("captchaStr"))
		}
		w.WriteHeader(http.StatusFound)
	}
	p.handlers["/vtop/init/page"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dashboardPage))
	}
	p.handlers["/vtop/login/error"] = func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("captcha") {
		case "WRONG":
			w.Write([]byte(`<span class="text-danger">Invalid Captcha</span>`))
		case "LOCKED":
			w.Write([]byte(`<span class="text-danger">Number of Maximum Fail Attempts Reached. use Forgot Password</span>`))
		case "SILENT":
			w.Write([]byte(loginPage))
		default:
			w.Write([]byte(loginErrorPage))
		}
	}
	p.handlers[e.Content] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dashboardPage))
	}
	p.handlers[e.Logout] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", e.Entry)
		w.WriteHeader(http.StatusFound)
	}
	p.handlers[e.AttendanceView] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(semestersPage))
	}
	p.handlers[e.AttendanceData] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(attendancePage))
	}
	p.handlers[e.Curriculum] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<table><tr><td>BCSE101L</td><td>Computer Programming</td><td>3</td><td>A</td></tr></table>`))
	}

	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		p.mutex.Lock()
		p.hits[r.URL.Path]++
		p.forms[r.URL.Path] = r.PostForm
		p.cookies[r.URL.Path] = r.Header.Get("Cookie")
		handler, ok := p.handlers[r.URL.Path]
		p.mutex.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePortal) handle(path string, handler http.HandlerFunc) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.handlers[path] = handler
}

func (p *fakePortal) hitCount(path string) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.hits[path]
}

func (p *fakePortal) lastForm(path string) url.Values {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.forms[path]
}

func (p *fakePortal) lastCookie(path string) string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.cookies[path]
}

var testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestClient(t testing.TB, portal *fakePortal, timeout time.Duration) (*Client, *telemetry.Recorder, *chrono.ManualTime) {
	rec := &telemetry.Recorder{}
	clock := chrono.NewManualTime(testStart)
	client, err := NewClient(Options{
		BaseURL:   portal.server.URL,
		Timeout:   timeout,
		RateLimit: 1000,
		Retry: RetryPolicy{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
		Time:      clock,
		Telemetry: rec,
	})
	require.NoError(t, err)
	return client, rec, clock
}

// authenticated is a session as Login leaves it.
func authenticated() Session {
	return Session{
		ID:     "auth-session",
		CSRF:   "auth-csrf",
		Sticky: "s2",
		Identity: Identity{
			DisplayName:        "PRIYA SHARMA",
			RegistrationNumber: "21BCE1234",
			LoginID:            "21BCE1234",
		},
		ExpiresAt: testStart.Add(time.Hour),
		State:     StateAuthenticated,
	}
}
