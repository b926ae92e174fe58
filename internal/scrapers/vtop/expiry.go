package vtop

import (
	"net/http"
	"net/url"
	"strings"
	"vtopassist-backend/internal/extract"
)

// sessionExpired decides whether a response means the session is dead: a
// redirect into the login area, the logged-out role picker, or the generic
// not-found page the portal serves to stale sessions.
func sessionExpired(status int, location, body string, endpoints Endpoints) bool {
	if status == http.StatusMovedPermanently || status == http.StatusFound {
		if redirectsToLogin(location, endpoints) {
			return true
		}
	}
	return extract.IsLoginPage(body) || extract.IsNotFoundPage(body)
}

func redirectsToLogin(location string, endpoints Endpoints) bool {
	if location == "" {
		return false
	}
	path := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		path = u.Path
	}
	for _, area := range endpoints.loginArea() {
		if area != "" && strings.HasPrefix(path, area) {
			return true
		}
	}
	return false
}
