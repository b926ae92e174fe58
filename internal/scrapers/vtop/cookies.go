package vtop

import (
	"net/http"
	"regexp"
	"strings"
)

// cookie names are tokens, a fragment that does not start with one is the
// tail of an Expires date that was split on its comma
var cookieStartRegex = regexp.MustCompile(`^\s*[A-Za-z0-9!#$%&'*+.^_` + "`" + `|~-]+=`)

// splitSetCookie splits Set-Cookie header values into one string per cookie.
// Some proxies in front of the portal fold every cookie into a single
// comma-joined header.
func splitSetCookie(values []string) []string {
	var out []string
	for _, value := range values {
		var current string
		for _, fragment := range strings.Split(value, ",") {
			if current != "" && !cookieStartRegex.MatchString(fragment) {
				current += "," + fragment
				continue
			}
			if current != "" {
				out = append(out, strings.TrimSpace(current))
			}
			current = fragment
		}
		if strings.TrimSpace(current) != "" {
			out = append(out, strings.TrimSpace(current))
		}
	}
	return out
}

// parseSetCookie returns the value of every cookie set by the headers, later
// values win.
func parseSetCookie(header http.Header) map[string]string {
	res := http.Response{Header: http.Header{
		"Set-Cookie": splitSetCookie(header.Values("Set-Cookie")),
	}}
	out := map[string]string{}
	for _, c := range res.Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

// applyCookies returns the session updated with whatever session and
// sticky-routing cookies the response set.
func applyCookies(s Session, header http.Header) Session {
	cookies := parseSetCookie(header)
	return s.WithTokens(cookies[cookieSession], "", cookies[cookieSticky])
}

// cookieHeader renders the session into a Cookie header value.
func cookieHeader(s Session) string {
	if s.ID == "" {
		return ""
	}
	parts := []string{cookieSession + "=" + s.ID}
	if s.Sticky != "" {
		parts = append(parts, cookieSticky+"="+s.Sticky)
	}
	return strings.Join(parts, "; ")
}
