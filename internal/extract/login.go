package extract

import (
	"encoding/base64"
	"regexp"
	"strings"
	"vtopassist-backend/pkg/htmlutil"
)

var csrfRegexes = []*regexp.Regexp{
	regexp.MustCompile(`name="_csrf"[^>]*?value="([^"]+)"`),
	regexp.MustCompile(`value="([^"]+)"[^>]*?name="_csrf"`),
	regexp.MustCompile(`<meta[^>]+name="_csrf"[^>]+content="([^"]+)"`),
	regexp.MustCompile(`csrfValue\s*=\s*["']([^"']+)["']`),
}

// CSRFToken returns the anti-forgery token carried by the page, "" when it
// has none.
func CSRFToken(raw string) string {
	for _, r := range csrfRegexes {
		if m := r.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

// Captcha is a decoded CAPTCHA image.
type Captcha struct {
	Image    []byte
	MimeType string
	DataURI  string
}

var dataURIRegex = regexp.MustCompile(`data:(image/[a-zA-Z0-9.+-]+);base64,\s*([A-Za-z0-9+/=\s]+)`)

// CaptchaImage pulls the inline base64 image out of the CAPTCHA fragment.
func CaptchaImage(raw string) (Captcha, bool) {
	m := dataURIRegex.FindStringSubmatch(raw)
	if m == nil {
		return Captcha{}, false
	}
	payload := strings.Join(strings.Fields(m[2]), "")
	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(image) == 0 {
		return Captcha{}, false
	}
	return Captcha{
		Image:    image,
		MimeType: m[1],
		DataURI:  "data:" + m[1] + ";base64," + payload,
	}, true
}

// Identity is who the portal believes is logged in.
type Identity struct {
	DisplayName        string `json:"display_name"`
	RegistrationNumber string `json:"registration_number"`
}

var (
	regNoRegex       = regexp.MustCompile(`\b(\d{2}[A-Z]{3}\d{4,5})\b`)
	displayNameNoise = regexp.MustCompile(`\(\s*(STUDENT|EMPLOYEE|PARENT)\s*\)|\b\d{2}[A-Z]{3}\d{4,5}\b|[()\-]`)
)

// ExtractIdentity reads the logged-in user off a post-login page.
func ExtractIdentity(raw string) Identity {
	doc := load(raw)
	id := Identity{}

	for _, sel := range []string{"input#authorizedIDX", `input[name="authorizedID"]`, "input#authorizedID"} {
		if v := strings.TrimSpace(doc.Find(sel).AttrOr("value", "")); v != "" {
			id.RegistrationNumber = v
			break
		}
	}

	for _, sel := range []string{"#userName", ".navbar-text", ".user-name", ".profile-name"} {
		text := htmlutil.Text(doc.Find(sel).First())
		if text == "" {
			continue
		}
		if id.RegistrationNumber == "" {
			if m := regNoRegex.FindStringSubmatch(text); m != nil {
				id.RegistrationNumber = m[1]
			}
		}
		if name := htmlutil.CleanText(displayNameNoise.ReplaceAllString(text, " ")); name != "" {
			id.DisplayName = name
			break
		}
	}

	if id.RegistrationNumber == "" {
		if m := regNoRegex.FindStringSubmatch(htmlutil.Text(doc.Selection)); m != nil {
			id.RegistrationNumber = m[1]
		}
	}
	return id
}

// LoginFailureKind classifies a rejected login.
type LoginFailureKind string

const (
	LoginInvalidCaptcha     LoginFailureKind = "invalid_captcha"
	LoginInvalidCredentials LoginFailureKind = "invalid_credentials"
	LoginAccountLocked      LoginFailureKind = "account_locked"
	LoginUnknownFailure     LoginFailureKind = "unknown"
)

var loginFailurePhrases = []struct {
	phrase string
	kind   LoginFailureKind
}{
	{"invalid captcha", LoginInvalidCaptcha},
	{"invalid loginid/password", LoginInvalidCredentials},
	{"invalid credentials", LoginInvalidCredentials},
	{"invalid username", LoginInvalidCredentials},
	{"invalid password", LoginInvalidCredentials},
	{"maximum fail attempts", LoginAccountLocked},
	{"locked", LoginAccountLocked},
}

var loginFailureMessages = map[LoginFailureKind]string{
	LoginInvalidCaptcha:     "The CAPTCHA was solved incorrectly.",
	LoginInvalidCredentials: "The username or password is incorrect.",
	LoginAccountLocked:      "The account is locked after too many failed attempts.",
	LoginUnknownFailure:     "The portal rejected the login.",
}

// LoginError classifies the error page shown after a rejected login. ok is
// false when the page carries none of the known failure phrases.
func LoginError(raw string) (kind LoginFailureKind, message string, ok bool) {
	lower := strings.ToLower(htmlutil.Normalize(raw))
	for _, p := range loginFailurePhrases {
		if strings.Contains(lower, p.phrase) {
			return p.kind, loginFailureMessages[p.kind], true
		}
	}
	return LoginUnknownFailure, loginFailureMessages[LoginUnknownFailure], false
}

var loginRoleMarkers = []string{
	`value="STUDENT"`, `value="EMPLOYEE"`, `value="PARENT"`, `value="ALUMNI"`,
	`id="stdForm"`, `id="empForm"`, `id="parentForm"`,
}

// IsLoginPage reports whether the page is the role picker shown to
// logged-out users, which takes at least two of its role markers.
func IsLoginPage(raw string) bool {
	count := 0
	for _, marker := range loginRoleMarkers {
		if strings.Contains(raw, marker) {
			count++
		}
	}
	return count >= 2
}

var notFoundRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<title>\s*(404|not found|page not found)[^<]*</title>`),
	regexp.MustCompile(`(?i)HTTP Status 404`),
	regexp.MustCompile(`(?i)requested (page|resource) (is )?not (found|available)`),
}

// IsNotFoundPage reports the generic not-found page the portal serves to
// dead sessions.
func IsNotFoundPage(raw string) bool {
	for _, r := range notFoundRegexes {
		if r.MatchString(raw) {
			return true
		}
	}
	return false
}
