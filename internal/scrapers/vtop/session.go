package vtop

import (
	"fmt"
	"time"
)

// State is where a Session is in its lifecycle.
type State string

const (
	StateUnauthenticated   State = "unauthenticated"
	StateHandshakeInFlight State = "handshake_in_flight"
	StateCaptchaIssued     State = "captcha_issued"
	StateAuthenticated     State = "authenticated"
	StateExpired           State = "expired"
)

var transitions = map[State][]State{
	StateUnauthenticated:   {StateHandshakeInFlight},
	StateHandshakeInFlight: {StateCaptchaIssued, StateExpired},
	StateCaptchaIssued:     {StateAuthenticated, StateExpired},
	StateAuthenticated:     {StateAuthenticated, StateExpired},
}

type Identity struct {
	DisplayName        string `json:"display_name"`
	RegistrationNumber string `json:"registration_number"`
	LoginID            string `json:"login_id"`
}

// Credentials are only kept around when the user asked for transparent
// re-authentication.
type Credentials struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

// Session is the whole of the state needed to talk to the portal as a given
// user. It is a value: every update returns a new Session and leaves the
// receiver untouched.
type Session struct {
	ID          string       `json:"id"`
	CSRF        string       `json:"csrf"`
	Sticky      string       `json:"sticky,omitempty"`
	Identity    Identity     `json:"identity"`
	Credentials *Credentials `json:"credentials,omitempty"`
	ExpiresAt   time.Time    `json:"expires_at"`
	State       State        `json:"state"`
}

// Valid reports whether the session may be used to issue requests at all.
func (s Session) Valid() bool {
	return s.ID != ""
}

// Usable reports whether the session is authenticated, unexpired and owned
// by a known user.
func (s Session) Usable(now time.Time) bool {
	if !s.Valid() || s.State != StateAuthenticated {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Advance moves the session to next, illegal transitions are rejected.
func (s Session) Advance(next State) (Session, error) {
	for _, allowed := range transitions[s.State] {
		if allowed == next {
			s.State = next
			return s, nil
		}
	}
	return s, fmt.Errorf("vtop: illegal session transition %s -> %s", s.State, next)
}

// WithTokens returns the session with whichever of the tokens are non-empty
// replaced.
func (s Session) WithTokens(id, csrf, sticky string) Session {
	if id != "" {
		s.ID = id
	}
	if csrf != "" {
		s.CSRF = csrf
	}
	if sticky != "" {
		s.Sticky = sticky
	}
	return s
}

func (s Session) WithIdentity(identity Identity) Session {
	s.Identity = identity
	return s
}

func (s Session) WithCredentials(credentials *Credentials) Session {
	if credentials != nil {
		c := *credentials
		credentials = &c
	}
	s.Credentials = credentials
	return s
}

func (s Session) WithExpiry(expiresAt time.Time) Session {
	s.ExpiresAt = expiresAt
	return s
}

// Expire marks the session dead. Expiring an already expired session is a
// no-op.
func (s Session) Expire() Session {
	s.State = StateExpired
	return s
}
