// Package sessionstore turns a portal session into an opaque, encrypted
// token that can be handed to a browser or written to disk, and back.
package sessionstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"vtopassist-backend/internal/components/chrono"
	"vtopassist-backend/internal/components/telemetry"
	"vtopassist-backend/internal/scrapers/vtop"

	"golang.org/x/crypto/hkdf"
)

const (
	DefaultCookieName = "vtop_session"
	DefaultTTL        = time.Hour

	// MinSecretLength is the shortest secret accepted, one byte per bit of
	// AES-256 key.
	MinSecretLength = 32

	keyInfo = "vtopassist-backend session v1"

	report_store_open = "store.open"
)

var (
	ErrNoSecret       = errors.New("sessionstore: no secret provided")
	ErrSecretTooShort = fmt.Errorf("sessionstore: secret must be at least %d characters long", MinSecretLength)
)

type Options struct {
	// Secrets are tried in order when opening, the first one seals. Prepend
	// a new secret to rotate keys without invalidating live tokens.
	Secrets []string
	// TTL bounds a token whose session carries no expiry of its own.
	TTL        time.Duration
	CookieName string
	// Insecure drops the Secure flag from cookies, for plain http in
	// development only.
	Insecure bool

	Time      chrono.TimeAPI
	Telemetry telemetry.API
}

type Store struct {
	aeads      []cipher.AEAD
	ttl        time.Duration
	cookieName string
	insecure   bool
	time       chrono.TimeAPI
	tel        telemetry.API
}

// payload is what gets encrypted, the expiry is checked on open whatever
// the cookie that carried the token said.
type payload struct {
	Session   vtop.Session `json:"session"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func New(opts Options) (*Store, error) {
	if len(opts.Secrets) == 0 {
		return nil, ErrNoSecret
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.Time == nil {
		opts.Time = chrono.NewStandardTime()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}

	aeads := make([]cipher.AEAD, 0, len(opts.Secrets))
	for i, secret := range opts.Secrets {
		if len(secret) < MinSecretLength {
			return nil, fmt.Errorf("secret %d: %w", i, ErrSecretTooShort)
		}
		aead, err := deriveAEAD(secret)
		if err != nil {
			return nil, fmt.Errorf("secret %d: %w", i, err)
		}
		aeads = append(aeads, aead)
	}

	return &Store{
		aeads:      aeads,
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		insecure:   opts.Insecure,
		time:       opts.Time,
		tel:        telemetry.NewScopedAPI("sessionstore", opts.Telemetry),
	}, nil
}

func deriveAEAD(secret string) (cipher.AEAD, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// expiry is when a token sealed for session stops opening.
func (s *Store) expiry(session vtop.Session) time.Time {
	if session.ExpiresAt.IsZero() {
		return s.time.Now().Add(s.ttl)
	}
	return session.ExpiresAt
}

// Seal encrypts the session into a url-safe token.
func (s *Store) Seal(session vtop.Session) (string, error) {
	expiresAt := s.expiry(session)
	plaintext, err := json.Marshal(payload{Session: session, ExpiresAt: expiresAt})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	aead := s.aeads[0]
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token made by Seal. Anything wrong with the token,
// including its expiry having passed, is reported as ok=false.
func (s *Store) Open(token string) (vtop.Session, bool) {
	if token == "" {
		return vtop.Session{}, false
	}
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		s.tel.ReportDebug(report_store_open, "malformed token")
		return vtop.Session{}, false
	}

	for _, aead := range s.aeads {
		if len(sealed) < aead.NonceSize()+aead.Overhead() {
			break
		}
		nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
		plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			continue
		}

		var p payload
		if err := json.Unmarshal(plaintext, &p); err != nil {
			s.tel.ReportWarning(report_store_open, fmt.Errorf("decode payload: %w", err))
			return vtop.Session{}, false
		}
		if !s.time.Now().Before(p.ExpiresAt) {
			s.tel.ReportDebug(report_store_open, "token expired", p.ExpiresAt)
			return vtop.Session{}, false
		}
		if !p.Session.Valid() {
			return vtop.Session{}, false
		}
		return p.Session, true
	}

	s.tel.ReportDebug(report_store_open, "token failed authentication")
	return vtop.Session{}, false
}

// Cookie is the cookie that persists the token sealed for session, it
// expires together with the token.
func (s *Store) Cookie(token string, session vtop.Session) *http.Cookie {
	expiresAt := s.expiry(session)
	maxAge := int(expiresAt.Sub(s.time.Now()) / time.Second)
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   !s.insecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie is the cookie that deletes the persisted token.
func (s *Store) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   !s.insecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieName is the name the token is stored under.
func (s *Store) CookieName() string {
	return s.cookieName
}
