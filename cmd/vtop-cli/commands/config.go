package commands

import (
	"errors"
	"fmt"
	"time"
	"vtopassist-backend/internal/scrapers/vtop"
	"vtopassist-backend/internal/sessionstore"
)

type Config struct {
	BaseURL          string         `json:"base_url"`
	TimeoutSeconds   int            `json:"timeout_seconds"`
	RateLimit        float64        `json:"rate_limit"`
	CloudflareBypass bool           `json:"cloudflare_bypass"`
	Endpoints        vtop.Endpoints `json:"endpoints"`

	// SessionSecrets seal the token file, the first one is used for new
	// tokens. Generate one with `vtop-cli keygen`.
	SessionSecrets    []string `json:"session_secrets"`
	SessionTTLMinutes int      `json:"session_ttl_minutes"`
	TokenFile         string   `json:"token_file"`

	// SnapshotDB is the sqlite file last good records are kept in, empty
	// disables it.
	SnapshotDB string `json:"snapshot_db"`
	CacheSize  int    `json:"cache_size"`
	Verbose    bool   `json:"verbose"`
	// DumpDir captures every exchange with the portal, cookies and
	// passwords redacted.
	DumpDir string `json:"dump_dir"`
}

const defaultTokenFile = ".vtop-session"

func (c Config) withDefaults() Config {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(vtop.DefaultTimeout / time.Second)
	}
	if c.RateLimit <= 0 {
		c.RateLimit = vtop.DefaultRateLimit
	}
	if c.SessionTTLMinutes <= 0 {
		c.SessionTTLMinutes = int(vtop.DefaultSessionTTL / time.Minute)
	}
	if c.TokenFile == "" {
		c.TokenFile = defaultTokenFile
	}
	return c
}

func (c Config) validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if len(c.SessionSecrets) == 0 {
		errs = append(errs, errors.New("session_secrets needs at least one secret (see `vtop-cli keygen`)"))
	}
	for i, secret := range c.SessionSecrets {
		if len(secret) < sessionstore.MinSecretLength {
			errs = append(errs, fmt.Errorf("session_secrets[%d] is shorter than %d characters", i, sessionstore.MinSecretLength))
		}
	}
	return errors.Join(errs...)
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) sessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
