package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"vtopassist-backend/internal/scrapers/vtop"
)

var errNoSession = errors.New("no live session, run `vtop-cli captcha` and `vtop-cli login` first")

// saveSession seals the session into the token file, readable by the owner
// only.
func (e env) saveSession(session vtop.Session) error {
	token, err := e.service.Persist(session)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}
	return os.WriteFile(e.config.TokenFile, []byte(token+"\n"), 0o600)
}

func (e env) loadSession() (vtop.Session, error) {
	contents, err := os.ReadFile(e.config.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return vtop.Session{}, errNoSession
	}
	if err != nil {
		return vtop.Session{}, err
	}
	session, ok := e.service.Restore(strings.TrimSpace(string(contents)))
	if !ok {
		return vtop.Session{}, errNoSession
	}
	return session, nil
}

func (e env) forgetSession() error {
	err := os.Remove(e.config.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
