package service

import (
	"context"
	"fmt"
	"vtopassist-backend/internal/scrapers/vtop"
)

func (s *Service) RequestCaptcha(ctx context.Context) (vtop.Captcha, error) {
	return s.portal.RequestCaptcha(ctx)
}

// Login logs in and, on success, drops whatever was cached for the user
// under a previous session.
func (s *Service) Login(ctx context.Context, req vtop.LoginRequest) (vtop.LoginResult, error) {
	result, err := s.portal.Login(ctx, req)
	if err != nil {
		return result, err
	}
	if result.Success {
		s.Invalidate(result.Identity.RegistrationNumber)
	}
	return result, nil
}

// Reauthenticate starts a new handshake for a session holding saved
// credentials.
func (s *Service) Reauthenticate(ctx context.Context, session vtop.Session) (vtop.Captcha, error) {
	return s.portal.Reauthenticate(ctx, session)
}

// Logout ends the session upstream and forgets everything held for its
// user. The local purge happens whatever the portal answers, the returned
// error only says the upstream logout failed.
func (s *Service) Logout(ctx context.Context, session vtop.Session) error {
	user := session.Identity.RegistrationNumber
	s.Invalidate(user)
	if s.snapshots != nil && user != "" {
		if _, err := s.snapshots.Purge(ctx, user); err != nil {
			s.tel.ReportWarning(report_snapshot_purge, err, user)
		}
	}

	err := s.portal.Logout(ctx, session)
	if err != nil {
		s.tel.ReportWarning(report_portal_logout, err)
		return fmt.Errorf("upstream logout: %w", err)
	}
	return nil
}

// Persist seals the session into the token a caller keeps between calls.
func (s *Service) Persist(session vtop.Session) (string, error) {
	return s.sessions.Seal(session)
}

// Restore opens a token made by Persist, ok is false for anything that is
// not a live session.
func (s *Service) Restore(token string) (vtop.Session, bool) {
	session, ok := s.sessions.Open(token)
	if !ok || session.State == vtop.StateExpired {
		return vtop.Session{}, false
	}
	return session, true
}
