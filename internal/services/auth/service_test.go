package auth

import (
	"context"
	"testing"
	"time"
)

type sessionStoreStub struct {
	sessions map[string]SessionRecord
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: map[string]SessionRecord{}}
}

func (s *sessionStoreStub) Create(_ context.Context, session SessionRecord) error {
	s.sessions[session.SID] = session
	return nil
}

func (s *sessionStoreStub) GetSession(_ context.Context, sid string) (SessionRecord, error) {
	session, ok := s.sessions[sid]
	if !ok {
		return SessionRecord{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) DeleteSession(_ context.Context, sid string) error {
	delete(s.sessions, sid)
	return nil
}

func TestIssueAndValidate(t *testing.T) {
	store := newSessionStoreStub()
	svc := NewService(NewJWTManager("secret", time.Hour), store, time.Hour)

	result, err := svc.Issue(context.Background(), 42, "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("empty access token")
	}

	claims, err := svc.ValidateAccessToken(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsLoggedOutSession(t *testing.T) {
	store := newSessionStoreStub()
	svc := NewService(NewJWTManager("secret", time.Hour), store, time.Hour)

	result, err := svc.Issue(context.Background(), 7, "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.ValidateAccessToken(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("validate before logout: %v", err)
	}
	if err := svc.Logout(context.Background(), claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(context.Background(), result.AccessToken); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestValidateRejectsExpiredSession(t *testing.T) {
	store := newSessionStoreStub()
	svc := NewService(NewJWTManager("secret", time.Hour), store, time.Hour)

	result, err := svc.Issue(context.Background(), 9, "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ValidateAccessToken(context.Background(), result.AccessToken); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for expired session, got %v", err)
	}
}

func TestValidateRejectsForeignToken(t *testing.T) {
	store := newSessionStoreStub()
	svc := NewService(NewJWTManager("secret", time.Hour), store, time.Hour)

	other := NewJWTManager("other-secret", time.Hour)
	token, _, err := other.GenerateAccessToken(42, "sid", "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := svc.ValidateAccessToken(context.Background(), token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for foreign token, got %v", err)
	}
}
