package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "github.com/Amanc77/Datamart-app/internal/services/auth"
)

type sessionStoreStub struct {
	sessions map[string]authsvc.SessionRecord
}

func (s *sessionStoreStub) Create(_ context.Context, session authsvc.SessionRecord) error {
	s.sessions[session.SID] = session
	return nil
}

func (s *sessionStoreStub) GetSession(_ context.Context, sid string) (authsvc.SessionRecord, error) {
	session, ok := s.sessions[sid]
	if !ok {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) DeleteSession(_ context.Context, sid string) error {
	delete(s.sessions, sid)
	return nil
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer abc", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		token, ok := extractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Errorf("extractBearerToken(%q) = %q, %v; want %q, %v", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	store := &sessionStoreStub{sessions: map[string]authsvc.SessionRecord{}}
	svc := authsvc.NewService(authsvc.NewJWTManager("secret", time.Hour), store, time.Hour)

	issued, err := svc.Issue(context.Background(), 42, "user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotIdentity authsvc.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Errorf("identity missing from context")
		}
		gotIdentity = identity
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(svc, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issued.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotIdentity.UserID != 42 || gotIdentity.Role != "user" {
		t.Fatalf("unexpected identity: %+v", gotIdentity)
	}

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
