package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/Amanc77/Datamart-app/internal/services/auth"
)

func newTestRepo(t *testing.T) *SessionRepo {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionRepo(client)
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := authsvc.SessionRecord{
		SID:       "sid-1",
		UserID:    42,
		Role:      "user",
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := repo.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != record.UserID || got.Role != record.Role || !got.ExpiresAt.Equal(record.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestGetMissingSession(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetSession(context.Background(), "missing")
	if !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := authsvc.SessionRecord{
		SID:       "sid-2",
		UserID:    7,
		Role:      "user",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := repo.DeleteSession(ctx, "sid-2"); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	if _, err := repo.GetSession(ctx, "sid-2"); !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Create(context.Background(), authsvc.SessionRecord{SID: "", UserID: 1})
	if !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
