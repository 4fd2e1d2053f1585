package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/helpdesk/internal/models"
)

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	mgr := NewManager(store, time.Hour)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return clock }

	user := &models.User{ID: 7, Username: "alice", Role: models.RoleUser}
	s, err := mgr.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" || s.UserID != 7 || s.IsAdmin() {
		t.Fatalf("unexpected session %+v", s)
	}

	got, err := mgr.Get(ctx, s.ID)
	if err != nil || got.Username != "alice" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if err := mgr.Destroy(ctx, s.ID); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := mgr.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Destroy error = %v, want ErrNotFound", err)
	}
	if err := mgr.Destroy(ctx, s.ID); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	mgr := NewManager(store, time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return clock }

	s, err := mgr.Create(ctx, &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsAdmin() {
		t.Fatal("admin session not flagged as admin")
	}

	clock = clock.Add(59 * time.Second)
	if _, err := mgr.Get(ctx, s.ID); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}
	clock = clock.Add(time.Second)
	if _, err := mgr.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get at expiry error = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("expired session should be removed from the store")
	}
}

func TestManagerEmptyID(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), time.Minute)
	if _, err := mgr.Get(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_ = store.Save(ctx, &Session{ID: "old", ExpiresAt: now.Add(-time.Second)})
	_ = store.Save(ctx, &Session{ID: "live", ExpiresAt: now.Add(time.Hour)})

	if n := store.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, err := store.Get(ctx, "live"); err != nil {
		t.Fatalf("live session swept: %v", err)
	}
}
