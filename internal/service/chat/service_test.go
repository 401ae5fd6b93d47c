package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhouzirui/minichat/backend/internal/clock"
	"github.com/zhouzirui/minichat/backend/internal/model/profile"
	chat "github.com/zhouzirui/minichat/backend/internal/service/chat"
)

func newService(maxSessions int) (*chat.Service, *clock.Manual) {
	clk := clock.NewManual(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	store := profile.NewMemoryStore(profile.Seed(), profile.DefaultID)
	return chat.NewService(store, clk, chat.Options{MaxSessions: maxSessions}), clk
}

func TestServiceMountDefaultProfile(t *testing.T) {
	svc, _ := newService(0)
	ctx := context.Background()

	session, err := svc.Mount(ctx, "")
	if err != nil {
		t.Fatalf("Mount err: %v", err)
	}
	if session.ProfileID != profile.DefaultID {
		t.Fatalf("unexpected profile: %s", session.ProfileID)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}

	p, err := svc.Profile(ctx, session.ID)
	if err != nil || p.Title != "Support Chat" {
		t.Fatalf("unexpected profile lookup: %+v %v", p, err)
	}
}

func TestServiceMountUnknownProfile(t *testing.T) {
	svc, _ := newService(0)
	if _, err := svc.Mount(context.Background(), "missing"); !errors.Is(err, chat.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc, _ := newService(0)
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Controller(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestServiceMaxSessions(t *testing.T) {
	svc, _ := newService(1)
	ctx := context.Background()

	first, err := svc.Mount(ctx, "")
	if err != nil {
		t.Fatalf("Mount err: %v", err)
	}
	if _, err := svc.Mount(ctx, "sales"); !errors.Is(err, chat.ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}
	if err := svc.Unmount(ctx, first.ID); err != nil {
		t.Fatalf("Unmount err: %v", err)
	}
	if _, err := svc.Mount(ctx, "sales"); err != nil {
		t.Fatalf("Mount after unmount err: %v", err)
	}
}

func TestServiceUnmountCancelsPendingReply(t *testing.T) {
	svc, clk := newService(0)
	ctx := context.Background()

	session, _ := svc.Mount(ctx, "")
	ctrl, err := svc.Controller(ctx, session.ID)
	if err != nil {
		t.Fatalf("Controller err: %v", err)
	}
	ctrl.Send("hello")

	if err := svc.Unmount(ctx, session.ID); err != nil {
		t.Fatalf("Unmount err: %v", err)
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", clk.Pending())
	}
	if err := svc.Unmount(ctx, session.ID); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second unmount, got %v", err)
	}
	if svc.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", svc.Count())
	}
}

func TestServiceShutdown(t *testing.T) {
	svc, clk := newService(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		session, _ := svc.Mount(ctx, "")
		ctrl, _ := svc.Controller(ctx, session.ID)
		ctrl.Send("hi")
	}
	svc.Shutdown()

	if svc.Count() != 0 || clk.Pending() != 0 {
		t.Fatalf("expected clean shutdown, count=%d pending=%d", svc.Count(), clk.Pending())
	}
}

func TestServiceSessionsAreIndependent(t *testing.T) {
	svc, clk := newService(0)
	ctx := context.Background()

	a, _ := svc.Mount(ctx, "")
	b, _ := svc.Mount(ctx, "sales")
	ctrlA, _ := svc.Controller(ctx, a.ID)
	ctrlB, _ := svc.Controller(ctx, b.ID)

	ctrlA.Send("only in A")
	clk.Advance(time.Second)

	if n := len(ctrlA.Snapshot().Messages); n != 2 {
		t.Fatalf("expected 2 messages in A, got %d", n)
	}
	if n := len(ctrlB.Snapshot().Messages); n != 0 {
		t.Fatalf("expected empty B, got %d", n)
	}
}
