package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danmelak/shopcart/internal/notifications"
)

type scriptedNotifier struct {
	err   error
	calls int
}

func (s *scriptedNotifier) SendWelcome(ctx context.Context, in notifications.SendWelcomeInput) error {
	s.calls++
	return s.err
}

func TestProtectedNotifierPassesThrough(t *testing.T) {
	inner := &scriptedNotifier{}
	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{})

	err := n.SendWelcome(context.Background(), notifications.SendWelcomeInput{UserID: "u1", Email: "dan@example.com"})

	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("got %d inner calls, want 1", inner.calls)
	}
}

func TestProtectedNotifierOpensAfterFailures(t *testing.T) {
	inner := &scriptedNotifier{err: errors.New("provider down")}
	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		FailureThreshold: 3,
		Cooldown:         time.Hour,
	})

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := n.SendWelcome(ctx, notifications.SendWelcomeInput{}); err == nil {
			t.Fatalf("send %d should fail", i)
		}
	}

	// circuit is open now: the provider must not be called again
	err := n.SendWelcome(ctx, notifications.SendWelcomeInput{})

	if !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("got %v, want ErrCircuitOpen", err)
	}
	if inner.calls != 3 {
		t.Fatalf("got %d inner calls, want 3", inner.calls)
	}
}

func TestProtectedNotifierRecoversAfterCooldown(t *testing.T) {
	inner := &scriptedNotifier{err: errors.New("provider down")}
	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		FailureThreshold: 2,
		Cooldown:         20 * time.Millisecond,
	})

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = n.SendWelcome(ctx, notifications.SendWelcomeInput{})
	}

	if err := n.SendWelcome(ctx, notifications.SendWelcomeInput{}); !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("got %v, want ErrCircuitOpen", err)
	}

	// provider comes back; after the cooldown one trial call goes through
	// and closes the circuit again
	inner.err = nil
	time.Sleep(30 * time.Millisecond)

	if err := n.SendWelcome(ctx, notifications.SendWelcomeInput{}); err != nil {
		t.Fatalf("half-open trial failed: %v", err)
	}
	if err := n.SendWelcome(ctx, notifications.SendWelcomeInput{}); err != nil {
		t.Fatalf("send after recovery failed: %v", err)
	}
}
