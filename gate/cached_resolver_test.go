package gate

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingResolver struct {
	calls   int
	profile Profile
	err     error
}

func (r *countingResolver) Resolve(context.Context, uint) (Profile, error) {
	r.calls++
	return r.profile, r.err
}

func TestCachedResolver_TTL(t *testing.T) {
	inner := &countingResolver{profile: NewStaticProfile(1, "etudiant")}
	c := NewCachedResolver[uint](inner, time.Minute)
	clock := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Resolve(ctx, 1); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call while fresh, got %d", inner.calls)
	}

	clock = clock.Add(2 * time.Minute)
	inner.profile = NewStaticProfile(2, "employeur")
	p, _ := c.Resolve(ctx, 1)
	if inner.calls != 2 || p.Name() != "employeur" {
		t.Fatalf("expected refetch after expiry, calls=%d name=%s", inner.calls, p.Name())
	}
}

func TestCachedResolver_Invalidate(t *testing.T) {
	inner := &countingResolver{profile: NewStaticProfile(1, "etudiant")}
	c := NewCachedResolver[uint](inner, time.Hour)
	ctx := context.Background()

	_, _ = c.Resolve(ctx, 1)
	_, _ = c.Resolve(ctx, 2)
	c.Invalidate(1)
	_, _ = c.Resolve(ctx, 1)
	_, _ = c.Resolve(ctx, 2)
	if inner.calls != 3 {
		t.Fatalf("expected 3 inner calls, got %d", inner.calls)
	}

	c.InvalidateAll()
	_, _ = c.Resolve(ctx, 2)
	if inner.calls != 4 {
		t.Fatalf("expected refetch after InvalidateAll, got %d", inner.calls)
	}
}

func TestCachedResolver_ErrorsNotCached(t *testing.T) {
	inner := &countingResolver{err: errors.New("db down")}
	c := NewCachedResolver[uint](inner, time.Hour)
	if _, err := c.Resolve(context.Background(), 1); err == nil {
		t.Fatalf("expected error")
	}
	inner.err = nil
	inner.profile = NewStaticProfile(1, "etudiant")
	if p, err := c.Resolve(context.Background(), 1); err != nil || p == nil {
		t.Fatalf("expected recovery after error, got %v %v", p, err)
	}
}
