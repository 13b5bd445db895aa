package llm

import (
	"context"
	"testing"
	"time"
)

func TestDisabledLimiterIsNoop(t *testing.T) {
	var l *rpsLimiter
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("nil limiter Acquire: %v", err)
	}
	l.Stop()
}

func TestLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := newRPSLimiter(1, 2)
	defer l.Stop()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("burst acquire %d: %v", i, err)
		}
	}

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(short); err == nil {
		t.Fatal("expected Acquire to block after burst was drained")
	}
}

func TestLimiterAcquireAfterStop(t *testing.T) {
	l := newRPSLimiter(1, 1)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	l.Stop()
	if err := l.Acquire(context.Background()); err == nil {
		t.Fatal("expected error after Stop")
	}
}
