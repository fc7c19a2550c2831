package planlock

import (
	"context"
	"sync"
	"testing"

	"github.com/kochimetro/induction-engine/internal/platform/logger"
)

func TestLocalLocker_SecondTryLockFailsUntilReleased(t *testing.T) {
	locker, err := NewLocker("", logger.NewNop())
	if err != nil {
		t.Fatalf("NewLocker: %v", err)
	}
	ctx := context.Background()

	ok, release, err := locker.TryLock(ctx, "2026-03-15")
	if err != nil || !ok {
		t.Fatalf("expected first TryLock to succeed, got ok=%v err=%v", ok, err)
	}

	ok2, _, err := locker.TryLock(ctx, "2026-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok2 {
		t.Fatalf("expected second TryLock for the same date to fail while held")
	}

	release()

	ok3, release3, err := locker.TryLock(ctx, "2026-03-15")
	if err != nil || !ok3 {
		t.Fatalf("expected TryLock to succeed after release, got ok=%v err=%v", ok3, err)
	}
	release3()
}

func TestLocalLocker_DifferentDatesDoNotContend(t *testing.T) {
	locker, err := NewLocker("", logger.NewNop())
	if err != nil {
		t.Fatalf("NewLocker: %v", err)
	}
	ctx := context.Background()

	ok1, release1, _ := locker.TryLock(ctx, "2026-03-15")
	ok2, release2, _ := locker.TryLock(ctx, "2026-03-16")
	if !ok1 || !ok2 {
		t.Fatalf("expected locks on distinct dates to both succeed")
	}
	release1()
	release2()
}

func TestLocalLocker_ConcurrentAcquireOnlyOneWinner(t *testing.T) {
	locker, err := NewLocker("", logger.NewNop())
	if err != nil {
		t.Fatalf("NewLocker: %v", err)
	}
	ctx := context.Background()

	const attempts = 50
	var wg sync.WaitGroup
	var winners int
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := locker.TryLock(ctx, "2026-07-01")
			if err != nil {
				return
			}
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly 1 winner across %d concurrent attempts, got %d", attempts, winners)
	}
}
