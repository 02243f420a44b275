package middleware

import (
	"sync"
	"testing"
	"time"
)

func TestRateLimiterCeiling(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected below the ceiling", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("request above the ceiling was admitted")
	}

	// Other clients are counted independently.
	if !rl.Allow("5.6.7.8") {
		t.Fatal("unrelated client was rejected")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("requests within the ceiling were rejected")
	}
	if rl.Allow("a") {
		t.Fatal("third request in the window was admitted")
	}

	// Once the window elapses the counter starts over.
	now = now.Add(time.Minute + time.Second)
	for i := 0; i < 2; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d rejected after window reset", i+1)
		}
	}
	if rl.Allow("a") {
		t.Fatal("ceiling not enforced after reset")
	}
}

// A fixed window admits up to 2x the ceiling across a boundary. That is the
// documented semantic, not a bug.
func TestRateLimiterFixedWindowBoundaryBurst(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	admitted := 0
	for i := 0; i < 3; i++ {
		if rl.Allow("b") {
			admitted++
		}
	}

	now = now.Add(time.Minute + time.Millisecond)
	for i := 0; i < 3; i++ {
		if rl.Allow("b") {
			admitted++
		}
	}

	if admitted != 6 {
		t.Fatalf("admitted %d requests across the boundary, want 6", admitted)
	}
}

func TestRateLimiterSweepEvictsOnlyExpired(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(10, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(2 * time.Minute)
	rl.Allow("fresh")

	rl.Sweep()

	if rl.Size() != 1 {
		t.Fatalf("tracked clients after sweep = %d, want 1", rl.Size())
	}

	// The surviving entry keeps its count.
	for i := 0; i < 9; i++ {
		if !rl.Allow("fresh") {
			t.Fatalf("request %d for surviving client rejected", i+2)
		}
	}
	if rl.Allow("fresh") {
		t.Fatal("surviving client's counter was reset by the sweep")
	}
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(1000, time.Minute)

	var wg sync.WaitGroup
	var admitted sync.Map
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			count := 0
			for i := 0; i < 250; i++ {
				if rl.Allow("shared") {
					count++
				}
				if i%50 == 0 {
					rl.Sweep()
				}
			}
			admitted.Store(g, count)
		}(g)
	}
	wg.Wait()

	total := 0
	admitted.Range(func(_, v interface{}) bool {
		total += v.(int)
		return true
	})

	// 2000 requests against a ceiling of 1000 in one window; sweeps must not
	// resurrect capacity for a live window.
	if total != 1000 {
		t.Fatalf("admitted %d of 2000 concurrent requests, want exactly 1000", total)
	}
}
