package middleware

import (
	"sync"
	"time"

	"lms/audit"

	"github.com/gofiber/fiber/v2"
)

type clientWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter is fixed-window admission control keyed by client address.
// The window resets at fixed boundaries, so a burst straddling a boundary can
// admit up to twice the ceiling; that semantic is intentional.
//
// State is process-local. Behind a load balancer each instance counts
// independently; a shared counter store would be needed for a global limit.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a limiter admitting max requests per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientWindow),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it is admitted.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, ok := rl.clients[key]
	if !ok || now.Sub(cw.windowStart) > rl.window {
		cw = &clientWindow{windowStart: now}
		rl.clients[key] = cw
	}

	cw.count++
	return cw.count <= rl.max
}

// Sweep evicts entries whose window has conclusively expired, bounding the
// map against client-address churn. Runs on a coarser cadence than the
// window itself.
func (rl *RateLimiter) Sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, cw := range rl.clients {
		if now.Sub(cw.windowStart) > rl.window {
			delete(rl.clients, key)
		}
	}
}

// Size returns the number of tracked client entries.
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Handler returns the fiber middleware enforcing the limiter. Rejections are
// audited with no user id; the limiter runs before token verification.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		addr := ClientAddress(c)
		if !rl.Allow(addr) {
			audit.Record(nil, audit.ActionRateLimitExceeded, audit.ResourceRequest, nil, addr)
			return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests. Try again later.", nil)
		}
		return c.Next()
	}
}
