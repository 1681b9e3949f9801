package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateWindow = time.Minute
	// Idle clients are dropped once the table grows past this size.
	maxTrackedClients = 4096
)

type clientEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// clientLimiter is a token bucket per client: perWindow requests per
// minute with a burst of perWindow.
type clientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientEntry
	perWindow int
	now       func() time.Time
}

func newClientLimiter(perWindow int) *clientLimiter {
	if perWindow < 1 {
		perWindow = 1
	}
	return &clientLimiter{
		clients:   make(map[string]*clientEntry),
		perWindow: perWindow,
		now:       time.Now,
	}
}

// allow takes one token for id. When the bucket is empty it reports how
// long until the next token.
func (c *clientLimiter) allow(id string) (ok bool, remaining int, retryAfter time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, found := c.clients[id]
	if !found {
		if len(c.clients) >= maxTrackedClients {
			c.evictIdle(now)
		}
		e = &clientEntry{lim: rate.NewLimiter(rate.Every(rateWindow/time.Duration(c.perWindow)), c.perWindow)}
		c.clients[id] = e
	}
	e.lastSeen = now

	if e.lim.AllowN(now, 1) {
		return true, int(math.Floor(e.lim.TokensAt(now))), 0
	}
	r := e.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, 0, delay
}

func (c *clientLimiter) evictIdle(now time.Time) {
	for id, e := range c.clients {
		if now.Sub(e.lastSeen) > 2*rateWindow {
			delete(c.clients, id)
		}
	}
}

const clientIDHeader = "X-Test-Client-ID"

// clientID is the remote IP. RealIP has already rewritten RemoteAddr when a
// proxy header is present. The client ID header is honored only when
// trustHeader is set.
func clientID(r *http.Request, trustHeader bool) string {
	if trustHeader {
		if id := r.Header.Get(clientIDHeader); id != "" {
			return id
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// rateLimit is skipped entirely in mock mode.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.llm.IsMock() {
			next.ServeHTTP(w, r)
			return
		}
		id := clientID(r, s.cfg.TrustClientIDHeader)
		ok, remaining, retryAfter := s.limiter.allow(id)
		if !ok {
			secs := int(math.Ceil(retryAfter.Seconds()))
			s.log.Warn("[server] Rate limit exceeded", "client", id, "retry_after_s", secs)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"status":     statusError,
				"message":    "Rate limit exceeded",
				"retryAfter": secs,
			})
			return
		}
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.perWindow))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(s.limiter.now().Add(rateWindow).Unix(), 10))
		next.ServeHTTP(w, r)
	})
}
