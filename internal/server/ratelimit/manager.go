package ratelimit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/redis/go-redis/v9"
)

const redisBreakerDuration = 30 * time.Second

// Options configure a Manager.
type Options struct {
	Enabled bool
	// Rules maps a route key to a "N/period" budget.
	Rules map[string]string
	// Redis, when set, holds shared counters. Failures fall back to memory.
	Redis       redis.Scripter
	RedisPrefix string
	Now         func() time.Time
	Logger      logging.Logger
}

// Manager holds the per-route rules and picks a backend for each check. It
// is safe for concurrent use; rules are fixed after construction.
type Manager struct {
	enabled atomic.Bool
	rules   map[string]Rule
	now     func() time.Time
	log     logging.Logger

	memory *MemoryLimiter
	redis  *RedisLimiter

	mu           sync.Mutex
	breakerUntil time.Time
}

func NewManager(opts Options) (*Manager, error) {
	rules := make(map[string]Rule, len(opts.Rules))
	for route, text := range opts.Rules {
		r, err := ParseRule(text)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", route, err)
		}
		rules[route] = r
	}

	m := &Manager{
		rules:  rules,
		now:    opts.Now,
		log:    opts.Logger,
		memory: NewMemoryLimiter(),
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.log == nil {
		m.log = logging.Nop{}
	}
	if opts.Redis != nil {
		m.redis = NewRedisLimiter(opts.Redis, opts.RedisPrefix)
	}
	m.enabled.Store(opts.Enabled)
	return m, nil
}

// SetEnabled switches limiting on or off for every route at once.
func (m *Manager) SetEnabled(v bool) { m.enabled.Store(v) }

func (m *Manager) Enabled() bool { return m.enabled.Load() }

// Rule returns the budget for route.
func (m *Manager) Rule(route string) (Rule, bool) {
	r, ok := m.rules[route]
	return r, ok
}

// Routes lists the configured route keys in order.
func (m *Manager) Routes() []string {
	out := make([]string, 0, len(m.rules))
	for k := range m.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Admit counts one call by client on route. It returns common.ErrRateLimited
// with the Result when the call is over budget. Disabled managers and routes
// without a rule always admit.
func (m *Manager) Admit(ctx context.Context, client, route string) (Result, error) {
	if m == nil || !m.enabled.Load() {
		return Result{Allowed: true}, nil
	}
	rule, ok := m.rules[route]
	if !ok {
		return Result{Allowed: true}, nil
	}

	key := route + ":" + client
	now := m.now()

	res, ok := m.allowRedis(ctx, key, rule, now)
	if !ok {
		res, _ = m.memory.Allow(ctx, key, rule, now)
	}
	if !res.Allowed {
		return res, fmt.Errorf("%w: %s", common.ErrRateLimited, rule)
	}
	return res, nil
}

func (m *Manager) allowRedis(ctx context.Context, key string, rule Rule, now time.Time) (Result, bool) {
	if m.redis == nil || m.isBreakerActive(now) {
		return Result{}, false
	}
	res, err := m.redis.Allow(ctx, key, rule, now)
	if err != nil {
		m.tripBreaker(ctx, err, now)
		return Result{}, false
	}
	return res, true
}

func (m *Manager) isBreakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *Manager) tripBreaker(ctx context.Context, err error, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(redisBreakerDuration)
	m.log.Warn(ctx, "rate limit: redis unavailable, falling back to memory",
		"error", err, "retry_after", redisBreakerDuration)
}
