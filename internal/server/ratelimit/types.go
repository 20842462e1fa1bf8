// Package ratelimit admits or rejects calls against a per-(client, route)
// budget. Counters live in process memory by default; a Redis backend can
// share them between replicas.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts one call against key under rule and reports whether it fits.
// Implementations must increment and compare atomically.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule, now time.Time) (Result, error)
}

// Rule is a fixed-window budget: at most Count calls per Period.
type Rule struct {
	Count  int
	Period time.Duration
	text   string
}

var namedPeriods = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRule parses "<count>/<period>". The period is second, minute, hour or
// day (a trailing "s" is allowed), or a Go duration such as "30s".
func ParseRule(s string) (Rule, error) {
	countStr, periodStr, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rule{}, fmt.Errorf("rate limit %q: want <count>/<period>", s)
	}

	count, err := strconv.Atoi(strings.TrimSpace(countStr))
	if err != nil || count <= 0 {
		return Rule{}, fmt.Errorf("rate limit %q: count must be a positive integer", s)
	}

	periodStr = strings.ToLower(strings.TrimSpace(periodStr))
	period, ok := namedPeriods[strings.TrimSuffix(periodStr, "s")]
	if !ok {
		period, err = time.ParseDuration(periodStr)
		if err != nil || period <= 0 {
			return Rule{}, fmt.Errorf("rate limit %q: unknown period %q", s, periodStr)
		}
	}

	return Rule{Count: count, Period: period, text: fmt.Sprintf("%d/%s", count, periodStr)}, nil
}

// MustParseRule is ParseRule for constants; it panics on error.
func MustParseRule(s string) Rule {
	r, err := ParseRule(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rule) String() string {
	if r.text != "" {
		return r.text
	}
	return fmt.Sprintf("%d/%s", r.Count, r.Period)
}

// window returns the index of the fixed window containing now and the time
// that window ends.
func (r Rule) window(now time.Time) (int64, time.Time) {
	p := int64(r.Period)
	idx := now.UnixNano() / p
	return idx, time.Unix(0, (idx+1)*p).UTC()
}
