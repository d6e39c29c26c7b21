// Package ratelimit implements sliding-window request rate limiting backed by
// the shared cache.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/humzam/compute-jobs-dashboard/internal/core"
	"github.com/humzam/compute-jobs-dashboard/internal/data"
)

// Category classifies a request for rate limiting purposes.
type Category string

const (
	// CategoryRead covers GET and other safe requests.
	CategoryRead Category = "read"
	// CategoryWrite covers mutating requests.
	CategoryWrite Category = "write"
	// CategoryStats covers the statistics endpoint, which is costlier than a
	// plain read.
	CategoryStats Category = "stats"
)

// CategoryFor classifies a request by method and path. Stats requests are
// matched by path suffix so they keep their own budget regardless of method.
func CategoryFor(method, path string) Category {
	trimmed := strings.TrimSuffix(path, "/")
	if strings.HasSuffix(trimmed, "/stats") {
		return CategoryStats
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return CategoryWrite
	default:
		return CategoryRead
	}
}

// Policy bounds one category to MaxRequests per sliding Window.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultPolicies returns the per-category limits applied when none are configured.
func DefaultPolicies() map[Category]Policy {
	return map[Category]Policy{
		CategoryRead:  {MaxRequests: 100, Window: time.Minute},
		CategoryWrite: {MaxRequests: 20, Window: time.Minute},
		CategoryStats: {MaxRequests: 30, Window: time.Minute},
	}
}

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	Window     time.Duration
	RetryAfter time.Duration
}

// Limiter enforces per-identity sliding-window limits. The window is a pruned
// log of request timestamps stored in the cache, so limits hold across
// processes sharing the same cache.
type Limiter struct {
	cache        core.CacheRepository
	policies     map[Category]Policy
	exempt       map[string]struct{}
	timeProvider data.TimeProvider
	logger       *slog.Logger
}

// Options bundles dependencies for NewLimiter.
type Options struct {
	Cache        core.CacheRepository
	Policies     map[Category]Policy
	Exempt       []string
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
}

// NewLimiter creates a Limiter with the given cache, policies, and exemptions.
func NewLimiter(opts Options) *Limiter {
	policies := opts.Policies
	if len(policies) == 0 {
		policies = DefaultPolicies()
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exempt := make(map[string]struct{}, len(opts.Exempt))
	for _, id := range opts.Exempt {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			exempt[trimmed] = struct{}{}
		}
	}

	return &Limiter{
		cache:        opts.Cache,
		policies:     policies,
		exempt:       exempt,
		timeProvider: tp,
		logger:       logger,
	}
}

// Exempt reports whether the identity bypasses rate limiting entirely.
func (l *Limiter) Exempt(identity string) bool {
	_, ok := l.exempt[identity]
	return ok
}

func cacheKey(identity string, category Category) string {
	return fmt.Sprintf("ratelimit:%s:%s", identity, category)
}

// Check records one request for (identity, category) and reports whether it is
// within the policy. Rejected requests are not recorded, so a client hammering
// a full window does not push its own reset further out.
//
// Cache failures fail open: limiting is protection, not correctness, and an
// unavailable cache should not take the API down with it.
func (l *Limiter) Check(ctx context.Context, identity string, category Category) Result {
	policy, ok := l.policies[category]
	if !ok {
		policy = DefaultPolicies()[CategoryRead]
	}

	allowed := Result{
		Allowed:   true,
		Limit:     policy.MaxRequests,
		Remaining: policy.MaxRequests,
		Window:    policy.Window,
	}

	if l.Exempt(identity) {
		return allowed
	}

	now := l.timeProvider.Now()
	key := cacheKey(identity, category)

	raw, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.WarnContext(ctx, "rate limit cache read failed, allowing request",
			"err", err, "identity", identity, "category", category)
		return allowed
	}

	var stamps []int64
	if len(raw) > 0 {
		if unmarshalErr := json.Unmarshal(raw, &stamps); unmarshalErr != nil {
			l.logger.WarnContext(ctx, "rate limit window corrupt, resetting",
				"err", unmarshalErr, "key", key)
			stamps = nil
		}
	}

	cutoff := now.Add(-policy.Window).Unix()
	pruned := stamps[:0]
	var oldest int64
	for _, ts := range stamps {
		if ts <= cutoff {
			continue
		}
		if oldest == 0 || ts < oldest {
			oldest = ts
		}
		pruned = append(pruned, ts)
	}

	if len(pruned) >= policy.MaxRequests {
		// Clients are told to back off for the full window, not until the
		// oldest entry ages out.
		return Result{
			Allowed:    false,
			Limit:      policy.MaxRequests,
			Remaining:  0,
			Reset:      time.Unix(oldest, 0).Add(policy.Window),
			Window:     policy.Window,
			RetryAfter: policy.Window,
		}
	}

	pruned = append(pruned, now.Unix())
	encoded, err := json.Marshal(pruned)
	if err == nil {
		// TTL slightly past the window so an idle key expires on its own.
		err = l.cache.Set(ctx, key, encoded, policy.Window+10*time.Second)
	}
	if err != nil {
		l.logger.WarnContext(ctx, "rate limit cache write failed, allowing request",
			"err", err, "identity", identity, "category", category)
	}

	remaining := policy.MaxRequests - len(pruned)
	resetFrom := pruned[0]
	return Result{
		Allowed:   true,
		Limit:     policy.MaxRequests,
		Remaining: remaining,
		Reset:     time.Unix(resetFrom, 0).Add(policy.Window),
		Window:    policy.Window,
	}
}
