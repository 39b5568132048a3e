package middleware

import (
	"CedulaOCR/pkg/redis"
	"context"
	"math"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// rateLimiter keeps one token bucket per client inside this process.
type rateLimiter struct {
	bucket    map[string]*rate.Limiter
	rate      rate.Limit
	burstSize int
	mutex     *sync.RWMutex
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		bucket:    make(map[string]*rate.Limiter),
		rate:      reqRate,
		burstSize: burstSize,
		mutex:     &sync.RWMutex{},
	}
}

func (r *rateLimiter) GetLimiterFrom(ip string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exist := r.bucket[ip]; !exist {
		r.bucket[ip] = rate.NewLimiter(r.rate, r.burstSize)
	}

	return r.bucket[ip]
}

func (r *rateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return r.GetLimiterFrom(key).Allow(), nil
}

// redisRateLimiter shares a fixed one second window between replicas. The
// window admits rate+burst hits.
type redisRateLimiter struct {
	store  redis.IRedis
	limit  int64
	window time.Duration
}

func newRedisRateLimiter(store redis.IRedis, reqRate rate.Limit, burstSize int) *redisRateLimiter {
	return &redisRateLimiter{
		store:  store,
		limit:  int64(math.Ceil(float64(reqRate))) + int64(burstSize),
		window: time.Second,
	}
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	hits, err := r.store.IncrWindow(ctx, "ratelimit:"+key, r.window)
	if err != nil {
		return false, err
	}
	return hits <= r.limit, nil
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()

	allowed, err := m.rateLimitter.Allow(ctx.UserContext(), clientIP)
	if err != nil {
		// the shared store is down, keep serving on the local buckets
		m.log.Warnf("rate limit store unavailable: %v", err)
		allowed, _ = m.fallbackLimiter.Allow(ctx.UserContext(), clientIP)
	}

	if !allowed {
		m.log.Warnf("too many requests for IP %s", clientIP)
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests",
			"code":  "TOO_MANY_REQUESTS",
		})
	}

	return ctx.Next()
}
