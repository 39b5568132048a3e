package middleware

import (
	"CedulaOCR/pkg/redis"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type Options struct {
	RateLimit float64
	Burst     int
	// Store shares the rate limit between replicas when set.
	Store redis.IRedis
}

type middleware struct {
	rateLimitter        limiter
	fallbackLimiter     limiter
	loggingMiddleware   fiber.Handler
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

func New(logger *logrus.Logger, opts Options) Middleware {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}

	local := newRateLimiter(rate.Limit(opts.RateLimit), opts.Burst)
	var rateLimit limiter = local
	if opts.Store != nil {
		rateLimit = newRedisRateLimiter(opts.Store, rate.Limit(opts.RateLimit), opts.Burst)
	}

	return &middleware{
		rateLimitter:        rateLimit,
		fallbackLimiter:     local,
		loggingMiddleware:   LoggerConfig(logger),
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return m.loggingMiddleware
}
