package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
)

const (
	msgRateLimited        = "слишком много запросов, повторите позже"
	msgRateLimiterFailure = "сервис временно недоступен"
)

// Окно фиксированной длины: первый INCR ставит TTL ключу
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type Logger interface {
	Warn(format string, v ...interface{})
}

// RateLimiter ограничитель частоты запросов на тенанта, общий для всех инстансов через Redis
type RateLimiter struct {
	rdb      redis.Scripter
	limit    int
	window   time.Duration
	prefix   string
	failOpen bool
	logger   Logger
}

// NewRateLimiter создает ограничитель; при недоступности Redis failOpen пропускает запрос
func NewRateLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string, failOpen bool, logger Logger) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix, failOpen: failOpen, logger: logger}
}

// Middleware должен стоять после Tenant: ключ окна строится по тенанту
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, _ := GetTenantID(r.Context())
		key := fmt.Sprintf("%s:%s:%s", rl.prefix, tenantID, r.URL.Path)

		count, err := rl.incr(r.Context(), key)
		if err != nil {
			rl.logger.Warn("RateLimiter: redis error for tenant=%s path=%s: %v", tenantID, r.URL.Path, err)
			if rl.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			handlers.RespondServiceUnavailable(w, msgRateLimiterFailure)
			return
		}
		if count > int64(rl.limit) {
			rl.logger.Warn("RateLimiter: limit %d exceeded for tenant=%s path=%s", rl.limit, tenantID, r.URL.Path)
			handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	return fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Int64()
}
