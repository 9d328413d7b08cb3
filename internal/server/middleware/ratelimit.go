package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// maxBuckets ограничивает число отслеживаемых адресов
const maxBuckets = 256

// RateLimiter ограничивает число запросов с одного адреса в окне времени.
// Окно фиксированное: счетчик сбрасывается через window после первого запроса
type RateLimiter struct {
	buckets map[string]*bucket
	now     func() time.Time
	rate    int
	window  time.Duration
	mu      sync.Mutex
}

// bucket - счетчик запросов одного адреса
type bucket struct {
	start  time.Time
	tokens int
}

// NewRateLimiter создает rate limiter: rate запросов за window
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		rate:    rate,
		window:  window,
	}
}

// Allow проверяет, разрешен ли запрос для ключа (IP адреса)
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.start) >= rl.window {
		if !ok && len(rl.buckets) >= maxBuckets {
			rl.pruneLocked(now)
		}
		b = &bucket{start: now, tokens: rl.rate}
		rl.buckets[key] = b
	}

	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

// pruneLocked удаляет истекшие buckets; если их нет - самый старый
func (rl *RateLimiter) pruneLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time

	for key, b := range rl.buckets {
		if now.Sub(b.start) >= rl.window {
			delete(rl.buckets, key)
			continue
		}
		if oldestKey == "" || b.start.Before(oldest) {
			oldestKey, oldest = key, b.start
		}
	}

	if len(rl.buckets) >= maxBuckets {
		delete(rl.buckets, oldestKey)
	}
}

// RateLimitMiddleware создает middleware, отвечающий 429 при превышении лимита
func RateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !limiter.Allow(ip) {
				logger.Warn("Rate limit exceeded",
					"ip", ip,
					"method", r.Method,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retryAfter(limiter.window))
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"error":"Too Many Requests","message":"rate limit exceeded, please try again later"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter возвращает значение заголовка Retry-After в секундах
func retryAfter(window time.Duration) string {
	return strconv.Itoa(int(window.Round(time.Second) / time.Second))
}

// clientIP возвращает IP адрес собеседника.
// Контроллер работает без прокси, поэтому X-Forwarded-For не учитывается
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
