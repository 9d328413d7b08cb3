package middleware

import (
	"log/slog"
	"net/http"
)

// SessionCookieName имя cookie с токеном сессии
const SessionCookieName = "sessionId"

// SessionValidator проверяет токен сессии
type SessionValidator interface {
	Validate(token string) bool
}

// SessionToken извлекает токен сессии из cookie запроса
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionMiddleware создает middleware для проверки cookie сессии.
// Тело запроса при отказе не читается
func SessionMiddleware(logger *slog.Logger, sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				logger.Warn("Missing session cookie", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			if !sessions.Validate(token) {
				logger.Warn("Invalid or expired session", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized","message":"session required"}`))
}
