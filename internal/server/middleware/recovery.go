package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// resetter - ResponseWriter, умеющий отбросить частично записанный ответ
type resetter interface {
	Reset()
}

// RecoveryMiddleware создает middleware для восстановления после паники.
// Логирует стек вызовов и возвращает 500. Если ответ буферизован
// (httpwire.ResponseWriter), уже записанная часть отбрасывается
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				// обработчик сам прервал ответ: соединение закрывается без ответа
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.Error("Panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"stack", string(debug.Stack()),
				)

				if rw, ok := w.(resetter); ok {
					rw.Reset()
				}

				// детали паники клиенту не раскрываются
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"success":false,"error":"Internal Server Error"}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
