package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/otagate/internal/firmware"
	"github.com/iudanet/otagate/internal/server/handlers"
	"github.com/iudanet/otagate/internal/server/middleware"
)

// Ограничение попыток входа с одного адреса
const (
	LoginRate   = 5
	LoginWindow = time.Minute
)

// Deps - зависимости обработчиков
type Deps struct {
	Logger       *slog.Logger
	Sessions     handlers.Sessions
	Store        handlers.KeyStore
	Clock        handlers.Clock
	Flasher      firmware.Flasher
	Restarter    firmware.Restarter
	LoginLimiter *middleware.RateLimiter
	PasswordHash string
	Version      string
	StorageName  string
	MaxLine      int
}

// NewRouter собирает маршруты и цепочку middleware
func NewRouter(d Deps) http.Handler {
	limiter := d.LoginLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(LoginRate, LoginWindow)
	}

	auth := handlers.NewAuthHandler(d.Logger, d.Sessions, d.PasswordHash)
	home := handlers.NewHomeHandler(d.Logger, d.Sessions, d.Store, d.Clock)
	keys := handlers.NewKeysHandler(d.Logger, d.Store)
	update := handlers.NewUpdateHandler(d.Logger, d.Flasher, d.Restarter, d.MaxLine)
	system := handlers.NewSystemHandler(d.Logger, d.Clock, d.Version, d.StorageName)

	requireSession := middleware.SessionMiddleware(d.Logger, d.Sessions)
	loginLimit := middleware.RateLimitMiddleware(limiter, d.Logger)

	mux := http.NewServeMux()

	// страницы
	mux.HandleFunc("GET /{$}", home.Home)
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(auth.Login)))
	mux.HandleFunc("GET /logout", auth.Logout)
	mux.Handle("POST /doupdate", requireSession(http.HandlerFunc(update.Update)))

	// хранилище, требует сессию
	mux.Handle("GET /api/keys", requireSession(http.HandlerFunc(keys.List)))
	mux.Handle("POST /api/keys", requireSession(http.HandlerFunc(keys.AddForm)))
	mux.Handle("DELETE /api/keys", requireSession(http.HandlerFunc(keys.DeleteForm)))

	// JSON API без сессии
	mux.HandleFunc("POST /api/insert", keys.Insert)
	mux.HandleFunc("POST /api/remove", keys.Remove)
	mux.HandleFunc("GET /api/print", keys.List)
	mux.HandleFunc("GET /api/time", system.Time)
	mux.HandleFunc("GET /api/health", system.Health)

	var handler http.Handler = mux
	handler = middleware.LoggingWithSkip(d.Logger, []string{"/api/health"})(handler)
	handler = middleware.RecoveryMiddleware(d.Logger)(handler)

	return handler
}
