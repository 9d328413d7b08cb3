package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/otagate/internal/crypto"
	"github.com/iudanet/otagate/internal/server/middleware"
)

//go:generate moq -out sessions_mock.go . Sessions

// Sessions - единственная сессия администратора
type Sessions interface {
	Create() (string, error)
	Validate(token string) bool
	Destroy()
	IdleTimeout() time.Duration
}

// AuthHandler обрабатывает вход и выход администратора
type AuthHandler struct {
	logger       *slog.Logger
	sessions     Sessions
	passwordHash string
}

// NewAuthHandler создает новый handler для авторизации.
// passwordHash - Argon2id хеш пароля администратора
func NewAuthHandler(logger *slog.Logger, sessions Sessions, passwordHash string) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		sessions:     sessions,
		passwordHash: passwordHash,
	}
}

// Login обрабатывает POST /login
// Успех: cookie сессии и редирект на /. Ошибка: редирект на /?error=1 без cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := parseForm(r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to parse login form", slog.Any("error", err))
		redirect(w, "/?error=1")
		return
	}

	password := form.Get("password")
	if password == "" {
		redirect(w, "/?error=1")
		return
	}

	if err := crypto.VerifyPassword(password, h.passwordHash); err != nil {
		h.logger.WarnContext(ctx, "login failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.Any("error", err))
		redirect(w, "/?error=1")
		return
	}

	token, err := h.sessions.Create()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.IdleTimeout() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	h.logger.InfoContext(ctx, "admin logged in", slog.String("remote_addr", r.RemoteAddr))
	redirect(w, "/")
}

// Logout обрабатывает GET /logout
// Сессия уничтожается только по предъявлению действующего токена
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" && h.sessions.Validate(token) {
		h.sessions.Destroy()
		h.logger.InfoContext(r.Context(), "admin logged out")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	redirect(w, "/")
}
