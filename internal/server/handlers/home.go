package handlers

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/iudanet/otagate/internal/caltime"
	"github.com/iudanet/otagate/internal/models"
	"github.com/iudanet/otagate/internal/server/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// loginPage - данные страницы входа
type loginPage struct {
	Failed bool
}

// dashboardPage - данные панели администратора
type dashboardPage struct {
	Time     string
	Entries  []models.Entry
	Capacity int
	Synced   bool
}

// HomeHandler отображает страницу входа или панель администратора
type HomeHandler struct {
	logger   *slog.Logger
	sessions Sessions
	store    KeyStore
	clock    Clock
}

// NewHomeHandler создает новый handler главной страницы
func NewHomeHandler(logger *slog.Logger, sessions Sessions, store KeyStore, clock Clock) *HomeHandler {
	return &HomeHandler{
		logger:   logger,
		sessions: sessions,
		store:    store,
		clock:    clock,
	}
}

// Home обрабатывает GET /
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if token == "" || !h.sessions.Validate(token) {
		h.render(w, r, "login.html", loginPage{Failed: r.URL.Query().Get("error") == "1"})
		return
	}

	entries, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list entries", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	st := h.clock.Status()
	page := dashboardPage{
		Entries:  entries,
		Capacity: h.store.Capacity(),
		Synced:   st.Synced,
	}
	if st.Synced {
		page.Time = caltime.FromEpoch(st.Epoch).String()
	}

	h.render(w, r, "dashboard.html", page)
}

func (h *HomeHandler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("page", name),
			slog.Any("error", err))
	}
}
