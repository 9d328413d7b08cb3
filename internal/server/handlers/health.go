package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/otagate/internal/caltime"
	"github.com/iudanet/otagate/internal/timesync"
	"github.com/iudanet/otagate/pkg/api"
)

//go:generate moq -out clock_mock.go . Clock

// Clock - часы контроллера
type Clock interface {
	Status() timesync.Status
}

// SystemHandler обрабатывает health check и запросы времени
type SystemHandler struct {
	logger  *slog.Logger
	clock   Clock
	version string
	storage string
}

// NewSystemHandler создает новый handler для служебных запросов
func NewSystemHandler(logger *slog.Logger, clock Clock, version, storage string) *SystemHandler {
	return &SystemHandler{
		logger:  logger,
		clock:   clock,
		version: version,
		storage: storage,
	}
}

// Health обрабатывает GET /api/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status:  "ok",
		Version: h.version,
		Storage: h.storage,
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Time обрабатывает GET /api/time
// Несинхронизированные часы отдаются с synced=false, ошибка синхронизации не раскрывается
func (h *SystemHandler) Time(w http.ResponseWriter, r *http.Request) {
	st := h.clock.Status()

	resp := api.TimeResponse{
		Epoch:   st.Epoch,
		Success: true,
		Synced:  st.Synced,
		DST:     st.DST,
	}
	if st.Synced {
		resp.Time = caltime.FromEpoch(st.Epoch).String()
	}
	if st.LastSync > 0 {
		resp.LastSync = caltime.FromEpoch(st.LastSync).String()
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
