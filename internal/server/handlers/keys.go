package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/otagate/internal/keystore"
	"github.com/iudanet/otagate/internal/models"
	"github.com/iudanet/otagate/internal/validation"
	"github.com/iudanet/otagate/pkg/api"
)

//go:generate moq -out keystore_mock.go . KeyStore

// KeyStore - ограниченное хранилище ключ-значение
type KeyStore interface {
	Add(ctx context.Context, value string) (string, error)
	RemoveByKey(ctx context.Context, key string) error
	RemoveByValue(ctx context.Context, value string) (string, error)
	List(ctx context.Context) ([]models.Entry, error)
	Capacity() int
}

// KeysHandler обрабатывает запросы к хранилищу
type KeysHandler struct {
	logger *slog.Logger
	store  KeyStore
}

// NewKeysHandler создает новый handler для хранилища
func NewKeysHandler(logger *slog.Logger, store KeyStore) *KeysHandler {
	return &KeysHandler{
		logger: logger,
		store:  store,
	}
}

// List обрабатывает GET /api/keys и GET /api/print
func (h *KeysHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list entries", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.ListResponse{
		Entries:  make([]api.Entry, 0, len(entries)),
		Count:    len(entries),
		Capacity: h.store.Capacity(),
		Success:  true,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, api.Entry{Key: e.Key, Value: e.Value})
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// AddForm обрабатывает POST /api/keys с телом value=<string>
func (h *KeysHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if !form.Has("value") {
		sendError(h.logger, w, "value is required", http.StatusBadRequest)
		return
	}

	h.add(w, r, form.Get("value"))
}

// DeleteForm обрабатывает DELETE /api/keys с телом key=<kN> или value=<string>
func (h *KeysHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	h.remove(w, r, api.KeyRequest{Key: form.Get("key"), Value: form.Get("value")})
}

// Insert обрабатывает POST /api/insert с JSON {"value": "..."}
func (h *KeysHandler) Insert(w http.ResponseWriter, r *http.Request) {
	var req api.KeyRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	h.add(w, r, req.Value)
}

// Remove обрабатывает POST /api/remove с JSON {"value": "..."} или {"key": "..."}
func (h *KeysHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req api.KeyRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	h.remove(w, r, req)
}

func (h *KeysHandler) add(w http.ResponseWriter, r *http.Request, value string) {
	ctx := r.Context()

	key, err := h.store.Add(ctx, value)
	if err != nil {
		h.sendStoreError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "entry stored", slog.String("key", key), slog.Int("size", len(value)))
	sendJSON(h.logger, w, api.KeyResponse{Key: key, Message: "stored", Success: true}, http.StatusOK)
}

func (h *KeysHandler) remove(w http.ResponseWriter, r *http.Request, req api.KeyRequest) {
	ctx := r.Context()

	var key string
	var err error

	switch {
	case req.Key != "":
		if verr := validation.ValidateKey(req.Key); verr != nil {
			sendError(h.logger, w, verr.Error(), http.StatusBadRequest)
			return
		}
		key = req.Key
		err = h.store.RemoveByKey(ctx, key)
	case req.Value != "":
		key, err = h.store.RemoveByValue(ctx, req.Value)
	default:
		sendError(h.logger, w, "key or value is required", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.sendStoreError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "entry removed", slog.String("key", key))
	sendJSON(h.logger, w, api.KeyResponse{Key: key, Message: "removed", Success: true}, http.StatusOK)
}

// sendStoreError отображает ошибки хранилища в HTTP статусы
func (h *KeysHandler) sendStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, keystore.ErrEmptyValue), errors.Is(err, keystore.ErrValueTooLong):
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, keystore.ErrCapacityExceeded):
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, keystore.ErrNotFound):
		sendError(h.logger, w, err.Error(), http.StatusNotFound)
	default:
		h.logger.ErrorContext(r.Context(), "store operation failed", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
	}
}
