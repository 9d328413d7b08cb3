package handlers

import (
	"bufio"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/otagate/internal/firmware"
	"github.com/iudanet/otagate/internal/httpwire"
	"github.com/iudanet/otagate/internal/multipart"
	"github.com/iudanet/otagate/pkg/api"
)

// Имена полей multipart формы обновления
const (
	// UpdateField - поле с образом прошивки
	UpdateField = "update"
	// DigestField - необязательное поле с ожидаемым SHA-256 образа, должно идти до UpdateField
	DigestField = "sha256"
)

// UpdateHandler принимает образ прошивки
type UpdateHandler struct {
	logger    *slog.Logger
	flasher   firmware.Flasher
	restarter firmware.Restarter
	maxLine   int
}

// NewUpdateHandler создает новый handler для обновления прошивки
func NewUpdateHandler(logger *slog.Logger, flasher firmware.Flasher, restarter firmware.Restarter, maxLine int) *UpdateHandler {
	return &UpdateHandler{
		logger:    logger,
		flasher:   flasher,
		restarter: restarter,
		maxLine:   maxLine,
	}
}

// Update обрабатывает POST /doupdate
// Поле update потоково пишется во flasher; перезапуск только после успешной фиксации
func (h *UpdateHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With(slog.String("upload_id", uuid.New().String()))

	delim, err := multipart.BoundaryFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		logger.WarnContext(ctx, "update rejected", slog.Any("error", err))
		sendError(logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	// без Content-Length нельзя ограничить образ и отличить обрыв от конца тела
	if r.ContentLength <= 0 {
		logger.WarnContext(ctx, "update rejected: no content length")
		sendError(logger, w, "Content-Length required", http.StatusLengthRequired)
		return
	}

	src, ok := r.Body.(multipart.Source)
	if !ok {
		src = bufio.NewReaderSize(r.Body, multipart.ChunkSize)
	}
	body := &countingSource{src: src}

	extractor := multipart.NewExtractor(body, delim, h.maxLine)
	extractor.Capture(DigestField)
	if err := extractor.SeekField(UpdateField); err != nil {
		h.failSeek(w, r, logger, err)
		return
	}

	writer := firmware.NewWriter(h.flasher, logger)
	if sum, ok := extractor.Value(DigestField); ok {
		if err := writer.ExpectDigest(strings.TrimSpace(sum)); err != nil {
			logger.WarnContext(ctx, "update rejected", slog.Any("error", err))
			sendError(logger, w, "malformed "+DigestField+" field", http.StatusBadRequest)
			return
		}
	}

	logger.InfoContext(ctx, "firmware upload started", slog.Int64("content_length", r.ContentLength))

	if err := writer.Begin(r.ContentLength); err != nil {
		logger.ErrorContext(ctx, "update init failed", slog.Any("error", err))
		sendError(logger, w, "update init failed", http.StatusInternalServerError)
		return
	}

	if _, err := extractor.Stream(ctx, writer); err != nil {
		if abortErr := writer.Abort(); abortErr != nil {
			logger.ErrorContext(ctx, "failed to abort update", slog.Any("error", abortErr))
		}
		h.failStream(w, r, logger.With(
			slog.Int64("received", extractor.Received()),
			slog.Int64("written", writer.Written()),
		), err, body.n)
		return
	}

	if err := writer.Finalize(); err != nil {
		logger.ErrorContext(ctx, "update finalize failed",
			slog.Any("error", err),
			slog.Int64("received", extractor.Received()),
			slog.Int64("written", writer.Written()))
		sendError(logger, w, "update finalize failed", http.StatusInternalServerError)
		return
	}

	logger.InfoContext(ctx, "firmware update committed, restarting",
		slog.Int64("received", extractor.Received()),
		slog.Int64("written", writer.Written()))
	sendJSON(logger, w, api.UpdateResponse{
		Success: true,
		Message: "update successful, restarting",
		SHA256:  writer.Digest(),
		Bytes:   writer.Written(),
	}, http.StatusOK)
	h.restarter.Restart()
}

func (h *UpdateHandler) failSeek(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, httpwire.ErrDisconnected) {
		logger.WarnContext(r.Context(), "client disconnected before payload")
		panic(http.ErrAbortHandler)
	}

	logger.WarnContext(r.Context(), "update rejected", slog.Any("error", err))
	switch {
	case errors.Is(err, multipart.ErrFieldNotFound):
		sendError(logger, w, "field "+UpdateField+" not found", http.StatusBadRequest)
	case errors.Is(err, httpwire.ErrLineTooLong):
		sendError(logger, w, err.Error(), http.StatusBadRequest)
	default:
		sendError(logger, w, "malformed multipart body", http.StatusBadRequest)
	}
}

// failStream отвечает на ошибку потоковой записи. consumed - прочитанные байты тела
func (h *UpdateHandler) failStream(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, consumed int64) {
	// тело кончилось раньше Content-Length: клиент закрыл соединение
	if errors.Is(err, multipart.ErrTruncated) && consumed < r.ContentLength {
		logger.WarnContext(r.Context(), "client disconnected mid-upload",
			slog.Int64("consumed", consumed),
			slog.Int64("content_length", r.ContentLength))
		panic(http.ErrAbortHandler)
	}

	logger.ErrorContext(r.Context(), "update write failed", slog.Any("error", err))

	switch {
	case errors.Is(err, firmware.ErrImageTooLarge):
		sendError(logger, w, "firmware image too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, multipart.ErrTruncated):
		sendError(logger, w, "upload truncated", http.StatusBadRequest)
	case errors.Is(err, firmware.ErrWriteFailed):
		sendError(logger, w, "update write failed", http.StatusInternalServerError)
	default:
		// обрыв соединения или отмена контекста
		panic(http.ErrAbortHandler)
	}
}

// countingSource считает байты, прочитанные из тела запроса
type countingSource struct {
	src multipart.Source
	n   int64
}

func (c *countingSource) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingSource) ReadByte() (byte, error) {
	b, err := c.src.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}
