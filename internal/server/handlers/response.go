package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/iudanet/otagate/pkg/api"
)

// maxFormBytes ограничивает размер form-urlencoded и JSON тела
const maxFormBytes = 4 << 10

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Success: false,
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// redirect отправляет 302 без тела
func redirect(w http.ResponseWriter, location string) {
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusFound)
}

// parseForm возвращает параметры строки запроса и form-urlencoded тела.
// В отличие от http.Request.ParseForm тело читается для любого метода,
// включая DELETE
func parseForm(r *http.Request) (url.Values, error) {
	values := r.URL.Query()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" || r.Body == nil {
		return values, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read form body: %w", err)
	}
	if len(raw) > maxFormBytes {
		return nil, fmt.Errorf("form body exceeds %d bytes", maxFormBytes)
	}

	body, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse form body: %w", err)
	}

	// значения из тела имеют приоритет
	for key, vals := range body {
		values[key] = append(vals, values[key]...)
	}
	return values, nil
}

// decodeJSON декодирует JSON тело ограниченного размера в dst
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxFormBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
