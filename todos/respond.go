package todos

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"todo-api/todos/domain"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// respondWithStatus escreve o texto do status em text/plain, como http.Error.
func respondWithStatus(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}

// statusFor traduz erros de domínio para status HTTP. O resto vira 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrMalformedID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOverloaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure loga err uma vez e responde com o status correspondente.
// 4xx vai em WARN, 5xx em ERROR.
func writeFailure(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)

	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("query", r.URL.RawQuery),
		slog.Int("status", code),
		slog.String("request_id", RequestID(r.Context())),
		slog.String("err", err.Error()),
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		attrs = append(attrs, slog.Any("violations", verr.Violations))
	}

	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.LogAttrs(r.Context(), level, "request failed", attrs...)

	respondWithStatus(w, code)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeFailure(h.log, w, r, err)
}
