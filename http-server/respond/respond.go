// Package respond содержит общие для ручек проверку сессии и перевод ошибок сервиса в HTTP-статусы.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"shift-crm/internal/middleware/auth"
	"shift-crm/internal/service/report"
	"shift-crm/internal/service/shift"
	"shift-crm/internal/storage"
)

// Session достаёт сессию запроса; без неё отвечает 401.
func Session(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok || s.TenantID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return auth.Session{}, false
	}
	return s, true
}

func Status(err error) int {
	switch {
	case errors.Is(err, storage.ErrShiftNotFound),
		errors.Is(err, report.ErrResponsibleNotFound):
		return http.StatusNotFound
	case errors.Is(err, shift.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, shift.ErrInvalidShift),
		errors.Is(err, report.ErrInvalidQuery),
		errors.Is(err, report.ErrInvalidRate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error пишет ответ по ошибке сервиса. Клиентские ошибки логируются как Warn,
// остальное как Error с текстом "Internal server error" наружу.
func Error(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	code := Status(err)
	l := log.With(slog.String("op", op), slog.String("error", err.Error()))

	if code != http.StatusInternalServerError {
		l.Warn("request rejected", slog.Int("status", code))
		http.Error(w, err.Error(), code)
		return
	}

	if errors.Is(err, storage.ErrOutOfSync) {
		l.Error("write accepted by fallback only")
		http.Error(w, "Saved locally, backend is out of sync", http.StatusInternalServerError)
		return
	}

	l.Error("request failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
