package delete

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"shift-crm/http-server/respond"
)

type ShiftDeleter interface {
	Delete(ctx context.Context, tenantID, id string) error
}

// DeleteShift удаляет неначатую смену.
func DeleteShift(log *slog.Logger, shifts ShiftDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.shift.DeleteShift"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := shifts.Delete(ctx, session.TenantID, id); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("shift deleted", slog.String("op", op), slog.String("id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
