package transition

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"shift-crm/http-server/respond"
	"shift-crm/internal/service/shift"
	"shift-crm/internal/storage"
)

type ShiftTransitioner interface {
	Start(ctx context.Context, tenantID, id string) (*storage.Shift, error)
	Complete(ctx context.Context, tenantID, id string) (*storage.Shift, error)
	Reconcile(ctx context.Context, tenantID, id string, c shift.Correction) (*storage.Shift, error)
}

type action func(ctx context.Context, tenantID, id string) (*storage.Shift, error)

func transition(log *slog.Logger, op string, do action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		sh, err := do(ctx, session.TenantID, id)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("shift status changed",
			slog.String("op", op),
			slog.String("id", sh.ID),
			slog.String("status", sh.Status),
		)

		render.JSON(w, r, sh)
	}
}

// Start: Ожидает → В работе.
func Start(log *slog.Logger, shifts ShiftTransitioner) http.HandlerFunc {
	return transition(log, "handlers.shift.Start", shifts.Start)
}

// Complete: В работе → Завершена, с расчётом чека.
func Complete(log *slog.Logger, shifts ShiftTransitioner) http.HandlerFunc {
	return transition(log, "handlers.shift.Complete", shifts.Complete)
}

// Reconcile: правка чека и записей завершённой смены.
func Reconcile(log *slog.Logger, shifts ShiftTransitioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.shift.Reconcile"

		var req shift.Correction
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		transition(log, op, func(ctx context.Context, tenantID, id string) (*storage.Shift, error) {
			return shifts.Reconcile(ctx, tenantID, id, req)
		})(w, r)
	}
}
