package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"shift-crm/http-server/respond"
	"shift-crm/internal/service/shift"
	"shift-crm/internal/storage"
)

type ShiftReader interface {
	List(ctx context.Context, tenantID string, filter storage.ShiftFilter) ([]shift.View, error)
	Get(ctx context.Context, tenantID, id string) (*shift.View, error)
}

type ResponseList struct {
	Shifts []shift.View `json:"shifts"`
}

// ListShifts: смены арендатора; фильтры from, to, status, model_id необязательны.
func ListShifts(log *slog.Logger, shifts ShiftReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.shift.ListShifts"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		filter := storage.ShiftFilter{
			From:    q.Get("from"),
			To:      q.Get("to"),
			Status:  q.Get("status"),
			ModelID: q.Get("model_id"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		views, err := shifts.List(ctx, session.TenantID, filter)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, ResponseList{Shifts: views})
	}
}

func GetShift(log *slog.Logger, shifts ShiftReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.shift.GetShift"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Missing shift id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		view, err := shifts.Get(ctx, session.TenantID, id)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, view)
	}
}
