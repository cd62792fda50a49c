package save

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

type ShiftCreator interface {
	Create(ctx context.Context, tenantID string, in shift.NewShift) (*storage.Shift, error)
}

type EntriesRecorder interface {
	RecordEntries(ctx context.Context, tenantID, id string, entries storage.Entries) error
}

func CreateShift(log *slog.Logger, shifts ShiftCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.shift.CreateShift"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		var req shift.NewShift
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		// по умолчанию оператором считается автор запроса
		if req.Operator == "" && session.Name != "" {
			req.Operator = session.Name
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		created, err := shifts.Create(ctx, session.TenantID, req)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("shift created", slog.String("op", op), slog.String("id", created.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}

// SaveEntries: токены и бонусы по сайтам для смены в работе.
func SaveEntries(log *slog.Logger, shifts EntriesRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.shift.SaveEntries"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")

		var req storage.Entries
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := shifts.RecordEntries(ctx, session.TenantID, id, req); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": "saved"})
	}
}
