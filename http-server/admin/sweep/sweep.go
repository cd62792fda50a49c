package sweep

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"shift-crm/internal/storage"
)

type Sweeper interface {
	RunOnce(ctx context.Context) ([]storage.ShiftRef, error)
}

type Response struct {
	Removed int                `json:"removed"`
	Shifts  []storage.ShiftRef `json:"shifts"`
}

// RunSweep: ручной запуск очистки просроченных неначатых смен.
func RunSweep(log *slog.Logger, sweeper Sweeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.RunSweep"

		ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
		defer cancel()

		refs, err := sweeper.RunOnce(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("sweep failed")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if refs == nil {
			refs = []storage.ShiftRef{}
		}

		render.JSON(w, r, Response{Removed: len(refs), Shifts: refs})
	}
}
