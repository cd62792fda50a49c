package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"shift-crm/http-server/respond"
)

type RateStore interface {
	ExchangeRate(ctx context.Context, tenantID string) (float64, error)
	SetExchangeRate(ctx context.Context, tenantID string, rate float64) error
}

type RateJSON struct {
	Rate float64 `json:"rate"`
}

func GetExchangeRate(log *slog.Logger, rates RateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.GetExchangeRate"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rate, err := rates.ExchangeRate(ctx, session.TenantID)
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, RateJSON{Rate: rate})
	}
}

// UpdateExchangeRate: курс применяется ко всем следующим отчётам арендатора.
func UpdateExchangeRate(log *slog.Logger, rates RateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.UpdateExchangeRate"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		var req RateJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := rates.SetExchangeRate(ctx, session.TenantID, req.Rate); err != nil {
			respond.Error(w, log, op, err)
			return
		}

		log.Info("exchange rate updated",
			slog.String("op", op),
			slog.String("tenant", session.TenantID),
			slog.Float64("rate", req.Rate),
		)

		render.JSON(w, r, req)
	}
}
