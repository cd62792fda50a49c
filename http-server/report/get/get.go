package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"shift-crm/http-server/respond"
	"shift-crm/internal/constants"
	"shift-crm/internal/service/report"
)

type Reporter interface {
	Financial(ctx context.Context, tenantID string, q report.Query) (*report.Report, error)
	ForResponsible(ctx context.Context, tenantID, responsibleID, from, to string) (*report.Report, error)
}

// GetFinancial: отчёт по моделям за период ?from=&to=, можно сузить повторяющимся ?model_id=.
func GetFinancial(log *slog.Logger, reports Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GetFinancial"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		rep, err := reports.Financial(ctx, session.TenantID, report.Query{
			From:     q.Get("from"),
			To:       q.Get("to"),
			ModelIDs: q["model_id"],
		})
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, rep)
	}
}

// GetResponsible: отчёт по моделям ответственного. Ответственный видит только свой,
// владелец передаёт ?responsible_id=.
func GetResponsible(log *slog.Logger, reports Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GetResponsible"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()

		responsibleID := q.Get("responsible_id")
		if session.Role == constants.RoleResponsible {
			responsibleID = session.UserID
		}
		if responsibleID == "" {
			http.Error(w, "Missing required query parameter 'responsible_id'", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		rep, err := reports.ForResponsible(ctx, session.TenantID, responsibleID, q.Get("from"), q.Get("to"))
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, rep)
	}
}
