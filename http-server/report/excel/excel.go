package excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"shift-crm/http-server/respond"
	"shift-crm/internal/service/report"
)

type ExcelGenerator interface {
	GenerateExcel(ctx context.Context, tenantID string, q report.Query) ([]byte, error)
}

func GenerateReportExcel(log *slog.Logger, gen ExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateReportExcel"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()

		// на Excel времени побольше
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		data, err := gen.GenerateExcel(ctx, session.TenantID, report.Query{
			From:     q.Get("from"),
			To:       q.Get("to"),
			ModelIDs: q["model_id"],
		})
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		fileName := fmt.Sprintf("Shift_Report_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		if _, err := w.Write(data); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("failed to write excel")
		}
	}
}
