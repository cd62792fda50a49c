package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"shift-crm/http-server/respond"
	"shift-crm/internal/storage"
)

type DirectoryReader interface {
	ListModels(ctx context.Context, tenantID string) ([]storage.Model, error)
	ListPairs(ctx context.Context, tenantID string) ([]storage.Pair, error)
	ListOperators(ctx context.Context, tenantID string) ([]storage.Operator, error)
	ListResponsibles(ctx context.Context, tenantID string) ([]storage.Responsible, error)
}

type Response struct {
	Kind  string `json:"kind"`
	Items any    `json:"items"`
}

// GetDirectory отдаёт справочник: models, pairs, operators или responsibles.
func GetDirectory(log *slog.Logger, dir DirectoryReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.directory.GetDirectory"

		session, ok := respond.Session(w, r)
		if !ok {
			return
		}

		kind := chi.URLParam(r, "kind")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var (
			items any
			err   error
		)
		switch kind {
		case "models":
			items, err = dir.ListModels(ctx, session.TenantID)
		case "pairs":
			items, err = dir.ListPairs(ctx, session.TenantID)
		case "operators":
			items, err = dir.ListOperators(ctx, session.TenantID)
		case "responsibles":
			items, err = dir.ListResponsibles(ctx, session.TenantID)
		default:
			log.With(slog.String("op", op), slog.String("kind", kind)).Warn("unknown directory")
			http.Error(w, "Unknown directory", http.StatusNotFound)
			return
		}
		if err != nil {
			respond.Error(w, log, op, err)
			return
		}

		render.JSON(w, r, Response{Kind: kind, Items: items})
	}
}
