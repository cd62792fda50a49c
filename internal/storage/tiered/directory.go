package tiered

import (
	"context"
	"log/slog"

	"shift-crm/internal/storage"
)

// warm кладёт свежий справочник в резервную копию, если она это умеет.
func (s *Store) warm(op string, cache func(storage.DirectoryCache) error) {
	dc, ok := s.fallback.(storage.DirectoryCache)
	if !ok {
		return
	}
	if err := cache(dc); err != nil {
		s.log.Warn("справочник не закеширован", slog.String("op", op), slog.String("error", err.Error()))
	}
}

func (s *Store) ListModels(ctx context.Context, tenantID string) ([]storage.Model, error) {
	const op = "storage.tiered.ListModels"

	models, err := s.primary.ListModels(ctx, tenantID)
	if err == nil && len(models) > 0 {
		s.warm(op, func(dc storage.DirectoryCache) error { return dc.CacheModels(ctx, tenantID, models) })
		return models, nil
	}

	return read(s, op,
		func() ([]storage.Model, error) { return models, err },
		func() ([]storage.Model, error) { return s.fallback.ListModels(ctx, tenantID) },
		isEmpty[storage.Model],
	)
}

func (s *Store) ListPairs(ctx context.Context, tenantID string) ([]storage.Pair, error) {
	const op = "storage.tiered.ListPairs"

	pairs, err := s.primary.ListPairs(ctx, tenantID)
	if err == nil && len(pairs) > 0 {
		s.warm(op, func(dc storage.DirectoryCache) error { return dc.CachePairs(ctx, tenantID, pairs) })
		return pairs, nil
	}

	return read(s, op,
		func() ([]storage.Pair, error) { return pairs, err },
		func() ([]storage.Pair, error) { return s.fallback.ListPairs(ctx, tenantID) },
		isEmpty[storage.Pair],
	)
}

func (s *Store) ListOperators(ctx context.Context, tenantID string) ([]storage.Operator, error) {
	const op = "storage.tiered.ListOperators"

	operators, err := s.primary.ListOperators(ctx, tenantID)
	if err == nil && len(operators) > 0 {
		s.warm(op, func(dc storage.DirectoryCache) error { return dc.CacheOperators(ctx, tenantID, operators) })
		return operators, nil
	}

	return read(s, op,
		func() ([]storage.Operator, error) { return operators, err },
		func() ([]storage.Operator, error) { return s.fallback.ListOperators(ctx, tenantID) },
		isEmpty[storage.Operator],
	)
}

func (s *Store) ListResponsibles(ctx context.Context, tenantID string) ([]storage.Responsible, error) {
	const op = "storage.tiered.ListResponsibles"

	responsibles, err := s.primary.ListResponsibles(ctx, tenantID)
	if err == nil && len(responsibles) > 0 {
		s.warm(op, func(dc storage.DirectoryCache) error { return dc.CacheResponsibles(ctx, tenantID, responsibles) })
		return responsibles, nil
	}

	return read(s, op,
		func() ([]storage.Responsible, error) { return responsibles, err },
		func() ([]storage.Responsible, error) { return s.fallback.ListResponsibles(ctx, tenantID) },
		isEmpty[storage.Responsible],
	)
}
