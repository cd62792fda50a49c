package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"shift-crm/internal/storage"
)

const (
	dirModels       = "models"
	dirPairs        = "pairs"
	dirOperators    = "operators"
	dirResponsibles = "responsibles"
)

func loadList[T any](ctx context.Context, s *Storage, tenantID, kind string) ([]T, error) {
	raw, err := s.rdb.Get(ctx, directoryKey(tenantID, kind)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []T{}, nil
		}
		return nil, err
	}

	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}

	return list, nil
}

func storeList[T any](ctx context.Context, s *Storage, tenantID, kind string, list []T) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, directoryKey(tenantID, kind), data, s.ttl).Err()
}

func (s *Storage) ListModels(ctx context.Context, tenantID string) ([]storage.Model, error) {
	list, err := loadList[storage.Model](ctx, s, tenantID, dirModels)
	if err != nil {
		return nil, fmt.Errorf("storage.redis.ListModels: %w", err)
	}
	return list, nil
}

func (s *Storage) ListPairs(ctx context.Context, tenantID string) ([]storage.Pair, error) {
	list, err := loadList[storage.Pair](ctx, s, tenantID, dirPairs)
	if err != nil {
		return nil, fmt.Errorf("storage.redis.ListPairs: %w", err)
	}
	return list, nil
}

func (s *Storage) ListOperators(ctx context.Context, tenantID string) ([]storage.Operator, error) {
	list, err := loadList[storage.Operator](ctx, s, tenantID, dirOperators)
	if err != nil {
		return nil, fmt.Errorf("storage.redis.ListOperators: %w", err)
	}
	return list, nil
}

func (s *Storage) ListResponsibles(ctx context.Context, tenantID string) ([]storage.Responsible, error) {
	list, err := loadList[storage.Responsible](ctx, s, tenantID, dirResponsibles)
	if err != nil {
		return nil, fmt.Errorf("storage.redis.ListResponsibles: %w", err)
	}
	return list, nil
}

func (s *Storage) CacheModels(ctx context.Context, tenantID string, models []storage.Model) error {
	return storeList(ctx, s, tenantID, dirModels, models)
}

func (s *Storage) CachePairs(ctx context.Context, tenantID string, pairs []storage.Pair) error {
	return storeList(ctx, s, tenantID, dirPairs, pairs)
}

func (s *Storage) CacheOperators(ctx context.Context, tenantID string, operators []storage.Operator) error {
	return storeList(ctx, s, tenantID, dirOperators, operators)
}

func (s *Storage) CacheResponsibles(ctx context.Context, tenantID string, responsibles []storage.Responsible) error {
	return storeList(ctx, s, tenantID, dirResponsibles, responsibles)
}
