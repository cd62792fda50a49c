package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"shift-crm/internal/config"
	"shift-crm/internal/storage"
)

// Storage: резервная копия данных арендатора в Redis (аналог локального кеша браузера).
type Storage struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg config.Redis) (*Storage, error) {
	const op = "storage.redis.New"

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{rdb: rdb, ttl: cfg.TTL}, nil
}

func NewWithClient(rdb *redis.Client, ttl time.Duration) *Storage {
	return &Storage{rdb: rdb, ttl: ttl}
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}

func shiftsKey(tenantID string) string {
	return fmt.Sprintf("crm:%s:shifts", tenantID)
}

func entriesKey(tenantID, shiftID string) string {
	return fmt.Sprintf("crm:%s:entries:%s", tenantID, shiftID)
}

func settingsKey(tenantID string) string {
	return fmt.Sprintf("crm:%s:settings", tenantID)
}

func directoryKey(tenantID, kind string) string {
	return fmt.Sprintf("crm:%s:dir:%s", tenantID, kind)
}

func (s *Storage) ListShifts(ctx context.Context, tenantID string, filter storage.ShiftFilter) ([]storage.Shift, error) {
	const op = "storage.redis.ListShifts"

	raw, err := s.rdb.HVals(ctx, shiftsKey(tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	shifts := []storage.Shift{}
	for _, v := range raw {
		var shift storage.Shift
		if err := json.Unmarshal([]byte(v), &shift); err != nil {
			return nil, fmt.Errorf("%s: повреждённая запись смены: %w", op, err)
		}
		if filter.Matches(shift) {
			shifts = append(shifts, shift)
		}
	}

	return shifts, nil
}

func (s *Storage) GetShift(ctx context.Context, tenantID, id string) (*storage.Shift, error) {
	const op = "storage.redis.GetShift"

	raw, err := s.rdb.HGet(ctx, shiftsKey(tenantID), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrShiftNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var shift storage.Shift
	if err := json.Unmarshal([]byte(raw), &shift); err != nil {
		return nil, fmt.Errorf("%s: повреждённая запись смены id=%s: %w", op, id, err)
	}

	return &shift, nil
}

func (s *Storage) SaveShift(ctx context.Context, tenantID string, shift storage.Shift) error {
	const op = "storage.redis.SaveShift"

	data, err := json.Marshal(shift)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rdb.HSet(ctx, shiftsKey(tenantID), shift.ID, data).Err(); err != nil {
		return fmt.Errorf("%s: id=%s: %w", op, shift.ID, err)
	}

	return nil
}

func (s *Storage) DeleteShift(ctx context.Context, tenantID, id string) error {
	const op = "storage.redis.DeleteShift"

	pipe := s.rdb.TxPipeline()
	del := pipe.HDel(ctx, shiftsKey(tenantID), id)
	pipe.Del(ctx, entriesKey(tenantID, id))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: id=%s: %w", op, id, err)
	}

	if del.Val() == 0 {
		return fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrShiftNotFound)
	}

	return nil
}

func (s *Storage) GetEntries(ctx context.Context, tenantID, shiftID string) (storage.Entries, error) {
	const op = "storage.redis.GetEntries"

	entries := storage.Entries{Tokens: map[string]string{}, Bonuses: map[string]string{}}

	raw, err := s.rdb.HGetAll(ctx, entriesKey(tenantID, shiftID)).Result()
	if err != nil {
		return storage.Entries{}, fmt.Errorf("%s: %w", op, err)
	}

	if v, ok := raw[storage.EntryTokens]; ok {
		if err := json.Unmarshal([]byte(v), &entries.Tokens); err != nil {
			return storage.Entries{}, fmt.Errorf("%s: токены смены id=%s: %w", op, shiftID, err)
		}
	}
	if v, ok := raw[storage.EntryBonuses]; ok {
		if err := json.Unmarshal([]byte(v), &entries.Bonuses); err != nil {
			return storage.Entries{}, fmt.Errorf("%s: бонусы смены id=%s: %w", op, shiftID, err)
		}
	}

	return entries, nil
}

func (s *Storage) SaveEntries(ctx context.Context, tenantID, shiftID string, entries storage.Entries) error {
	const op = "storage.redis.SaveEntries"

	tokens, err := json.Marshal(nonNil(entries.Tokens))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	bonuses, err := json.Marshal(nonNil(entries.Bonuses))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.rdb.HSet(ctx, entriesKey(tenantID, shiftID),
		storage.EntryTokens, tokens,
		storage.EntryBonuses, bonuses,
	).Err()
	if err != nil {
		return fmt.Errorf("%s: id=%s: %w", op, shiftID, err)
	}

	return nil
}

func (s *Storage) GetSetting(ctx context.Context, tenantID, key string) (string, error) {
	const op = "storage.redis.GetSetting"

	v, err := s.rdb.HGet(ctx, settingsKey(tenantID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: key=%s: %w", op, key, storage.ErrSettingNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return v, nil
}

func (s *Storage) SetSetting(ctx context.Context, tenantID, key, value string) error {
	const op = "storage.redis.SetSetting"

	if err := s.rdb.HSet(ctx, settingsKey(tenantID), key, value).Err(); err != nil {
		return fmt.Errorf("%s: key=%s: %w", op, key, err)
	}

	return nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
