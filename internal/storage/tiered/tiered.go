package tiered

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"shift-crm/internal/storage"
)

// Store объединяет основное хранилище и резервную копию.
// Запись идёт сначала в резервную копию, затем в основное. Читается основное,
// а при ошибке или пустом ответе резервная копия.
type Store struct {
	primary  storage.Store
	fallback storage.Store
	log      *slog.Logger

	outOfSync atomic.Int64
}

func New(primary, fallback storage.Store, log *slog.Logger) *Store {
	return &Store{primary: primary, fallback: fallback, log: log}
}

// OutOfSync: сколько записей принял только основной уровень.
func (s *Store) OutOfSync() int64 {
	return s.outOfSync.Load()
}

// write выполняет запись в оба уровня.
// Ошибка только резервной копии логируется и учитывается в OutOfSync,
// ошибка только основного возвращается как ErrOutOfSync.
func (s *Store) write(op string, fallbackWrite, primaryWrite func() error) error {
	fbErr := fallbackWrite()
	prErr := primaryWrite()

	switch {
	case prErr == nil && fbErr == nil:
		return nil
	case prErr == nil:
		s.outOfSync.Add(1)
		s.log.Warn("резервная копия не обновлена", slog.String("op", op), slog.String("error", fbErr.Error()))
		return nil
	case fbErr == nil:
		return fmt.Errorf("%s: %w: %w", op, storage.ErrOutOfSync, prErr)
	default:
		return fmt.Errorf("%s: %w", op, prErr)
	}
}

// read читает из основного уровня, при ошибке или пустом результате из резервного.
func read[T any](s *Store, op string, primaryRead, fallbackRead func() (T, error), empty func(T) bool) (T, error) {
	v, prErr := primaryRead()
	if prErr == nil && !empty(v) {
		return v, nil
	}

	fv, fbErr := fallbackRead()
	if fbErr != nil {
		if prErr != nil {
			return v, prErr
		}
		return v, nil
	}

	if prErr != nil {
		s.log.Warn("чтение из резервной копии", slog.String("op", op), slog.String("error", prErr.Error()))
		return fv, nil
	}
	if empty(fv) {
		return v, nil
	}

	return fv, nil
}

func isEmpty[E any](list []E) bool { return len(list) == 0 }

func (s *Store) ListShifts(ctx context.Context, tenantID string, filter storage.ShiftFilter) ([]storage.Shift, error) {
	return read(s, "storage.tiered.ListShifts",
		func() ([]storage.Shift, error) { return s.primary.ListShifts(ctx, tenantID, filter) },
		func() ([]storage.Shift, error) { return s.fallback.ListShifts(ctx, tenantID, filter) },
		isEmpty[storage.Shift],
	)
}

func (s *Store) GetShift(ctx context.Context, tenantID, id string) (*storage.Shift, error) {
	return read(s, "storage.tiered.GetShift",
		func() (*storage.Shift, error) { return s.primary.GetShift(ctx, tenantID, id) },
		func() (*storage.Shift, error) { return s.fallback.GetShift(ctx, tenantID, id) },
		func(sh *storage.Shift) bool { return sh == nil },
	)
}

func (s *Store) SaveShift(ctx context.Context, tenantID string, shift storage.Shift) error {
	return s.write("storage.tiered.SaveShift",
		func() error { return s.fallback.SaveShift(ctx, tenantID, shift) },
		func() error { return s.primary.SaveShift(ctx, tenantID, shift) },
	)
}

func (s *Store) DeleteShift(ctx context.Context, tenantID, id string) error {
	const op = "storage.tiered.DeleteShift"

	fbErr := s.fallback.DeleteShift(ctx, tenantID, id)
	prErr := s.primary.DeleteShift(ctx, tenantID, id)

	if errors.Is(prErr, storage.ErrShiftNotFound) && fbErr == nil {
		return nil
	}
	if errors.Is(fbErr, storage.ErrShiftNotFound) {
		fbErr = nil
	}

	return s.write(op, func() error { return fbErr }, func() error { return prErr })
}

func (s *Store) GetEntries(ctx context.Context, tenantID, shiftID string) (storage.Entries, error) {
	return read(s, "storage.tiered.GetEntries",
		func() (storage.Entries, error) { return s.primary.GetEntries(ctx, tenantID, shiftID) },
		func() (storage.Entries, error) { return s.fallback.GetEntries(ctx, tenantID, shiftID) },
		func(e storage.Entries) bool { return len(e.Tokens) == 0 && len(e.Bonuses) == 0 },
	)
}

func (s *Store) SaveEntries(ctx context.Context, tenantID, shiftID string, entries storage.Entries) error {
	return s.write("storage.tiered.SaveEntries",
		func() error { return s.fallback.SaveEntries(ctx, tenantID, shiftID, entries) },
		func() error { return s.primary.SaveEntries(ctx, tenantID, shiftID, entries) },
	)
}

func (s *Store) GetSetting(ctx context.Context, tenantID, key string) (string, error) {
	return read(s, "storage.tiered.GetSetting",
		func() (string, error) { return s.primary.GetSetting(ctx, tenantID, key) },
		func() (string, error) { return s.fallback.GetSetting(ctx, tenantID, key) },
		func(v string) bool { return v == "" },
	)
}

func (s *Store) SetSetting(ctx context.Context, tenantID, key, value string) error {
	return s.write("storage.tiered.SetSetting",
		func() error { return s.fallback.SetSetting(ctx, tenantID, key, value) },
		func() error { return s.primary.SetSetting(ctx, tenantID, key, value) },
	)
}

// DeleteExpiredShifts чистит основное хранилище и убирает те же смены из резервной копии.
func (s *Store) DeleteExpiredShifts(ctx context.Context, before string) ([]storage.ShiftRef, error) {
	const op = "storage.tiered.DeleteExpiredShifts"

	expirer, ok := s.primary.(storage.Expirer)
	if !ok {
		return nil, fmt.Errorf("%s: основное хранилище не поддерживает очистку", op)
	}

	refs, err := expirer.DeleteExpiredShifts(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, ref := range refs {
		err := s.fallback.DeleteShift(ctx, ref.TenantID, ref.ID)
		if err != nil && !errors.Is(err, storage.ErrShiftNotFound) {
			s.outOfSync.Add(1)
			s.log.Warn("смена не удалена из резервной копии", slog.String("op", op),
				slog.String("shift_id", ref.ID), slog.String("error", err.Error()))
		}
	}

	return refs, nil
}
