package storage

import (
	"context"
	"errors"
)

var (
	ErrShiftNotFound   = errors.New("смена не найдена")
	ErrSettingNotFound = errors.New("настройка не найдена")
	// ErrOutOfSync: запись принята только одним из уровней хранилища.
	ErrOutOfSync = errors.New("уровни хранилища рассинхронизированы")
)

// Ключи настроек арендатора.
const (
	SettingExchangeRate = "exchange_rate"
)

// Store: хранилище одного уровня. Арендатор всегда передаётся явно.
type Store interface {
	ListShifts(ctx context.Context, tenantID string, filter ShiftFilter) ([]Shift, error)
	GetShift(ctx context.Context, tenantID, id string) (*Shift, error)
	SaveShift(ctx context.Context, tenantID string, shift Shift) error
	DeleteShift(ctx context.Context, tenantID, id string) error

	GetEntries(ctx context.Context, tenantID, shiftID string) (Entries, error)
	SaveEntries(ctx context.Context, tenantID, shiftID string, entries Entries) error

	GetSetting(ctx context.Context, tenantID, key string) (string, error)
	SetSetting(ctx context.Context, tenantID, key, value string) error

	ListModels(ctx context.Context, tenantID string) ([]Model, error)
	ListPairs(ctx context.Context, tenantID string) ([]Pair, error)
	ListOperators(ctx context.Context, tenantID string) ([]Operator, error)
	ListResponsibles(ctx context.Context, tenantID string) ([]Responsible, error)
}

// DirectoryCache: уровень, умеющий хранить копию справочников.
type DirectoryCache interface {
	CacheModels(ctx context.Context, tenantID string, models []Model) error
	CachePairs(ctx context.Context, tenantID string, pairs []Pair) error
	CacheOperators(ctx context.Context, tenantID string, operators []Operator) error
	CacheResponsibles(ctx context.Context, tenantID string, responsibles []Responsible) error
}

// Expirer удаляет неначатые смены с датой раньше before.
type Expirer interface {
	DeleteExpiredShifts(ctx context.Context, before string) ([]ShiftRef, error)
}
