package tiered

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shift-crm/internal/storage"
)

var errDown = errors.New("connection refused")

// memStore: хранилище в памяти с возможностью уронить запись или чтение.
type memStore struct {
	shifts    map[string]storage.Shift
	entries   map[string]storage.Entries
	settings  map[string]string
	models    []storage.Model
	pairs     []storage.Pair
	cached    []storage.Pair
	failWrite bool
	failRead  bool
	expired   []storage.ShiftRef
}

func newMem() *memStore {
	return &memStore{
		shifts:   map[string]storage.Shift{},
		entries:  map[string]storage.Entries{},
		settings: map[string]string{},
	}
}

func (m *memStore) ListShifts(_ context.Context, _ string, f storage.ShiftFilter) ([]storage.Shift, error) {
	if m.failRead {
		return nil, errDown
	}
	var out []storage.Shift
	for _, s := range m.shifts {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) GetShift(_ context.Context, _, id string) (*storage.Shift, error) {
	if m.failRead {
		return nil, errDown
	}
	s, ok := m.shifts[id]
	if !ok {
		return nil, fmt.Errorf("mem: %w", storage.ErrShiftNotFound)
	}
	return &s, nil
}

func (m *memStore) SaveShift(_ context.Context, _ string, s storage.Shift) error {
	if m.failWrite {
		return errDown
	}
	m.shifts[s.ID] = s
	return nil
}

func (m *memStore) DeleteShift(_ context.Context, _, id string) error {
	if m.failWrite {
		return errDown
	}
	if _, ok := m.shifts[id]; !ok {
		return storage.ErrShiftNotFound
	}
	delete(m.shifts, id)
	return nil
}

func (m *memStore) GetEntries(_ context.Context, _, id string) (storage.Entries, error) {
	if m.failRead {
		return storage.Entries{}, errDown
	}
	return m.entries[id], nil
}

func (m *memStore) SaveEntries(_ context.Context, _, id string, e storage.Entries) error {
	if m.failWrite {
		return errDown
	}
	m.entries[id] = e
	return nil
}

func (m *memStore) GetSetting(_ context.Context, _, key string) (string, error) {
	if m.failRead {
		return "", errDown
	}
	v, ok := m.settings[key]
	if !ok {
		return "", storage.ErrSettingNotFound
	}
	return v, nil
}

func (m *memStore) SetSetting(_ context.Context, _, key, value string) error {
	if m.failWrite {
		return errDown
	}
	m.settings[key] = value
	return nil
}

func (m *memStore) ListModels(context.Context, string) ([]storage.Model, error) {
	if m.failRead {
		return nil, errDown
	}
	return m.models, nil
}

func (m *memStore) ListPairs(context.Context, string) ([]storage.Pair, error) {
	if m.failRead {
		return nil, errDown
	}
	if len(m.pairs) == 0 {
		return m.cached, nil
	}
	return m.pairs, nil
}

func (m *memStore) ListOperators(context.Context, string) ([]storage.Operator, error) {
	return nil, nil
}

func (m *memStore) ListResponsibles(context.Context, string) ([]storage.Responsible, error) {
	return nil, nil
}

func (m *memStore) CacheModels(context.Context, string, []storage.Model) error { return nil }

func (m *memStore) CachePairs(_ context.Context, _ string, p []storage.Pair) error {
	m.cached = p
	return nil
}

func (m *memStore) CacheOperators(context.Context, string, []storage.Operator) error { return nil }

func (m *memStore) CacheResponsibles(context.Context, string, []storage.Responsible) error {
	return nil
}

func (m *memStore) DeleteExpiredShifts(_ context.Context, before string) ([]storage.ShiftRef, error) {
	var refs []storage.ShiftRef
	for id, s := range m.shifts {
		if s.Status == storage.StatusPending && s.Date < before {
			refs = append(refs, storage.ShiftRef{TenantID: "t1", ID: id})
			delete(m.shifts, id)
		}
	}
	m.expired = refs
	return refs, nil
}

func newStore() (*Store, *memStore, *memStore) {
	primary, fallback := newMem(), newMem()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(primary, fallback, log), primary, fallback
}

func TestStore_SaveShiftWritesBothTiers(t *testing.T) {
	s, primary, fallback := newStore()

	err := s.SaveShift(context.Background(), "t1", storage.Shift{ID: "s1", Status: storage.StatusPending})
	require.NoError(t, err)

	assert.Contains(t, primary.shifts, "s1")
	assert.Contains(t, fallback.shifts, "s1")
	assert.Zero(t, s.OutOfSync())
}

func TestStore_PrimaryWriteFails(t *testing.T) {
	s, primary, fallback := newStore()
	primary.failWrite = true

	err := s.SaveShift(context.Background(), "t1", storage.Shift{ID: "s1"})

	assert.True(t, errors.Is(err, storage.ErrOutOfSync))
	assert.True(t, errors.Is(err, errDown))
	assert.Contains(t, fallback.shifts, "s1")
}

func TestStore_FallbackWriteFails(t *testing.T) {
	s, primary, fallback := newStore()
	fallback.failWrite = true

	err := s.SetSetting(context.Background(), "t1", storage.SettingExchangeRate, "90")

	require.NoError(t, err)
	assert.Equal(t, "90", primary.settings[storage.SettingExchangeRate])
	assert.EqualValues(t, 1, s.OutOfSync())
}

func TestStore_BothWritesFail(t *testing.T) {
	s, primary, fallback := newStore()
	primary.failWrite = true
	fallback.failWrite = true

	err := s.SaveEntries(context.Background(), "t1", "s1", storage.Entries{})

	assert.True(t, errors.Is(err, errDown))
	assert.False(t, errors.Is(err, storage.ErrOutOfSync))
}

func TestStore_ReadFallsBackOnError(t *testing.T) {
	s, primary, fallback := newStore()
	primary.failRead = true
	fallback.shifts["s1"] = storage.Shift{ID: "s1", Date: "2024-03-01"}

	got, err := s.GetShift(context.Background(), "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	list, err := s.ListShifts(context.Background(), "t1", storage.ShiftFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_ReadFallsBackOnEmpty(t *testing.T) {
	s, _, fallback := newStore()
	fallback.entries["s1"] = storage.Entries{Tokens: map[string]string{"Stripchat": "200"}}

	e, err := s.GetEntries(context.Background(), "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "200", e.Tokens["Stripchat"])
}

func TestStore_ReadNotFoundAnywhere(t *testing.T) {
	s, _, _ := newStore()

	_, err := s.GetShift(context.Background(), "t1", "missing")
	assert.True(t, errors.Is(err, storage.ErrShiftNotFound))
}

func TestStore_ReadPrefersPrimary(t *testing.T) {
	s, primary, fallback := newStore()
	primary.settings[storage.SettingExchangeRate] = "95"
	fallback.settings[storage.SettingExchangeRate] = "90"

	v, err := s.GetSetting(context.Background(), "t1", storage.SettingExchangeRate)
	require.NoError(t, err)
	assert.Equal(t, "95", v)
}

func TestStore_DirectoryWarmsFallback(t *testing.T) {
	s, primary, fallback := newStore()
	primary.pairs = []storage.Pair{{ID: "m1-m2", MemberIDs: []string{"m1", "m2"}}}

	_, err := s.ListPairs(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, primary.pairs, fallback.cached)

	primary.failRead = true
	got, err := s.ListPairs(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "m1-m2", got[0].ID)
}

func TestStore_DeleteShiftOnlyInFallback(t *testing.T) {
	s, _, fallback := newStore()
	fallback.shifts["s1"] = storage.Shift{ID: "s1"}

	require.NoError(t, s.DeleteShift(context.Background(), "t1", "s1"))
	assert.NotContains(t, fallback.shifts, "s1")
}

func TestStore_DeleteExpiredShifts(t *testing.T) {
	s, primary, fallback := newStore()
	old := storage.Shift{ID: "old", Date: "2024-01-01", Status: storage.StatusPending}
	primary.shifts["old"] = old
	fallback.shifts["old"] = old
	primary.shifts["done"] = storage.Shift{ID: "done", Date: "2024-01-01", Status: storage.StatusCompleted}

	refs, err := s.DeleteExpiredShifts(context.Background(), "2024-01-10")
	require.NoError(t, err)

	assert.Equal(t, []storage.ShiftRef{{TenantID: "t1", ID: "old"}}, refs)
	assert.NotContains(t, fallback.shifts, "old")
	assert.Contains(t, primary.shifts, "done")
}
