package shift

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"shift-crm/internal/service/earnings"
	"shift-crm/internal/storage"
)

type MockShiftStorage struct {
	mock.Mock
}

func (m *MockShiftStorage) ListShifts(ctx context.Context, tenantID string, filter storage.ShiftFilter) ([]storage.Shift, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Shift), args.Error(1)
}

func (m *MockShiftStorage) GetShift(ctx context.Context, tenantID, id string) (*storage.Shift, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// копия, чтобы сервис не менял фикстуру теста
	sh := *args.Get(0).(*storage.Shift)
	return &sh, args.Error(1)
}

func (m *MockShiftStorage) SaveShift(ctx context.Context, tenantID string, shift storage.Shift) error {
	return m.Called(ctx, tenantID, shift).Error(0)
}

func (m *MockShiftStorage) DeleteShift(ctx context.Context, tenantID, id string) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockShiftStorage) GetEntries(ctx context.Context, tenantID, shiftID string) (storage.Entries, error) {
	args := m.Called(ctx, tenantID, shiftID)
	return args.Get(0).(storage.Entries), args.Error(1)
}

func (m *MockShiftStorage) SaveEntries(ctx context.Context, tenantID, shiftID string, entries storage.Entries) error {
	return m.Called(ctx, tenantID, shiftID, entries).Error(0)
}

var fixedNow = time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC)

func newTestService(st *MockShiftStorage) *Service {
	return NewService(st, earnings.NewCalculator(earnings.DefaultRates())).
		WithClock(func() time.Time { return fixedNow })
}

func strPtr(s string) *string {
	return &s
}

func TestCreate(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("SaveShift", mock.Anything, "t1", mock.MatchedBy(func(s storage.Shift) bool {
		return s.ID != "" && s.Status == storage.StatusPending && s.ModelID == "m1" && s.Start == nil
	})).Return(nil)

	sh, err := newTestService(st).Create(context.Background(), "t1", NewShift{ModelID: "m1", ModelName: "Ivanova", Date: "2024-03-05"})

	require.NoError(t, err)
	assert.Equal(t, storage.StatusPending, sh.Status)
	st.AssertExpectations(t)
}

func TestCreate_Invalid(t *testing.T) {
	st := new(MockShiftStorage)
	svc := newTestService(st)

	_, err := svc.Create(context.Background(), "t1", NewShift{Date: "2024-03-05"})
	assert.True(t, errors.Is(err, ErrInvalidShift))

	_, err = svc.Create(context.Background(), "t1", NewShift{ModelID: "m1", Date: "05.03.2024"})
	assert.True(t, errors.Is(err, ErrInvalidShift))

	st.AssertNotCalled(t, "SaveShift")
}

func TestStart(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{
		ID: "s1", Status: storage.StatusPending, Check: strPtr("5"), Bonuses: strPtr("1"),
	}, nil)
	st.On("SaveShift", mock.Anything, "t1", mock.Anything).Return(nil)

	sh, err := newTestService(st).Start(context.Background(), "t1", "s1")

	require.NoError(t, err)
	assert.Equal(t, storage.StatusActive, sh.Status)
	assert.Equal(t, "2024-03-05 18:30", *sh.Start)
	assert.Equal(t, "5", *sh.Check)
	assert.Equal(t, "1", *sh.Bonuses)
	assert.Nil(t, sh.End)
	st.AssertExpectations(t)
}

func TestStart_NotPending(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{ID: "s1", Status: storage.StatusActive}, nil)

	_, err := newTestService(st).Start(context.Background(), "t1", "s1")

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	st.AssertNotCalled(t, "SaveShift")
}

func TestComplete_Scenario(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{
		ID: "s1", ModelName: "Ivanova", Status: storage.StatusActive, Start: strPtr("2024-03-05 10:00"),
	}, nil)
	st.On("GetEntries", mock.Anything, "t1", "s1").Return(storage.Entries{
		Tokens:  map[string]string{"Stripchat": "200"},
		Bonuses: map[string]string{},
	}, nil)
	st.On("SaveShift", mock.Anything, "t1", mock.Anything).Return(nil)

	sh, err := newTestService(st).Complete(context.Background(), "t1", "s1")

	require.NoError(t, err)
	assert.Equal(t, storage.StatusCompleted, sh.Status)
	assert.Equal(t, "10.00", *sh.CheckCalculated)
	assert.Equal(t, "10", *sh.Check)
	assert.Equal(t, "0", *sh.Bonuses)
	assert.Equal(t, "2024-03-05 18:30", *sh.End)
	assert.Equal(t, "2024-03-05 10:00", *sh.Start)
}

func TestComplete_OnPendingIsRejected(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{ID: "s1", Status: storage.StatusPending}, nil)

	sh, err := newTestService(st).Complete(context.Background(), "t1", "s1")

	assert.Nil(t, sh)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	st.AssertNotCalled(t, "GetEntries")
	st.AssertNotCalled(t, "SaveShift")
}

func TestComplete_NotFound(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "nope").Return(nil, storage.ErrShiftNotFound)

	_, err := newTestService(st).Complete(context.Background(), "t1", "nope")

	assert.True(t, errors.Is(err, storage.ErrShiftNotFound))
}

func TestRecordEntries(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{ID: "s1", Status: storage.StatusActive}, nil)
	st.On("SaveEntries", mock.Anything, "t1", "s1", storage.Entries{
		Tokens:  map[string]string{"Stripchat": "10"},
		Bonuses: map[string]string{},
	}).Return(nil)

	err := newTestService(st).RecordEntries(context.Background(), "t1", "s1", storage.Entries{
		Tokens: map[string]string{"Stripchat": "10", "Unknown": "99"},
	})

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestRecordEntries_CompletedRejected(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{ID: "s1", Status: storage.StatusCompleted}, nil)

	err := newTestService(st).RecordEntries(context.Background(), "t1", "s1", storage.Entries{})

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	st.AssertNotCalled(t, "SaveEntries")
}

func TestReconcile(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{
		ID: "s1", Status: storage.StatusCompleted, Check: strPtr("10"), CheckCalculated: strPtr("10.00"),
		End: strPtr("2024-03-05 18:00"),
	}, nil)
	st.On("SaveEntries", mock.Anything, "t1", "s1", mock.Anything).Return(nil)
	st.On("SaveShift", mock.Anything, "t1", mock.Anything).Return(nil)

	sh, err := newTestService(st).Reconcile(context.Background(), "t1", "s1", Correction{
		Check: strPtr(" 12 "),
		Entries: &storage.Entries{
			Tokens:  map[string]string{"Stripchat": "220"},
			Bonuses: map[string]string{"Crypto": "1,5"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, storage.StatusCompleted, sh.Status)
	assert.Equal(t, "12", *sh.Check)
	assert.Equal(t, "11.00", *sh.CheckCalculated)
	assert.Equal(t, "1.5", *sh.Bonuses)
	assert.Equal(t, "2024-03-05 18:00", *sh.End)
}

func TestReconcile_KeepsOperatorCheck(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{
		ID: "s1", Status: storage.StatusCompleted, Check: strPtr("99"),
	}, nil)
	st.On("GetEntries", mock.Anything, "t1", "s1").Return(storage.Entries{}, nil)
	st.On("SaveShift", mock.Anything, "t1", mock.Anything).Return(nil)

	sh, err := newTestService(st).Reconcile(context.Background(), "t1", "s1", Correction{})

	require.NoError(t, err)
	assert.Equal(t, "99", *sh.Check)
	assert.Nil(t, sh.CheckCalculated)
	st.AssertNotCalled(t, "SaveEntries")
}

func TestReconcile_ActiveRejected(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{ID: "s1", Status: storage.StatusActive}, nil)

	_, err := newTestService(st).Reconcile(context.Background(), "t1", "s1", Correction{Check: strPtr("1")})

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	st.AssertNotCalled(t, "SaveShift")
}

func TestList_RenumbersAndFlagsMismatch(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("ListShifts", mock.Anything, "t1", storage.ShiftFilter{}).Return([]storage.Shift{
		{ID: "b", Number: 7, Date: "2024-03-02", Status: storage.StatusCompleted, Check: strPtr("100"), CheckCalculated: strPtr("99.5")},
		{ID: "a", Number: 3, Date: "2024-03-01", Status: storage.StatusActive},
	}, nil)

	views, err := newTestService(st).List(context.Background(), "t1", storage.ShiftFilter{})

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "a", views[0].ID)
	assert.Equal(t, 1, views[0].Number)
	assert.Equal(t, PageActive, views[0].Page)
	assert.False(t, views[0].Mismatch)
	assert.Equal(t, 2, views[1].Number)
	assert.True(t, views[1].Mismatch)
}

func TestDelete(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{ID: "s1", Status: storage.StatusPending}, nil)
	st.On("DeleteShift", mock.Anything, "t1", "s1").Return(nil)

	require.NoError(t, newTestService(st).Delete(context.Background(), "t1", "s1"))
	st.AssertExpectations(t)
}

func TestDelete_StartedRejected(t *testing.T) {
	st := new(MockShiftStorage)
	st.On("GetShift", mock.Anything, "t1", "s1").Return(&storage.Shift{ID: "s1", Status: storage.StatusActive}, nil)

	err := newTestService(st).Delete(context.Background(), "t1", "s1")

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	st.AssertNotCalled(t, "DeleteShift")
}

func TestPageFor(t *testing.T) {
	assert.Equal(t, PagePending, PageFor(storage.StatusPending))
	assert.Equal(t, PageActive, PageFor(storage.StatusActive))
	assert.Equal(t, PageCompleted, PageFor(storage.StatusCompleted))
	assert.Equal(t, PagePending, PageFor(storage.StatusCancelled))
}
