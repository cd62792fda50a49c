package sweep

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"shift-crm/internal/storage"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) RunOnce(ctx context.Context) ([]storage.ShiftRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ShiftRef), args.Error(1)
}

func TestRunSweep(t *testing.T) {
	m := new(MockSweeper)
	m.On("RunOnce", mock.Anything).Return([]storage.ShiftRef{{TenantID: "t1", ID: "s1"}}, nil)

	rr := httptest.NewRecorder()
	RunSweep(slog.Default(), m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/sweep", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"removed":1,"shifts":[{"tenant_id":"t1","id":"s1"}]}`, rr.Body.String())
}

func TestRunSweep_Nothing(t *testing.T) {
	m := new(MockSweeper)
	m.On("RunOnce", mock.Anything).Return(nil, nil)

	rr := httptest.NewRecorder()
	RunSweep(slog.Default(), m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/sweep", nil))

	assert.JSONEq(t, `{"removed":0,"shifts":[]}`, rr.Body.String())
}

func TestRunSweep_Error(t *testing.T) {
	m := new(MockSweeper)
	m.On("RunOnce", mock.Anything).Return(nil, errors.New("db down"))

	rr := httptest.NewRecorder()
	RunSweep(slog.Default(), m).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/sweep", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
