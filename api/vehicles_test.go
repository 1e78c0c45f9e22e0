package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/service/feedback"
	"github.com/easyrent/vehiclerental/internal/service/vehicles"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVehicleUseCase struct {
	mock.Mock
}

func (m *MockVehicleUseCase) List(ctx context.Context, filter vehicles.Filter) ([]domain.Vehicle, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockVehicleUseCase) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

type MockFeedbackUseCase struct {
	mock.Mock
}

func (m *MockFeedbackUseCase) Submit(ctx context.Context, input feedback.SubmitInput) (*domain.Feedback, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Feedback), args.Error(1)
}

func (m *MockFeedbackUseCase) List(ctx context.Context, vehicleID int64) ([]domain.Feedback, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).([]domain.Feedback), args.Error(1)
}

func newVehicleRouter(t *testing.T) (*gin.Engine, *MockVehicleUseCase, *MockFeedbackUseCase) {
	r, group := newTestRouter(t)
	v := &MockVehicleUseCase{}
	f := &MockFeedbackUseCase{}
	NewVehicleHandler(v, f).Register(group, asUser(7))
	return r, v, f
}

func TestVehicleHandler_list_PassesFilter(t *testing.T) {
	r, v, _ := newVehicleRouter(t)
	v.On("List", mock.Anything, vehicles.Filter{Type: "suv", Seats: 7, Sort: "price_asc"}).
		Return([]domain.Vehicle{{ID: 1, Name: "Mahindra XUV700", PricePerDay: 3500}}, nil).Once()

	w := doJSON(t, r, http.MethodGet, "/api/vehicles?type=suv&seats=7&sort=price_asc", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Vehicles []domain.Vehicle `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Vehicles, 1)
	assert.Equal(t, "Mahindra XUV700", resp.Vehicles[0].Name)
}

func TestVehicleHandler_list_EmptyIsArray(t *testing.T) {
	r, v, _ := newVehicleRouter(t)
	v.On("List", mock.Anything, vehicles.Filter{}).Return(nil, nil).Once()

	w := doJSON(t, r, http.MethodGet, "/api/vehicles", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"vehicles":[]}`, w.Body.String())
}

func TestVehicleHandler_list_BadSort(t *testing.T) {
	r, v, _ := newVehicleRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/vehicles?sort=newest", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	v.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestVehicleHandler_get_NotFound(t *testing.T) {
	r, v, _ := newVehicleRouter(t)
	v.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound).Once()

	w := doJSON(t, r, http.MethodGet, "/api/vehicles/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVehicleHandler_listFeedback(t *testing.T) {
	r, _, f := newVehicleRouter(t)
	f.On("List", mock.Anything, int64(3)).Return([]domain.Feedback{
		{ID: 2, UserName: "Asha Patil", Rating: 4.5, Comment: "Clean car", CreatedAt: time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC)},
	}, nil).Once()

	w := doJSON(t, r, http.MethodGet, "/api/vehicles/3/feedback", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Feedback []feedbackResponse `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Feedback, 1)
	assert.Equal(t, "Asha Patil", resp.Feedback[0].UserName)
	assert.Equal(t, "2026-10-02T08:00:00Z", resp.Feedback[0].CreatedAt)
}

func TestVehicleHandler_submitFeedback(t *testing.T) {
	r, _, f := newVehicleRouter(t)
	f.On("Submit", mock.Anything, mock.MatchedBy(func(in feedback.SubmitInput) bool {
		return in.UserID == 7 && in.VehicleID == 3 && in.Rating != nil && *in.Rating == 4.5
	})).Return(&domain.Feedback{ID: 1}, nil).Once()

	w := doJSON(t, r, http.MethodPost, "/api/vehicles/3/feedback", map[string]any{"rating": 4.5, "comment": "Good"})

	assert.Equal(t, http.StatusOK, w.Code)
	f.AssertExpectations(t)
}

func TestVehicleHandler_submitFeedback_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"missing rating", domain.ErrValidation, http.StatusBadRequest},
		{"never booked", domain.ErrForbidden, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, f := newVehicleRouter(t)
			f.On("Submit", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := doJSON(t, r, http.MethodPost, "/api/vehicles/3/feedback", map[string]any{"comment": "Good"})
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
