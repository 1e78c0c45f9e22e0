package vehicles

import (
	"context"
	"errors"
	"testing"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockCache) SetVehicles(ctx context.Context, vehicles []domain.Vehicle) error {
	return m.Called(ctx, vehicles).Error(0)
}

var fleet = []domain.Vehicle{
	{ID: 1, Name: "Creta", Brand: "Hyundai", Type: "SUV", SeatingCapacity: 5, FuelType: "Diesel", PricePerDay: 2000},
	{ID: 2, Name: "City", Brand: "Honda", Type: "Sedan", SeatingCapacity: 5, FuelType: "Petrol", PricePerDay: 1500},
	{ID: 3, Name: "Ertiga", Brand: "Maruti", Type: "MPV", SeatingCapacity: 7, FuelType: "CNG", PricePerDay: 1800},
	{ID: 4, Name: "Activa", Brand: "Honda", Type: "Motorcycle", SeatingCapacity: 2, FuelType: "Petrol", PricePerDay: 400},
}

func TestVehicleService_List_CacheMissLoadsAndStores(t *testing.T) {
	repo := &MockVehicleRepository{}
	cache := &MockCache{}
	svc := NewVehicleService(repo, cache, logger.Discard())
	ctx := context.Background()

	cache.On("GetVehicles", ctx).Return(nil, nil).Once()
	repo.On("List", ctx).Return(fleet, nil).Once()
	cache.On("SetVehicles", ctx, fleet).Return(nil).Once()

	got, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, fleet, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestVehicleService_List_CacheHit(t *testing.T) {
	repo := &MockVehicleRepository{}
	cache := &MockCache{}
	svc := NewVehicleService(repo, cache, logger.Discard())
	ctx := context.Background()

	cache.On("GetVehicles", ctx).Return(fleet, nil).Once()

	got, err := svc.List(ctx, Filter{Type: "suv"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Creta", got[0].Name)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestVehicleService_List_CacheErrorFallsBackToRepo(t *testing.T) {
	repo := &MockVehicleRepository{}
	cache := &MockCache{}
	svc := NewVehicleService(repo, cache, logger.Discard())
	ctx := context.Background()

	cache.On("GetVehicles", ctx).Return(nil, errors.New("redis down"))
	repo.On("List", ctx).Return(fleet, nil)
	cache.On("SetVehicles", ctx, fleet).Return(errors.New("redis down"))

	got, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestVehicleService_List_RepoError(t *testing.T) {
	repo := &MockVehicleRepository{}
	svc := NewVehicleService(repo, nil, logger.Discard())
	ctx := context.Background()

	repo.On("List", ctx).Return(nil, errors.New("db down"))

	_, err := svc.List(ctx, Filter{})
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"no filter", Filter{}, []int64{1, 2, 3, 4}},
		{"fuel", Filter{Fuel: "petrol"}, []int64{2, 4}},
		{"seats", Filter{Seats: 7}, []int64{3}},
		{"search brand", Filter{Search: "honda"}, []int64{2, 4}},
		{"search name", Filter{Search: " ERT "}, []int64{3}},
		{"price asc", Filter{Sort: SortPriceAsc}, []int64{4, 2, 3, 1}},
		{"price desc with fuel", Filter{Fuel: "Petrol", Sort: SortPriceDesc}, []int64{2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(fleet, tt.filter)
			ids := make([]int64, len(got))
			for i, v := range got {
				ids[i] = v.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestApply_DoesNotReorderInput(t *testing.T) {
	input := append([]domain.Vehicle(nil), fleet...)
	apply(input, Filter{Sort: SortPriceAsc})
	assert.Equal(t, fleet, input)
}
