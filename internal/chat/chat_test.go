package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/service/vehicles"
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

var inventory = []domain.Vehicle{
	{ID: 1, Name: "Creta", Type: "SUV", SeatingCapacity: 5, Transmission: "Manual", FuelType: "Diesel", Mileage: 17.5, PricePerDay: 2000, Available: true, ImageURL: "/img/creta.jpg"},
	{ID: 2, Name: "City", Type: "Sedan", SeatingCapacity: 5, Transmission: "Automatic", FuelType: "Petrol", Mileage: 18, PricePerDay: 1500},
	{ID: 3, Name: "Activa", Type: "Motorcycle", SeatingCapacity: 2, Transmission: "Automatic", FuelType: "Petrol", Mileage: 45, PricePerDay: 400, Available: true},
}

func newAssistant() (*Assistant, *MockVehicleUseCase) {
	m := &MockVehicleUseCase{}
	return NewAssistant(m), m
}

func TestAssistant_StopAndGreeting(t *testing.T) {
	a, m := newAssistant()

	reply, err := a.Answer(context.Background(), "  STOP ")
	require.NoError(t, err)
	assert.True(t, reply.Ended)
	assert.Equal(t, endedText, reply.Text)

	reply, err = a.Answer(context.Background(), "Hii")
	require.NoError(t, err)
	assert.Equal(t, greetingText, reply.Text)
	assert.Equal(t, Prompts, reply.Prompts)

	m.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAssistant_TypeAndMode(t *testing.T) {
	a, m := newAssistant()
	ctx := context.Background()
	m.On("List", ctx, vehicles.Filter{}).Return(inventory, nil)

	reply, err := a.Answer(ctx, "SUV features")
	require.NoError(t, err)
	require.Len(t, reply.Vehicles, 1)
	assert.Equal(t, Card{ID: 1, Name: "Creta", Image: "/img/creta.jpg", DisplayText: "5 seats | Manual | Diesel | 17.5 km/l"}, reply.Vehicles[0])

	reply, err = a.Answer(ctx, "sedan pricing")
	require.NoError(t, err)
	assert.Equal(t, "₹1500/day", reply.Vehicles[0].DisplayText)

	reply, err = a.Answer(ctx, "Motorcycle availability")
	require.NoError(t, err)
	assert.Equal(t, "Available", reply.Vehicles[0].DisplayText)

	reply, err = a.Answer(ctx, "sedan")
	require.NoError(t, err)
	assert.Equal(t, "5 seats | Automatic | Petrol | 18 km/l | ₹1500/day | Not Available", reply.Vehicles[0].DisplayText)
}

func TestAssistant_OtherAvailabilitiesSkipsMotorcycles(t *testing.T) {
	a, m := newAssistant()
	ctx := context.Background()
	m.On("List", ctx, vehicles.Filter{}).Return(inventory, nil)

	reply, err := a.Answer(ctx, "Other Availabilities")
	require.NoError(t, err)
	require.Len(t, reply.Vehicles, 2)
	assert.Equal(t, int64(1), reply.Vehicles[0].ID)
	assert.Equal(t, int64(2), reply.Vehicles[1].ID)
}

func TestAssistant_NoMatchesAndFallback(t *testing.T) {
	a, m := newAssistant()
	ctx := context.Background()
	m.On("List", ctx, vehicles.Filter{}).Return(inventory, nil)

	reply, err := a.Answer(ctx, "mpv pricing")
	require.NoError(t, err)
	assert.Equal(t, emptyText, reply.Text)

	reply, err = a.Answer(ctx, "what suv do you have with a sunroof")
	require.NoError(t, err)
	assert.Equal(t, fallbackText, reply.Text)
	assert.Empty(t, reply.Vehicles)
}

func TestAssistant_CatalogError(t *testing.T) {
	a, m := newAssistant()
	ctx := context.Background()
	m.On("List", ctx, vehicles.Filter{}).Return(nil, errors.New("db down"))

	_, err := a.Answer(ctx, "suv")
	assert.Error(t, err)
}
