package validation

import (
	"testing"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverName(t *testing.T) {
	valid := []string{"Asha Rao", "Jo", "Vrushali Patil", "Anna Lee"}
	invalid := []string{"", "A", "Saaara", "R2D2", "Jo-Ann", "Bob   Smith", "Annna"}

	for _, name := range valid {
		assert.True(t, DriverName(name), name)
	}
	for _, name := range invalid {
		assert.False(t, DriverName(name), name)
	}
}

func TestContactAgeLicense(t *testing.T) {
	assert.True(t, Contact("9876543210"))
	assert.False(t, Contact("987654321"))
	assert.False(t, Contact("98765432101"))
	assert.False(t, Contact("98765x3210"))

	assert.True(t, DriverAge(18))
	assert.True(t, DriverAge(65))
	assert.False(t, DriverAge(17))
	assert.False(t, DriverAge(66))

	assert.True(t, License("MH12AB1234"))
	assert.False(t, License("MH12"))
	assert.False(t, License("mh12ab1234"))
	assert.False(t, License("MH12AB12345678901"))
}

func TestCardExpiry(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, CardExpiry("10/26", now))
	assert.True(t, CardExpiry("01/27", now))
	assert.False(t, CardExpiry("09/26", now))
	assert.False(t, CardExpiry("13/30", now))
	assert.False(t, CardExpiry("00/30", now))
	assert.False(t, CardExpiry("1/27", now))
}

func TestValidateCard(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	good := CardDetails{Number: "4111111111111111", Name: "Asha Rao", Expiry: "12/28", CVV: "123"}
	require.NoError(t, ValidateCard(good, now))

	tests := []struct {
		name   string
		mutate func(*CardDetails)
	}{
		{"short number", func(c *CardDetails) { c.Number = "411111111111" }},
		{"long number", func(c *CardDetails) { c.Number = "41111111111111112" }},
		{"short holder", func(c *CardDetails) { c.Name = " Al " }},
		{"expired", func(c *CardDetails) { c.Expiry = "01/20" }},
		{"bad cvv", func(c *CardDetails) { c.CVV = "12" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := good
			tt.mutate(&card)
			assert.ErrorIs(t, ValidateCard(card, now), domain.ErrValidation)
		})
	}
}

func TestValidateDriver(t *testing.T) {
	good := DriverDetails{Name: "Asha Rao", Contact: "9876543210", Age: 30, License: "MH1220190001"}
	require.NoError(t, ValidateDriver(good))

	bad := good
	bad.Age = 70
	assert.ErrorIs(t, ValidateDriver(bad), domain.ErrValidation)

	bad = good
	bad.License = "x"
	assert.ErrorIs(t, ValidateDriver(bad), domain.ErrValidation)
}

func TestRating(t *testing.T) {
	for _, r := range []float64{0, 0.5, 1, 3.5, 5} {
		assert.True(t, Rating(r), "%v", r)
	}
	for _, r := range []float64{-0.5, 5.5, 2.25, 4.1} {
		assert.False(t, Rating(r), "%v", r)
	}
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type driver struct {
		Name    string  `validate:"drivername"`
		License string  `validate:"license"`
		Rating  float64 `validate:"rating"`
	}
	assert.NoError(t, v.Struct(driver{Name: "Asha Rao", License: "MH1220190001", Rating: 4.5}))
	assert.Error(t, v.Struct(driver{Name: "Asha Rao", License: "MH1220190001", Rating: 4.2}))
	assert.Error(t, v.Struct(driver{Name: "Asssha", License: "MH1220190001", Rating: 4}))
}
