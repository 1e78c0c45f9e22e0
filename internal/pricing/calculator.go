// Package pricing computes rental prices from day rate, routed distance and
// the rental window.
package pricing

import (
	"math"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
)

const (
	BaseFare          = 100.0
	RatePerKm         = 15.0
	ServiceFeePercent = 5.0
	NightDiscount     = 0.75

	nightStartHour = 20
	nightEndHour   = 6
)

type Input struct {
	DayRate  float64
	OneWayKm float64
	PickupAt time.Time
	DropAt   time.Time
}

// Calculate returns the full price breakdown. The pickup hour is taken from
// PickupAt in its own location.
func Calculate(in Input) domain.PriceBreakdown {
	days := RentalDays(in.PickupAt, in.DropAt)
	hour := in.PickupAt.Hour()
	night := IsNightHour(hour)

	rental := in.DayRate * days
	if night {
		rental *= NightDiscount
	}

	roundTrip := in.OneWayKm * 2
	distanceCost := roundTrip * RatePerKm
	subtotal := BaseFare + distanceCost + rental
	fee := subtotal * ServiceFeePercent / 100

	return domain.PriceBreakdown{
		BaseFare:          BaseFare,
		RatePerKm:         RatePerKm,
		RoundTripKm:       roundTrip,
		DistanceCost:      distanceCost,
		Days:              days,
		PickupHour:        hour,
		NightDiscount:     night,
		RentalCost:        rental,
		ServiceFeePercent: ServiceFeePercent,
		ServiceFee:        fee,
		Total:             int64(math.Round(subtotal + fee)),
	}
}

// RentalDays rounds the elapsed time up to the next half day. A zero or
// negative span counts as one day.
func RentalDays(from, to time.Time) float64 {
	elapsed := to.Sub(from)
	if elapsed <= 0 {
		return 1
	}
	return math.Ceil(elapsed.Hours()/24*2) / 2
}

func IsNightHour(hour int) bool {
	return hour >= nightStartHour || hour < nightEndHour
}
