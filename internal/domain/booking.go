package domain

import "time"

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusPaid           BookingStatus = "paid"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusAbandoned      BookingStatus = "abandoned"
)

// ActiveBookingStatuses are the statuses a booking can still be cancelled from
// and that count as a prior booking for feedback.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPendingPayment,
	BookingStatusPaid,
	BookingStatusConfirmed,
}

func (s BookingStatus) Active() bool {
	for _, active := range ActiveBookingStatuses {
		if s == active {
			return true
		}
	}
	return false
}

type Booking struct {
	ID              int64
	UserID          int64
	TransactionID   string
	VehicleID       int64
	VehicleName     string
	Pickup          string
	Drop            string
	PickupAt        time.Time
	DropAt          time.Time
	Price           int64
	DistanceKm      float64
	DriverName      string
	DriverContact   string
	DriverAge       int
	DriverLicense   string
	BranchName      string
	Status          BookingStatus
	PaymentDeadline time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PriceBreakdown is the itemised result of a price calculation.
type PriceBreakdown struct {
	BaseFare          float64 `json:"baseFare"`
	RatePerKm         float64 `json:"ratePerKm"`
	RoundTripKm       float64 `json:"roundTripKm"`
	DistanceCost      float64 `json:"distanceCost"`
	Days              float64 `json:"days"`
	PickupHour        int     `json:"pickupHour"`
	NightDiscount     bool    `json:"nightDiscount"`
	RentalCost        float64 `json:"rentalCost"`
	ServiceFeePercent float64 `json:"serviceFeePercent"`
	ServiceFee        float64 `json:"serviceFee"`
	Total             int64   `json:"total"`
}
