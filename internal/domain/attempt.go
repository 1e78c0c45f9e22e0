package domain

import (
	"fmt"
	"time"
)

type AttemptState string

const (
	AttemptSelectingLocations AttemptState = "selecting_locations"
	AttemptPricingReady       AttemptState = "pricing_ready"
	AttemptAwaitingConsent    AttemptState = "awaiting_consent"
	AttemptCapturingDriver    AttemptState = "capturing_driver_details"
	AttemptAwaitingPayment    AttemptState = "awaiting_payment"
	AttemptCompleted          AttemptState = "completed"
)

type Location struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// BookingAttempt is one pass through the booking flow. Transition methods
// leave the attempt untouched when they return an error.
type BookingAttempt struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"userId"`
	VehicleID     int64           `json:"vehicleId"`
	State         AttemptState    `json:"state"`
	Branch        string          `json:"branch,omitempty"`
	Pickup        Location        `json:"pickup"`
	Drop          Location        `json:"drop"`
	PickupAt      time.Time       `json:"pickupAt"`
	DropAt        time.Time       `json:"dropAt"`
	Quote         *PriceBreakdown `json:"quote,omitempty"`
	TermsAccepted bool            `json:"termsAccepted"`
	CaptchaID     string          `json:"captchaId,omitempty"`
	BookingID     int64           `json:"bookingId,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func NewBookingAttempt(id string, userID, vehicleID int64, now time.Time) *BookingAttempt {
	return &BookingAttempt{
		ID:        id,
		UserID:    userID,
		VehicleID: vehicleID,
		State:     AttemptSelectingLocations,
		CreatedAt: now,
	}
}

func (a *BookingAttempt) transitionError(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, a.State)
}

// SetLocations records branch, pickup, drop and rental window. Locations can
// be changed until driver details are being captured; doing so drops the quote.
func (a *BookingAttempt) SetLocations(branch string, pickup, drop Location, pickupAt, dropAt time.Time) error {
	switch a.State {
	case AttemptSelectingLocations, AttemptPricingReady, AttemptAwaitingConsent:
	default:
		return a.transitionError("change locations")
	}
	if branch == "" || pickup.Label == "" || drop.Label == "" {
		return fmt.Errorf("%w: branch, pickup and drop are required", ErrValidation)
	}
	if pickupAt.IsZero() || dropAt.IsZero() {
		return fmt.Errorf("%w: pickup and drop date/time are required", ErrValidation)
	}

	a.Branch = branch
	a.Pickup = pickup
	a.Drop = drop
	a.PickupAt = pickupAt
	a.DropAt = dropAt
	a.Quote = nil
	a.TermsAccepted = false
	a.State = AttemptPricingReady
	return nil
}

func (a *BookingAttempt) SetQuote(quote PriceBreakdown) error {
	if a.State != AttemptPricingReady && a.State != AttemptAwaitingConsent {
		return a.transitionError("quote")
	}
	a.Quote = &quote
	a.State = AttemptAwaitingConsent
	return nil
}

func (a *BookingAttempt) AcceptTerms(accepted bool, captchaID string) error {
	if a.State != AttemptAwaitingConsent {
		return a.transitionError("accept terms")
	}
	if !accepted {
		return fmt.Errorf("%w: terms and conditions must be accepted", ErrValidation)
	}
	if a.Quote == nil {
		return fmt.Errorf("%w: calculate the price first", ErrValidation)
	}
	a.TermsAccepted = true
	a.CaptchaID = captchaID
	a.State = AttemptCapturingDriver
	return nil
}

func (a *BookingAttempt) RefreshCaptcha(captchaID string) error {
	if a.State != AttemptCapturingDriver {
		return a.transitionError("refresh captcha")
	}
	a.CaptchaID = captchaID
	return nil
}

func (a *BookingAttempt) BookingPersisted(bookingID int64, transactionID string) error {
	if a.State != AttemptCapturingDriver {
		return a.transitionError("persist booking")
	}
	a.BookingID = bookingID
	a.TransactionID = transactionID
	a.CaptchaID = ""
	a.State = AttemptAwaitingPayment
	return nil
}

func (a *BookingAttempt) Complete() error {
	if a.State != AttemptAwaitingPayment {
		return a.transitionError("complete")
	}
	a.State = AttemptCompleted
	return nil
}
