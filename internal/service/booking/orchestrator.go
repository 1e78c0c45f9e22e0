package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/easyrent/vehiclerental/internal/branch"
	"github.com/easyrent/vehiclerental/internal/captcha"
	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/pricing"
	"github.com/easyrent/vehiclerental/internal/repository"
	"github.com/easyrent/vehiclerental/internal/routing"
	"github.com/easyrent/vehiclerental/internal/validation"
	"github.com/google/uuid"
)

type AttemptUseCase interface {
	Start(ctx context.Context, userID, vehicleID int64) (*domain.BookingAttempt, error)
	Get(ctx context.Context, userID int64, attemptID string) (*domain.BookingAttempt, error)
	SetLocations(ctx context.Context, userID int64, attemptID string, input LocationsInput) (*domain.BookingAttempt, error)
	Quote(ctx context.Context, userID int64, attemptID string) (*domain.BookingAttempt, error)
	Consent(ctx context.Context, userID int64, attemptID string, accepted bool) (*domain.BookingAttempt, *captcha.Challenge, error)
	RefreshCaptcha(ctx context.Context, userID int64, attemptID string) (*captcha.Challenge, error)
	SubmitDriver(ctx context.Context, userID int64, attemptID string, driver validation.DriverDetails, captchaAnswer string) (*domain.BookingAttempt, *domain.Booking, error)
	Pay(ctx context.Context, userID int64, attemptID string, card validation.CardDetails) (*domain.BookingAttempt, *domain.Booking, error)
}

type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt *domain.BookingAttempt, ttl time.Duration) error
	GetAttempt(ctx context.Context, id string) (*domain.BookingAttempt, error)
	LockAttempt(ctx context.Context, id string, ttl time.Duration) (bool, error)
	UnlockAttempt(ctx context.Context, id string) error
}

const attemptLockTTL = 30 * time.Second

type DistanceResolver interface {
	// Distance returns the one-way road distance in kilometres.
	Distance(ctx context.Context, from, to domain.Location) (float64, error)
}

type CaptchaIssuer interface {
	Issue(ctx context.Context) (*captcha.Challenge, error)
}

type LocationsInput struct {
	Branch   string
	Pickup   domain.Location
	Drop     domain.Location
	PickupAt time.Time
	DropAt   time.Time
}

// Orchestrator drives one booking attempt through location selection,
// pricing, consent, driver capture and payment. Every step loads the attempt,
// applies one transition and stores it again; a failed step stores nothing.
type Orchestrator struct {
	attempts AttemptStore
	vehicles repository.VehicleRepository
	routes   DistanceResolver
	captcha  CaptchaIssuer
	bookings BookingUseCase
	ttl      time.Duration
	loc      *time.Location
	now      func() time.Time
}

type OrchestratorOption func(*Orchestrator)

// WithPricingLocation sets the zone whose wall clock decides night pickups.
func WithPricingLocation(loc *time.Location) OrchestratorOption {
	return func(o *Orchestrator) {
		o.loc = loc
	}
}

func WithOrchestratorClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(
	attempts AttemptStore,
	vehicles repository.VehicleRepository,
	routes DistanceResolver,
	captcha CaptchaIssuer,
	bookings BookingUseCase,
	ttl time.Duration,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		attempts: attempts,
		vehicles: vehicles,
		routes:   routes,
		captcha:  captcha,
		bookings: bookings,
		ttl:      ttl,
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Start(ctx context.Context, userID, vehicleID int64) (*domain.BookingAttempt, error) {
	if _, err := o.vehicles.GetByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	attempt := domain.NewBookingAttempt(uuid.NewString(), userID, vehicleID, o.now())
	if err := o.attempts.SaveAttempt(ctx, attempt, o.ttl); err != nil {
		return nil, fmt.Errorf("save booking attempt: %w", err)
	}
	return attempt, nil
}

func (o *Orchestrator) Get(ctx context.Context, userID int64, attemptID string) (*domain.BookingAttempt, error) {
	attempt, err := o.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: booking attempt belongs to another user", domain.ErrForbidden)
	}
	return attempt, nil
}

func (o *Orchestrator) SetLocations(ctx context.Context, userID int64, attemptID string, in LocationsInput) (*domain.BookingAttempt, error) {
	unlock, err := o.lock(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	attempt, err := o.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if err := attempt.SetLocations(in.Branch, in.Pickup, in.Drop, in.PickupAt, in.DropAt); err != nil {
		return nil, err
	}
	if err := branch.Validate(in.Branch, in.Pickup.Label); err != nil {
		return nil, err
	}
	return attempt, o.save(ctx, attempt)
}

// Quote routes pickup to drop and prices the rental with the vehicle's day rate.
func (o *Orchestrator) Quote(ctx context.Context, userID int64, attemptID string) (*domain.BookingAttempt, error) {
	unlock, err := o.lock(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	attempt, err := o.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.State != domain.AttemptPricingReady && attempt.State != domain.AttemptAwaitingConsent {
		return nil, fmt.Errorf("%w: cannot quote while %s", domain.ErrInvalidTransition, attempt.State)
	}

	vehicle, err := o.vehicles.GetByID(ctx, attempt.VehicleID)
	if err != nil {
		return nil, err
	}
	km, err := o.routes.Distance(ctx, attempt.Pickup, attempt.Drop)
	if errors.Is(err, routing.ErrNoRoute) {
		return nil, fmt.Errorf("%w: could not calculate route distance, try another route", domain.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("route distance: %w", err)
	}

	quote := pricing.Calculate(pricing.Input{
		DayRate:  vehicle.PricePerDay,
		OneWayKm: km,
		PickupAt: attempt.PickupAt.In(o.loc),
		DropAt:   attempt.DropAt.In(o.loc),
	})
	if err := attempt.SetQuote(quote); err != nil {
		return nil, err
	}
	return attempt, o.save(ctx, attempt)
}

// Consent records acceptance of the terms and issues the CAPTCHA for the
// driver details step.
func (o *Orchestrator) Consent(ctx context.Context, userID int64, attemptID string, accepted bool) (*domain.BookingAttempt, *captcha.Challenge, error) {
	unlock, err := o.lock(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	attempt, err := o.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, nil, err
	}
	probe := *attempt
	if err := probe.AcceptTerms(accepted, ""); err != nil {
		return nil, nil, err
	}

	challenge, err := o.captcha.Issue(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := attempt.AcceptTerms(accepted, challenge.ID); err != nil {
		return nil, nil, err
	}
	if err := o.save(ctx, attempt); err != nil {
		return nil, nil, err
	}
	return attempt, challenge, nil
}

func (o *Orchestrator) RefreshCaptcha(ctx context.Context, userID int64, attemptID string) (*captcha.Challenge, error) {
	unlock, err := o.lock(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	attempt, err := o.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.State != domain.AttemptCapturingDriver {
		return nil, fmt.Errorf("%w: cannot refresh captcha while %s", domain.ErrInvalidTransition, attempt.State)
	}

	challenge, err := o.captcha.Issue(ctx)
	if err != nil {
		return nil, err
	}
	if err := attempt.RefreshCaptcha(challenge.ID); err != nil {
		return nil, err
	}
	return challenge, o.save(ctx, attempt)
}

// SubmitDriver validates the driver and persists the booking as
// pending_payment. A wrong CAPTCHA answer burns the challenge; the client
// asks for a fresh one through RefreshCaptcha.
func (o *Orchestrator) SubmitDriver(ctx context.Context, userID int64, attemptID string, driver validation.DriverDetails, captchaAnswer string) (*domain.BookingAttempt, *domain.Booking, error) {
	unlock, err := o.lock(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	attempt, err := o.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.State != domain.AttemptCapturingDriver || attempt.Quote == nil {
		return nil, nil, fmt.Errorf("%w: cannot submit driver details while %s", domain.ErrInvalidTransition, attempt.State)
	}

	booking, err := o.bookings.CreateBooking(ctx, userID, CreateBookingInput{
		VehicleID:     attempt.VehicleID,
		Pickup:        attempt.Pickup.Label,
		Drop:          attempt.Drop.Label,
		PickupAt:      attempt.PickupAt,
		DropAt:        attempt.DropAt,
		Price:         attempt.Quote.Total,
		DistanceKm:    attempt.Quote.RoundTripKm,
		BranchName:    attempt.Branch,
		Driver:        driver,
		CaptchaID:     attempt.CaptchaID,
		CaptchaAnswer: captchaAnswer,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := attempt.BookingPersisted(booking.ID, booking.TransactionID); err != nil {
		return nil, nil, err
	}
	if err := o.save(ctx, attempt); err != nil {
		return nil, nil, err
	}
	return attempt, booking, nil
}

func (o *Orchestrator) Pay(ctx context.Context, userID int64, attemptID string, card validation.CardDetails) (*domain.BookingAttempt, *domain.Booking, error) {
	unlock, err := o.lock(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	attempt, err := o.Get(ctx, userID, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.State != domain.AttemptAwaitingPayment {
		return nil, nil, fmt.Errorf("%w: cannot pay while %s", domain.ErrInvalidTransition, attempt.State)
	}

	booking, err := o.bookings.PayBooking(ctx, userID, attempt.BookingID, card)
	if errors.Is(err, domain.ErrConflict) {
		// an earlier Pay may have charged the booking and then failed to store the attempt
		if current, lookupErr := o.bookings.GetBooking(ctx, userID, attempt.BookingID); lookupErr == nil &&
			(current.Status == domain.BookingStatusPaid || current.Status == domain.BookingStatusConfirmed) {
			booking, err = current, nil
		}
	}
	if err != nil {
		return nil, nil, err
	}
	if err := attempt.Complete(); err != nil {
		return nil, nil, err
	}
	if err := o.save(ctx, attempt); err != nil {
		return nil, nil, err
	}
	return attempt, booking, nil
}

// lock serialises steps on one attempt. A concurrent step gets ErrConflict
// and can simply be retried.
func (o *Orchestrator) lock(ctx context.Context, attemptID string) (func(), error) {
	ok, err := o.attempts.LockAttempt(ctx, attemptID, attemptLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock booking attempt: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking attempt is being updated", domain.ErrConflict)
	}
	return func() {
		// the lock expires on its own if this fails
		_ = o.attempts.UnlockAttempt(context.WithoutCancel(ctx), attemptID)
	}, nil
}

func (o *Orchestrator) save(ctx context.Context, attempt *domain.BookingAttempt) error {
	if err := o.attempts.SaveAttempt(ctx, attempt, o.ttl); err != nil {
		return fmt.Errorf("save booking attempt: %w", err)
	}
	return nil
}

var _ AttemptUseCase = (*Orchestrator)(nil)
