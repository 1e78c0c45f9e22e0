package booking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/easyrent/vehiclerental/internal/branch"
	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/kafka"
	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/easyrent/vehiclerental/internal/receipt"
	"github.com/easyrent/vehiclerental/internal/repository"
	"github.com/easyrent/vehiclerental/internal/validation"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*domain.Booking, error)
	History(ctx context.Context, userID int64) ([]domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	PayBooking(ctx context.Context, userID, bookingID int64, card validation.CardDetails) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	AbandonStalePayments(ctx context.Context) ([]domain.Booking, error)
	ConfirmStalePayments(ctx context.Context) ([]domain.Booking, error)
	Receipt(ctx context.Context, userID, bookingID int64) ([]byte, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, id, answer string) error
}

type CreateBookingInput struct {
	VehicleID     int64
	Pickup        string
	Drop          string
	PickupAt      time.Time
	DropAt        time.Time
	Price         int64
	DistanceKm    float64
	BranchName    string
	Driver        validation.DriverDetails
	CaptchaID     string
	CaptchaAnswer string
}

type BookingService struct {
	bookings           repository.BookingRepository
	vehicles           repository.VehicleRepository
	captcha            CaptchaVerifier
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	paymentWindow      time.Duration
	confirmGrace       time.Duration
	txids              *TransactionIDs
	receipts           *receipt.Renderer
	now                func() time.Time
	log                logger.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLogger(log logger.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

// WithConfirmGrace sets how long a paid booking may wait for its payment
// event before the sweep confirms it directly.
func WithConfirmGrace(grace time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.confirmGrace = grace
	}
}

// WithLocation sets the zone receipts are printed in.
func WithLocation(loc *time.Location) BookingServiceOption {
	return func(s *BookingService) {
		s.receipts = receipt.NewRenderer(loc)
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	vehicles repository.VehicleRepository,
	captcha CaptchaVerifier,
	producer Producer,
	bookingTopic string,
	paymentWindow time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:      bookings,
		vehicles:      vehicles,
		captcha:       captcha,
		producer:      producer,
		bookingTopic:  bookingTopic,
		paymentWindow: paymentWindow,
		confirmGrace:  2 * time.Minute,
		txids:         NewTransactionIDs(),
		receipts:      receipt.NewRenderer(nil),
		now:           time.Now,
		log:           logger.Discard(),
	}
	for _, opt := range opts {
		opt(service)
	}
	service.log = service.log.Action("bookings")
	return service
}

// CreateBooking validates the request, spends the CAPTCHA and stores the
// booking as pending_payment. Field checks run before the CAPTCHA is
// consumed so a typo does not cost the user a new challenge.
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, in CreateBookingInput) (*domain.Booking, error) {
	in.Pickup = strings.TrimSpace(in.Pickup)
	in.Drop = strings.TrimSpace(in.Drop)
	in.Driver.License = strings.ToUpper(strings.TrimSpace(in.Driver.License))

	if in.VehicleID <= 0 || in.Pickup == "" || in.Drop == "" || in.PickupAt.IsZero() || in.DropAt.IsZero() {
		return nil, fmt.Errorf("%w: vehicle, pickup, drop and dates are required", domain.ErrValidation)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if err := validation.ValidateDriver(in.Driver); err != nil {
		return nil, err
	}
	if err := branch.Validate(in.BranchName, in.Pickup); err != nil {
		return nil, err
	}
	if err := s.captcha.Verify(ctx, in.CaptchaID, in.CaptchaAnswer); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, in.VehicleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown vehicle %d", domain.ErrValidation, in.VehicleID)
		}
		return nil, err
	}

	booking := &domain.Booking{
		UserID:          userID,
		TransactionID:   s.txids.Next(),
		VehicleID:       vehicle.ID,
		VehicleName:     vehicle.Name,
		Pickup:          in.Pickup,
		Drop:            in.Drop,
		PickupAt:        in.PickupAt,
		DropAt:          in.DropAt,
		Price:           in.Price,
		DistanceKm:      in.DistanceKm,
		DriverName:      strings.TrimSpace(in.Driver.Name),
		DriverContact:   in.Driver.Contact,
		DriverAge:       in.Driver.Age,
		DriverLicense:   in.Driver.License,
		BranchName:      in.BranchName,
		Status:          domain.BookingStatusPendingPayment,
		PaymentDeadline: s.now().Add(s.paymentWindow),
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.log.Info("booking created", "booking_id", booking.ID, "transaction_id", booking.TransactionID, "user_id", userID)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) History(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	return s.owned(ctx, userID, bookingID)
}

// CancelBooking soft-cancels an active booking of the caller whose drop time
// has not passed yet.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	current, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Active() {
		return nil, fmt.Errorf("%w: booking is already %s", domain.ErrConflict, current.Status)
	}
	if current.DropAt.Before(s.now()) {
		return nil, fmt.Errorf("%w: booking has already ended", domain.ErrConflict)
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, domain.ActiveBookingStatuses, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking cancelled", "booking_id", bookingID, "user_id", userID)
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return updated, nil
}

// PayBooking runs the simulated card payment for a pending booking.
func (s *BookingService) PayBooking(ctx context.Context, userID, bookingID int64, card validation.CardDetails) (*domain.Booking, error) {
	current, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPendingPayment {
		return nil, fmt.Errorf("%w: booking is %s, not awaiting payment", domain.ErrConflict, current.Status)
	}
	if !s.now().Before(current.PaymentDeadline) {
		return nil, fmt.Errorf("%w: payment window has expired", domain.ErrConflict)
	}
	if err := validation.ValidateCard(card, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID,
		[]domain.BookingStatus{domain.BookingStatusPendingPayment}, domain.BookingStatusPaid)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking paid", "booking_id", bookingID, "transaction_id", updated.TransactionID)
	s.publish(ctx, kafka.EventBookingPaid, updated)
	return updated, nil
}

// ConfirmBooking is the worker's step after a payment event. Confirming an
// already confirmed booking is a no-op so redelivered events are harmless.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusConfirmed {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID,
		[]domain.BookingStatus{domain.BookingStatusPaid}, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking confirmed", "booking_id", bookingID)
	s.publish(ctx, kafka.EventBookingConfirmed, updated)
	return updated, nil
}

func (s *BookingService) AbandonStalePayments(ctx context.Context) ([]domain.Booking, error) {
	abandoned, err := s.bookings.AbandonPendingBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range abandoned {
		s.publish(ctx, kafka.EventBookingAbandoned, &abandoned[i])
	}
	if len(abandoned) > 0 {
		s.log.Info("abandoned unpaid bookings", "count", len(abandoned))
	}
	return abandoned, nil
}

// ConfirmStalePayments confirms paid bookings whose booking_paid event never
// got processed. A failure on one booking does not stop the rest.
func (s *BookingService) ConfirmStalePayments(ctx context.Context) ([]domain.Booking, error) {
	stale, err := s.bookings.ListPaidBefore(ctx, s.now().Add(-s.confirmGrace))
	if err != nil {
		return nil, err
	}

	var (
		confirmed = make([]domain.Booking, 0, len(stale))
		errs      []error
	)
	for _, b := range stale {
		updated, err := s.ConfirmBooking(ctx, b.ID)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// cancelled between the listing and the update
				continue
			}
			errs = append(errs, fmt.Errorf("confirm booking %d: %w", b.ID, err))
			continue
		}
		confirmed = append(confirmed, *updated)
	}
	if len(confirmed) > 0 {
		s.log.Info("confirmed stale payments", "count", len(confirmed))
	}
	return confirmed, errors.Join(errs...)
}

// Receipt renders the PDF receipt of a paid or confirmed booking.
func (s *BookingService) Receipt(ctx context.Context, userID, bookingID int64) ([]byte, error) {
	b, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusPaid && b.Status != domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: receipt is available once the booking is paid", domain.ErrConflict)
	}

	var buf bytes.Buffer
	if err := s.receipts.Render(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// owned loads a booking and hides it from anyone but its owner.
func (s *BookingService) owned(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking not found or unauthorized", domain.ErrForbidden)
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, fmt.Errorf("%w: booking not found or unauthorized", domain.ErrForbidden)
	}
	return b, nil
}

// publish fans a transition out to the event and notification topics.
// Delivery failures are logged; the database row is the source of truth.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		TransactionID: booking.TransactionID,
		UserID:        booking.UserID,
		VehicleID:     booking.VehicleID,
		VehicleName:   booking.VehicleName,
		Status:        string(booking.Status),
		Price:         booking.Price,
		OccurredAt:    s.now(),
	}
	key := strconv.FormatInt(booking.ID, 10)

	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		s.log.Error("publish booking event", err, "type", eventType, "booking_id", booking.ID)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.Error("publish notification", err, "type", eventType, "booking_id", booking.ID)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
