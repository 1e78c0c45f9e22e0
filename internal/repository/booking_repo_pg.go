package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error)
	AbandonPendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	ListPaidBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	HasActiveForVehicle(ctx context.Context, userID, vehicleID int64) (bool, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

// bookingSelect reads from a relation aliased b so it can sit on top of the
// bookings table or an UPDATE ... RETURNING * CTE.
const bookingSelect = `SELECT b.id, b.user_id, b.transaction_id, b.vehicle_id, COALESCE(v.name, 'Unknown Vehicle'),
	b.pickup, b.drop_location, b.pickup_at, b.drop_at, b.price, b.distance_km,
	b.driver_name, b.driver_contact, b.driver_age, b.driver_license, b.branch_name,
	b.status, b.payment_deadline, b.created_at, b.updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.Status == "" {
		b.Status = domain.BookingStatusPendingPayment
	}
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (user_id, transaction_id, vehicle_id, pickup, drop_location,
		pickup_at, drop_at, price, distance_km, driver_name, driver_contact, driver_age, driver_license,
		branch_name, status, payment_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`,
		b.UserID, b.TransactionID, b.VehicleID, b.Pickup, b.Drop, b.PickupAt, b.DropAt, b.Price, b.DistanceKm,
		b.DriverName, b.DriverContact, b.DriverAge, b.DriverLicense, b.BranchName, string(b.Status), b.PaymentDeadline).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("transaction id %s: %w", b.TransactionID, domain.ErrConflict)
	}
	return err
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, bookingSelect+` FROM bookings b LEFT JOIN vehicles v ON v.id = b.vehicle_id WHERE b.id=$1`, id))
	if err != nil {
		return nil, notFound(err, "booking")
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, bookingSelect+` FROM bookings b LEFT JOIN vehicles v ON v.id = b.vehicle_id
		WHERE b.user_id=$1 ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// UpdateStatus moves a booking to status to, but only while its current status
// is one of from. A booking in any other status yields ErrConflict.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `WITH b AS (
		UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status = ANY($3) RETURNING *
	) `+bookingSelect+` FROM b LEFT JOIN vehicles v ON v.id = b.vehicle_id`, string(to), id, statusStrings(from)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("booking %d is not in status %v: %w", id, from, domain.ErrConflict)
	}
	return b, err
}

func (r *PGBookingRepository) AbandonPendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `WITH b AS (
		UPDATE bookings SET status=$1, updated_at=now() WHERE status=$2 AND payment_deadline <= $3 RETURNING *
	) `+bookingSelect+` FROM b LEFT JOIN vehicles v ON v.id = b.vehicle_id`,
		string(domain.BookingStatusAbandoned), string(domain.BookingStatusPendingPayment), deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ListPaidBefore returns bookings that were paid at or before cutoff and are
// still waiting for confirmation.
func (r *PGBookingRepository) ListPaidBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, bookingSelect+` FROM bookings b LEFT JOIN vehicles v ON v.id = b.vehicle_id
		WHERE b.status=$1 AND b.updated_at <= $2 ORDER BY b.updated_at`,
		string(domain.BookingStatusPaid), cutoff)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) HasActiveForVehicle(ctx context.Context, userID, vehicleID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE user_id=$1 AND vehicle_id=$2 AND status = ANY($3))`,
		userID, vehicleID, statusStrings(domain.ActiveBookingStatuses)).Scan(&exists)
	return exists, err
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.TransactionID, &b.VehicleID, &b.VehicleName,
		&b.Pickup, &b.Drop, &b.PickupAt, &b.DropAt, &b.Price, &b.DistanceKm,
		&b.DriverName, &b.DriverContact, &b.DriverAge, &b.DriverLicense, &b.BranchName,
		&status, &b.PaymentDeadline, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

var _ BookingRepository = (*PGBookingRepository)(nil)
