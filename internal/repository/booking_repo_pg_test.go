package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{"id", "user_id", "transaction_id", "vehicle_id", "vehicle_name",
	"pickup", "drop_location", "pickup_at", "drop_at", "price", "distance_km",
	"driver_name", "driver_contact", "driver_age", "driver_license", "branch_name",
	"status", "payment_deadline", "created_at", "updated_at"}

func bookingRow(rows *pgxmock.Rows, id int64, status domain.BookingStatus, vehicleName string, at time.Time) *pgxmock.Rows {
	return rows.AddRow(id, int64(7), "TXN-1-1", int64(3), vehicleName,
		"Bandra West", "Pune Station", at, at.Add(48*time.Hour), int64(2520), 20.0,
		"Ravi Kumar", "9876543210", 30, "MH12AB1234", "Andheri",
		string(status), at.Add(15*time.Minute), at, at)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestBookingRepository_Create(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	b := &domain.Booking{
		UserID: 7, TransactionID: "TXN-1-1", VehicleID: 3, Pickup: "Bandra West", Drop: "Pune Station",
		PickupAt: now, DropAt: now.Add(48 * time.Hour), Price: 2520, DistanceKm: 20,
		DriverName: "Ravi Kumar", DriverContact: "9876543210", DriverAge: 30, DriverLicense: "MH12AB1234",
		BranchName: "Andheri", PaymentDeadline: now.Add(15 * time.Minute),
	}

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(int64(7), "TXN-1-1", int64(3), "Bandra West", "Pune Station", now, now.Add(48*time.Hour),
			int64(2520), 20.0, "Ravi Kumar", "9876543210", 30, "MH12AB1234", "Andheri",
			"pending_payment", now.Add(15*time.Minute)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, int64(11), b.ID)
	assert.Equal(t, domain.BookingStatusPendingPayment, b.Status)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestBookingRepository_Create_DuplicateTransaction(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Booking{TransactionID: "TXN-1-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestBookingRepository_GetByID_NotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM bookings b LEFT JOIN vehicles v")).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepository_ListByUser(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(bookingCols)
	bookingRow(rows, 2, domain.BookingStatusPaid, "Unknown Vehicle", now)
	bookingRow(rows, 1, domain.BookingStatusCancelled, "Hyundai Creta", now.Add(-time.Hour))

	pool.ExpectQuery(regexp.QuoteMeta("WHERE b.user_id=$1 ORDER BY b.created_at DESC")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	bookings, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "Unknown Vehicle", bookings[0].VehicleName)
	assert.Equal(t, domain.BookingStatusPaid, bookings[0].Status)
	assert.Equal(t, domain.BookingStatusCancelled, bookings[1].Status)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status=$1")).
		WithArgs("paid", int64(2), []string{"pending_payment"}).
		WillReturnRows(bookingRow(pgxmock.NewRows(bookingCols), 2, domain.BookingStatusPaid, "Hyundai Creta", now))

	b, err := repo.UpdateStatus(context.Background(), 2, []domain.BookingStatus{domain.BookingStatusPendingPayment}, domain.BookingStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPaid, b.Status)
	assert.Equal(t, "Hyundai Creta", b.VehicleName)
}

func TestBookingRepository_UpdateStatus_WrongStatus(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status=$1")).
		WithArgs("confirmed", int64(2), []string{"paid"}).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), 2, []domain.BookingStatus{domain.BookingStatusPaid}, domain.BookingStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestBookingRepository_AbandonPendingBefore(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("payment_deadline <= $3")).
		WithArgs("abandoned", "pending_payment", now).
		WillReturnRows(bookingRow(pgxmock.NewRows(bookingCols), 5, domain.BookingStatusAbandoned, "Honda City", now))

	abandoned, err := repo.AbandonPendingBefore(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, int64(5), abandoned[0].ID)
	assert.Equal(t, domain.BookingStatusAbandoned, abandoned[0].Status)
}

func TestBookingRepository_ListPaidBefore(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)
	cutoff := time.Date(2026, 10, 1, 8, 58, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("WHERE b.status=$1 AND b.updated_at <= $2")).
		WithArgs("paid", cutoff).
		WillReturnRows(bookingRow(pgxmock.NewRows(bookingCols), 2, domain.BookingStatusPaid, "Honda City", cutoff.Add(-time.Hour)))

	paid, err := repo.ListPaidBefore(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, int64(2), paid[0].ID)
	assert.Equal(t, domain.BookingStatusPaid, paid[0].Status)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestBookingRepository_HasActiveForVehicle(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBookingRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM bookings")).
		WithArgs(int64(7), int64(3), []string{"pending_payment", "paid", "confirmed"}).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasActiveForVehicle(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, ok)
}
