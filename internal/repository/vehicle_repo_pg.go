package repository

import (
	"context"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/jackc/pgx/v5"
)

type VehicleRepository interface {
	List(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

type PGVehicleRepository struct {
	db DB
}

func NewVehicleRepository(db DB) VehicleRepository {
	return &PGVehicleRepository{db: db}
}

const vehicleColumns = `id, name, brand, type, year, seating_capacity, fuel_type, transmission, mileage, price_per_day, availability, image_url, description`

func (r *PGVehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *PGVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "vehicle")
	}
	return v, nil
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(&v.ID, &v.Name, &v.Brand, &v.Type, &v.Year, &v.SeatingCapacity, &v.FuelType,
		&v.Transmission, &v.Mileage, &v.PricePerDay, &v.Available, &v.ImageURL, &v.Description); err != nil {
		return nil, err
	}
	return &v, nil
}

var _ VehicleRepository = (*PGVehicleRepository)(nil)
