package domain

type Vehicle struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand"`
	Type            string  `json:"type"`
	Year            int     `json:"year"`
	SeatingCapacity int     `json:"seatingCapacity"`
	FuelType        string  `json:"fuelType"`
	Transmission    string  `json:"transmission"`
	Mileage         float64 `json:"mileage"`
	PricePerDay     float64 `json:"pricePerDay"`
	Available       bool    `json:"availability"`
	ImageURL        string  `json:"imageUrl"`
	Description     string  `json:"description"`
}
