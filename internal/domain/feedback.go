package domain

import "time"

type Feedback struct {
	ID        int64
	VehicleID int64
	UserID    int64
	UserName  string
	Rating    float64
	Comment   string
	CreatedAt time.Time
}
