package repository

import (
	"context"

	"github.com/easyrent/vehiclerental/internal/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	ListByVehicle(ctx context.Context, vehicleID int64) ([]domain.Feedback, error)
}

type PGFeedbackRepository struct {
	db DB
}

func NewFeedbackRepository(db DB) FeedbackRepository {
	return &PGFeedbackRepository{db: db}
}

func (r *PGFeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	return r.db.QueryRow(ctx, `INSERT INTO feedback (vehicle_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		f.VehicleID, f.UserID, f.Rating, f.Comment).Scan(&f.ID, &f.CreatedAt)
}

func (r *PGFeedbackRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]domain.Feedback, error) {
	rows, err := r.db.Query(ctx, `SELECT f.id, f.vehicle_id, f.user_id, u.full_name, f.rating, f.comment, f.created_at
		FROM feedback f JOIN users u ON u.id = f.user_id
		WHERE f.vehicle_id=$1 ORDER BY f.created_at DESC, f.id DESC`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedback := make([]domain.Feedback, 0)
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.VehicleID, &f.UserID, &f.UserName, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		feedback = append(feedback, f)
	}
	return feedback, rows.Err()
}

var _ FeedbackRepository = (*PGFeedbackRepository)(nil)
