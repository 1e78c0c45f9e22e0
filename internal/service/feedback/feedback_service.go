package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/repository"
	"github.com/easyrent/vehiclerental/internal/validation"
)

type FeedbackUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.Feedback, error)
	List(ctx context.Context, vehicleID int64) ([]domain.Feedback, error)
}

// BookingChecker reports whether a user has a booking that entitles them to review a vehicle.
type BookingChecker interface {
	HasActiveForVehicle(ctx context.Context, userID, vehicleID int64) (bool, error)
}

type SubmitInput struct {
	UserID    int64
	VehicleID int64
	Rating    *float64
	Comment   string
}

type FeedbackService struct {
	feedback repository.FeedbackRepository
	bookings BookingChecker
}

func NewFeedbackService(feedback repository.FeedbackRepository, bookings BookingChecker) *FeedbackService {
	return &FeedbackService{feedback: feedback, bookings: bookings}
}

func (s *FeedbackService) Submit(ctx context.Context, in SubmitInput) (*domain.Feedback, error) {
	if in.Rating == nil {
		return nil, fmt.Errorf("%w: rating required", domain.ErrValidation)
	}
	if !validation.Rating(*in.Rating) {
		return nil, fmt.Errorf("%w: rating must be between 0 and 5 in steps of 0.5", domain.ErrValidation)
	}

	ok, err := s.bookings.HasActiveForVehicle(ctx, in.UserID, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: you cannot give feedback for a vehicle you haven't booked", domain.ErrForbidden)
	}

	f := &domain.Feedback{
		VehicleID: in.VehicleID,
		UserID:    in.UserID,
		Rating:    *in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FeedbackService) List(ctx context.Context, vehicleID int64) ([]domain.Feedback, error) {
	return s.feedback.ListByVehicle(ctx, vehicleID)
}

var _ FeedbackUseCase = (*FeedbackService)(nil)
