package bookingRepo

import (
	"context"
	"errors"

	"tablecall/models"
)

// ErrNotFound is returned when no booking matches the given id or call id.
var ErrNotFound = errors.New("booking not found")

// ErrInvalidTransition is returned when an update would move a booking's
// status backward or along an undefined edge of the lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// UpdateInput is a partial update applied to an existing booking. Nil fields
// are left untouched.
type UpdateInput struct {
	Status              *models.BookingStatus
	RestaurantCallID    *string
	ConfirmationCallID  *string
	ConfirmationDetails *string
	CalendarEventID     *string
}

// BookingRepository defines the interface for booking state persistence.
// Implementations enforce the forward-only status invariant on Update.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) (string, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// GetByCallID finds a booking by either of its outbound call leg ids.
	GetByCallID(ctx context.Context, callID string) (*models.Booking, error)
	Update(ctx context.Context, id string, input UpdateInput) (*models.Booking, error)
	List(ctx context.Context) ([]models.Booking, error)
}

// applyUpdate mutates b in place, rejecting undefined status transitions.
// Shared by all repository implementations.
func applyUpdate(b *models.Booking, input UpdateInput) error {
	if input.Status != nil && *input.Status != b.Status {
		if !b.Status.CanTransition(*input.Status) {
			return ErrInvalidTransition
		}
		b.Status = *input.Status
	}
	if input.RestaurantCallID != nil {
		b.RestaurantCallID = *input.RestaurantCallID
	}
	if input.ConfirmationCallID != nil {
		b.ConfirmationCallID = *input.ConfirmationCallID
	}
	if input.ConfirmationDetails != nil {
		b.ConfirmationDetails = *input.ConfirmationDetails
	}
	if input.CalendarEventID != nil {
		b.CalendarEventID = *input.CalendarEventID
	}
	return nil
}
