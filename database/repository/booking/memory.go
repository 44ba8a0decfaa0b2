package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"tablecall/models"

	"github.com/google/uuid"
)

// memoryBookingRepo is a map-backed BookingRepository used in tests and as a
// drop-in substitute when no durable store is wanted.
type memoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
}

// NewMemoryBookingRepo returns an in-memory BookingRepository.
func NewMemoryBookingRepo() BookingRepository {
	return &memoryBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *memoryBookingRepo) Create(ctx context.Context, booking *models.Booking) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	r.bookings[booking.ID] = *booking
	return booking.ID, nil
}

func (r *memoryBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memoryBookingRepo) GetByCallID(ctx context.Context, callID string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.RestaurantCallID == callID || b.ConfirmationCallID == callID {
			booking := b
			return &booking, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryBookingRepo) Update(ctx context.Context, id string, input UpdateInput) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := applyUpdate(&b, input); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now().UTC()
	r.bookings[id] = b
	return &b, nil
}

func (r *memoryBookingRepo) List(ctx context.Context) ([]models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
