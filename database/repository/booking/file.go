package bookingRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"tablecall/models"

	"github.com/google/uuid"
)

// fileBookingRepo persists bookings as a single JSON object keyed by booking
// id, rewritten wholesale on every mutation. A process-wide mutex serializes
// the read-modify-write cycle so concurrent handlers cannot lose records.
type fileBookingRepo struct {
	path string
	mu   sync.Mutex
}

// NewFileBookingRepo returns a BookingRepository backed by a JSON file.
func NewFileBookingRepo(path string) BookingRepository {
	return &fileBookingRepo{path: path}
}

func (r *fileBookingRepo) load() (map[string]models.Booking, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]models.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	bookings := map[string]models.Booking{}
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return bookings, nil
}

// save writes through a temp file and renames it into place so a crash
// mid-write never truncates the store.
func (r *fileBookingRepo) save(bookings map[string]models.Booking) error {
	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".bookings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close state file: %w", err)
	}
	return os.Rename(tmp.Name(), r.path)
}

func (r *fileBookingRepo) Create(ctx context.Context, booking *models.Booking) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return "", err
	}
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	bookings[booking.ID] = *booking
	if err := r.save(bookings); err != nil {
		return "", err
	}
	return booking.ID, nil
}

func (r *fileBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return nil, err
	}
	b, ok := bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *fileBookingRepo) GetByCallID(ctx context.Context, callID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if b.RestaurantCallID == callID || b.ConfirmationCallID == callID {
			booking := b
			return &booking, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileBookingRepo) Update(ctx context.Context, id string, input UpdateInput) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return nil, err
	}
	b, ok := bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := applyUpdate(&b, input); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now().UTC()
	bookings[id] = b
	if err := r.save(bookings); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *fileBookingRepo) List(ctx context.Context) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
