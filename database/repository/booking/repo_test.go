package bookingRepo

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"tablecall/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(name string) *models.Booking {
	return &models.Booking{
		CustomerName:  "Alice",
		CustomerPhone: "+16505550100",
		Restaurant: models.Restaurant{
			Name:  name,
			Phone: "+14085550101",
		},
		Date:      "2026-09-01",
		Time:      "7:00 PM",
		PartySize: 2,
	}
}

// Both persistence-agnostic implementations must satisfy the same contract.
func repoUnderTest(t *testing.T) map[string]func() BookingRepository {
	t.Helper()
	return map[string]func() BookingRepository{
		"file": func() BookingRepository {
			return NewFileBookingRepo(filepath.Join(t.TempDir(), "bookings.json"))
		},
		"memory": NewMemoryBookingRepo,
	}
}

func TestCreateAndGet(t *testing.T) {
	for name, newRepo := range repoUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()

			id, err := repo.Create(ctx, newTestBooking("Zareen's"))
			require.NoError(t, err)
			require.NotEmpty(t, id)

			got, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.StatusPending, got.Status)
			assert.Equal(t, "Zareen's", got.Restaurant.Name)
			assert.False(t, got.CreatedAt.IsZero())
		})
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	for name, newRepo := range repoUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			_, err := repo.GetByID(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repo.Update(context.Background(), "nope", UpdateInput{})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestGetByCallIDMatchesEitherLeg(t *testing.T) {
	for name, newRepo := range repoUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()

			id, err := repo.Create(ctx, newTestBooking("Amber India"))
			require.NoError(t, err)

			calling := models.StatusCallingRestaurant
			restCall := "call-restaurant-1"
			_, err = repo.Update(ctx, id, UpdateInput{Status: &calling, RestaurantCallID: &restCall})
			require.NoError(t, err)

			got, err := repo.GetByCallID(ctx, "call-restaurant-1")
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)

			_, err = repo.GetByCallID(ctx, "call-unknown")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestUpdateRejectsRegression(t *testing.T) {
	for name, newRepo := range repoUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()

			id, err := repo.Create(ctx, newTestBooking("Dosa Point"))
			require.NoError(t, err)

			calling := models.StatusCallingRestaurant
			_, err = repo.Update(ctx, id, UpdateInput{Status: &calling})
			require.NoError(t, err)

			pending := models.StatusPending
			_, err = repo.Update(ctx, id, UpdateInput{Status: &pending})
			assert.ErrorIs(t, err, ErrInvalidTransition)

			// A rejected update must not have touched the record.
			got, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.StatusCallingRestaurant, got.Status)
		})
	}
}

func TestUpdateSkipsNilFields(t *testing.T) {
	for name, newRepo := range repoUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()

			id, err := repo.Create(ctx, newTestBooking("Bombay Garden"))
			require.NoError(t, err)

			details := "table for two at seven"
			got, err := repo.Update(ctx, id, UpdateInput{ConfirmationDetails: &details})
			require.NoError(t, err)
			assert.Equal(t, models.StatusPending, got.Status)
			assert.Equal(t, details, got.ConfirmationDetails)
		})
	}
}

func TestConcurrentCreatesAllPersist(t *testing.T) {
	for name, newRepo := range repoUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()

			const n = 20
			var wg sync.WaitGroup
			errs := make([]error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = repo.Create(ctx, newTestBooking(fmt.Sprintf("Restaurant %d", i)))
				}(i)
			}
			wg.Wait()

			for i, err := range errs {
				require.NoError(t, err, "create %d failed", i)
			}
			all, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, n, "every concurrent create must persist")
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.json")
	ctx := context.Background()

	repo := NewFileBookingRepo(path)
	id, err := repo.Create(ctx, newTestBooking("Saffron"))
	require.NoError(t, err)

	reopened := NewFileBookingRepo(path)
	got, err := reopened.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Saffron", got.Restaurant.Name)
}
