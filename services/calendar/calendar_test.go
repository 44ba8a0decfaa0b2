package calendar

import (
	"context"
	"testing"

	"tablecall/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateEventSkipsWithoutCredentials(t *testing.T) {
	svc := NewGoogleService("", "", "", "primary")

	result := svc.CreateEvent(context.Background(), &models.Booking{
		ID:         "b1",
		Restaurant: models.Restaurant{Name: "Zareen's"},
		Date:       "2026-09-01",
		Time:       "7:00 PM",
		PartySize:  2,
	})

	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Empty(t, result.EventID)
	assert.NotEmpty(t, result.Reason)
}

func TestCreateEventSkipsWithPartialCredentials(t *testing.T) {
	svc := NewGoogleService("client-id", "", "", "primary")
	result := svc.CreateEvent(context.Background(), &models.Booking{ID: "b2"})
	assert.Equal(t, OutcomeSkipped, result.Outcome)
}

func TestParseStartAcceptsBothTimeFormats(t *testing.T) {
	got, err := parseStart("2026-09-01", "7:00 PM")
	assert.NoError(t, err)
	assert.Equal(t, 19, got.Hour())

	got, err = parseStart("2026-09-01", "19:00")
	assert.NoError(t, err)
	assert.Equal(t, 19, got.Hour())

	_, err = parseStart("2026-09-01", "sevenish")
	assert.Error(t, err)
}
