package booking

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"tablecall/models"
	"tablecall/services/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock DeliveryLedger ---

type mockLedger struct {
	claimed  map[string]bool
	released []string
}

func newMockLedger() *mockLedger {
	return &mockLedger{claimed: map[string]bool{}}
}

func (m *mockLedger) Claim(ctx context.Context, callID string) bool {
	if m.claimed[callID] {
		return false
	}
	m.claimed[callID] = true
	return true
}

func (m *mockLedger) Release(ctx context.Context, callID string) {
	delete(m.claimed, callID)
	m.released = append(m.released, callID)
}

func TestFailedProcessingReleasesDedupClaim(t *testing.T) {
	dialer := &mockDialer{}
	cal := &mockCalendar{result: calendar.EventResult{Outcome: calendar.OutcomeSkipped}}
	ledger := newMockLedger()
	svc := newTestService(dialer, cal)
	svc.Dedup = ledger
	ctx := context.Background()

	result, err := svc.InitiateBooking(ctx, sampleBookingInput())
	require.NoError(t, err)

	// The confirmation dial fails after the restaurant said yes.
	dialer.fail = true
	err = svc.HandleCallEnded(ctx, CallEndedEvent{
		CallID:      "call-1",
		EndedReason: "assistant-ended-call",
		Summary:     "Booking confirmed.",
	})
	require.Error(t, err)
	assert.Contains(t, ledger.released, "call-1")
	assert.False(t, ledger.claimed["call-1"])

	record, err := svc.Repo.GetByID(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, record.Status)

	// The platform retries the same report; it must not be dropped as a
	// duplicate and completes the confirmation leg.
	dialer.fail = false
	err = svc.HandleCallEnded(ctx, CallEndedEvent{
		CallID:      "call-1",
		EndedReason: "assistant-ended-call",
		Summary:     "Booking confirmed.",
	})
	require.NoError(t, err)

	record, err = svc.Repo.GetByID(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotifyingUser, record.Status)
	assert.Equal(t, "call-2", record.ConfirmationCallID)
	assert.Equal(t, "+16505550100", dialer.placed[1].CustomerPhone)
}

func TestDuplicateDeliveryBlockedByLedger(t *testing.T) {
	dialer := &mockDialer{}
	cal := &mockCalendar{result: calendar.EventResult{Outcome: calendar.OutcomeSkipped}}
	ledger := newMockLedger()
	svc := newTestService(dialer, cal)
	svc.Dedup = ledger
	ctx := context.Background()

	_, err := svc.InitiateBooking(ctx, sampleBookingInput())
	require.NoError(t, err)

	err = svc.HandleCallEnded(ctx, CallEndedEvent{
		CallID:      "call-1",
		EndedReason: "assistant-ended-call",
		Summary:     "Booking confirmed.",
	})
	require.NoError(t, err)
	require.Len(t, dialer.placed, 2)
	assert.Equal(t, 1, cal.calls)

	// Successful handling keeps the claim, so a redelivery is a no-op.
	err = svc.HandleCallEnded(ctx, CallEndedEvent{
		CallID:      "call-1",
		EndedReason: "assistant-ended-call",
		Summary:     "Booking confirmed.",
	})
	require.NoError(t, err)
	assert.Len(t, dialer.placed, 2)
	assert.Equal(t, 1, cal.calls)
	assert.Empty(t, ledger.released)
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	short := "café"
	assert.Equal(t, short, truncate(short, 300))

	// Two-byte runes; an odd byte limit lands mid-rune.
	long := strings.Repeat("é", 200)
	cut := truncate(long, 301)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, 300, len(cut))
}

func TestConfirmationDetailsStayValidUTF8(t *testing.T) {
	dialer := &mockDialer{}
	cal := &mockCalendar{result: calendar.EventResult{Outcome: calendar.OutcomeSkipped}}
	svc := newTestService(dialer, cal)
	ctx := context.Background()

	result, err := svc.InitiateBooking(ctx, sampleBookingInput())
	require.NoError(t, err)

	// No summary: details come from the truncated transcript.
	err = svc.HandleCallEnded(ctx, CallEndedEvent{
		CallID:      "call-1",
		EndedReason: "assistant-ended-call",
		Transcript:  "réservation confirmée " + strings.Repeat("é", 300),
	})
	require.NoError(t, err)

	record, err := svc.Repo.GetByID(ctx, result.BookingID)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(record.ConfirmationDetails))
	assert.LessOrEqual(t, len(record.ConfirmationDetails), 300)
}
