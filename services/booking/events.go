package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	bookingRepo "tablecall/database/repository/booking"
	"tablecall/models"
	"tablecall/services/calendar"
	"tablecall/services/vapi"
	"tablecall/utils"

	"go.uber.org/zap"
)

// HandleCallEnded progresses a booking after one of its outbound call legs
// reports back. The record is rehydrated via the call id; an unknown id
// fails closed with NotFound. The dedup claim is released on failure so the
// platform's retry is not dropped.
func (s *DefaultFlowService) HandleCallEnded(ctx context.Context, event CallEndedEvent) error {
	if s.Dedup != nil && !s.Dedup.Claim(ctx, event.CallID) {
		utils.GetLogger().Info("Duplicate end-of-call delivery ignored",
			zap.String("callId", event.CallID))
		return nil
	}

	err := s.processCallEnded(ctx, event)
	if err != nil && s.Dedup != nil {
		s.Dedup.Release(ctx, event.CallID)
	}
	return err
}

func (s *DefaultFlowService) processCallEnded(ctx context.Context, event CallEndedEvent) error {
	logger := utils.GetLogger()

	booking, err := s.Repo.GetByCallID(ctx, event.CallID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return NewNotFound(fmt.Sprintf("no booking for call %s", event.CallID))
	}
	if err != nil {
		return fmt.Errorf("failed to look up booking for call %s: %w", event.CallID, err)
	}

	switch booking.Status {
	case models.StatusCallingRestaurant:
		return s.finishRestaurantCall(ctx, booking, event)

	case models.StatusConfirmed:
		// Table already secured but the confirmation call was never placed;
		// a redelivered restaurant-leg report resumes the pipeline there.
		if booking.RestaurantCallID == event.CallID {
			return s.notifyUser(ctx, booking)
		}
		logger.Info("Call ended for booking in non-progressing state",
			zap.String("bookingId", booking.ID),
			zap.String("status", string(booking.Status)))
		return nil

	case models.StatusNotifyingUser:
		if booking.ConfirmationCallID != event.CallID {
			// Redelivered report for the already-finished restaurant leg.
			logger.Info("Stale end-of-call report ignored",
				zap.String("bookingId", booking.ID),
				zap.String("callId", event.CallID))
			return nil
		}
		notified := models.StatusNotified
		if _, err := s.Repo.Update(ctx, booking.ID, bookingRepo.UpdateInput{Status: &notified}); err != nil {
			return fmt.Errorf("failed to mark booking notified: %w", err)
		}
		logger.Info("Booking pipeline complete", zap.String("bookingId", booking.ID))
		return nil

	default:
		logger.Info("Call ended for booking in non-progressing state",
			zap.String("bookingId", booking.ID),
			zap.String("status", string(booking.Status)))
		return nil
	}
}

// finishRestaurantCall decides whether the restaurant accepted, then runs
// the calendar step and places the user confirmation call. An unaccepted
// outcome terminates the booking as failed; it never silently proceeds.
func (s *DefaultFlowService) finishRestaurantCall(ctx context.Context, booking *models.Booking, event CallEndedEvent) error {
	logger := utils.GetLogger()
	logger.Info("Restaurant call ended",
		zap.String("bookingId", booking.ID),
		zap.String("endedReason", event.EndedReason))

	if !callAccepted(event) {
		failed := models.StatusFailed
		if _, err := s.Repo.Update(ctx, booking.ID, bookingRepo.UpdateInput{Status: &failed}); err != nil {
			return fmt.Errorf("failed to mark booking failed: %w", err)
		}
		logger.Warn("Restaurant did not accept the booking",
			zap.String("bookingId", booking.ID),
			zap.String("endedReason", event.EndedReason))
		return nil
	}

	details := event.Summary
	if details == "" {
		details = truncate(event.Transcript, 300)
	}
	confirmed := models.StatusConfirmed
	updated, err := s.Repo.Update(ctx, booking.ID, bookingRepo.UpdateInput{
		Status:              &confirmed,
		ConfirmationDetails: &details,
	})
	if err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	// Best-effort calendar step: every outcome proceeds to the user call.
	result := s.Calendar.CreateEvent(ctx, updated)
	if result.Outcome == calendar.OutcomeCreated {
		if _, err := s.Repo.Update(ctx, booking.ID, bookingRepo.UpdateInput{
			CalendarEventID: &result.EventID,
		}); err != nil {
			logger.Warn("Failed to record calendar event id",
				zap.String("bookingId", booking.ID),
				zap.Error(err))
		}
		updated.CalendarEventID = result.EventID
	} else {
		logger.Info("Calendar step did not create an event",
			zap.String("bookingId", booking.ID),
			zap.String("outcome", string(result.Outcome)),
			zap.String("reason", result.Reason))
	}

	return s.notifyUser(ctx, updated)
}

// notifyUser places the confirmation call back to the customer and advances
// the booking to notifying_user.
func (s *DefaultFlowService) notifyUser(ctx context.Context, booking *models.Booking) error {
	logger := utils.GetLogger()

	call, err := s.Dialer.PlaceCall(ctx, vapi.CallRequest{
		CustomerPhone: booking.CustomerPhone,
		SystemPrompt:  notifySystemPrompt(booking),
		FirstMessage:  notifyFirstMessage(booking),
	})
	if err != nil {
		// The table is booked; a failed courtesy call leaves the record in
		// confirmed rather than failing the whole pipeline.
		logger.Warn("Failed to place user confirmation call",
			zap.String("bookingId", booking.ID),
			zap.Error(err))
		return NewServiceUnavailable("user confirmation call failed")
	}

	notifying := models.StatusNotifyingUser
	if _, err := s.Repo.Update(ctx, booking.ID, bookingRepo.UpdateInput{
		Status:             &notifying,
		ConfirmationCallID: &call.ID,
	}); err != nil {
		return fmt.Errorf("failed to record confirmation call: %w", err)
	}

	s.scheduleWatchdog(booking.ID)

	logger.Info("User confirmation call initiated",
		zap.String("bookingId", booking.ID),
		zap.String("callId", call.ID))
	return nil
}

// callAccepted applies the acceptance heuristic: a normally ended call or a
// transcript that mentions a confirmation counts as accepted.
func callAccepted(event CallEndedEvent) bool {
	switch event.EndedReason {
	case "assistant-ended-call", "customer-ended-call", "silence-timed-out":
		return true
	}
	transcript := strings.ToLower(event.Transcript)
	return strings.Contains(transcript, "confirmed") || strings.Contains(transcript, "reservation")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
