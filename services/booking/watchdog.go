package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	bookingRepo "tablecall/database/repository/booking"
	"tablecall/models"
	"tablecall/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeCallTimeout is the asynq task type for the call watchdog. No timeout
// policy exists on the platform side: a call that never reports back would
// park its booking forever, so a delayed check gives up on its behalf.
const TypeCallTimeout = "call:timeout"

// CallTimeoutPayload is the watchdog task body.
type CallTimeoutPayload struct {
	BookingID string `json:"booking_id"`
}

// AsynqWatchdog schedules call-timeout checks on the asynq queue.
type AsynqWatchdog struct {
	Client *asynq.Client
}

// NewAsynqWatchdog wraps an asynq client as a WatchdogScheduler.
func NewAsynqWatchdog(client *asynq.Client) *AsynqWatchdog {
	return &AsynqWatchdog{Client: client}
}

func (w *AsynqWatchdog) ScheduleTimeout(bookingID string, delay time.Duration) error {
	payload, err := json.Marshal(CallTimeoutPayload{BookingID: bookingID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeCallTimeout, payload)
	_, err = w.Client.Enqueue(task, asynq.ProcessIn(delay))
	return err
}

// HandleCallTimeout resolves a booking whose active call leg went silent. A
// stuck restaurant call fails the booking; a stuck confirmation call closes
// it as notified, since the table itself is already secured.
func HandleCallTimeout(repo bookingRepo.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p CallTimeoutPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Warn("Invalid watchdog payload", zap.Error(err))
			return err
		}

		booking, err := repo.GetByID(ctx, p.BookingID)
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		switch booking.Status {
		case models.StatusCallingRestaurant:
			failed := models.StatusFailed
			if _, err := repo.Update(ctx, booking.ID, bookingRepo.UpdateInput{Status: &failed}); err != nil {
				return err
			}
			logger.Warn("Restaurant call timed out, booking failed",
				zap.String("bookingId", booking.ID))
		case models.StatusNotifyingUser:
			notified := models.StatusNotified
			if _, err := repo.Update(ctx, booking.ID, bookingRepo.UpdateInput{Status: &notified}); err != nil {
				return err
			}
			logger.Warn("Confirmation call timed out, booking closed as notified",
				zap.String("bookingId", booking.ID))
		default:
			// Leg already reported back; nothing to resolve.
		}
		return nil
	}
}
