package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "tablecall/database/repository/booking"
	"tablecall/models"
	"tablecall/services/scraper"
	"tablecall/services/vapi"
	"tablecall/utils"

	"go.uber.org/zap"
)

const defaultMaxResults = 5

// SearchRestaurants runs the scraper and formats the answer for the voice
// platform. It never creates a booking record; zero candidates is a valid,
// spoken result.
func (s *DefaultFlowService) SearchRestaurants(ctx context.Context, input SearchInput) (*SearchResult, error) {
	logger := utils.GetLogger()
	logger.Info("Tool call: search_restaurants",
		zap.String("location", input.Location),
		zap.String("date", input.Date),
		zap.String("time", input.Time),
		zap.Int("partySize", input.PartySize))

	maxResults := s.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	restaurants, err := s.Searcher.Search(ctx, input.Query, input.Location, maxResults)
	if err != nil {
		logger.Warn("Restaurant search failed", zap.Error(err))
		return nil, NewServiceUnavailable(fmt.Sprintf("restaurant search failed: %v", err))
	}

	if len(restaurants) == 0 {
		return &SearchResult{
			Spoken:      "Sorry, I couldn't find any restaurants in that area. Can you try a different location?",
			Restaurants: []models.Restaurant{},
		}, nil
	}

	return &SearchResult{
		Spoken:      scraper.SpeakableSummary(restaurants),
		Restaurants: restaurants,
	}, nil
}

// InitiateBooking creates a pending record, places the outbound restaurant
// call, and advances the record to calling_restaurant. A failed outbound
// request marks the booking failed and surfaces a spoken apology.
func (s *DefaultFlowService) InitiateBooking(ctx context.Context, input BookingInput) (*BookingResult, error) {
	logger := utils.GetLogger()

	customerName := input.CustomerName
	if customerName == "" {
		customerName = s.CustomerName
	}

	record := &models.Booking{
		Status:        models.StatusPending,
		CustomerName:  customerName,
		CustomerPhone: s.CustomerPhone,
		Restaurant: models.Restaurant{
			Name:    input.RestaurantName,
			Phone:   input.RestaurantPhone,
			Address: input.RestaurantAddress,
		},
		LocationQuery: input.RestaurantAddress,
		Date:          input.Date,
		Time:          input.Time,
		PartySize:     input.PartySize,
	}
	bookingID, err := s.Repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking record: %w", err)
	}

	logger.Info("Tool call: initiate_booking",
		zap.String("bookingId", bookingID),
		zap.String("restaurant", input.RestaurantName),
		zap.String("phone", input.RestaurantPhone))

	call, err := s.Dialer.PlaceCall(ctx, vapi.CallRequest{
		CustomerPhone: input.RestaurantPhone,
		SystemPrompt:  restaurantSystemPrompt(record),
		FirstMessage:  restaurantFirstMessage(record),
		Variables:     map[string]string{"booking_id": bookingID},
	})
	if err != nil {
		logger.Warn("Failed to place restaurant call",
			zap.String("bookingId", bookingID),
			zap.Error(err))
		failed := models.StatusFailed
		if _, uerr := s.Repo.Update(ctx, bookingID, bookingRepo.UpdateInput{Status: &failed}); uerr != nil {
			logger.Error("Failed to mark booking failed", zap.String("bookingId", bookingID), zap.Error(uerr))
		}
		return &BookingResult{
			Spoken:    fmt.Sprintf("I had trouble connecting to %s. Please try again.", input.RestaurantName),
			BookingID: bookingID,
		}, NewServiceUnavailable("outbound restaurant call failed")
	}

	calling := models.StatusCallingRestaurant
	if _, err := s.Repo.Update(ctx, bookingID, bookingRepo.UpdateInput{
		Status:           &calling,
		RestaurantCallID: &call.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to record restaurant call: %w", err)
	}

	s.scheduleWatchdog(bookingID)

	logger.Info("Restaurant call initiated",
		zap.String("bookingId", bookingID),
		zap.String("callId", call.ID))

	spoken := fmt.Sprintf(
		"I'm now calling %s to book your table for %d on %s at %s. I'll call you back on %s once the booking is confirmed!",
		input.RestaurantName, input.PartySize, input.Date, input.Time, s.CustomerPhone)
	return &BookingResult{Spoken: spoken, BookingID: bookingID}, nil
}

// GetBooking returns one booking record.
func (s *DefaultFlowService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, NewNotFound(fmt.Sprintf("booking %s not found", id))
	}
	return b, err
}

// ListBookings dumps all booking records.
func (s *DefaultFlowService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.Repo.List(ctx)
}

func (s *DefaultFlowService) scheduleWatchdog(bookingID string) {
	if s.Watchdog == nil || s.CallTimeout <= 0 {
		return
	}
	if err := s.Watchdog.ScheduleTimeout(bookingID, s.CallTimeout); err != nil {
		utils.GetLogger().Warn("Failed to schedule call watchdog",
			zap.String("bookingId", bookingID),
			zap.Error(err))
	}
}
