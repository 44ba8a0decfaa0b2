package calendar

import (
	"context"
	"fmt"
	"time"

	"tablecall/models"
	"tablecall/utils"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Outcome classifies a calendar attempt. The calendar step is best-effort:
// Skipped and Failed still let the booking flow proceed.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// EventResult is the result of one calendar attempt.
type EventResult struct {
	Outcome Outcome
	EventID string
	Link    string
	Reason  string
}

// Service creates calendar events for confirmed bookings.
type Service interface {
	CreateEvent(ctx context.Context, booking *models.Booking) EventResult
}

// GoogleService writes events to Google Calendar using OAuth refresh-token
// credentials. When credentials are absent every attempt is a logged skip.
type GoogleService struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
	Timezone     string
}

// NewGoogleService builds the calendar service. Missing credentials are
// allowed; the service then degrades to skipping.
func NewGoogleService(clientID, clientSecret, refreshToken, calendarID string) *GoogleService {
	return &GoogleService{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RefreshToken: refreshToken,
		CalendarID:   calendarID,
		Timezone:     "America/Los_Angeles",
	}
}

func (s *GoogleService) configured() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.RefreshToken != ""
}

func (s *GoogleService) client(ctx context.Context) (*gcal.Service, error) {
	conf := &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}
	token := &oauth2.Token{RefreshToken: s.RefreshToken}
	return gcal.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, token)))
}

// parseStart accepts both "7:00 PM" and "19:00" time strings.
func parseStart(date, timeStr string) (time.Time, error) {
	combined := date + " " + timeStr
	start, err := time.Parse("2006-01-02 3:04 PM", combined)
	if err != nil {
		start, err = time.Parse("2006-01-02 15:04", combined)
	}
	return start, err
}

// CreateEvent adds the confirmed booking to the calendar. It never returns
// an error: unconfigured credentials skip, anything else degrades to Failed.
func (s *GoogleService) CreateEvent(ctx context.Context, booking *models.Booking) EventResult {
	logger := utils.GetLogger()

	if !s.configured() {
		logger.Info("Calendar credentials not configured, skipping event",
			zap.String("bookingId", booking.ID),
			zap.String("restaurant", booking.Restaurant.Name))
		return EventResult{
			Outcome: OutcomeSkipped,
			Reason:  "calendar credentials not configured",
		}
	}

	svc, err := s.client(ctx)
	if err != nil {
		logger.Warn("Failed to build calendar client", zap.Error(err))
		return EventResult{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	start, err := parseStart(booking.Date, booking.Time)
	if err != nil {
		logger.Warn("Unparseable booking time, skipping calendar event",
			zap.String("date", booking.Date),
			zap.String("time", booking.Time))
		return EventResult{Outcome: OutcomeFailed, Reason: "unparseable booking time"}
	}
	end := start.Add(2 * time.Hour)

	event := &gcal.Event{
		Summary:  fmt.Sprintf("Dinner at %s", booking.Restaurant.Name),
		Location: booking.Restaurant.Address,
		Description: fmt.Sprintf("Table for %d under %s.\nBooked via voice assistant.",
			booking.PartySize, booking.CustomerName),
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: s.Timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: s.Timezone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: 60},
				{Method: "email", Minutes: 1440},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := svc.Events.Insert(s.CalendarID, event).Context(ctx).Do()
	if err != nil {
		logger.Warn("Failed to create calendar event",
			zap.String("bookingId", booking.ID),
			zap.Error(err))
		return EventResult{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	logger.Info("Calendar event created",
		zap.String("bookingId", booking.ID),
		zap.String("eventId", created.Id))
	return EventResult{
		Outcome: OutcomeCreated,
		EventID: created.Id,
		Link:    created.HtmlLink,
	}
}
