package booking

import (
	"context"
	"time"

	bookingRepo "tablecall/database/repository/booking"
	"tablecall/models"
	"tablecall/services/calendar"
	"tablecall/services/scraper"
	"tablecall/services/vapi"
)

// SearchInput carries the search_restaurants tool arguments.
type SearchInput struct {
	Query     string
	Location  string
	Date      string
	Time      string
	PartySize int
}

// SearchResult is the tool answer: a spoken summary plus structured candidates.
type SearchResult struct {
	Spoken      string
	Restaurants []models.Restaurant
}

// BookingInput carries the initiate_booking tool arguments.
type BookingInput struct {
	RestaurantName    string
	RestaurantPhone   string
	RestaurantAddress string
	Date              string
	Time              string
	PartySize         int
	CustomerName      string
}

// BookingResult is the tool answer for a placed restaurant call.
type BookingResult struct {
	Spoken    string
	BookingID string
}

// CallEndedEvent carries the fields of an end-of-call report the flow acts on.
type CallEndedEvent struct {
	CallID      string
	EndedReason string
	Transcript  string
	Summary     string
}

// WatchdogScheduler enqueues a delayed check for a call leg that may never
// report back. Implementations live in watchdog.go; a nil scheduler disables
// the check.
type WatchdogScheduler interface {
	ScheduleTimeout(bookingID string, delay time.Duration) error
}

// FlowService drives the booking state machine across tool calls and
// webhook deliveries.
type FlowService interface {
	SearchRestaurants(ctx context.Context, input SearchInput) (*SearchResult, error)
	InitiateBooking(ctx context.Context, input BookingInput) (*BookingResult, error)
	HandleCallEnded(ctx context.Context, event CallEndedEvent) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
}

// DefaultFlowService implements FlowService.
type DefaultFlowService struct {
	Repo     bookingRepo.BookingRepository
	Searcher scraper.Searcher
	Dialer   vapi.Dialer
	Calendar calendar.Service

	// Dedup guards against webhook redelivery; nil disables dedup
	// (the transition map still prevents double state advances).
	Dedup DeliveryLedger

	// Watchdog fails bookings whose call leg never reports back; optional.
	Watchdog    WatchdogScheduler
	CallTimeout time.Duration

	CustomerName  string
	CustomerPhone string
	MaxResults    int
}
