package models

import "time"

// BookingStatus tracks how far a reservation attempt has progressed.
type BookingStatus string

const (
	StatusPending           BookingStatus = "pending"
	StatusCallingRestaurant BookingStatus = "calling_restaurant"
	StatusConfirmed         BookingStatus = "confirmed"
	StatusNotifyingUser     BookingStatus = "notifying_user"
	StatusNotified          BookingStatus = "notified"
	StatusFailed            BookingStatus = "failed"
)

// allowedTransitions encodes the forward-only booking lifecycle. A booking
// may fail from any non-terminal state before the user callback; it never
// moves backward.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:           {StatusCallingRestaurant, StatusFailed},
	StatusCallingRestaurant: {StatusConfirmed, StatusFailed},
	StatusConfirmed:         {StatusNotifyingUser, StatusFailed},
	StatusNotifyingUser:     {StatusNotified},
	StatusNotified:          {},
	StatusFailed:            {},
}

// CanTransition reports whether moving from s to next is a defined lifecycle step.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s BookingStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Valid reports whether s is one of the defined lifecycle states.
func (s BookingStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Booking represents one reservation attempt. It is the single source of
// truth across webhook deliveries: the voice platform keeps no application
// state between calls, so every handler rehydrates from this record.
type Booking struct {
	ID     string        `bson:"id" json:"id"`
	Status BookingStatus `bson:"status" json:"status"`

	CustomerName  string `bson:"customer_name" json:"customer_name"`
	CustomerPhone string `bson:"customer_phone" json:"customer_phone"`

	Restaurant    Restaurant `bson:"restaurant" json:"restaurant"`
	LocationQuery string     `bson:"location_query" json:"location_query"`
	Date          string     `bson:"date" json:"date"` // "YYYY-MM-DD"
	Time          string     `bson:"time" json:"time"` // e.g. "7:00 PM"
	PartySize     int        `bson:"party_size" json:"party_size"`

	// Exactly one outbound call leg is active per booking at a time; the
	// restaurant leg runs first, the confirmation leg after.
	RestaurantCallID    string `bson:"restaurant_call_id,omitempty" json:"restaurant_call_id,omitempty"`
	ConfirmationCallID  string `bson:"confirmation_call_id,omitempty" json:"confirmation_call_id,omitempty"`
	ConfirmationDetails string `bson:"confirmation_details,omitempty" json:"confirmation_details,omitempty"`

	// Set only when the calendar step actually created an event.
	CalendarEventID string `bson:"calendar_event_id,omitempty" json:"calendar_event_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
