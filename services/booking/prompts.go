package booking

import (
	"fmt"

	"tablecall/models"
)

// Per-call system prompts and first messages for the two outbound legs.
// These are injected as assistant overrides at call time, never stored in
// the static assistant configuration.

func restaurantSystemPrompt(b *models.Booking) string {
	return fmt.Sprintf(`You are an AI assistant calling %s to make a table reservation.

Reservation details:
- Name: %s
- Date: %s
- Time: %s
- Party size: %d people

Be polite and concise. Confirm the booking and repeat back the confirmed date, time, and name.
When the booking is confirmed, say exactly: "Booking confirmed for %s, %d people on %s at %s. Thank you!"
Then end the call politely.`,
		b.Restaurant.Name, b.CustomerName, b.Date, b.Time, b.PartySize,
		b.CustomerName, b.PartySize, b.Date, b.Time)
}

func restaurantFirstMessage(b *models.Booking) string {
	return fmt.Sprintf(
		"Hello! I'm calling to make a reservation for %d people on %s at %s under the name %s. Is that available?",
		b.PartySize, b.Date, b.Time, b.CustomerName)
}

func notifySystemPrompt(b *models.Booking) string {
	return fmt.Sprintf(`You are an AI assistant calling %s to confirm their restaurant reservation.

Booking details:
- Restaurant: %s
- Address: %s
- Date: %s
- Time: %s
- Party size: %d people
- Reservation name: %s

Tell them the booking is confirmed, give them all the details, and let them know
it has been added to their calendar. Be warm and brief. Then say goodbye.`,
		b.CustomerName, b.Restaurant.Name, b.Restaurant.Address,
		b.Date, b.Time, b.PartySize, b.CustomerName)
}

func notifyFirstMessage(b *models.Booking) string {
	return fmt.Sprintf(
		"Hi %s! I'm calling to confirm your table reservation at %s for %d people on %s at %s. It's all set!",
		b.CustomerName, b.Restaurant.Name, b.PartySize, b.Date, b.Time)
}
